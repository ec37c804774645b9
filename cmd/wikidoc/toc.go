package main

import (
	"fmt"

	"github.com/fwojciec/wikidoc"
)

// Run executes the toc command.
func (c *TOCCmd) Run(deps *Dependencies) error {
	html, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error fetching: %v\n", err)
		return err
	}

	page, err := deps.Parser.Parse(c.URL, html)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikidoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, page.Title())
	fmt.Fprint(deps.Stdout, wikidoc.FormatTOC(page.TOC()))
	return nil
}
