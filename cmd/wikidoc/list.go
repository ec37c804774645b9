package main

import (
	"fmt"

	"github.com/fwojciec/wikidoc"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	crawls, err := deps.Crawls.FindCrawls(deps.Ctx, wikidoc.CrawlFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikidoc.ErrorMessage(err))
		return err
	}

	if len(crawls) == 0 {
		fmt.Fprintln(deps.Stdout, "No crawls found. Use 'wikidoc load' to create one.")
		return nil
	}

	for _, cr := range crawls {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  (max hop %d)\n", cr.ID, cr.Name, cr.RootURL, cr.MaxHop)
	}

	return nil
}
