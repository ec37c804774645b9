package main

import (
	"fmt"

	"github.com/fwojciec/wikidoc"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return wikidoc.Errorf(wikidoc.EINVALID, "use --force to confirm deletion")
	}

	if err := deleteCrawlByName(deps, c.Name); err != nil {
		if wikidoc.ErrorCode(err) == wikidoc.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: crawl %q not found. Use 'wikidoc list' to see available crawls.\n", c.Name)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", wikidoc.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted crawl %q\n", c.Name)
	return nil
}
