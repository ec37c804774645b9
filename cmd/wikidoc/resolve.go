package main

import (
	"fmt"

	"github.com/fwojciec/wikidoc"
)

// Run executes the resolve command.
func (c *ResolveCmd) Run(deps *Dependencies) error {
	if deps.Resolver == nil {
		fmt.Fprintln(deps.Stderr, "error: GOOGLE_API_KEY and GOOGLE_CSE_ID must be set")
		return wikidoc.Errorf(wikidoc.EINVALID, "search credentials not set")
	}

	u, err := deps.Resolver.Resolve(deps.Ctx, c.Query)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikidoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, u)
	return nil
}
