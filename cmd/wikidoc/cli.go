package main

import (
	"context"
	"io"

	"github.com/fwojciec/wikidoc"
	"github.com/fwojciec/wikidoc/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Verbose      bool
	DB           *sqlite.DB
	Crawls       wikidoc.CrawlService
	Records      wikidoc.RecordService
	Fetcher      wikidoc.Fetcher
	Parser       wikidoc.PageParser
	RateLimiter  wikidoc.DomainLimiter
	Resolver     wikidoc.Resolver
	TokenCounter wikidoc.TokenCounter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Print the table of contents, page progress and debug logs"`

	Load    LoadCmd    `cmd:"" help:"Extract a page and the pages it links to, and store the records"`
	List    ListCmd    `cmd:"" help:"List stored crawls"`
	Records RecordsCmd `cmd:"" help:"Show the records of a crawl"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a crawl and its records"`
	TOC     TOCCmd     `cmd:"" name:"toc" help:"Print the table of contents of a page"`
	Resolve ResolveCmd `cmd:"" help:"Resolve a search query to a wiki page URL"`
	Serve   ServeCmd   `cmd:"" help:"Serve stored crawls over a read-only JSON API"`
}

// LoadCmd is the "load" subcommand.
type LoadCmd struct {
	URL         string   `arg:"" optional:"" help:"Root page URL (or use --query)"`
	Query       string   `short:"q" help:"Search query resolved to the root page"`
	Name        string   `short:"n" help:"Crawl name (defaults to the page name in the URL)"`
	MaxHop      int      `default:"1" help:"How many linked pages deep to follow"`
	Browser     bool     `help:"Fetch pages with a headless browser"`
	ShowBrowser bool     `help:"Show the browser window (with --browser)"`
	Concurrency int      `short:"c" default:"1" help:"Sections of a page processed at once"`
	Retries     int      `default:"0" help:"Fetch retries per page (0 fails on the first error)"`
	Dedupe      bool     `help:"Expand each linked page at most once"`
	JSONL       string   `name:"jsonl" type:"path" help:"Also write records to this JSON Lines file"`
	StopWords   []string `name:"stop-word" help:"Drop table rows containing this word (repeatable)"`
	RawTables   bool     `help:"Keep tables as plain grids instead of converting them with Gemini"`
	Force       bool     `short:"f" help:"Replace an existing crawl with the same name"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// RecordsCmd is the "records" subcommand.
type RecordsCmd struct {
	Name string `arg:"" help:"Crawl name"`
	Hop  int    `default:"-1" help:"Only records from pages at this hop"`
	Full bool   `help:"Show full record content"`
	JSON bool   `name:"json" help:"Print records as JSON Lines"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Name  string `arg:"" help:"Crawl name"`
	Force bool   `help:"Confirm deletion"`
}

// TOCCmd is the "toc" subcommand.
type TOCCmd struct {
	URL     string `arg:"" help:"Page URL"`
	Browser bool   `help:"Fetch the page with a headless browser"`
	Retries int    `default:"0" help:"Fetch retries"`
}

// ResolveCmd is the "resolve" subcommand.
type ResolveCmd struct {
	Query string `arg:"" help:"Search query"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:"localhost:8080" help:"Address to listen on"`
}
