package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/wikidoc"
	"github.com/fwojciec/wikidoc/crawl"
	"github.com/fwojciec/wikidoc/customsearch"
	"github.com/fwojciec/wikidoc/gemini"
	"github.com/fwojciec/wikidoc/goquery"
	wikihttp "github.com/fwojciec/wikidoc/http"
	"github.com/fwojciec/wikidoc/rod"
	wikislog "github.com/fwojciec/wikidoc/slog"
	"github.com/fwojciec/wikidoc/sqlite"
	"github.com/fwojciec/wikidoc/trafilatura"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	// API keys may live in a .env file; real environment variables win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to read .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	CrawlService  wikidoc.CrawlService
	RecordService wikidoc.RecordService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("wikidoc"),
		kong.Description("Extract wiki pages section by section, following linked sub-pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'wikidoc --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = strings.Fields(kongCtx.Command())[0]

	deps.Verbose = cli.Verbose
	var logger *slog.Logger
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if needsDB(cmd) {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set WIKIDOC_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		m.CrawlService = sqlite.NewCrawlService(m.DB)
		m.RecordService = sqlite.NewRecordService(m.DB)
		deps.DB = m.DB
		deps.Crawls = m.CrawlService
		deps.Records = m.RecordService
	}

	if cmd == "load" || cmd == "resolve" {
		resolver, err := newResolver(ctx)
		if err != nil {
			return fmt.Errorf("failed to create search client: %w", err)
		}
		if resolver != nil {
			deps.Resolver = resolver
			if logger != nil {
				deps.Resolver = wikislog.NewLoggingResolver(resolver, logger)
			}
		}
	}

	if cmd == "load" || cmd == "toc" {
		browser, showBrowser, retries := cli.Load.Browser, cli.Load.ShowBrowser, cli.Load.Retries
		if cmd == "toc" {
			browser, showBrowser, retries = cli.TOC.Browser, false, cli.TOC.Retries
		}

		fetcher, err := newFetcher(browser, showBrowser)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --browser")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer fetcher.Close()

		deps.Fetcher = crawl.NewRetryFetcher(fetcher, retryDelays(retries), func(format string, args ...any) {
			fmt.Fprintf(stderr, format+"\n", args...)
		})
		if logger != nil {
			deps.Fetcher = wikislog.NewLoggingFetcher(deps.Fetcher, logger)
		}

		opts := []goquery.Option{
			goquery.WithTitleExtractor(trafilatura.NewTitleExtractor()),
			goquery.WithStopWords(cli.Load.StopWords...),
		}
		if cmd == "load" && !cli.Load.RawTables {
			tabulator, err := newTabulator(ctx, stderr)
			if err != nil {
				return err
			}
			if tabulator != nil {
				var t wikidoc.Tabulator = tabulator
				if logger != nil {
					t = wikislog.NewLoggingTabulator(tabulator, logger)
				}
				opts = append(opts, goquery.WithTabulator(t))
			}
		}

		var pageParser wikidoc.PageParser = goquery.NewParser(opts...)
		if logger != nil {
			pageParser = wikislog.NewLoggingParser(pageParser, logger)
		}
		deps.Parser = pageParser

		// One request per second per domain, like a polite reader.
		deps.RateLimiter = crawl.NewDomainLimiter(1.0)
	}

	if cmd == "load" {
		tokenCounter, err := gemini.NewTokenCounter(gemini.DefaultModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		deps.TokenCounter = tokenCounter
	}

	return kongCtx.Run(deps)
}

// needsDB reports whether cmd reads or writes stored crawls.
func needsDB(cmd string) bool {
	switch cmd {
	case "load", "list", "records", "delete", "serve":
		return true
	}
	return false
}

// newFetcher returns the browser fetcher when requested, the plain HTTP
// fetcher otherwise.
func newFetcher(browser, show bool) (wikidoc.Fetcher, error) {
	if !browser {
		return wikihttp.NewFetcher(), nil
	}
	return rod.NewFetcher(rod.WithBrowserOptions(rod.WithHeadless(!show)))
}

// newTabulator connects to Gemini. Returns nil without an API key: tables
// are then stored as their comma-separated grid.
func newTabulator(ctx context.Context, stderr io.Writer) (*gemini.Tabulator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY not set; tables are kept as plain grids. Get an API key at https://aistudio.google.com/apikey")
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return gemini.NewTabulator(client), nil
}

// newResolver returns a search resolver, or nil when the search
// credentials are not configured.
func newResolver(ctx context.Context) (*customsearch.Resolver, error) {
	apiKey, engineID := os.Getenv("GOOGLE_API_KEY"), os.Getenv("GOOGLE_CSE_ID")
	if apiKey == "" || engineID == "" {
		return nil, nil
	}
	return customsearch.NewResolver(ctx, apiKey, engineID)
}

// retryDelays returns the backoff for n retries, doubling from one second.
func retryDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, max(n, 0))
	d := time.Second
	for range n {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

func defaultDBPath() string {
	if path := os.Getenv("WIKIDOC_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "wikidoc.db"
	}
	dir := filepath.Join(home, ".wikidoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "wikidoc.db")
}
