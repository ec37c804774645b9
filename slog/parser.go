package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/wikidoc"
)

// Ensure LoggingParser implements wikidoc.PageParser.
var _ wikidoc.PageParser = (*LoggingParser)(nil)

// LoggingParser wraps a PageParser, logging the size of each page's TOC.
type LoggingParser struct {
	next   wikidoc.PageParser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next wikidoc.PageParser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs the outcome.
func (p *LoggingParser) Parse(pageURL, html string) (page wikidoc.Page, err error) {
	defer func(begin time.Time) {
		var title string
		var sections int
		if page != nil {
			title = page.Title()
			sections = page.TOC().Len()
		}
		p.logger.Info("parse",
			"url", pageURL,
			"title", title,
			"sections", sections,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Parse(pageURL, html)
}
