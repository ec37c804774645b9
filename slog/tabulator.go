package slog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/wikidoc"
)

// Ensure LoggingTabulator implements wikidoc.Tabulator.
var _ wikidoc.Tabulator = (*LoggingTabulator)(nil)

// LoggingTabulator wraps a Tabulator with logging.
type LoggingTabulator struct {
	next   wikidoc.Tabulator
	logger *slog.Logger
}

// NewLoggingTabulator creates a new LoggingTabulator.
func NewLoggingTabulator(next wikidoc.Tabulator, logger *slog.Logger) *LoggingTabulator {
	return &LoggingTabulator{next: next, logger: logger}
}

// Tabulate logs the grid size and delegates to the wrapped tabulator.
func (t *LoggingTabulator) Tabulate(ctx context.Context, grid string) (out string, err error) {
	defer func(begin time.Time) {
		t.logger.Info("tabulate",
			"rows", strings.Count(grid, "\n\n")+1,
			"bytes", len(out),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.Tabulate(ctx, grid)
}
