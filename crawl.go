package wikidoc

import (
	"context"
	"time"
)

// Crawl represents one recursive extraction run rooted at a wiki page.
type Crawl struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RootURL   string    `json:"rootUrl"`
	Query     string    `json:"query,omitempty"`
	MaxHop    int       `json:"maxHop"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the crawl contains invalid fields.
func (c *Crawl) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "crawl name required")
	}
	if c.RootURL == "" {
		return Errorf(EINVALID, "crawl root URL required")
	}
	if c.MaxHop < 0 {
		return Errorf(EINVALID, "crawl max hop must not be negative")
	}
	return nil
}

// CrawlService represents a service for managing crawls.
type CrawlService interface {
	// CreateCrawl creates a new crawl.
	// Returns ECONFLICT if a crawl with the same name exists.
	CreateCrawl(ctx context.Context, crawl *Crawl) error

	// FindCrawlByID retrieves a crawl by ID.
	// Returns ENOTFOUND if crawl does not exist.
	FindCrawlByID(ctx context.Context, id string) (*Crawl, error)

	// FindCrawls retrieves crawls matching the filter.
	FindCrawls(ctx context.Context, filter CrawlFilter) ([]*Crawl, error)

	// DeleteCrawl permanently removes a crawl and all of its records.
	// Returns ENOTFOUND if crawl does not exist.
	DeleteCrawl(ctx context.Context, id string) error
}

// CrawlFilter represents a filter for FindCrawls.
type CrawlFilter struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
