package wikidoc

import (
	"context"
	"time"
)

// Record is one extracted section, the unit of crawl output.
type Record struct {
	ID          string         `json:"id,omitempty"`
	CrawlID     string         `json:"crawlId,omitempty"`
	Position    int            `json:"position"`
	Content     string         `json:"content"`
	ContentHash string         `json:"contentHash,omitempty"`
	Metadata    RecordMetadata `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt,omitzero"`
}

// RecordMetadata locates a record in the crawl: which page it came from,
// how that page was reached, and where the section sits in the TOC.
type RecordMetadata struct {
	PageTopic  string `json:"pageTopic"`
	BaseURL    string `json:"basePageUrl"`
	ParentURL  string `json:"parentPageUrl,omitempty"`
	CurrentURL string `json:"currentPageUrl"`
	Hop        int    `json:"pageHop"`

	// Numbering and title of the section that deferred to this page.
	// Empty on the root page.
	ParentIndex   string `json:"parentPageIndex"`
	ParentTOCItem string `json:"parentPageTocItem"`

	// AbsTOCPath joins ancestor titles with "/" and page boundaries with "//".
	AbsTOCPath string `json:"absPageTocItem"`

	Index           string `json:"index"`
	TOCItem         string `json:"tocItem"`
	AncestorTOCItem string `json:"ancestorTocItem"`
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if r.CrawlID == "" {
		return Errorf(EINVALID, "record crawl ID required")
	}
	if r.Metadata.CurrentURL == "" {
		return Errorf(EINVALID, "record page URL required")
	}
	return nil
}

// RecordWriter writes records to storage.
type RecordWriter interface {
	CreateRecord(ctx context.Context, rec *Record) error
}

// RecordService represents a service for managing records.
type RecordService interface {
	// CreateRecord creates a new record.
	CreateRecord(ctx context.Context, rec *Record) error

	// FindRecords retrieves records matching the filter, ordered by position.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)

	// DeleteRecordsByCrawl removes all records of a crawl.
	DeleteRecordsByCrawl(ctx context.Context, crawlID string) error
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	CrawlID *string `json:"crawlId"`
	Hop     *int    `json:"hop"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
