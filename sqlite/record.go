package sqlite

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/wikidoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ wikidoc.RecordService = (*RecordService)(nil)

// RecordService implements wikidoc.RecordService using SQLite.
type RecordService struct {
	db *DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *DB) *RecordService {
	return &RecordService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.New()
	_, _ = h.WriteString(content)
	return hex.EncodeToString(h.Sum(nil))
}

const recordColumns = `id, crawl_id, position, content, content_hash,
	page_topic, base_url, parent_url, current_url, hop,
	parent_index, parent_toc_item, abs_toc_path,
	section_index, toc_item, ancestor_toc_item, created_at`

// CreateRecord creates a new record. The content hash is computed when the
// record does not carry one.
func (s *RecordService) CreateRecord(ctx context.Context, rec *wikidoc.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()
	if rec.ContentHash == "" {
		rec.ContentHash = hashContent(rec.Content)
	}

	m := rec.Metadata
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CrawlID, rec.Position, rec.Content, rec.ContentHash,
		m.PageTopic, m.BaseURL, m.ParentURL, m.CurrentURL, m.Hop,
		m.ParentIndex, m.ParentTOCItem, m.AbsTOCPath,
		m.Index, m.TOCItem, m.AncestorTOCItem, rec.CreatedAt.Format(time.RFC3339))

	return err
}

// FindRecords retrieves records matching the filter, ordered by position.
func (s *RecordService) FindRecords(ctx context.Context, filter wikidoc.RecordFilter) ([]*wikidoc.Record, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recordColumns + " FROM records WHERE 1=1")

	if filter.CrawlID != nil {
		query.WriteString(" AND crawl_id = ?")
		args = append(args, *filter.CrawlID)
	}
	if filter.Hop != nil {
		query.WriteString(" AND hop = ?")
		args = append(args, *filter.Hop)
	}

	query.WriteString(" ORDER BY crawl_id, position ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*wikidoc.Record
	for rows.Next() {
		var rec wikidoc.Record
		var createdAt string
		m := &rec.Metadata

		if err := rows.Scan(&rec.ID, &rec.CrawlID, &rec.Position, &rec.Content, &rec.ContentHash,
			&m.PageTopic, &m.BaseURL, &m.ParentURL, &m.CurrentURL, &m.Hop,
			&m.ParentIndex, &m.ParentTOCItem, &m.AbsTOCPath,
			&m.Index, &m.TOCItem, &m.AncestorTOCItem, &createdAt); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}

// DeleteRecordsByCrawl removes all records of a crawl.
func (s *RecordService) DeleteRecordsByCrawl(ctx context.Context, crawlID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE crawl_id = ?", crawlID)
	return err
}
