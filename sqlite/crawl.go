package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/wikidoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ wikidoc.CrawlService = (*CrawlService)(nil)

// CrawlService implements wikidoc.CrawlService using SQLite.
type CrawlService struct {
	db *DB
}

// NewCrawlService creates a new CrawlService.
func NewCrawlService(db *DB) *CrawlService {
	return &CrawlService{db: db}
}

// CreateCrawl creates a new crawl. Returns ECONFLICT if the name is taken.
func (s *CrawlService) CreateCrawl(ctx context.Context, crawl *wikidoc.Crawl) error {
	if err := crawl.Validate(); err != nil {
		return err
	}

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM crawls WHERE name = ?", crawl.Name).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return wikidoc.Errorf(wikidoc.ECONFLICT, "crawl %q already exists", crawl.Name)
	}

	crawl.ID = uuid.New().String()
	crawl.CreatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO crawls (id, name, root_url, query, max_hop, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, crawl.ID, crawl.Name, crawl.RootURL, crawl.Query, crawl.MaxHop,
		crawl.CreatedAt.Format(time.RFC3339))

	return err
}

// FindCrawlByID retrieves a crawl by ID.
func (s *CrawlService) FindCrawlByID(ctx context.Context, id string) (*wikidoc.Crawl, error) {
	var crawl wikidoc.Crawl
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, root_url, query, max_hop, created_at
		FROM crawls
		WHERE id = ?
	`, id).Scan(&crawl.ID, &crawl.Name, &crawl.RootURL, &crawl.Query, &crawl.MaxHop, &createdAt)

	if err == sql.ErrNoRows {
		return nil, wikidoc.Errorf(wikidoc.ENOTFOUND, "crawl not found")
	}
	if err != nil {
		return nil, err
	}

	if crawl.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &crawl, nil
}

// FindCrawls retrieves crawls matching the filter, newest first.
func (s *CrawlService) FindCrawls(ctx context.Context, filter wikidoc.CrawlFilter) ([]*wikidoc.Crawl, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, name, root_url, query, max_hop, created_at FROM crawls WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crawls []*wikidoc.Crawl
	for rows.Next() {
		var crawl wikidoc.Crawl
		var createdAt string

		if err := rows.Scan(&crawl.ID, &crawl.Name, &crawl.RootURL, &crawl.Query, &crawl.MaxHop, &createdAt); err != nil {
			return nil, err
		}
		if crawl.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		crawls = append(crawls, &crawl)
	}

	return crawls, rows.Err()
}

// DeleteCrawl permanently removes a crawl. Its records are removed by the
// foreign key cascade.
func (s *CrawlService) DeleteCrawl(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM crawls WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return wikidoc.Errorf(wikidoc.ENOTFOUND, "crawl not found")
	}

	return nil
}
