package mock

import (
	"context"

	"github.com/fwojciec/wikidoc"
)

var _ wikidoc.CrawlService = (*CrawlService)(nil)

// CrawlService is a mock implementation of wikidoc.CrawlService.
type CrawlService struct {
	CreateCrawlFn   func(ctx context.Context, crawl *wikidoc.Crawl) error
	FindCrawlByIDFn func(ctx context.Context, id string) (*wikidoc.Crawl, error)
	FindCrawlsFn    func(ctx context.Context, filter wikidoc.CrawlFilter) ([]*wikidoc.Crawl, error)
	DeleteCrawlFn   func(ctx context.Context, id string) error
}

func (s *CrawlService) CreateCrawl(ctx context.Context, crawl *wikidoc.Crawl) error {
	return s.CreateCrawlFn(ctx, crawl)
}

func (s *CrawlService) FindCrawlByID(ctx context.Context, id string) (*wikidoc.Crawl, error) {
	return s.FindCrawlByIDFn(ctx, id)
}

func (s *CrawlService) FindCrawls(ctx context.Context, filter wikidoc.CrawlFilter) ([]*wikidoc.Crawl, error) {
	return s.FindCrawlsFn(ctx, filter)
}

func (s *CrawlService) DeleteCrawl(ctx context.Context, id string) error {
	return s.DeleteCrawlFn(ctx, id)
}
