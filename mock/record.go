package mock

import (
	"context"

	"github.com/fwojciec/wikidoc"
)

var _ wikidoc.RecordService = (*RecordService)(nil)

// RecordService is a mock implementation of wikidoc.RecordService.
type RecordService struct {
	CreateRecordFn         func(ctx context.Context, rec *wikidoc.Record) error
	FindRecordsFn          func(ctx context.Context, filter wikidoc.RecordFilter) ([]*wikidoc.Record, error)
	DeleteRecordsByCrawlFn func(ctx context.Context, crawlID string) error
}

func (s *RecordService) CreateRecord(ctx context.Context, rec *wikidoc.Record) error {
	return s.CreateRecordFn(ctx, rec)
}

func (s *RecordService) FindRecords(ctx context.Context, filter wikidoc.RecordFilter) ([]*wikidoc.Record, error) {
	return s.FindRecordsFn(ctx, filter)
}

func (s *RecordService) DeleteRecordsByCrawl(ctx context.Context, crawlID string) error {
	return s.DeleteRecordsByCrawlFn(ctx, crawlID)
}
