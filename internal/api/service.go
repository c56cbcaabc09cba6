package api

import (
	"context"

	"mangaeditor/internal/rows"
)

// RowStore abstracts the persistence operations the row service needs.
type RowStore interface {
	List(ctx context.Context) ([]rows.Record, error)
	Create(ctx context.Context, draft rows.Draft) (int64, error)
	Ping(ctx context.Context) error
	Driver() string
}

// RowService exposes the store operations returning wire types.
type RowService struct {
	store RowStore
}

// NewRowService constructs a RowService around the provided store.
func NewRowService(store RowStore) *RowService {
	if store == nil {
		return nil
	}
	return &RowService{store: store}
}

// List returns the full snapshot. An empty store yields an empty, non-nil slice.
func (s *RowService) List(ctx context.Context) ([]rows.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []rows.Record{}
	}
	return records, nil
}

// Create persists draft and returns the assigned id.
func (s *RowService) Create(ctx context.Context, draft rows.Draft) (rows.Created, error) {
	id, err := s.store.Create(ctx, draft)
	if err != nil {
		return rows.Created{}, err
	}
	return rows.Created{ID: id}, nil
}

// Health pings the store.
func (s *RowService) Health(ctx context.Context) (HealthResponse, error) {
	if err := s.store.Ping(ctx); err != nil {
		return HealthResponse{Status: "unavailable", Driver: s.store.Driver()}, err
	}
	return HealthResponse{Status: "ok", Driver: s.store.Driver()}, nil
}
