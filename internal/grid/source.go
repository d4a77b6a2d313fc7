package grid

import (
	"context"
	"sync"
)

// Row is one record displayed by a grid. Implementations are plain DTOs
// from the api or radacct packages.
type Row interface {
	// RowID returns the stable identity used by the selection model and
	// for reconciling the rendered window.
	RowID() string
	// Value returns the raw field value used for client-mode search and
	// sort. It must answer for every column key and for every sort field
	// that differs from its column key. Composite fields (a "name" built
	// from two source fields) are resolved here, per row type.
	Value(field string) any
	// Cell returns the display text for a column key.
	Cell(key string) string
}

// Result is one page of rows plus the counts the footer and pager need.
type Result struct {
	Rows         []Row
	TotalRecords int
	TotalPages   int
}

// Source produces one Result per query. Server-mode sources forward the
// query verbatim to a search endpoint and trust its ordering and counts;
// client-mode sources fetch the full collection once and run the local
// pipeline. Fetch runs off the UI loop and must be safe for overlapping
// calls.
type Source interface {
	Fetch(ctx context.Context, q Query) (Result, error)
}

// Invalidator is implemented by sources that cache the full collection.
// The grid view invalidates after a mutation so the next fetch re-reads.
type Invalidator interface {
	Invalidate()
}

// FetchAllFunc loads the complete, unfiltered collection for a
// client-mode table.
type FetchAllFunc func(ctx context.Context) ([]Row, error)

// ClientSource is the client-mode Source: one full fetch, cached, with
// every query served by the local pipeline.
type ClientSource struct {
	pipe     *Pipeline
	fetchAll FetchAllFunc

	mu     sync.Mutex
	cache  []Row
	loaded bool
}

// NewClientSource builds a client-mode source over a full-collection
// fetch function.
func NewClientSource(pipe *Pipeline, fetchAll FetchAllFunc) *ClientSource {
	return &ClientSource{pipe: pipe, fetchAll: fetchAll}
}

// Fetch loads the collection on first use and applies the pipeline.
func (s *ClientSource) Fetch(ctx context.Context, q Query) (Result, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.pipe.Apply(rows, q), nil
}

func (s *ClientSource) rows(ctx context.Context) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cache, nil
	}
	rows, err := s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache = rows
	s.loaded = true
	return rows, nil
}

// Invalidate drops the cached collection; the next Fetch re-reads.
func (s *ClientSource) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.loaded = false
	s.mu.Unlock()
}

var _ Source = (*ClientSource)(nil)
var _ Invalidator = (*ClientSource)(nil)

// SourceFunc adapts a function to the Source interface. Server-mode
// sources are typically one SourceFunc closing over an API client.
type SourceFunc func(ctx context.Context, q Query) (Result, error)

// Fetch calls the function.
func (f SourceFunc) Fetch(ctx context.Context, q Query) (Result, error) {
	return f(ctx, q)
}
