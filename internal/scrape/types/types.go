package types

import (
	"context"

	"jobscout-engine/internal/domain"
)

// Source retrieves raw postings from one external data source.
// pages is the page budget; sources without pagination may ignore it or use
// it as a cap on requests.
type Source interface {
	Name() string
	Fetch(ctx context.Context, c domain.SearchCriteria, pages int) ([]domain.RawRecord, error)
}

// Phase orders collection: every primary source runs before any secondary one.
type Phase int

const (
	Primary Phase = iota
	Secondary
)

func (p Phase) String() string {
	if p == Secondary {
		return "secondary"
	}
	return "primary"
}

// Entry is one registered source with its budget, in priority order.
type Entry struct {
	Source Source
	Pages  int
	Phase  Phase
}

// SourceFunc adapts a function to Source.
type SourceFunc struct {
	ID string
	Fn func(ctx context.Context, c domain.SearchCriteria, pages int) ([]domain.RawRecord, error)
}

func (s SourceFunc) Name() string { return s.ID }

func (s SourceFunc) Fetch(ctx context.Context, c domain.SearchCriteria, pages int) ([]domain.RawRecord, error) {
	return s.Fn(ctx, c, pages)
}
