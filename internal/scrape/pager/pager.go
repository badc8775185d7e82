// Package pager is the one paginated fetch loop shared by every paged source.
package pager

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"jobscout-engine/internal/domain"
)

// PageFunc fetches and extracts one page. Pages are numbered from 0.
type PageFunc func(ctx context.Context, page int) ([]domain.RawRecord, error)

type Options struct {
	Source   string
	Pages    int
	DelayMin time.Duration
	DelayMax time.Duration
}

// Collect requests pages in order until a page is empty, the page budget is
// spent or ctx ends. An error on the first page is the caller's error; an
// error on a later page ends the loop and keeps what earlier pages produced.
func Collect(ctx context.Context, opt Options, fetch PageFunc) ([]domain.RawRecord, error) {
	var out []domain.RawRecord

	for page := 0; page < opt.Pages; page++ {
		if page > 0 {
			if err := Sleep(ctx, Jitter(opt.DelayMin, opt.DelayMax)); err != nil {
				return out, nil
			}
		}

		recs, err := fetch(ctx, page)
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("%s page 1: %w", opt.Source, err)
			}
			log.Printf("[source:%s] page %d failed, keeping %d records: %v", opt.Source, page+1, len(out), err)
			return out, nil
		}
		if len(recs) == 0 {
			break
		}
		out = append(out, recs...)
		log.Printf("[source:%s] page %d: %d records", opt.Source, page+1, len(recs))
	}
	return out, nil
}

// Jitter picks a duration uniformly in [min, max].
func Jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min+1)
}

// Sleep waits for d unless ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
