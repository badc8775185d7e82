package util

import (
	"context"
	"log"
	"sync"
	"time"

	"jobscout-engine/internal/domain"
)

// PerCompany runs fn for every company on a small worker pool and merges the
// results in company order. A failing company is logged and skipped.
func PerCompany(ctx context.Context, tag string, companies []domain.Company, workers int, timeout time.Duration,
	fn func(ctx context.Context, co domain.Company) ([]domain.RawRecord, error)) []domain.RawRecord {
	if workers <= 0 {
		workers = 4
	}
	results := make([][]domain.RawRecord, len(companies))
	workCh := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range workCh {
				co := companies[idx]
				cctx, cancel := context.WithTimeout(ctx, timeout)
				recs, err := fn(cctx, co)
				cancel()
				if err != nil {
					log.Printf("[source:%s] company=%q slug=%q err=%v", tag, co.DisplayName(), co.Slug, err)
					continue
				}
				results[idx] = recs
			}
		}()
	}

	go func() {
		defer close(workCh)
		for i := range companies {
			select {
			case <-ctx.Done():
				return
			case workCh <- i:
			}
		}
	}()
	wg.Wait()

	var out []domain.RawRecord
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
