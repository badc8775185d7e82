// Package enrich computes supplementary career scores for the top of the
// baseline ranking. Enrichment is best effort: a failed, slow or panicking
// stage leaves the baseline ranking in place.
package enrich

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobscout-engine/internal/domain"
)

// Result maps record keys (domain.JobRecord.Key) to scores in 0..100.
// Records the stage could not score are absent.
type Result struct {
	Scores   map[string]float64
	Insights string
}

type Stage interface {
	Name() string
	Enrich(ctx context.Context, recs []domain.JobRecord, c domain.SearchCriteria) (Result, error)
}

// maxDrain bounds how long Apply waits, after the deadline, for a stage to
// hand back the scores it finished.
const maxDrain = 2 * time.Second

// Apply runs s over recs within timeout. It never fails: errors and panics
// are logged, and an error keeps whatever scores the stage did produce. At
// the deadline a stage that returns promptly on cancellation keeps its
// finished scores; one that does not yields an empty Result.
func Apply(ctx context.Context, s Stage, recs []domain.JobRecord, c domain.SearchCriteria, timeout time.Duration) Result {
	if s == nil || len(recs) == 0 {
		return Result{}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := s.Enrich(ctx, recs, c)
		done <- outcome{res, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			log.Printf("[enrich] stage=%s failed after %s, scored=%d: %v", s.Name(), time.Since(start).Round(time.Millisecond), len(out.res.Scores), out.err)
		} else {
			log.Printf("[enrich] stage=%s scored=%d/%d took=%s", s.Name(), len(out.res.Scores), len(recs), time.Since(start).Round(time.Millisecond))
		}
		return out.res
	case <-ctx.Done():
	}

	drain := maxDrain
	if timeout > 0 {
		drain = min(timeout/4, maxDrain)
	}
	select {
	case out := <-done:
		log.Printf("[enrich] stage=%s cut off: %v, kept scored=%d/%d", s.Name(), ctx.Err(), len(out.res.Scores), len(recs))
		return Result{Scores: out.res.Scores}
	case <-time.After(drain):
		log.Printf("[enrich] stage=%s gave up: %v", s.Name(), ctx.Err())
		return Result{}
	}
}
