// Package collect runs every registered source concurrently and merges their
// output in source-priority order. A source that errors, panics or runs out
// of time contributes nothing and never affects the others.
package collect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/types"

	"golang.org/x/sync/errgroup"
)

var (
	ErrSourceTimeout = errors.New("source timed out")
	ErrSourcePanic   = errors.New("source panicked")
)

type Options struct {
	// Workers bounds the primary phase, SecondaryWorkers the secondary one.
	Workers          int
	SecondaryWorkers int
	SourceTimeout    time.Duration
	// RunTimeout bounds the whole collection; 0 means none.
	RunTimeout time.Duration
	// OnSource is called from worker goroutines as each source finishes.
	OnSource func(SourceCount)
}

// SourceCount reports one source's outcome. Records is 0 whenever Err is set.
type SourceCount struct {
	Source  string
	Phase   types.Phase
	Records int
	Err     error
	Took    time.Duration
}

func (s SourceCount) MarshalJSON() ([]byte, error) {
	v := struct {
		Source  string `json:"source"`
		Phase   string `json:"phase"`
		Records int    `json:"records"`
		Error   string `json:"error,omitempty"`
		TookMS  int64  `json:"took_ms"`
	}{s.Source, s.Phase.String(), s.Records, "", s.Took.Milliseconds()}
	if s.Err != nil {
		v.Error = s.Err.Error()
	}
	return json.Marshal(v)
}

// Batch is one source's records. Priority is the source's registry index.
type Batch struct {
	Source   string
	Priority int
	Records  []domain.RawRecord
}

type Result struct {
	// Batches and Counts are in priority order, one entry per source.
	Batches []Batch
	Counts  []SourceCount
}

func (r Result) Total() int {
	n := 0
	for _, b := range r.Batches {
		n += len(b.Records)
	}
	return n
}

// Failed is the number of sources that errored, panicked or timed out.
func (r Result) Failed() int {
	n := 0
	for _, c := range r.Counts {
		if c.Err != nil {
			n++
		}
	}
	return n
}

type Collector struct {
	entries []types.Entry
	opt     Options
}

func New(entries []types.Entry, opt Options) *Collector {
	if opt.Workers <= 0 {
		opt.Workers = 6
	}
	if opt.SecondaryWorkers <= 0 {
		opt.SecondaryWorkers = 3
	}
	if opt.SourceTimeout <= 0 {
		opt.SourceTimeout = time.Minute
	}
	return &Collector{entries: entries, opt: opt}
}

// Collect runs the primary phase, then the secondary phase, and merges.
func (c *Collector) Collect(ctx context.Context, crit domain.SearchCriteria) Result {
	if c.opt.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opt.RunTimeout)
		defer cancel()
	}

	batches := make([]Batch, len(c.entries))
	counts := make([]SourceCount, len(c.entries))

	c.phase(ctx, crit, types.Primary, c.opt.Workers, batches, counts)
	c.phase(ctx, crit, types.Secondary, c.opt.SecondaryWorkers, batches, counts)

	res := Result{Batches: batches, Counts: counts}
	log.Printf("[collect] sources=%d failed=%d records=%d", len(c.entries), res.Failed(), res.Total())
	return res
}

// phase fans out the entries of one phase. Each task writes only its own slot.
func (c *Collector) phase(ctx context.Context, crit domain.SearchCriteria, ph types.Phase, limit int,
	batches []Batch, counts []SourceCount) {
	var g errgroup.Group
	g.SetLimit(limit)

	for i, e := range c.entries {
		if e.Phase != ph {
			continue
		}
		g.Go(func() error {
			recs, sc := c.run(ctx, e, crit)
			batches[i] = Batch{Source: sc.Source, Priority: i, Records: recs}
			counts[i] = sc
			if c.opt.OnSource != nil {
				c.opt.OnSource(sc)
			}
			// failures are recorded, never propagated to siblings
			return nil
		})
	}
	_ = g.Wait()
}

type outcome struct {
	recs []domain.RawRecord
	err  error
}

func (c *Collector) run(ctx context.Context, e types.Entry, crit domain.SearchCriteria) ([]domain.RawRecord, SourceCount) {
	name := e.Source.Name()
	start := time.Now()

	sctx, cancel := context.WithTimeout(ctx, c.opt.SourceTimeout)
	defer cancel()

	out := fetchIsolated(sctx, e, crit)

	sc := SourceCount{Source: name, Phase: e.Phase, Took: time.Since(start)}
	if out.err != nil {
		sc.Err = out.err
		log.Printf("[collect] source=%s phase=%s failed after %s: %v", name, e.Phase, sc.Took.Round(time.Millisecond), out.err)
		return nil, sc
	}
	sc.Records = len(out.recs)
	log.Printf("[collect] source=%s phase=%s records=%d took=%s", name, e.Phase, sc.Records, sc.Took.Round(time.Millisecond))
	return out.recs, sc
}

// fetchIsolated runs the source on its own goroutine so one that ignores ctx still
// cannot hold up the phase.
func fetchIsolated(ctx context.Context, e types.Entry, crit domain.SearchCriteria) outcome {
	timedOut := func() outcome {
		return outcome{err: fmt.Errorf("%w: %v", ErrSourceTimeout, ctx.Err())}
	}
	if ctx.Err() != nil {
		return timedOut()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", ErrSourcePanic, r)}
			}
		}()
		recs, err := e.Source.Fetch(ctx, crit, e.Pages)
		done <- outcome{recs: recs, err: err}
	}()

	select {
	case out := <-done:
		// a source cut short by the deadline counts as timed out, even if it
		// returned partial records
		if ctx.Err() != nil && !errors.Is(out.err, ErrSourcePanic) {
			return timedOut()
		}
		return out
	case <-ctx.Done():
		return timedOut()
	}
}
