package collect

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(name string, n int, delay time.Duration) types.Source {
	return types.SourceFunc{ID: name, Fn: func(ctx context.Context, _ domain.SearchCriteria, _ int) ([]domain.RawRecord, error) {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		out := make([]domain.RawRecord, n)
		for i := range out {
			out[i] = domain.RawRecord{Source: name, Title: name}
		}
		return out, nil
	}}
}

func failing(name string, err error) types.Source {
	return types.SourceFunc{ID: name, Fn: func(context.Context, domain.SearchCriteria, int) ([]domain.RawRecord, error) {
		return nil, err
	}}
}

func entry(s types.Source, ph types.Phase) types.Entry {
	return types.Entry{Source: s, Pages: 1, Phase: ph}
}

func TestCollectIsolatesFailures(t *testing.T) {
	panicky := types.SourceFunc{ID: "panicky", Fn: func(context.Context, domain.SearchCriteria, int) ([]domain.RawRecord, error) {
		panic("selector exploded")
	}}
	entries := []types.Entry{
		entry(fixed("a", 3, 30*time.Millisecond), types.Primary),
		entry(failing("b", errors.New("403 forbidden")), types.Primary),
		entry(fixed("c", 2, 0), types.Primary),
		entry(panicky, types.Primary),
		entry(fixed("e", 1, 10*time.Millisecond), types.Primary),
		entry(fixed("f", 4, 0), types.Primary),
	}

	var mu sync.Mutex
	var seen []string
	c := New(entries, Options{Workers: 6, SourceTimeout: time.Second, OnSource: func(sc SourceCount) {
		mu.Lock()
		seen = append(seen, sc.Source)
		mu.Unlock()
	}})

	res := c.Collect(context.Background(), domain.NewSearchCriteria("", "", ""))
	assert.Equal(t, 10, res.Total())
	assert.Equal(t, 2, res.Failed())
	assert.Len(t, seen, 6)

	require.Len(t, res.Counts, 6)
	assert.Equal(t, 3, res.Counts[0].Records)
	assert.EqualError(t, res.Counts[1].Err, "403 forbidden")
	assert.Zero(t, res.Counts[1].Records)
	assert.ErrorIs(t, res.Counts[3].Err, ErrSourcePanic)

	// merge order is registry order, not completion order
	var order []string
	for _, b := range res.Batches {
		if len(b.Records) > 0 {
			order = append(order, b.Source)
		}
	}
	assert.Equal(t, []string{"a", "c", "e", "f"}, order)
	assert.Equal(t, 2, res.Batches[2].Priority)
}

func TestCollectSourceTimeout(t *testing.T) {
	entries := []types.Entry{
		entry(fixed("slow", 5, time.Hour), types.Primary),
		entry(fixed("fast", 1, 0), types.Primary),
	}
	start := time.Now()
	res := New(entries, Options{SourceTimeout: 50 * time.Millisecond}).Collect(context.Background(), domain.SearchCriteria{})
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, res.Counts[0].Err, ErrSourceTimeout)
	assert.Equal(t, 1, res.Total())
}

func TestCollectIgnoresSourcesThatIgnoreContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	stuck := types.SourceFunc{ID: "stuck", Fn: func(context.Context, domain.SearchCriteria, int) ([]domain.RawRecord, error) {
		<-block
		return []domain.RawRecord{{Title: "late"}}, nil
	}}
	res := New([]types.Entry{entry(stuck, types.Primary)}, Options{SourceTimeout: 20 * time.Millisecond}).
		Collect(context.Background(), domain.SearchCriteria{})
	assert.ErrorIs(t, res.Counts[0].Err, ErrSourceTimeout)
	assert.Zero(t, res.Total())
}

func TestSecondaryPhaseRunsAfterPrimary(t *testing.T) {
	var primaryDone atomic.Bool
	primary := types.SourceFunc{ID: "p", Fn: func(context.Context, domain.SearchCriteria, int) ([]domain.RawRecord, error) {
		time.Sleep(30 * time.Millisecond)
		primaryDone.Store(true)
		return []domain.RawRecord{{Title: "p"}}, nil
	}}
	var sawPrimary atomic.Bool
	secondary := types.SourceFunc{ID: "s", Fn: func(context.Context, domain.SearchCriteria, int) ([]domain.RawRecord, error) {
		sawPrimary.Store(primaryDone.Load())
		return []domain.RawRecord{{Title: "s"}}, nil
	}}

	res := New([]types.Entry{entry(secondary, types.Secondary), entry(primary, types.Primary)}, Options{}).
		Collect(context.Background(), domain.SearchCriteria{})
	assert.True(t, sawPrimary.Load())
	assert.Equal(t, "s", res.Batches[0].Source, "priority follows registry order even across phases")
	assert.Equal(t, 2, res.Total())
}

func TestWorkerCeiling(t *testing.T) {
	var running, peak atomic.Int32
	src := types.SourceFunc{ID: "w", Fn: func(context.Context, domain.SearchCriteria, int) ([]domain.RawRecord, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
		return nil, nil
	}}
	var entries []types.Entry
	for i := 0; i < 8; i++ {
		entries = append(entries, entry(src, types.Primary))
	}
	New(entries, Options{Workers: 2}).Collect(context.Background(), domain.SearchCriteria{})
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunTimeoutKeepsFinishedSources(t *testing.T) {
	entries := []types.Entry{
		entry(fixed("quick", 2, 0), types.Primary),
		entry(fixed("slow", 2, time.Hour), types.Primary),
		entry(fixed("late", 2, 0), types.Secondary),
	}
	res := New(entries, Options{SourceTimeout: time.Hour, RunTimeout: 50 * time.Millisecond}).
		Collect(context.Background(), domain.SearchCriteria{})
	assert.Equal(t, 2, res.Counts[0].Records)
	assert.ErrorIs(t, res.Counts[1].Err, ErrSourceTimeout)
	assert.ErrorIs(t, res.Counts[2].Err, ErrSourceTimeout, "secondary phase starts after the deadline")
}

func TestNoSources(t *testing.T) {
	res := New(nil, Options{}).Collect(context.Background(), domain.SearchCriteria{})
	assert.Zero(t, res.Total())
	assert.Empty(t, res.Batches)
}

func TestSourceCountJSON(t *testing.T) {
	b, err := SourceCount{Source: "x", Phase: types.Secondary, Err: errors.New("boom"), Took: 1500 * time.Millisecond}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"x","phase":"secondary","records":0,"error":"boom","took_ms":1500}`, string(b))
}
