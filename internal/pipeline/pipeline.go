// Package pipeline runs one search end to end: collection, canonicalization,
// deduplication, scoring, optional enrichment and the final ranking.
package pipeline

import (
	"context"
	"log"
	"time"

	"jobscout-engine/internal/collect"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/enrich"
	"jobscout-engine/internal/rank"
	"jobscout-engine/internal/scrape"
)

// Collector is the collection step; *collect.Collector implements it.
type Collector interface {
	Collect(ctx context.Context, crit domain.SearchCriteria) collect.Result
}

type Request struct {
	Term     string `json:"term"`
	Location string `json:"location"`
	// Keywords is comma separated; empty means the search term.
	Keywords string `json:"keywords"`
	Enrich   bool   `json:"enrich"`
}

type Summary struct {
	Criteria   domain.SearchCriteria `json:"criteria"`
	Sources    []collect.SourceCount `json:"sources"`
	Collected  int                   `json:"collected"`
	Duplicates int                   `json:"duplicates"`
	Filtered   map[string]int        `json:"filtered,omitempty"`
	Kept       int                   `json:"kept"`
	Enrichment string                `json:"enrichment,omitempty"`
	Enriched   int                   `json:"enriched"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
}

type Result struct {
	// Jobs are in final order, Rank 1..N.
	Jobs     []domain.JobRecord `json:"jobs"`
	Insights string             `json:"insights,omitempty"`
	Summary  Summary            `json:"summary"`
}

// Empty reports the only terminal condition a run has: nothing survived.
func (r Result) Empty() bool { return len(r.Jobs) == 0 }

type Options struct {
	Stage         enrich.Stage
	TopK          int
	EnrichTimeout time.Duration
	Blocklist     scrape.Blocklist
}

type Pipeline struct {
	collector Collector
	opt       Options
}

func New(c Collector, opt Options) *Pipeline {
	if opt.TopK <= 0 {
		opt.TopK = rank.DefaultTopK
	}
	return &Pipeline{collector: c, opt: opt}
}

// Run never fails; sources and enrichment degrade on their own and an empty
// outcome is reported through Result.Empty.
func (p *Pipeline) Run(ctx context.Context, req Request) Result {
	crit := domain.NewSearchCriteria(req.Term, req.Location, req.Keywords)
	sum := Summary{Criteria: crit, StartedAt: time.Now().UTC()}
	log.Printf("[pipeline] start term=%q location=%q keywords=%q enrich=%v", crit.Term, crit.Location, crit.Keywords, req.Enrich)

	col := p.collector.Collect(ctx, crit)
	sum.Sources = col.Counts

	recs := canonicalize(col.Batches, crit)
	sum.Collected = len(recs)

	recs, sum.Duplicates = scrape.Dedupe(recs)
	recs, sum.Filtered = p.opt.Blocklist.Apply(recs)
	sum.Kept = len(recs)

	for i := range recs {
		recs[i].RelevanceScore = rank.Relevance(recs[i], crit)
	}

	top := rank.TopK(recs, p.opt.TopK)
	var er enrich.Result
	if req.Enrich && p.opt.Stage != nil && len(top) > 0 {
		sum.Enrichment = p.opt.Stage.Name()
		er = enrich.Apply(ctx, p.opt.Stage, top, crit, p.opt.EnrichTimeout)
	}

	jobs := rank.Combine(recs, keys(top), er.Scores)
	for _, j := range jobs {
		if j.EnrichmentScore != nil {
			sum.Enriched++
		}
	}
	sum.FinishedAt = time.Now().UTC()

	log.Printf("[pipeline] done collected=%d duplicates=%d filtered=%d kept=%d enriched=%d failed_sources=%d took=%s",
		sum.Collected, sum.Duplicates, sum.Collected-sum.Duplicates-sum.Kept, sum.Kept, sum.Enriched, col.Failed(),
		sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))
	if len(jobs) == 0 {
		log.Printf("[pipeline] no jobs found for term=%q location=%q", crit.Term, crit.Location)
	}

	return Result{Jobs: jobs, Insights: er.Insights, Summary: sum}
}

// canonicalize flattens the batches in priority order; seq counts records
// across all of them.
func canonicalize(batches []collect.Batch, crit domain.SearchCriteria) []domain.JobRecord {
	var out []domain.JobRecord
	for _, b := range batches {
		for _, raw := range b.Records {
			out = append(out, scrape.Canonicalize(raw, crit, b.Priority, len(out)))
		}
	}
	return out
}

func keys(recs []domain.JobRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Key()
	}
	return out
}
