package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobscout-engine/internal/collect"
	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/enrich"
	"jobscout-engine/internal/scrape"
	"jobscout-engine/internal/scrape/email"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func src(name string, recs ...domain.RawRecord) types.Entry {
	return types.Entry{Pages: 1, Source: types.SourceFunc{ID: name, Fn: func(context.Context, domain.SearchCriteria, int) ([]domain.RawRecord, error) {
		return recs, nil
	}}}
}

func failing(name string) types.Entry {
	return types.Entry{Pages: 1, Source: types.SourceFunc{ID: name, Fn: func(context.Context, domain.SearchCriteria, int) ([]domain.RawRecord, error) {
		return nil, errors.New("blocked")
	}}}
}

func raw(source, title, company, location, salary string) domain.RawRecord {
	return domain.RawRecord{Source: source, Title: title, Company: company, Location: location, Salary: salary}
}

type failingStage struct{}

func (failingStage) Name() string { return "down" }
func (failingStage) Enrich(context.Context, []domain.JobRecord, domain.SearchCriteria) (enrich.Result, error) {
	return enrich.Result{}, errors.New("service unavailable")
}

type fixedStage map[string]float64

func (fixedStage) Name() string { return "fixed" }
func (s fixedStage) Enrich(context.Context, []domain.JobRecord, domain.SearchCriteria) (enrich.Result, error) {
	return enrich.Result{Scores: s, Insights: "hiring is steady"}, nil
}

func entries() []types.Entry {
	return []types.Entry{
		src("Indeed",
			raw("Indeed", "Senior Python Developer", "Initech", "Remote", "$140,000"),
			raw("Indeed", "Go Developer", "Globex", "Austin, TX", ""),
		),
		failing("LinkedIn"),
		src("Glassdoor",
			raw("Glassdoor", "senior  python developer", "INITECH", "Remote", "$150,000"),
			raw("Glassdoor", "Junior Python Developer", "Hooli", "Remote", "$60,000"),
		),
		failing("Monster"),
	}
}

func TestRunDedupesInPriorityOrderAndRanks(t *testing.T) {
	p := New(collect.New(entries(), collect.Options{SourceTimeout: time.Second}), Options{})
	res := p.Run(context.Background(), Request{Term: "Python Developer", Location: "Remote", Keywords: "python"})

	require.False(t, res.Empty())
	require.Len(t, res.Jobs, 3)
	assert.Equal(t, 4, res.Summary.Collected)
	assert.Equal(t, 1, res.Summary.Duplicates)
	assert.Len(t, res.Summary.Sources, 4)

	first := res.Jobs[0]
	assert.Equal(t, "Senior Python Developer", first.Title)
	assert.Equal(t, "Indeed", first.Source, "earlier source wins the duplicate")
	assert.Equal(t, 140000.0, first.SalaryNumeric)
	assert.Equal(t, 1, first.Rank)

	for i, j := range res.Jobs {
		assert.Equal(t, i+1, j.Rank)
		assert.Nil(t, j.EnrichmentScore)
		assert.Equal(t, float64(j.RelevanceScore), j.FinalScore)
		assert.Equal(t, "Python Developer", j.SearchTerm)
	}
	assert.Equal(t, "Go Developer", res.Jobs[2].Title)
	assert.Equal(t, domain.NotSpecified, res.Jobs[2].Salary)
}

func TestRunFailingEnrichmentKeepsBaseline(t *testing.T) {
	col := collect.New(entries(), collect.Options{SourceTimeout: time.Second})
	base := New(col, Options{}).Run(context.Background(), Request{Keywords: "python"})
	got := New(col, Options{Stage: failingStage{}}).Run(context.Background(), Request{Keywords: "python", Enrich: true})

	require.Len(t, got.Jobs, len(base.Jobs))
	for i := range got.Jobs {
		assert.Equal(t, base.Jobs[i].Key(), got.Jobs[i].Key())
		assert.Equal(t, float64(got.Jobs[i].RelevanceScore), got.Jobs[i].FinalScore)
		assert.Nil(t, got.Jobs[i].EnrichmentScore)
	}
	assert.Equal(t, "down", got.Summary.Enrichment)
	assert.Zero(t, got.Summary.Enriched)
}

func TestRunBlendsEnrichmentForTopK(t *testing.T) {
	col := collect.New(entries(), collect.Options{SourceTimeout: time.Second})
	stage := fixedStage{
		domain.DedupKey("Go Developer", "Globex"):           100,
		domain.DedupKey("Junior Python Developer", "Hooli"): 100,
	}
	res := New(col, Options{Stage: stage, TopK: 2}).Run(context.Background(), Request{Keywords: "python", Enrich: true})

	require.Len(t, res.Jobs, 3)
	assert.Equal(t, "hiring is steady", res.Insights)
	assert.Equal(t, 1, res.Summary.Enriched, "only the top-2 slice is blended")

	for _, j := range res.Jobs {
		if j.Title == "Go Developer" {
			assert.Nil(t, j.EnrichmentScore)
		}
		if j.Title == "Junior Python Developer" {
			require.NotNil(t, j.EnrichmentScore)
			assert.InDelta(t, 0.6*float64(j.RelevanceScore)+40, j.FinalScore, 1e-9)
		}
	}
}

func TestRunEnrichmentOffByRequest(t *testing.T) {
	col := collect.New(entries(), collect.Options{SourceTimeout: time.Second})
	res := New(col, Options{Stage: fixedStage{}}).Run(context.Background(), Request{})
	assert.Empty(t, res.Summary.Enrichment)
}

func TestRunBlocklistAndEmpty(t *testing.T) {
	col := collect.New(entries(), collect.Options{SourceTimeout: time.Second})
	res := New(col, Options{Blocklist: scrape.Blocklist{Locations: []string{"remote"}}}).Run(context.Background(), Request{})
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, 2, res.Summary.Filtered["location"])

	empty := New(collect.New([]types.Entry{failing("a")}, collect.Options{}), Options{}).Run(context.Background(), Request{})
	assert.True(t, empty.Empty())
	assert.Equal(t, domain.DefaultSearchTerm, empty.Summary.Criteria.Term)
	assert.Equal(t, domain.DefaultLocation, empty.Summary.Criteria.Location)
}

func TestFromConfigWithNoSources(t *testing.T) {
	cfg := config.Default()
	for id, sc := range cfg.Sources {
		sc.Enabled = false
		cfg.Sources[id] = sc
	}
	p := FromConfig(context.Background(), cfg, nil)
	res := p.Run(context.Background(), Request{Term: "go"})
	assert.True(t, res.Empty())
	assert.Empty(t, res.Summary.Sources)
}

func TestFromConfigWiresEmailSource(t *testing.T) {
	keyring.MockInit()
	t.Setenv(secrets.EnvIMAPPassword, "")

	cfg := config.Default()
	for id, sc := range cfg.Sources {
		sc.Enabled = id == "email"
		cfg.Sources[id] = sc
	}
	cfg.Email.Username = "me@example.com"
	cfg.Enrich.Enabled = false

	entries := scrape.BuildSources(cfg, scrape.Deps{Fetcher: scrape.NewFetcher(cfg)})
	require.Len(t, entries, 1)
	assert.Equal(t, email.SourceName, entries[0].Source.Name())
	assert.Equal(t, types.Secondary, entries[0].Phase)

	// No password anywhere: the source fails before dialing and the run is
	// empty rather than broken.
	var seen []collect.SourceCount
	res := FromConfig(context.Background(), cfg, func(sc collect.SourceCount) { seen = append(seen, sc) }).
		Run(context.Background(), Request{Term: "go"})

	assert.True(t, res.Empty())
	require.Len(t, res.Summary.Sources, 1)
	assert.Equal(t, email.SourceName, res.Summary.Sources[0].Source)
	assert.ErrorIs(t, res.Summary.Sources[0].Err, secrets.ErrNotFound)
	assert.Len(t, seen, 1)
}
