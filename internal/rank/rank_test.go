package rank

import (
	"math"
	"testing"

	"jobscout-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevanceScenario(t *testing.T) {
	rec := domain.JobRecord{
		Title:         "Senior Python Developer",
		Company:       "Initech",
		Location:      "Remote",
		Salary:        "$140,000",
		SalaryNumeric: 140000,
		Summary:       "Build Python services on AWS.",
	}
	c := domain.NewSearchCriteria("Python Developer", "Remote", "Python, AWS")

	// 15 title + 5 + 5 summary + 7 location + 5 senior + 8 remote + 10 salary + 12 tier
	assert.Equal(t, 67, Relevance(rec, c))
}

func TestRelevanceComponents(t *testing.T) {
	c := domain.SearchCriteria{Keywords: []string{" Go ", "", "rust"}, Location: "Berlin, Germany"}

	tests := []struct {
		name string
		rec  domain.JobRecord
		want int
	}{
		{"nothing", domain.JobRecord{Title: "Chef", Location: "Paris"}, 0},
		{"company hit", domain.JobRecord{Title: "Chef", Company: "Rust Belt Co", Location: "Paris"}, 8},
		{"both location terms", domain.JobRecord{Title: "Chef", Location: "Berlin, Germany"}, 14},
		{"senior wins over intern", domain.JobRecord{Title: "Lead Intern Mentor"}, 5},
		{"junior", domain.JobRecord{Title: "Entry level chef"}, 3},
		{"work from home", domain.JobRecord{Title: "Chef", Location: "Work From Home"}, 8},
		{"low salary", domain.JobRecord{Title: "Chef", SalaryNumeric: 40000}, 10},
		{"top tier", domain.JobRecord{Title: "Chef", SalaryNumeric: 150000}, 25},
		{"tier edge", domain.JobRecord{Title: "Chef", SalaryNumeric: 89999}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Relevance(tt.rec, c))
		})
	}
}

func TestSalaryTierBonus(t *testing.T) {
	assert.Equal(t, 15, SalaryTierBonus(200000))
	assert.Equal(t, 12, SalaryTierBonus(120000))
	assert.Equal(t, 8, SalaryTierBonus(90000))
	assert.Equal(t, 5, SalaryTierBonus(60000))
	assert.Equal(t, 0, SalaryTierBonus(59999))
}

func sample() []domain.JobRecord {
	return []domain.JobRecord{
		{Title: "B", Company: "x", RelevanceScore: 30, Priority: 1, Seq: 0},
		{Title: "A", Company: "x", RelevanceScore: 30, Priority: 1, Seq: 1},
		{Title: "C", Company: "y", RelevanceScore: 50, Priority: 2, Seq: 2},
		{Title: "D", Company: "y", RelevanceScore: 30, Priority: 0, Seq: 3},
		{Title: "E", Company: "z", RelevanceScore: 10, Priority: 0, Seq: 4},
	}
}

func titles(recs []domain.JobRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
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

func TestTopKBaselineOrder(t *testing.T) {
	in := sample()
	top := TopK(in, 3)
	assert.Equal(t, []string{"C", "D", "A"}, titles(top))
	assert.Equal(t, "B", in[0].Title, "input untouched")

	assert.Len(t, TopK(in, 99), 5)
	assert.Nil(t, TopK(in, 0))
}

func TestCombineWithoutScoresMatchesBaseline(t *testing.T) {
	in := sample()
	out := Combine(in, keys(TopK(in, 3)), nil)

	assert.Equal(t, titles(TopK(in, len(in))), titles(out))
	for i, r := range out {
		assert.Equal(t, i+1, r.Rank)
		assert.Nil(t, r.EnrichmentScore)
		assert.Equal(t, float64(r.RelevanceScore), r.FinalScore)
	}
}

func TestCombineBlendsOnlyTheSlice(t *testing.T) {
	in := sample()
	top := TopK(in, 2) // C, D
	scores := map[string]float64{
		domain.DedupKey("D", "y"): 100, // 0.6*30 + 40 = 58
		domain.DedupKey("C", "y"): 0,   // 30
		domain.DedupKey("E", "z"): 100, // not in slice
	}
	out := Combine(in, keys(top), scores)

	require.Len(t, out, 5)
	// C ties A and B on final score and wins on relevance.
	assert.Equal(t, []string{"D", "C", "A", "B", "E"}, titles(out))
	assert.InDelta(t, 58, out[0].FinalScore, 1e-9)
	require.NotNil(t, out[0].EnrichmentScore)
	assert.Equal(t, 100.0, *out[0].EnrichmentScore)

	c := out[1]
	assert.Equal(t, "C", c.Title)
	assert.InDelta(t, 30, c.FinalScore, 1e-9)

	e := out[4]
	assert.Nil(t, e.EnrichmentScore)
	assert.Equal(t, 10.0, e.FinalScore)
}

func TestCombineClampsAndDropsNaN(t *testing.T) {
	in := []domain.JobRecord{
		{Title: "A", Company: "c", RelevanceScore: 10},
		{Title: "B", Company: "c", RelevanceScore: 10},
	}
	scores := map[string]float64{
		domain.DedupKey("A", "c"): 250,
		domain.DedupKey("B", "c"): math.NaN(),
	}
	out := Combine(in, keys(in), scores)

	require.NotNil(t, out[0].EnrichmentScore)
	assert.Equal(t, 100.0, *out[0].EnrichmentScore)
	assert.InDelta(t, 46, out[0].FinalScore, 1e-9)
	assert.Nil(t, out[1].EnrichmentScore)
}

func TestCombineDenseRanksAndMonotoneScores(t *testing.T) {
	var in []domain.JobRecord
	scores := map[string]float64{}
	for i := 0; i < 40; i++ {
		r := domain.JobRecord{Title: string(rune('A' + i%26)), Company: string(rune('a' + i/26)), RelevanceScore: (i * 7) % 50, Seq: i}
		in = append(in, r)
		scores[r.Key()] = float64((i * 13) % 101)
	}
	out := Combine(in, keys(TopK(in, DefaultTopK)), scores)

	require.Len(t, out, 40)
	for i := range out {
		assert.Equal(t, i+1, out[i].Rank)
		if i > 0 {
			assert.LessOrEqual(t, out[i].FinalScore, out[i-1].FinalScore)
		}
	}
}
