package rank

import (
	"cmp"
	"math"
	"slices"

	"jobscout-engine/internal/domain"
)

// Blend weights of the final score.
const (
	RelevanceWeight  = 0.6
	EnrichmentWeight = 0.4
)

const DefaultTopK = 20

func baselineOrder(a, b domain.JobRecord) int {
	if c := cmp.Compare(b.RelevanceScore, a.RelevanceScore); c != 0 {
		return c
	}
	return tieBreak(a, b)
}

func finalOrder(a, b domain.JobRecord) int {
	if c := cmp.Compare(b.FinalScore, a.FinalScore); c != 0 {
		return c
	}
	return baselineOrder(a, b)
}

func tieBreak(a, b domain.JobRecord) int {
	return cmp.Or(
		cmp.Compare(a.Priority, b.Priority),
		cmp.Compare(a.Title, b.Title),
		cmp.Compare(a.Company, b.Company),
		cmp.Compare(a.Seq, b.Seq),
	)
}

// TopK returns the first k records in baseline order (relevance descending).
// The input is not modified. k <= 0 selects nothing.
func TopK(recs []domain.JobRecord, k int) []domain.JobRecord {
	if k <= 0 {
		return nil
	}
	sorted := slices.Clone(recs)
	slices.SortFunc(sorted, baselineOrder)
	if k < len(sorted) {
		sorted = sorted[:k]
	}
	return sorted
}

// Combine blends enrichment scores into the records named by slice and
// returns every record in final order with dense ranks 1..N.
//
// A record in slice with a score gets FinalScore = 0.6*relevance +
// 0.4*score. Every other record, including slice members the enrichment
// stage had nothing for, keeps FinalScore = relevance and a nil
// EnrichmentScore. Scores outside [0,100] are clamped; NaN counts as missing.
func Combine(recs []domain.JobRecord, slice []string, scores map[string]float64) []domain.JobRecord {
	inSlice := make(map[string]bool, len(slice))
	for _, k := range slice {
		inSlice[k] = true
	}

	out := make([]domain.JobRecord, len(recs))
	for i, r := range recs {
		r.EnrichmentScore = nil
		r.FinalScore = float64(r.RelevanceScore)

		key := r.Key()
		if s, ok := scores[key]; ok && inSlice[key] && !math.IsNaN(s) {
			s = clamp(s, 0, 100)
			r.EnrichmentScore = &s
			r.FinalScore = RelevanceWeight*float64(r.RelevanceScore) + EnrichmentWeight*s
		}
		out[i] = r
	}

	slices.SortFunc(out, finalOrder)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
