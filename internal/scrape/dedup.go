package scrape

import "jobscout-engine/internal/domain"

// Dedupe keeps the first record per (title, company) key, in input order.
func Dedupe(in []domain.JobRecord) (out []domain.JobRecord, removed int) {
	seen := make(map[string]struct{}, len(in))
	out = make([]domain.JobRecord, 0, len(in))
	for _, r := range in {
		k := r.Key()
		if _, dup := seen[k]; dup {
			removed++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, removed
}
