package scrape

import (
	"strings"

	"jobscout-engine/internal/domain"
)

// Blocklist drops postings by location or title substring. Empty lists keep
// everything.
type Blocklist struct {
	Locations []string
	Titles    []string
}

func (b Blocklist) Empty() bool {
	return len(lowered(b.Locations)) == 0 && len(lowered(b.Titles)) == 0
}

// ShouldKeep reports whether j passes the blocklist, with the reason when not.
func (b Blocklist) ShouldKeep(j domain.JobRecord) (keep bool, reason string) {
	loc := strings.ToLower(j.Location)
	for _, n := range lowered(b.Locations) {
		if strings.Contains(loc, n) {
			return false, "location"
		}
	}
	title := strings.ToLower(j.Title)
	for _, n := range lowered(b.Titles) {
		if strings.Contains(title, n) {
			return false, "title"
		}
	}
	return true, ""
}

// Apply keeps input order and counts drops per reason.
func (b Blocklist) Apply(in []domain.JobRecord) ([]domain.JobRecord, map[string]int) {
	if b.Empty() {
		return in, nil
	}
	dropped := map[string]int{}
	out := make([]domain.JobRecord, 0, len(in))
	for _, j := range in {
		if keep, reason := b.ShouldKeep(j); !keep {
			dropped[reason]++
			continue
		}
		out = append(out, j)
	}
	return out, dropped
}

func lowered(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
