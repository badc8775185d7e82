package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"
)

type RemoteOK struct {
	f   *util.Fetcher
	URL string
}

func NewRemoteOK(f *util.Fetcher) *RemoteOK {
	return &RemoteOK{f: f, URL: "https://remoteok.com/api"}
}

func (r *RemoteOK) Name() string { return "RemoteOK" }

type remoteOKJob struct {
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	SalaryMin   float64  `json:"salary_min"`
	SalaryMax   float64  `json:"salary_max"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Epoch       int64    `json:"epoch"`
}

func (r *RemoteOK) Fetch(ctx context.Context, c domain.SearchCriteria, _ int) ([]domain.RawRecord, error) {
	var raw []json.RawMessage
	if err := r.f.JSON(ctx, r.URL, &raw); err != nil {
		return nil, fmt.Errorf("remoteok: %w", err)
	}

	now := time.Now().UTC()
	var out []domain.RawRecord
	// the first element is a legal notice, not a job
	for i, msg := range raw {
		if i == 0 {
			continue
		}
		var j remoteOKJob
		if err := json.Unmarshal(msg, &j); err != nil || strings.TrimSpace(j.Position) == "" {
			continue
		}
		if !util.MatchesTerm(c.Term, j.Position, j.Company) {
			continue
		}

		loc := j.Location
		if strings.TrimSpace(loc) == "" {
			loc = "Remote"
		}
		at := now
		if j.Epoch > 0 {
			at = time.Unix(j.Epoch, 0).UTC()
		}
		out = append(out, domain.RawRecord{
			Source:      r.Name(),
			Title:       util.CleanText(j.Position),
			Company:     util.CleanText(j.Company),
			Location:    util.NormalizeLocation(loc),
			Salary:      salaryRange(j.SalaryMin, j.SalaryMax),
			JobType:     strings.Join(j.Tags, ", "),
			Summary:     util.Clip(util.HTMLText(j.Description), summaryLimit),
			URL:         j.URL,
			RetrievedAt: at,
		})
	}
	return out, nil
}

func salaryRange(min, max float64) string {
	switch {
	case min > 0 && max > 0:
		return fmt.Sprintf("$%.0f-$%.0f", min, max)
	case min > 0:
		return fmt.Sprintf("$%.0f", min)
	case max > 0:
		return fmt.Sprintf("$%.0f", max)
	}
	return ""
}
