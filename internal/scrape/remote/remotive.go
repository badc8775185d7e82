// Package remote holds the remote-work aggregators. They return everything
// they list, so results are filtered by the search term locally.
package remote

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"
)

const summaryLimit = 300

type Remotive struct {
	f   *util.Fetcher
	URL string
}

func NewRemotive(f *util.Fetcher) *Remotive {
	return &Remotive{f: f, URL: "https://remotive.com/api/remote-jobs"}
}

func (r *Remotive) Name() string { return "Remotive" }

type remotiveResponse struct {
	Jobs []struct {
		Title                     string `json:"title"`
		CompanyName               string `json:"company_name"`
		CandidateRequiredLocation string `json:"candidate_required_location"`
		Salary                    string `json:"salary"`
		JobType                   string `json:"job_type"`
		Description               string `json:"description"`
		URL                       string `json:"url"`
	} `json:"jobs"`
}

func (r *Remotive) Fetch(ctx context.Context, c domain.SearchCriteria, _ int) ([]domain.RawRecord, error) {
	u := r.URL
	if term := strings.TrimSpace(c.Term); term != "" {
		u += "?search=" + url.QueryEscape(term)
	}

	var res remotiveResponse
	if err := r.f.JSON(ctx, u, &res); err != nil {
		return nil, fmt.Errorf("remotive: %w", err)
	}

	now := time.Now().UTC()
	var out []domain.RawRecord
	for _, j := range res.Jobs {
		if !util.MatchesTerm(c.Term, j.Title) {
			continue
		}
		loc := j.CandidateRequiredLocation
		if strings.TrimSpace(loc) == "" {
			loc = "Remote"
		}
		out = append(out, domain.RawRecord{
			Source:      r.Name(),
			Title:       util.CleanText(j.Title),
			Company:     util.CleanText(j.CompanyName),
			Location:    util.NormalizeLocation(loc),
			Salary:      util.CleanText(j.Salary),
			JobType:     jobType(j.JobType),
			Summary:     util.Clip(util.HTMLText(j.Description), summaryLimit),
			URL:         j.URL,
			RetrievedAt: now,
		})
	}
	return out, nil
}

// jobType maps API enums like "full_time" onto the labels the boards use.
func jobType(raw string) string {
	s := strings.ReplaceAll(strings.ToLower(raw), "_", "-")
	if jt := util.InferJobType(s); jt != "" {
		return jt
	}
	return util.CleanText(raw)
}
