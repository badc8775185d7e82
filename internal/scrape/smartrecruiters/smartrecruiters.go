package smartrecruiters

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/pager"
	"jobscout-engine/internal/scrape/util"
)

const (
	DefaultBaseURL = "https://api.smartrecruiters.com/v1/companies"
	pageSize       = 100
)

type Scraper struct {
	companies []domain.Company
	f         *util.Fetcher
	BaseURL   string
	// JobsURL is where postings are viewed; postings carry only ids.
	JobsURL string
}

func New(companies []domain.Company, f *util.Fetcher) *Scraper {
	return &Scraper{
		companies: companies,
		f:         f,
		BaseURL:   DefaultBaseURL,
		JobsURL:   "https://jobs.smartrecruiters.com",
	}
}

func (s *Scraper) Name() string { return "SmartRecruiters" }

// { "content": [...], "totalFound": N, "offset": O, "limit": L }
type postingsResponse struct {
	Content    []posting `json:"content"`
	TotalFound int       `json:"totalFound"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

type posting struct {
	ID           string    `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	ReleasedDate time.Time `json:"releasedDate"`
	Ref          string    `json:"ref"`
	Location     struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	TypeOfEmployment struct {
		Label string `json:"label"`
	} `json:"typeOfEmployment"`
}

// Fetch pages each company's postings with pages as the per-company budget.
// The API takes the search term as q, so no local filtering is needed.
func (s *Scraper) Fetch(ctx context.Context, c domain.SearchCriteria, pages int) ([]domain.RawRecord, error) {
	return util.PerCompany(ctx, "smartrecruiters", s.companies, 8, 20*time.Second,
		func(ctx context.Context, co domain.Company) ([]domain.RawRecord, error) {
			return s.fetchCompany(ctx, co, c.Term, pages)
		}), nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co domain.Company, term string, pages int) ([]domain.RawRecord, error) {
	slug := strings.TrimSpace(co.Slug)
	if slug == "" {
		return nil, fmt.Errorf("empty slug")
	}
	base := fmt.Sprintf("%s/%s/postings", strings.TrimRight(s.BaseURL, "/"), url.PathEscape(slug))

	total := -1
	opt := pager.Options{Source: "smartrecruiters:" + slug, Pages: pages}
	return pager.Collect(ctx, opt, func(ctx context.Context, page int) ([]domain.RawRecord, error) {
		offset := page * pageSize
		if total >= 0 && offset >= total {
			return nil, nil
		}
		q := url.Values{}
		q.Set("limit", fmt.Sprint(pageSize))
		q.Set("offset", fmt.Sprint(offset))
		if strings.TrimSpace(term) != "" {
			q.Set("q", term)
		}

		var pr postingsResponse
		if err := s.f.JSON(ctx, base+"?"+q.Encode(), &pr); err != nil {
			return nil, err
		}
		total = pr.TotalFound
		return s.toRecords(co, slug, pr.Content), nil
	})
}

func (s *Scraper) toRecords(co domain.Company, slug string, content []posting) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(content))
	for _, p := range content {
		title := strings.TrimSpace(p.Name)
		id := strings.TrimSpace(firstNonEmpty(p.ID, p.UUID, p.Ref))
		if title == "" || id == "" {
			continue
		}

		parts := nonEmpty(p.Location.City, p.Location.Region, p.Location.Country)
		if p.Location.Remote {
			parts = append([]string{"Remote"}, parts...)
		}
		at := p.ReleasedDate.UTC()
		if p.ReleasedDate.IsZero() {
			at = time.Now().UTC()
		}

		out = append(out, domain.RawRecord{
			Source:      "SmartRecruiters",
			Title:       title,
			Company:     co.DisplayName(),
			Location:    util.NormalizeLocation(strings.Join(parts, ", ")),
			JobType:     util.InferJobType(p.TypeOfEmployment.Label),
			URL:         fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.JobsURL, "/"), slug, id),
			RetrievedAt: at,
		})
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
