package lever

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

const DefaultBaseURL = "https://api.lever.co/v0/postings"

type Scraper struct {
	companies []domain.Company
	f         *util.Fetcher
	BaseURL   string
}

func New(companies []domain.Company, f *util.Fetcher) *Scraper {
	return &Scraper{companies: companies, f: f, BaseURL: DefaultBaseURL}
}

func (s *Scraper) Name() string { return "Lever" }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"` // title
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"` // ms epoch
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
	SalaryRange      *struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
		Interval string  `json:"interval"`
	} `json:"salaryRange"`
}

func (s *Scraper) Fetch(ctx context.Context, c domain.SearchCriteria, _ int) ([]domain.RawRecord, error) {
	recs := util.PerCompany(ctx, "lever", s.companies, 8, 10*time.Second, s.fetchCompany)

	out := recs[:0]
	for _, r := range recs {
		if util.MatchesTerm(c.Term, r.Title) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co domain.Company) ([]domain.RawRecord, error) {
	apiURL := fmt.Sprintf("%s/%s?mode=json", strings.TrimRight(s.BaseURL, "/"), co.Slug)

	var postings []leverPosting
	if err := s.f.JSON(ctx, apiURL, &postings); err != nil {
		return nil, fmt.Errorf("lever: %w", err)
	}

	out := make([]domain.RawRecord, 0, len(postings))
	for _, p := range postings {
		if p.ID == "" || p.HostedURL == "" || strings.TrimSpace(p.Text) == "" {
			continue
		}
		at := time.Now().UTC()
		if p.CreatedAt > 0 {
			at = time.UnixMilli(p.CreatedAt).UTC()
		}
		summary := util.Clip(util.CleanText(p.DescriptionPlain), 500)

		out = append(out, domain.RawRecord{
			Source:      "Lever",
			Title:       strings.TrimSpace(p.Text),
			Company:     co.DisplayName(),
			Location:    util.NormalizeLocation(p.Categories.Location),
			Salary:      salaryText(p),
			JobType:     util.InferJobType(p.Categories.Commitment, p.Text),
			Summary:     summary,
			URL:         p.HostedURL,
			RetrievedAt: at,
		})
	}

	for i := range out {
		if out[i].Location == "" {
			_ = s.hydrateJob(ctx, &out[i])
		}
	}
	return out, nil
}

func salaryText(p leverPosting) string {
	if p.SalaryRange != nil && p.SalaryRange.Max > 0 {
		unit := "year"
		if strings.Contains(strings.ToLower(p.SalaryRange.Interval), "hour") {
			unit = "hour"
		}
		return fmt.Sprintf("$%.0f - $%.0f per %s", p.SalaryRange.Min, p.SalaryRange.Max, unit)
	}
	return util.ExtractSalaryText(p.DescriptionPlain)
}

// hydrateJob reads the hosted page when the API left the location blank.
func (s *Scraper) hydrateJob(ctx context.Context, j *domain.RawRecord) error {
	doc, err := s.f.Document(ctx, j.URL)
	if err != nil {
		return err
	}
	j.Location = locationFromPage(doc)
	return nil
}

func locationFromPage(doc *goquery.Document) string {
	for _, sel := range []string{".posting-categories .location", ".posting-categories li"} {
		if t := util.CleanText(doc.Find(sel).First().Text()); t != "" {
			return util.NormalizeLocation(t)
		}
	}
	return util.FindLocation(doc.Selection)
}
