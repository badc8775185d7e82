package greenhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

const DefaultBaseURL = "https://boards.greenhouse.io"

type Scraper struct {
	companies []domain.Company
	f         *util.Fetcher
	// BaseURL is overridable for tests.
	BaseURL string
}

func New(companies []domain.Company, f *util.Fetcher) *Scraper {
	return &Scraper{companies: companies, f: f, BaseURL: DefaultBaseURL}
}

func (s *Scraper) Name() string { return "Greenhouse" }

// Fetch reads every configured board and keeps postings matching the search
// term. The page budget does not apply: a board is a single page.
func (s *Scraper) Fetch(ctx context.Context, c domain.SearchCriteria, _ int) ([]domain.RawRecord, error) {
	recs := util.PerCompany(ctx, "greenhouse", s.companies, 4, 20*time.Second, s.fetchCompany)

	out := recs[:0]
	for _, r := range recs {
		if util.MatchesTerm(c.Term, r.Title) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Scraper) fetchCompany(ctx context.Context, co domain.Company) ([]domain.RawRecord, error) {
	boardURL := fmt.Sprintf("%s/%s", strings.TrimRight(s.BaseURL, "/"), co.Slug)

	doc, err := s.f.Document(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("greenhouse board: %w", err)
	}
	now := time.Now().UTC()

	seen := map[string]bool{}
	var jobs []domain.RawRecord
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := util.AbsURL(boardURL, href)
		if !strings.Contains(strings.ToLower(abs), "/jobs/") {
			return
		}
		id := extractJobID(abs)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		title := util.CleanText(a.Text())
		if util.LooksLikeJunkTitle(title) {
			title = ""
		}
		// classic boards: <div class="opening"><a/><span class="location"/></div>
		loc := util.CleanText(a.Closest(".opening").Find(".location").First().Text())

		jobs = append(jobs, domain.RawRecord{
			Source:      "Greenhouse",
			Title:       title,
			Company:     co.DisplayName(),
			Location:    util.NormalizeLocation(loc),
			URL:         abs,
			RetrievedAt: now,
		})
	})

	out := jobs[:0]
	for i := range jobs {
		if jobs[i].Title == "" || jobs[i].Location == "" {
			// keep the minimal entry when the job page fails
			_ = s.hydrateJob(ctx, &jobs[i])
		}
		if jobs[i].Title != "" {
			out = append(out, jobs[i])
		}
	}
	return out, nil
}

func (s *Scraper) hydrateJob(ctx context.Context, j *domain.RawRecord) error {
	doc, err := s.f.Document(ctx, j.URL)
	if err != nil {
		return err
	}

	if j.Title == "" {
		j.Title = util.CleanText(doc.Find("h1").First().Text())
	}
	if j.Location == "" {
		j.Location = util.FindLocation(doc.Selection)
	}

	body := util.CleanText(doc.Find("#content").First().Text())
	if j.Summary == "" && body != "" {
		j.Summary = util.Clip(body, 500)
	}
	if j.Salary == "" {
		j.Salary = util.ExtractSalaryText(body)
	}
	j.JobType = util.InferJobType(j.Title, body)
	return nil
}

func extractJobID(u string) string {
	parts := strings.SplitN(u, "/jobs/", 2)
	if len(parts) < 2 {
		return ""
	}
	end := 0
	for end < len(parts[1]) && parts[1][end] >= '0' && parts[1][end] <= '9' {
		end++
	}
	return parts[1][:end]
}
