package boards

import (
	"fmt"
	"net/url"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/pager"
	"jobscout-engine/internal/scrape/util"
)

var ZipRecruiterSpec = CardSpec{
	Cards:              `.job_content, [data-testid="job-card"], .jobList-item, .job-card`,
	Title:              text(`[data-testid="job-title"] a`, ".job_title a", "h2 a"),
	Company:            text(`[data-testid="job-company"]`, ".company_name", ".company"),
	Location:           text(`[data-testid="job-location"]`, ".job_location", ".location"),
	Salary:             text(`[data-testid="job-salary"]`, ".job_salary", ".salary", ".salary-range", ".compensation"),
	Summary:            text(`[data-testid="job-summary"]`, ".job_snippet", ".summary"),
	Link:               attr("href", `[data-testid="job-title"] a`, ".job_title a", "h2 a"),
	LocationFromSearch: true,
	MaxCards:           15,
	SummaryLimit:       300,
}

func ZipRecruiterURL(c domain.SearchCriteria, page int) string {
	return fmt.Sprintf("https://www.ziprecruiter.com/jobs-search?search=%s&location=%s&page=%d",
		url.QueryEscape(c.Term), url.QueryEscape(c.Location), page+1)
}

func ZipRecruiter(f *util.Fetcher, pacing pager.Options) *Board {
	return New("ZipRecruiter", ZipRecruiterSpec, ZipRecruiterURL, f, pacing)
}
