package boards

import (
	"fmt"
	"net/url"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/pager"
	"jobscout-engine/internal/scrape/util"
)

var CareerBuilderSpec = CardSpec{
	Cards:              `[data-testid="job-card"], .data-results-content, .job-row, .job-card`,
	Title:              text(`[data-testid="job-title"] a`, ".job-title a", "h2 a"),
	Company:            text(`[data-testid="job-company"]`, ".company-name", ".data-details span"),
	Location:           text(`[data-testid="job-location"]`, ".job-location", ".data-details .location"),
	Salary:             text(`[data-testid="job-salary"]`, ".salary", ".data-details .salary", ".pay-range"),
	Summary:            text(`[data-testid="job-summary"]`, ".job-summary", ".data-details p"),
	Link:               attr("href", `[data-testid="job-title"] a`, ".job-title a", "h2 a"),
	LocationFromSearch: true,
	MaxCards:           15,
	SummaryLimit:       300,
}

func CareerBuilderURL(c domain.SearchCriteria, page int) string {
	return fmt.Sprintf("https://www.careerbuilder.com/jobs?keywords=%s&location=%s&page_number=%d",
		url.QueryEscape(c.Term), url.QueryEscape(c.Location), page+1)
}

func CareerBuilder(f *util.Fetcher, pacing pager.Options) *Board {
	return New("CareerBuilder", CareerBuilderSpec, CareerBuilderURL, f, pacing)
}
