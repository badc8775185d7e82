package boards

import (
	"fmt"
	"net/url"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/pager"
	"jobscout-engine/internal/scrape/util"
)

var MonsterSpec = CardSpec{
	Cards:              `[data-testid="svx-job-card"], .job-cardstyle__JobCardContainer, .jobcard, .job-card`,
	Title:              text(`[data-testid="svx-job-title"] a`, ".jobTitle a", "h2 a"),
	Company:            text(`[data-testid="svx-job-company"]`, ".company", ".companyName"),
	Location:           text(`[data-testid="svx-job-location"]`, ".location", ".jobLocation"),
	Salary:             text(`[data-testid="svx-job-salary"]`, ".salary", ".jobSalary", ".salary-range"),
	Summary:            text(`[data-testid="svx-job-summary"]`, ".summary", ".jobSnippet"),
	Link:               attr("href", `[data-testid="svx-job-title"] a`, ".jobTitle a", "h2 a"),
	LocationFromSearch: true,
	MaxCards:           15,
	SummaryLimit:       300,
}

func MonsterURL(c domain.SearchCriteria, page int) string {
	return fmt.Sprintf("https://www.monster.com/jobs/search?q=%s&where=%s&page=%d",
		url.QueryEscape(c.Term), url.QueryEscape(c.Location), page+1)
}

func Monster(f *util.Fetcher, pacing pager.Options) *Board {
	return New("Monster", MonsterSpec, MonsterURL, f, pacing)
}
