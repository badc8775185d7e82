package boards

import (
	"fmt"
	"net/url"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/pager"
	"jobscout-engine/internal/scrape/util"
)

var IndeedSpec = CardSpec{
	Cards: "[data-jk]",
	Title: []Field{
		{Sel: "h2 a span[title]", Attr: "title"},
		{Sel: "h2 a span"},
	},
	Company:  text(`[data-testid="company-name"]`, ".companyName"),
	Location: text(`[data-testid="job-location"]`, `[data-testid="text-location"]`, ".companyLocation"),
	Salary: text(
		`[data-testid="attribute_snippet_testid"]`,
		".salary-snippet-container",
		".attribute_snippet",
		".salaryText",
		`[data-testid="job-salary"]`,
		".estimated-salary",
	),
	SalaryNeedsIndicator: true,
	Summary:              text(".slider_container .slider_item", `[data-testid="job-snippet"]`, ".job-snippet"),
	JobType:              text(`[data-testid="attribute_snippet_testid"]`, ".attribute_snippet"),
	Link:                 attr("href", "h2 a"),
}

func IndeedURL(c domain.SearchCriteria, page int) string {
	return fmt.Sprintf("https://www.indeed.com/jobs?q=%s&l=%s&start=%d",
		url.QueryEscape(c.Term), url.QueryEscape(c.Location), page*10)
}

func Indeed(f *util.Fetcher, pacing pager.Options) *Board {
	return New("Indeed", IndeedSpec, IndeedURL, f, pacing)
}
