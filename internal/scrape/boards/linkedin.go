package boards

import (
	"fmt"
	"net/url"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/pager"
	"jobscout-engine/internal/scrape/util"
)

// LinkedInSpec reads the public guest search page, which needs no login.
var LinkedInSpec = CardSpec{
	Cards:    "div.base-card, li.result-card",
	Title:    text("h3.base-search-card__title", "h3.result-card__title"),
	Company:  text("h4.base-search-card__subtitle", "h4.result-card__subtitle"),
	Location: text("span.job-search-card__location", "span.result-card__location"),
	Salary: text(
		".job-search-card__salary-info",
		".result-card__salary",
		".job-details-salary",
		`[data-test="job-salary"]`,
	),
	Summary: text("p.job-search-card__snippet", "p.result-card__snippet"),
	Link:    attr("href", "a.base-card__full-link", "a.result-card__full-card-link"),
}

func LinkedInURL(c domain.SearchCriteria, page int) string {
	return fmt.Sprintf("https://www.linkedin.com/jobs/search?keywords=%s&location=%s&start=%d",
		url.QueryEscape(c.Term), url.QueryEscape(c.Location), page*25)
}

func LinkedIn(f *util.Fetcher, pacing pager.Options) *Board {
	return New("LinkedIn", LinkedInSpec, LinkedInURL, f, pacing)
}
