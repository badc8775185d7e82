package boards

import (
	"fmt"
	"net/url"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/pager"
	"jobscout-engine/internal/scrape/util"
)

var GlassdoorSpec = CardSpec{
	Cards:              `li[data-test="jobListing"], div[data-test="jobListing"], li.react-job-listing`,
	Title:              text(`a[data-test="job-title"]`, "a.jobLink"),
	Company:            text(`span[data-test="employer-name"]`, "div.jobHeader"),
	Location:           text(`span[data-test="job-location"]`, "span.loc"),
	Salary:             text(`span[data-test="detailSalary"]`),
	Link:               attr("href", `a[data-test="job-title"]`, "a.jobLink"),
	LocationFromSearch: true,
}

// GlassdoorURL pages are 1-based on the site.
func GlassdoorURL(c domain.SearchCriteria, page int) string {
	return fmt.Sprintf("https://www.glassdoor.com/Job/jobs.htm?sc.keyword=%s&locKeyword=%s&p=%d",
		url.QueryEscape(c.Term), url.QueryEscape(c.Location), page+1)
}

func Glassdoor(f *util.Fetcher, pacing pager.Options) *Board {
	return New("Glassdoor", GlassdoorSpec, GlassdoorURL, f, pacing)
}
