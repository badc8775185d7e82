package scrape

import (
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"
)

// Canonicalize maps one raw record onto the canonical schema. It never fails:
// missing text fields become domain.NotSpecified and an unparseable salary 0.
// priority is the source's registry position and seq its arrival index; both
// only break ties later on.
func Canonicalize(raw domain.RawRecord, c domain.SearchCriteria, priority, seq int) domain.JobRecord {
	salary := orNotSpecified(raw.Salary)

	scrapedAt := raw.RetrievedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}

	return domain.JobRecord{
		Title:          orNotSpecified(raw.Title),
		Company:        orNotSpecified(raw.Company),
		Location:       orNotSpecified(raw.Location),
		Salary:         salary,
		SalaryNumeric:  util.NormalizeSalary(salary),
		JobType:        orNotSpecified(raw.JobType),
		Summary:        util.CleanText(raw.Summary),
		URL:            orNotSpecified(util.CanonicalURL(raw.URL)),
		Source:         orNotSpecified(raw.Source),
		ScrapedAt:      scrapedAt,
		SearchTerm:     c.Term,
		SearchLocation: c.Location,
		Priority:       priority,
		Seq:            seq,
	}
}

func orNotSpecified(s string) string {
	if s = util.CleanText(s); s == "" {
		return domain.NotSpecified
	}
	return s
}
