package scrape

import (
	"time"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/boards"
	"jobscout-engine/internal/scrape/email"
	"jobscout-engine/internal/scrape/greenhouse"
	"jobscout-engine/internal/scrape/lever"
	"jobscout-engine/internal/scrape/pager"
	"jobscout-engine/internal/scrape/remote"
	"jobscout-engine/internal/scrape/smartrecruiters"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
	"jobscout-engine/internal/scrape/workday"
)

// Deps are the shared collaborators every source is built from.
type Deps struct {
	Fetcher *util.Fetcher
	// IMAPPassword is consulted only when the email source actually runs.
	IMAPPassword func() (string, error)
}

type factory struct {
	id    string
	phase types.Phase
	build func(cfg config.Config, d Deps, pacing pager.Options) types.Source
}

// catalog is the source-priority order: on a dedup collision the record from
// the earlier source wins.
var catalog = []factory{
	{"indeed", types.Primary, func(_ config.Config, d Deps, p pager.Options) types.Source { return boards.Indeed(d.Fetcher, p) }},
	{"linkedin", types.Primary, func(_ config.Config, d Deps, p pager.Options) types.Source { return boards.LinkedIn(d.Fetcher, p) }},
	{"glassdoor", types.Primary, func(_ config.Config, d Deps, p pager.Options) types.Source { return boards.Glassdoor(d.Fetcher, p) }},
	{"monster", types.Primary, func(_ config.Config, d Deps, p pager.Options) types.Source { return boards.Monster(d.Fetcher, p) }},
	{"ziprecruiter", types.Primary, func(_ config.Config, d Deps, p pager.Options) types.Source { return boards.ZipRecruiter(d.Fetcher, p) }},
	{"careerbuilder", types.Primary, func(_ config.Config, d Deps, p pager.Options) types.Source { return boards.CareerBuilder(d.Fetcher, p) }},

	{"remotive", types.Secondary, func(_ config.Config, d Deps, _ pager.Options) types.Source { return remote.NewRemotive(d.Fetcher) }},
	{"remoteok", types.Secondary, func(_ config.Config, d Deps, _ pager.Options) types.Source { return remote.NewRemoteOK(d.Fetcher) }},
	{"weworkremotely", types.Secondary, func(_ config.Config, d Deps, _ pager.Options) types.Source {
		return remote.NewWeWorkRemotely(d.Fetcher)
	}},
	{"greenhouse", types.Secondary, func(cfg config.Config, d Deps, _ pager.Options) types.Source {
		return nilIfNoCompanies(cfg.Companies.Greenhouse, greenhouse.New(cfg.Companies.Greenhouse, d.Fetcher))
	}},
	{"lever", types.Secondary, func(cfg config.Config, d Deps, _ pager.Options) types.Source {
		return nilIfNoCompanies(cfg.Companies.Lever, lever.New(cfg.Companies.Lever, d.Fetcher))
	}},
	{"smartrecruiters", types.Secondary, func(cfg config.Config, d Deps, _ pager.Options) types.Source {
		return nilIfNoCompanies(cfg.Companies.SmartRecruiters, smartrecruiters.New(cfg.Companies.SmartRecruiters, d.Fetcher))
	}},
	{"workday", types.Secondary, func(cfg config.Config, d Deps, _ pager.Options) types.Source {
		return nilIfNoCompanies(cfg.Companies.Workday, workday.New(cfg.Companies.Workday, d.Fetcher))
	}},
	{"email", types.Secondary, func(cfg config.Config, d Deps, _ pager.Options) types.Source {
		box := &email.IMAPMailbox{
			Host:     cfg.Email.IMAPHost,
			Port:     cfg.Email.IMAPPort,
			Username: cfg.Email.Username,
			Folder:   cfg.Email.Mailbox,
			Password: d.IMAPPassword,
		}
		return email.New(box, email.Options{
			SinceDays:   cfg.Email.SinceDays,
			MaxMessages: cfg.Email.MaxMessages,
			SubjectAny:  cfg.Email.SearchSubjectAny,
		})
	}},
}

func nilIfNoCompanies(cos []domain.Company, s types.Source) types.Source {
	if len(cos) == 0 {
		return nil
	}
	return s
}

// SourceIDs lists every known source id in priority order.
func SourceIDs() []string {
	ids := make([]string, len(catalog))
	for i, f := range catalog {
		ids[i] = f.id
	}
	return ids
}

// BuildSources returns the enabled sources in priority order. ATS sources
// with no configured companies are skipped.
func BuildSources(cfg config.Config, d Deps) []types.Entry {
	pacing := pager.Options{
		DelayMin: time.Duration(cfg.Fetch.DelayMinMS) * time.Millisecond,
		DelayMax: time.Duration(cfg.Fetch.DelayMaxMS) * time.Millisecond,
	}

	var out []types.Entry
	for _, f := range catalog {
		sc := cfg.Source(f.id)
		if !sc.Enabled {
			continue
		}
		src := f.build(cfg, d, pacing)
		if src == nil {
			continue
		}
		out = append(out, types.Entry{Source: src, Pages: sc.Pages, Phase: f.phase})
	}
	return out
}

// NewFetcher builds the shared HTTP fetcher from the fetch settings.
func NewFetcher(cfg config.Config) *util.Fetcher {
	return util.NewFetcher(
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
		util.NewHostLimiter(cfg.Fetch.RatePerSecond, cfg.Fetch.RateBurst),
		cfg.Fetch.UserAgent,
	)
}
