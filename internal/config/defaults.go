package config

import "jobscout-engine/internal/domain"

// DefaultSources lists every source id with its default page budget. Email
// needs an account, so it starts disabled.
func DefaultSources() map[string]SourceConfig {
	return map[string]SourceConfig{
		"indeed":          {Enabled: true, Pages: 10},
		"linkedin":        {Enabled: true, Pages: 5},
		"glassdoor":       {Enabled: true, Pages: 3},
		"monster":         {Enabled: true, Pages: 3},
		"ziprecruiter":    {Enabled: true, Pages: 3},
		"careerbuilder":   {Enabled: true, Pages: 3},
		"remotive":        {Enabled: true, Pages: 1},
		"remoteok":        {Enabled: true, Pages: 1},
		"weworkremotely":  {Enabled: true, Pages: 1},
		"greenhouse":      {Enabled: true, Pages: 1},
		"lever":           {Enabled: true, Pages: 1},
		"smartrecruiters": {Enabled: true, Pages: 2},
		"workday":         {Enabled: true, Pages: 2},
		"email":           {Enabled: false, Pages: 1},
	}
}

func Default() Config {
	var c Config

	c.App.Port = 38471
	c.App.DataDir = "./data"

	c.Search.Term = domain.DefaultSearchTerm
	c.Search.Location = domain.DefaultLocation

	c.Collect.Workers = 6
	c.Collect.SecondaryWorkers = 3
	c.Collect.SourceTimeoutSeconds = 60
	c.Collect.RunTimeoutSeconds = 0

	c.Fetch.TimeoutSeconds = 15
	c.Fetch.RatePerSecond = 1
	c.Fetch.RateBurst = 2
	c.Fetch.DelayMinMS = 2000
	c.Fetch.DelayMaxMS = 4000

	c.Sources = DefaultSources()

	c.Email.IMAPHost = "imap.gmail.com"
	c.Email.IMAPPort = 993
	c.Email.Mailbox = "INBOX"
	c.Email.SinceDays = 14
	c.Email.MaxMessages = 50
	c.Email.SearchSubjectAny = []string{"job alert", "jobs for you"}

	c.Enrich.Enabled = true
	c.Enrich.Provider = "heuristic"
	c.Enrich.TopK = 20
	c.Enrich.TimeoutSeconds = 90
	c.Enrich.Workers = 4

	c.Export.CSV = true
	c.Export.Insights = true
	c.Export.SQLite = true

	return c
}
