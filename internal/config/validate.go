package config

import (
	"fmt"
	"slices"
	"strings"

	"jobscout-engine/internal/domain"
)

var enrichProviders = []string{"heuristic", "openai", "googleai"}

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy: trimmed, de-duplicated lists,
// unknown sources dropped and unset budgets/ceilings back at their defaults.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation
	def := Default()

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.LocationsBlock = trimList(out.Filters.LocationsBlock)
	out.Filters.TitlesBlock = trimList(out.Filters.TitlesBlock)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)
	out.Search.Term = strings.TrimSpace(out.Search.Term)
	out.Search.Location = strings.TrimSpace(out.Search.Location)

	// ---- sources ----
	known := DefaultSources()
	out.Sources = make(map[string]SourceConfig, len(known))
	for id, sc := range cfg.Sources {
		id = strings.ToLower(strings.TrimSpace(id))
		if _, ok := known[id]; !ok {
			res.addWarn("sources.%s is not a known source and is ignored", id)
			continue
		}
		if sc.Pages < 0 {
			res.addErr("sources.%s.pages must be >= 0", id)
		}
		if sc.Pages <= 0 {
			sc.Pages = known[id].Pages
		}
		out.Sources[id] = sc
	}
	for id, sc := range known {
		if _, ok := out.Sources[id]; !ok {
			out.Sources[id] = sc
		}
	}
	enabled := 0
	for _, sc := range out.Sources {
		if sc.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		res.addWarn("no sources are enabled; every run will be empty")
	}

	// ---- collection ----
	if out.Collect.Workers < 0 || out.Collect.SecondaryWorkers < 0 {
		res.addErr("collect.workers and collect.secondary_workers must be >= 0")
	}
	if out.Collect.Workers == 0 {
		out.Collect.Workers = def.Collect.Workers
	}
	if out.Collect.SecondaryWorkers == 0 {
		out.Collect.SecondaryWorkers = def.Collect.SecondaryWorkers
	}
	if out.Collect.SourceTimeoutSeconds <= 0 {
		out.Collect.SourceTimeoutSeconds = def.Collect.SourceTimeoutSeconds
	}
	if out.Collect.RunTimeoutSeconds < 0 {
		res.addErr("collect.run_timeout_seconds must be >= 0")
	} else if rt := out.Collect.RunTimeoutSeconds; rt > 0 && rt < out.Collect.SourceTimeoutSeconds {
		res.addWarn("collect.run_timeout_seconds (%d) is shorter than the per-source timeout (%d)", rt, out.Collect.SourceTimeoutSeconds)
	}

	// ---- fetch ----
	if out.Fetch.TimeoutSeconds <= 0 {
		out.Fetch.TimeoutSeconds = def.Fetch.TimeoutSeconds
	}
	if out.Fetch.DelayMinMS < 0 || out.Fetch.DelayMaxMS < 0 {
		res.addErr("fetch.delay_min_ms and fetch.delay_max_ms must be >= 0")
	}
	if out.Fetch.DelayMaxMS < out.Fetch.DelayMinMS {
		res.addWarn("fetch.delay_max_ms < delay_min_ms; using delay_min_ms for both")
		out.Fetch.DelayMaxMS = out.Fetch.DelayMinMS
	}
	if out.Fetch.RatePerSecond < 0 {
		res.addErr("fetch.rate_per_second must be >= 0 (0 disables limiting)")
	}
	if out.Fetch.RatePerSecond > 10 {
		res.addWarn("fetch.rate_per_second is high (%.1f) and may get the engine blocked.", out.Fetch.RatePerSecond)
	}

	// ---- enrichment ----
	out.Enrich.Provider = strings.ToLower(strings.TrimSpace(out.Enrich.Provider))
	if out.Enrich.Provider == "" {
		out.Enrich.Provider = def.Enrich.Provider
	}
	if !slices.Contains(enrichProviders, out.Enrich.Provider) {
		res.addErr("enrich.provider must be one of %s", strings.Join(enrichProviders, ", "))
	}
	if out.Enrich.TopK < 0 {
		res.addErr("enrich.top_k must be >= 0")
	}
	if out.Enrich.TopK == 0 {
		out.Enrich.TopK = def.Enrich.TopK
	}
	if out.Enrich.TimeoutSeconds <= 0 {
		out.Enrich.TimeoutSeconds = def.Enrich.TimeoutSeconds
	}
	if out.Enrich.Workers <= 0 {
		out.Enrich.Workers = def.Enrich.Workers
	}
	if out.Enrich.Enabled && out.Enrich.Provider != "heuristic" && strings.TrimSpace(out.Enrich.Model) == "" {
		res.addWarn("enrich.model is empty; the %s provider default model will be used", out.Enrich.Provider)
	}

	// ---- email (password is in the keychain, not here) ----
	if out.Source("email").Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when sources.email.enabled=true")
		}
		if out.Email.IMAPPort <= 0 || out.Email.IMAPPort > 65535 {
			res.addErr("email.imap_port must be 1..65535 when sources.email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when sources.email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			out.Email.Mailbox = def.Email.Mailbox
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; every recent message will be parsed.")
		}
	}

	// ---- ATS companies ----
	checkCompanies := func(name string, cos []domain.Company) {
		for i, c := range cos {
			if strings.TrimSpace(c.Slug) == "" {
				res.addErr("companies.%s[%d].slug is required", name, i)
			}
		}
	}
	checkCompanies("greenhouse", out.Companies.Greenhouse)
	checkCompanies("lever", out.Companies.Lever)
	checkCompanies("smartrecruiters", out.Companies.SmartRecruiters)
	checkCompanies("workday", out.Companies.Workday)
	for i, c := range out.Companies.Workday {
		if c.Slug != "" && !strings.HasPrefix(c.Slug, "https://") && !strings.HasPrefix(c.Slug, "http://") {
			res.addErr("companies.workday[%d].slug must be the career site URL", i)
		}
	}

	// ---- service ----
	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.Schedule.IntervalMinutes < 0 {
		res.addErr("schedule.interval_minutes must be >= 0 (0 disables)")
	} else if m := out.Schedule.IntervalMinutes; m > 0 && m < 15 {
		res.addWarn("schedule.interval_minutes is very low (%d) and may cause rate limits.", m)
	}

	if len(out.Filters.LocationsBlock) > 50 {
		res.addWarn("filters.locations_block has %d entries; consider tightening it.", len(out.Filters.LocationsBlock))
	}

	return out, res
}
