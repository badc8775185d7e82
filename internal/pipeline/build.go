package pipeline

import (
	"context"
	"log"
	"time"

	"jobscout-engine/internal/collect"
	"jobscout-engine/internal/config"
	"jobscout-engine/internal/enrich"
	"jobscout-engine/internal/scrape"
	"jobscout-engine/internal/secrets"
)

// FromConfig wires the sources, collector and enrichment stage described by
// cfg. An enrichment stage that cannot be built (missing API key, bad
// provider) is logged and left out; searches then rank on relevance alone.
func FromConfig(ctx context.Context, cfg config.Config, onSource func(collect.SourceCount)) *Pipeline {
	deps := scrape.Deps{
		Fetcher: scrape.NewFetcher(cfg),
		IMAPPassword: func() (string, error) {
			return secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
		},
	}
	entries := scrape.BuildSources(cfg, deps)

	col := collect.New(entries, collect.Options{
		Workers:          cfg.Collect.Workers,
		SecondaryWorkers: cfg.Collect.SecondaryWorkers,
		SourceTimeout:    time.Duration(cfg.Collect.SourceTimeoutSeconds) * time.Second,
		RunTimeout:       time.Duration(cfg.Collect.RunTimeoutSeconds) * time.Second,
		OnSource:         onSource,
	})

	stage, err := enrich.FromConfig(ctx, cfg, secrets.GetLLMKey)
	if err != nil {
		log.Printf("[pipeline] enrichment disabled: %v", err)
	}

	return New(col, Options{
		Stage:         stage,
		TopK:          cfg.Enrich.TopK,
		EnrichTimeout: time.Duration(cfg.Enrich.TimeoutSeconds) * time.Second,
		Blocklist: scrape.Blocklist{
			Locations: cfg.Filters.LocationsBlock,
			Titles:    cfg.Filters.TitlesBlock,
		},
	})
}
