package config

import (
	"os"

	"jobscout-engine/internal/domain"

	"gopkg.in/yaml.v3"
)

// SourceConfig enables one source and sets its page budget.
type SourceConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Pages   int  `yaml:"pages" json:"pages"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	// Search is the default query for CLI runs without flags and scheduled runs.
	Search struct {
		Term     string `yaml:"term" json:"term"`
		Location string `yaml:"location" json:"location"`
		Keywords string `yaml:"keywords" json:"keywords"`
	} `yaml:"search" json:"search"`

	Collect struct {
		Workers              int `yaml:"workers" json:"workers"`
		SecondaryWorkers     int `yaml:"secondary_workers" json:"secondary_workers"`
		SourceTimeoutSeconds int `yaml:"source_timeout_seconds" json:"source_timeout_seconds"`
		// 0 disables the overall deadline.
		RunTimeoutSeconds int `yaml:"run_timeout_seconds" json:"run_timeout_seconds"`
	} `yaml:"collect" json:"collect"`

	Fetch struct {
		TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		UserAgent      string  `yaml:"user_agent" json:"user_agent"`
		RatePerSecond  float64 `yaml:"rate_per_second" json:"rate_per_second"`
		RateBurst      int     `yaml:"rate_burst" json:"rate_burst"`
		DelayMinMS     int     `yaml:"delay_min_ms" json:"delay_min_ms"`
		DelayMaxMS     int     `yaml:"delay_max_ms" json:"delay_max_ms"`
	} `yaml:"fetch" json:"fetch"`

	// Sources is keyed by source id (indeed, linkedin, remotive, email, ...).
	Sources map[string]SourceConfig `yaml:"sources" json:"sources"`

	Companies struct {
		Greenhouse      []domain.Company `yaml:"greenhouse" json:"greenhouse"`
		Lever           []domain.Company `yaml:"lever" json:"lever"`
		SmartRecruiters []domain.Company `yaml:"smartrecruiters" json:"smartrecruiters"`
		// Workday slugs are full career-site URLs.
		Workday []domain.Company `yaml:"workday" json:"workday"`
	} `yaml:"companies" json:"companies"`

	Email struct {
		IMAPHost         string   `yaml:"imap_host" json:"imap_host"`
		IMAPPort         int      `yaml:"imap_port" json:"imap_port"`
		Username         string   `yaml:"username" json:"username"`
		Mailbox          string   `yaml:"mailbox" json:"mailbox"`
		SinceDays        int      `yaml:"since_days" json:"since_days"`
		MaxMessages      int      `yaml:"max_messages" json:"max_messages"`
		SearchSubjectAny []string `yaml:"search_subject_any" json:"search_subject_any"`
	} `yaml:"email" json:"email"`

	Enrich struct {
		Enabled bool `yaml:"enabled" json:"enabled"`
		// heuristic | openai | googleai
		Provider       string `yaml:"provider" json:"provider"`
		Model          string `yaml:"model" json:"model"`
		BaseURL        string `yaml:"base_url" json:"base_url"`
		TopK           int    `yaml:"top_k" json:"top_k"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
		Workers        int    `yaml:"workers" json:"workers"`
	} `yaml:"enrich" json:"enrich"`

	Filters struct {
		LocationsBlock []string `yaml:"locations_block" json:"locations_block"`
		TitlesBlock    []string `yaml:"titles_block" json:"titles_block"`
	} `yaml:"filters" json:"filters"`

	Export struct {
		// Dir defaults to <data_dir>/exports.
		Dir      string `yaml:"dir" json:"dir"`
		CSV      bool   `yaml:"csv" json:"csv"`
		Insights bool   `yaml:"insights" json:"insights"`
		SQLite   bool   `yaml:"sqlite" json:"sqlite"`
	} `yaml:"export" json:"export"`

	Schedule struct {
		IntervalMinutes int `yaml:"interval_minutes" json:"interval_minutes"`
	} `yaml:"schedule" json:"schedule"`
}

// Load reads path over Default(), so a partial file keeps the defaults for
// everything it leaves out.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Source returns the settings for id, falling back to the built-in default.
func (c Config) Source(id string) SourceConfig {
	if sc, ok := c.Sources[id]; ok {
		return sc
	}
	return DefaultSources()[id]
}
