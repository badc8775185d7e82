package config

import (
	"os"

	"jobscout-engine/internal/domain"

	"gopkg.in/yaml.v3"
)

// CompaniesFile is the optional companies.yml that lists ATS boards apart
// from the main config.
type CompaniesFile struct {
	Greenhouse      []domain.Company `yaml:"greenhouse"`
	Lever           []domain.Company `yaml:"lever"`
	SmartRecruiters []domain.Company `yaml:"smartrecruiters"`
	Workday         []domain.Company `yaml:"workday"`
}

// OverlayCompanies replaces the config's company lists with the non-empty
// lists of companiesPath. A missing file is not an error.
func OverlayCompanies(cfg *Config, companiesPath string) error {
	b, err := os.ReadFile(companiesPath)
	if err != nil {
		return nil
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return err
	}

	if len(cf.Greenhouse) > 0 {
		cfg.Companies.Greenhouse = cf.Greenhouse
	}
	if len(cf.Lever) > 0 {
		cfg.Companies.Lever = cf.Lever
	}
	if len(cf.SmartRecruiters) > 0 {
		cfg.Companies.SmartRecruiters = cf.SmartRecruiters
	}
	if len(cf.Workday) > 0 {
		cfg.Companies.Workday = cf.Workday
	}
	return nil
}
