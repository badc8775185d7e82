package domain

// Company identifies one hosted job board on an ATS (greenhouse, lever,
// smartrecruiters, workday).
type Company struct {
	Slug string `yaml:"slug" json:"slug"`
	Name string `yaml:"name" json:"name"`
}

// DisplayName falls back to the slug when no name is configured.
func (c Company) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Slug
}
