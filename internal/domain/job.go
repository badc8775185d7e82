package domain

import "time"

// NotSpecified is the placeholder for any textual field a source did not provide.
const NotSpecified = "Not specified"

// RawRecord is what a source hands back before canonicalization.
// Any field may be empty.
type RawRecord struct {
	Source      string
	Title       string
	Company     string
	Location    string
	Salary      string
	JobType     string
	Summary     string
	URL         string
	RetrievedAt time.Time
}

type JobRecord struct {
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	Salary         string    `json:"salary"`
	SalaryNumeric  float64   `json:"salary_numeric"`
	JobType        string    `json:"job_type"`
	Summary        string    `json:"summary"`
	URL            string    `json:"url"`
	Source         string    `json:"source"`
	ScrapedAt      time.Time `json:"scraped_at"`
	SearchTerm     string    `json:"search_term"`
	SearchLocation string    `json:"search_location"`

	RelevanceScore int `json:"relevance_score"`
	// EnrichmentScore is nil when no enrichment score exists for the record.
	EnrichmentScore *float64 `json:"enrichment_score,omitempty"`
	FinalScore      float64  `json:"final_score"`
	Rank            int      `json:"rank"`

	// Priority is the position of the producing source in the collection order.
	Priority int `json:"-"`
	// Seq is the arrival order after the priority merge.
	Seq int `json:"-"`
}

// Key is the deduplication identity of the record.
func (j JobRecord) Key() string { return DedupKey(j.Title, j.Company) }

func (j JobRecord) HasSalary() bool { return j.SalaryNumeric > 0 }
