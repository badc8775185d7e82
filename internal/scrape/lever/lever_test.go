package lever

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPostings(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/postings/globex", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("mode"))
		fmt.Fprintf(w, `[
 {"id":"a","text":"Data Engineer","hostedUrl":"https://jobs.lever.co/globex/a","createdAt":1700000000000,
  "categories":{"location":"Austin, TX","commitment":"Full-time"},
  "descriptionPlain":"Work on pipelines.",
  "salaryRange":{"min":110000,"max":130000,"currency":"USD","interval":"per-year-salary"}},
 {"id":"b","text":"Data Analyst","hostedUrl":"%s/page/b","categories":{},"descriptionPlain":"Pay $40 per hour"},
 {"id":"c","text":"Chef","hostedUrl":"https://jobs.lever.co/globex/c","categories":{"location":"Paris"}},
 {"id":"","text":"Broken","hostedUrl":"x"}
]`, srvURL)
	})
	mux.HandleFunc("/page/b", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="posting-categories"><div class="location">Remote</div></div>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	s := New([]domain.Company{{Slug: "globex", Name: "Globex"}}, util.NewFetcher(time.Second, nil, ""))
	s.BaseURL = srv.URL + "/postings"

	got, err := s.Fetch(context.Background(), domain.NewSearchCriteria("data", "", ""), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Data Engineer", got[0].Title)
	assert.Equal(t, "$110000 - $130000 per year", got[0].Salary)
	assert.Equal(t, "Full-time", got[0].JobType)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), got[0].RetrievedAt)

	assert.Equal(t, "Remote", got[1].Location, "hydrated from the hosted page")
	assert.Equal(t, "$40 per hour", got[1].Salary)
}
