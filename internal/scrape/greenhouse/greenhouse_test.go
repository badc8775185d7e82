package greenhouse

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

func TestFetchBoardAndHydrate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/acme", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<div class="opening"><a href="/acme/jobs/101">Backend Engineer</a><span class="location">Remote, US</span></div>
<div class="opening"><a href="/acme/jobs/102">Apply here</a></div>
<div class="opening"><a href="/acme/jobs/103">Office Manager</a><span class="location">NYC</span></div>
<a href="/acme/jobs/101">Backend Engineer</a>
<a href="/about">About</a>
</body></html>`)
	})
	mux.HandleFunc("/acme/jobs/102", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Platform Engineer</h1><div class="location">Denver, CO</div>
<div id="content">Full-time role. Salary: $150,000 - $170,000 per year.</div></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New([]domain.Company{{Slug: "acme", Name: "Acme"}}, util.NewFetcher(time.Second, nil, ""))
	s.BaseURL = srv.URL

	got, err := s.Fetch(context.Background(), domain.NewSearchCriteria("engineer", "", ""), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Backend Engineer", got[0].Title)
	assert.Equal(t, "Remote, US", got[0].Location)
	assert.Equal(t, "Acme", got[0].Company)
	assert.Equal(t, srv.URL+"/acme/jobs/101", got[0].URL)

	assert.Equal(t, "Platform Engineer", got[1].Title)
	assert.Equal(t, "Denver, CO", got[1].Location)
	assert.Equal(t, "$150,000 - $170,000 per year", got[1].Salary)
	assert.Equal(t, "Full-time", got[1].JobType)
}

func TestFailingBoardIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := New([]domain.Company{{Slug: "gone"}}, util.NewFetcher(time.Second, nil, ""))
	s.BaseURL = srv.URL
	got, err := s.Fetch(context.Background(), domain.NewSearchCriteria("", "", ""), 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractJobID(t *testing.T) {
	assert.Equal(t, "4567", extractJobID("https://boards.greenhouse.io/acme/jobs/4567?gh_src=x"))
	assert.Equal(t, "", extractJobID("https://boards.greenhouse.io/acme"))
}
