package workday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoardURL(t *testing.T) {
	b, err := parseBoardURL("https://acme.wd5.myworkdayjobs.com/en-us/External")
	require.NoError(t, err)
	assert.Equal(t, board{scheme: "https", host: "acme.wd5.myworkdayjobs.com", tenant: "acme", site: "External", locale: "en-US"}, b)
	assert.Equal(t, "https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External/jobs?locale=en-US", b.jobsEndpoint())
	assert.Equal(t, "https://acme.wd5.myworkdayjobs.com/en-US/External/job/Austin/SRE_R1",
		b.jobURL(wdPosting{ExternalPath: "/job/Austin/SRE_R1"}))

	b, err = parseBoardURL("https://globex.wd1.myworkdayjobs.com/Careers")
	require.NoError(t, err)
	assert.Equal(t, "Careers", b.site)
	assert.Empty(t, b.locale)

	for _, bad := range []string{"", "https://localhost/x", "https://acme.wd5.myworkdayjobs.com/"} {
		_, err := parseBoardURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePostedOn(t *testing.T) {
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2026-03-01", "2026-03-01T00:00:00Z", "1772323200", "1772323200000"} {
		got, ok := parsePostedOn(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), in)
	}
	_, ok := parsePostedOn("Posted 3 Days Ago")
	assert.False(t, ok)
}

// tenant serves one career site at /en-US/Careers with the cxs API behind a
// CSRF cookie, like a real tenant.
func tenant(t *testing.T, total int, posts *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/en-US/Careers", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "CALYPSO_CSRF_TOKEN", Value: "tok", Path: "/"})
		fmt.Fprint(w, "<html>careers</html>")
	})
	mux.HandleFunc("/wday/cxs/127/Careers/jobs", func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		if r.Header.Get("x-calypso-csrf-token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req wdRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "engineer", req.SearchText)

		var resp wdResponse
		resp.Total = total
		for i := req.Offset; i < req.Offset+req.Limit && i < total; i++ {
			resp.JobPostings = append(resp.JobPostings, wdPosting{
				Title:         fmt.Sprintf("Platform Engineer %d", i),
				ExternalPath:  fmt.Sprintf("/job/Remote/R%d", i),
				LocationsText: "Remote, Remote",
				PostedOnDate:  "2026-03-01",
				BulletFields:  []string{fmt.Sprintf("R%d", i), "Full time"},
			})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPaginatesWithinBudget(t *testing.T) {
	var posts atomic.Int32
	srv := tenant(t, 5, &posts)

	s := New([]domain.Company{{Slug: srv.URL + "/en-US/Careers", Name: "Acme"}}, util.NewFetcher(time.Second, nil, ""))
	s.PageSize = 2

	got, err := s.Fetch(context.Background(), domain.NewSearchCriteria("engineer", "", ""), 2)
	require.NoError(t, err)
	require.Len(t, got, 4, "two pages of two")
	assert.EqualValues(t, 2, posts.Load())

	r := got[0]
	assert.Equal(t, "Workday", r.Source)
	assert.Equal(t, "Acme", r.Company)
	assert.Equal(t, "Platform Engineer 0", r.Title)
	assert.Equal(t, "Remote", r.Location)
	assert.Equal(t, "Full-time", r.JobType)
	assert.Equal(t, srv.URL+"/en-US/Careers/job/Remote/R0", r.URL)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), r.RetrievedAt)
}

func TestFetchStopsAtTotal(t *testing.T) {
	var posts atomic.Int32
	srv := tenant(t, 3, &posts)

	s := New([]domain.Company{{Slug: srv.URL + "/en-US/Careers"}}, util.NewFetcher(time.Second, nil, ""))
	got, err := s.Fetch(context.Background(), domain.NewSearchCriteria("engineer", "", ""), 5)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.EqualValues(t, 1, posts.Load())
}

func TestCloudflareBlocksTheHost(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "Attention Required! | Cloudflare /cdn-cgi/")
	}))
	defer srv.Close()

	s := New([]domain.Company{
		{Slug: srv.URL + "/A"},
		{Slug: srv.URL + "/B"},
	}, util.NewFetcher(time.Second, nil, ""))

	_, err := s.fetchCompany(context.Background(), domain.Company{Slug: srv.URL + "/A"}, "x", 1)
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = s.fetchCompany(context.Background(), domain.Company{Slug: srv.URL + "/B"}, "x", 1)
	assert.ErrorIs(t, err, ErrBlocked)
	assert.EqualValues(t, 1, hits.Load(), "second site on the host is skipped without a request")

	got, err := s.Fetch(context.Background(), domain.NewSearchCriteria("x", "", ""), 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}
