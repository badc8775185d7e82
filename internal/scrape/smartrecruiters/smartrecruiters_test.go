package smartrecruiters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPagesByOffset(t *testing.T) {
	var offsets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies/Initech/postings", r.URL.Path)
		assert.Equal(t, "qa engineer", r.URL.Query().Get("q"))
		off, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, off)
		fmt.Fprintf(w, `{"totalFound":150,"offset":%d,"limit":100,"content":[
 {"id":"id-%d","name":"QA Engineer %d","releasedDate":"2026-01-02T03:04:05Z",
  "location":{"city":"Austin","region":"TX","country":"us","remote":true},
  "typeOfEmployment":{"label":"Full-time"}},
 {"id":"","name":"No id"}
]}`, off, off, off)
	}))
	defer srv.Close()

	s := New([]domain.Company{{Slug: "Initech"}}, util.NewFetcher(time.Second, nil, ""))
	s.BaseURL = srv.URL + "/companies"
	s.JobsURL = "https://jobs.example"

	got, err := s.Fetch(context.Background(), domain.NewSearchCriteria("qa engineer", "", ""), 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 100}, offsets, "stops once totalFound is reached")
	require.Len(t, got, 2)

	assert.Equal(t, "SmartRecruiters", got[0].Source)
	assert.Equal(t, "Initech", got[0].Company)
	assert.Equal(t, "Remote, Austin, TX, us", got[0].Location)
	assert.Equal(t, "Full-time", got[0].JobType)
	assert.Equal(t, "https://jobs.example/Initech/id-0", got[0].URL)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), got[0].RetrievedAt)
}

func TestEmptySlugIsSkipped(t *testing.T) {
	s := New([]domain.Company{{Slug: " "}}, util.NewFetcher(time.Second, nil, ""))
	got, err := s.Fetch(context.Background(), domain.NewSearchCriteria("", "", ""), 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}
