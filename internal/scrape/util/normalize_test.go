package util

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Senior Go Engineer", CleanText("  Senior  Go\n\tEngineer "))
	assert.Equal(t, "", CleanText(" \n "))
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "Austin, TX", NormalizeLocation("Location: Austin,  TX, austin"))
	assert.Equal(t, "", NormalizeLocation("   "))
}

func TestInferJobType(t *testing.T) {
	assert.Equal(t, "Full-time", InferJobType("", "Full-time +1"))
	assert.Equal(t, "Contract", InferJobType("6 month contract role"))
	assert.Equal(t, "Internship", InferJobType("Summer Internship"))
	assert.Equal(t, "", InferJobType("International team"))
}

func TestMatchesTerm(t *testing.T) {
	assert.True(t, MatchesTerm("Software Developer", "Senior Developer"))
	assert.True(t, MatchesTerm("python", "Backend Engineer", "Python Labs"))
	assert.False(t, MatchesTerm("python", "Rust Engineer"))
	assert.True(t, MatchesTerm("  ", "anything"))
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://Jobs.Example.com/a?utm_source=x&b=2&a=1#frag", "https://jobs.example.com/a?a=1&b=2"},
		{"https://www.linkedin.com/jobs/view/123?refId=abc&trk=x&currentJobId=123", "https://www.linkedin.com/jobs/view/123?currentJobId=123"},
		{"not a url", "not a url"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalURL(tt.in))
	}
}

func TestAbsURL(t *testing.T) {
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=1", AbsURL("https://www.indeed.com/jobs?q=go", "/viewjob?jk=1"))
	assert.Equal(t, "https://other.example/x", AbsURL("https://www.indeed.com", "https://other.example/x"))
	assert.Equal(t, "", AbsURL("https://www.indeed.com", "  "))
}

func TestFindLocation(t *testing.T) {
	html := `<html><body><div id="a"><span class="job__location">Remote,  USA</span></div>
<div id="b"><p>About us</p><p>Location: Berlin, Germany
Apply now</p></div></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, "Remote, USA", FindLocation(doc.Find("#a")))
	assert.Equal(t, "Berlin, Germany", FindLocation(doc.Find("#b")))
}

func TestLooksLikeJunkTitle(t *testing.T) {
	assert.True(t, LooksLikeJunkTitle("View all jobs"))
	assert.False(t, LooksLikeJunkTitle("Platform Engineer"))
}
