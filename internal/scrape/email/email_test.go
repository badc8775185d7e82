package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobscout-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertHTML = `<html><body>
<table><tr><td>
  <a href="https://www.linkedin.com/comm/jobs/view/111?trk=logo"><img src="logo.png"></a>
  <a href="https://www.linkedin.com/comm/jobs/view/111?trk=title">Senior Backend Engineer</a>
  <p>Acme Corp · Austin, TX (Remote)</p>
  <p>$150K - $180K / year</p>
  <p>Actively recruiting</p>
</td></tr></table>
<table><tr><td>
  <a href="https://www.linkedin.com/comm/jobs/view/222">Data Analyst</a>
  <p>Globex · New York, NY</p>
</td></tr></table>
<a href="https://www.linkedin.com/comm/jobs/alerts">Manage alerts</a>
</body></html>`

func rawMail(subject, from, html string) []byte {
	return []byte("From: " + from + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=XYZ\r\n\r\n" +
		"--XYZ\r\nContent-Type: text/plain; charset=utf-8\r\n\r\nplain version\r\n" +
		"--XYZ\r\nContent-Type: text/html; charset=utf-8\r\n\r\n" + html + "\r\n" +
		"--XYZ--\r\n")
}

type fakeBox struct {
	msgs  []Message
	err   error
	since time.Time
}

func (f *fakeBox) Recent(_ context.Context, since time.Time, _ int) ([]Message, error) {
	f.since = since
	return f.msgs, f.err
}

func TestParseLinkedInAlertMergesAnchors(t *testing.T) {
	got, err := ParseLinkedInAlert(alertHTML)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Senior Backend Engineer", got[0].Title)
	assert.Equal(t, "Acme Corp", got[0].Company)
	assert.Equal(t, "Austin, TX (Remote)", got[0].Location)
	assert.Equal(t, "$150K - $180K / year", got[0].Salary)
	assert.Contains(t, got[0].URL, "/jobs/view/111")

	assert.Equal(t, "Data Analyst", got[1].Title)
	assert.Equal(t, "Globex", got[1].Company)
}

func TestParseMultipart(t *testing.T) {
	p, err := Parse(rawMail("Your job alert", "jobalerts-noreply@linkedin.com", "<b>hi</b>"))
	require.NoError(t, err)
	assert.Equal(t, "Your job alert", p.Subject)
	assert.Equal(t, "plain version", strings.TrimSpace(p.Plain))
	assert.Equal(t, "<b>hi</b>", strings.TrimSpace(p.HTML))
}

func TestSourceFetch(t *testing.T) {
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	box := &fakeBox{msgs: []Message{
		{UID: 1, Date: now.Add(-time.Hour), Raw: rawMail("Your job alert for engineer", "jobalerts-noreply@linkedin.com", alertHTML)},
		{UID: 4, Raw: rawMail("Weekly digest", "jobalerts-noreply@linkedin.com", alertHTML)},
		{UID: 2, Raw: rawMail("Lunch?", "friend@example.com", "<p>see linkedin.com/jobs/view/5</p>")},
		{UID: 3, Raw: []byte("not a mail at all")},
	}}
	s := New(box, Options{SinceDays: 7, MaxMessages: 20, SubjectAny: []string{"Job Alert"}})
	s.now = func() time.Time { return now }

	got, err := s.Fetch(context.Background(), domain.NewSearchCriteria("engineer", "", ""), 1)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), box.since)
	require.Len(t, got, 1)
	assert.Equal(t, SourceName, got[0].Source)
	assert.Equal(t, "Senior Backend Engineer", got[0].Title)
	assert.Equal(t, now.Add(-time.Hour), got[0].RetrievedAt)
}

func TestSourceFetchMailboxError(t *testing.T) {
	s := New(&fakeBox{err: errors.New("login failed")}, Options{})
	_, err := s.Fetch(context.Background(), domain.NewSearchCriteria("", "", ""), 1)
	assert.ErrorContains(t, err, "login failed")
}

func TestTitleScore(t *testing.T) {
	assert.Greater(t, titleScore("Senior Software Engineer"), titleScore("$120K - $150K / year"))
	assert.Less(t, titleScore("Unsubscribe"), 0)
	assert.True(t, containsWord("sr engineer", "sr"))
	assert.False(t, containsWord("sre team", "sr"))
}
