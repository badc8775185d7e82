// Package email turns LinkedIn job-alert mails in an IMAP folder into raw
// postings. The folder is opened read-only: a run never changes mailbox state.
package email

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"
)

const SourceName = "Email Alerts"

type Options struct {
	SinceDays   int
	MaxMessages int
	// SubjectAny keeps only messages whose subject contains one of these.
	// Empty keeps everything.
	SubjectAny []string
}

type Source struct {
	box Mailbox
	opt Options
	now func() time.Time
}

func New(box Mailbox, opt Options) *Source {
	if opt.SinceDays <= 0 {
		opt.SinceDays = 14
	}
	return &Source{box: box, opt: opt, now: time.Now}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) Fetch(ctx context.Context, c domain.SearchCriteria, _ int) ([]domain.RawRecord, error) {
	since := s.now().AddDate(0, 0, -s.opt.SinceDays)
	msgs, err := s.box.Recent(ctx, since, s.opt.MaxMessages)
	if err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}

	var out []domain.RawRecord
	alerts := 0
	for _, m := range msgs {
		p, err := Parse(m.Raw)
		if err != nil {
			log.Printf("[source:email] uid=%d parse: %v", m.UID, err)
			continue
		}
		from, subj := firstNonEmpty(m.From, p.From), firstNonEmpty(m.Subject, p.Subject)
		if !s.subjectWanted(subj) || p.HTML == "" || !looksLikeLinkedInJobAlert(from, subj, p.HTML) {
			continue
		}
		alerts++

		jobs, err := ParseLinkedInAlert(p.HTML)
		if err != nil {
			log.Printf("[source:email] uid=%d alert html: %v", m.UID, err)
			continue
		}
		at := m.Date.UTC()
		if m.Date.IsZero() {
			at = s.now().UTC()
		}
		for _, j := range jobs {
			if !util.MatchesTerm(c.Term, j.Title, j.Company) {
				continue
			}
			j.Source = SourceName
			j.RetrievedAt = at
			out = append(out, j)
		}
	}
	log.Printf("[source:email] messages=%d alerts=%d postings=%d", len(msgs), alerts, len(out))
	return out, nil
}

func (s *Source) subjectWanted(subj string) bool {
	if len(s.opt.SubjectAny) == 0 {
		return true
	}
	l := strings.ToLower(subj)
	for _, want := range s.opt.SubjectAny {
		if strings.Contains(l, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
