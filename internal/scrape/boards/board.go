// Package boards reads search-result pages of the paged HTML job boards.
// Each board is a CardSpec (where the fields live on a listing card) plus a
// URL builder; fetching and pagination are shared.
package boards

import (
	"context"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/pager"
	"jobscout-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

// Field locates one value on a card. With Attr set the attribute is read
// instead of the element text.
type Field struct {
	Sel  string
	Attr string
}

func text(sels ...string) []Field {
	out := make([]Field, len(sels))
	for i, s := range sels {
		out[i] = Field{Sel: s}
	}
	return out
}

func attr(name string, sels ...string) []Field {
	out := text(sels...)
	for i := range out {
		out[i].Attr = name
	}
	return out
}

type CardSpec struct {
	Cards    string
	Title    []Field
	Company  []Field
	Location []Field
	Salary   []Field
	Summary  []Field
	JobType  []Field
	Link     []Field

	// SalaryNeedsIndicator skips salary candidates without a pay word or "$".
	SalaryNeedsIndicator bool
	// LocationFromSearch fills a missing location with the searched one.
	LocationFromSearch bool
	MaxCards           int
	SummaryLimit       int
}

// URLFunc builds the search URL for a zero-based page.
type URLFunc func(c domain.SearchCriteria, page int) string

type Board struct {
	name    string
	spec    CardSpec
	pageURL URLFunc
	fetcher *util.Fetcher
	pacing  pager.Options
}

func New(name string, spec CardSpec, pageURL URLFunc, f *util.Fetcher, pacing pager.Options) *Board {
	return &Board{name: name, spec: spec, pageURL: pageURL, fetcher: f, pacing: pacing}
}

func (b *Board) Name() string { return b.name }

func (b *Board) Fetch(ctx context.Context, c domain.SearchCriteria, pages int) ([]domain.RawRecord, error) {
	opt := b.pacing
	opt.Source = b.name
	opt.Pages = pages

	return pager.Collect(ctx, opt, func(ctx context.Context, page int) ([]domain.RawRecord, error) {
		u := b.pageURL(c, page)
		doc, err := b.fetcher.Document(ctx, u)
		if err != nil {
			return nil, err
		}
		recs := Extract(doc.Selection, b.spec, b.name, u, time.Now().UTC())
		if b.spec.LocationFromSearch {
			for i := range recs {
				if recs[i].Location == "" {
					recs[i].Location = c.Location
				}
			}
		}
		return recs, nil
	})
}

// Extract reads every card under root. Cards without a title are skipped.
func Extract(root *goquery.Selection, spec CardSpec, source, pageURL string, at time.Time) []domain.RawRecord {
	var out []domain.RawRecord

	root.Find(spec.Cards).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if spec.MaxCards > 0 && len(out) >= spec.MaxCards {
			return false
		}

		title := first(card, spec.Title)
		if title == "" {
			return true
		}

		rec := domain.RawRecord{
			Source:      source,
			Title:       title,
			Company:     first(card, spec.Company),
			Location:    util.NormalizeLocation(first(card, spec.Location)),
			Summary:     util.Clip(first(card, spec.Summary), spec.SummaryLimit),
			RetrievedAt: at,
		}
		if href := first(card, spec.Link); href != "" {
			rec.URL = util.AbsURL(pageURL, href)
		}

		rec.Salary = salary(card, spec)
		if rec.Salary == "" {
			rec.Salary = util.ExtractSalaryText(rec.Summary)
		}
		rec.JobType = jobType(card, spec.JobType)

		out = append(out, rec)
		return true
	})
	return out
}

func first(card *goquery.Selection, fields []Field) string {
	for _, f := range fields {
		sel := card.Find(f.Sel).First()
		if sel.Length() == 0 {
			continue
		}
		var v string
		if f.Attr != "" {
			v, _ = sel.Attr(f.Attr)
		} else {
			v = sel.Text()
		}
		if v = util.CleanText(v); v != "" {
			return v
		}
	}
	return ""
}

func salary(card *goquery.Selection, spec CardSpec) string {
	for _, f := range spec.Salary {
		var found string
		card.Find(f.Sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			t := util.CleanText(s.Text())
			if t == "" || (spec.SalaryNeedsIndicator && !util.LooksLikeSalary(t)) {
				return true
			}
			found = t
			return false
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func jobType(card *goquery.Selection, fields []Field) string {
	for _, f := range fields {
		var found string
		card.Find(f.Sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = util.InferJobType(s.Text())
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}
