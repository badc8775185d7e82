package remote

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"

	"github.com/PuerkitoBio/goquery"
)

const wwrLimit = 10

type WeWorkRemotely struct {
	f       *util.Fetcher
	BaseURL string
}

func NewWeWorkRemotely(f *util.Fetcher) *WeWorkRemotely {
	return &WeWorkRemotely{f: f, BaseURL: "https://weworkremotely.com"}
}

func (w *WeWorkRemotely) Name() string { return "WeWorkRemotely" }

func (w *WeWorkRemotely) Fetch(ctx context.Context, c domain.SearchCriteria, _ int) ([]domain.RawRecord, error) {
	u := fmt.Sprintf("%s/remote-jobs/search?term=%s", w.BaseURL, url.QueryEscape(c.Term))
	doc, err := w.f.Document(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely: %w", err)
	}

	now := time.Now().UTC()
	var out []domain.RawRecord
	doc.Find("li.feature").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if len(out) >= wwrLimit {
			return false
		}
		title := util.CleanText(li.Find("span.title").First().Text())
		company := util.CleanText(li.Find("span.company").First().Text())
		if title == "" || company == "" {
			return true
		}

		rec := domain.RawRecord{
			Source:      w.Name(),
			Title:       title,
			Company:     company,
			Location:    "Remote",
			JobType:     "Remote",
			RetrievedAt: now,
		}
		if href, ok := li.Find("a[href]").First().Attr("href"); ok {
			rec.URL = util.AbsURL(w.BaseURL, href)
		}
		if region := util.CleanText(li.Find("span.region").First().Text()); region != "" {
			rec.Location = util.NormalizeLocation(region)
		}
		out = append(out, rec)
		return true
	})
	return out, nil
}
