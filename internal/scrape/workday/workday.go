// Package workday reads postings from Workday career sites through the
// site's own cxs JSON endpoint.
package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"
)

const (
	DefaultPageSize = 20
	maxBody         = 4 << 20
)

// ErrBlocked means the tenant host answered with a Cloudflare challenge.
var ErrBlocked = errors.New("workday blocked by cloudflare")

type Scraper struct {
	companies []domain.Company
	f         *util.Fetcher
	PageSize  int

	mu          sync.Mutex
	blockedHost map[string]bool
}

func New(companies []domain.Company, f *util.Fetcher) *Scraper {
	return &Scraper{
		companies:   companies,
		f:           f,
		PageSize:    DefaultPageSize,
		blockedHost: map[string]bool{},
	}
}

func (s *Scraper) Name() string { return "Workday" }

type wdRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type wdResponse struct {
	Total       int         `json:"total"`
	JobPostings []wdPosting `json:"jobPostings"`
}

type wdPosting struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	ExternalURL   string   `json:"externalUrl"`
	LocationsText string   `json:"locationsText"`
	Location      string   `json:"location"`
	PostedOnDate  string   `json:"postedOnDate"`
	BulletFields  []string `json:"bulletFields"`
}

// Fetch searches every configured site for the term. pages caps the number
// of result pages read per site.
func (s *Scraper) Fetch(ctx context.Context, c domain.SearchCriteria, pages int) ([]domain.RawRecord, error) {
	if pages <= 0 {
		pages = 1
	}
	recs := util.PerCompany(ctx, "workday", s.companies, 4, 20*time.Second,
		func(ctx context.Context, co domain.Company) ([]domain.RawRecord, error) {
			return s.fetchCompany(ctx, co, c.Term, pages)
		})

	out := recs[:0]
	for _, r := range recs {
		if util.MatchesTerm(c.Term, r.Title) {
			out = append(out, r)
		}
	}
	return out, nil
}

type board struct {
	scheme, host, tenant, site, locale string
}

// parseBoardURL splits https://<tenant>.wd5.myworkdayjobs.com/[en-US/]<site>.
func parseBoardURL(raw string) (board, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return board{}, errors.New("empty board url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return board{}, fmt.Errorf("missing host in %q", raw)
	}

	labels := strings.Split(u.Hostname(), ".")
	if len(labels) < 3 {
		return board{}, fmt.Errorf("unexpected host %q", u.Host)
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if segs[0] == "" {
		return board{}, fmt.Errorf("missing site in %q", raw)
	}
	b := board{scheme: u.Scheme, host: u.Host, tenant: labels[0]}
	if len(segs) >= 2 && isLocale(segs[0]) {
		b.locale = strings.ToLower(segs[0][:2]) + "-" + strings.ToUpper(segs[0][3:])
		segs = segs[1:]
	}
	b.site = segs[len(segs)-1]
	return b, nil
}

func isLocale(s string) bool {
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	for _, r := range s[:2] + s[3:] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func (b board) origin() string { return b.scheme + "://" + b.host }

func (b board) jobsEndpoint() string {
	ep := fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", b.origin(), b.tenant, b.site)
	if b.locale != "" {
		ep += "?locale=" + url.QueryEscape(b.locale)
	}
	return ep
}

func (b board) jobURL(p wdPosting) string {
	if u := strings.TrimSpace(p.ExternalURL); u != "" {
		return u
	}
	path := strings.TrimSpace(p.ExternalPath)
	if path == "" {
		return ""
	}
	site := "/" + b.site
	if b.locale != "" {
		site = "/" + b.locale + site
	}
	return util.AbsURL(b.origin()+site+"/", strings.TrimPrefix(path, "/"))
}

func (s *Scraper) isBlocked(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockedHost[host]
}

func (s *Scraper) markBlocked(host string) {
	s.mu.Lock()
	s.blockedHost[host] = true
	s.mu.Unlock()
	log.Printf("[source:workday] host=%s blocked by Cloudflare; skipping its remaining sites", host)
}

func (s *Scraper) fetchCompany(ctx context.Context, co domain.Company, term string, pages int) ([]domain.RawRecord, error) {
	b, err := parseBoardURL(co.Slug)
	if err != nil {
		return nil, err
	}
	if s.isBlocked(b.host) {
		return nil, ErrBlocked
	}

	// A cookie jar per site keeps CALYPSO_CSRF_TOKEN and the session together.
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Jar: jar, Timeout: s.f.Client.Timeout}

	csrf, bootErr := s.bootstrap(ctx, hc, co.Slug)
	if errors.Is(bootErr, ErrBlocked) {
		s.markBlocked(b.host)
		return nil, ErrBlocked
	}

	size := s.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	var out []domain.RawRecord
	for page := 0; page < pages; page++ {
		payload, _ := json.Marshal(wdRequest{
			AppliedFacets: map[string]any{},
			Limit:         size,
			Offset:        page * size,
			SearchText:    term,
		})

		data, err := s.post(ctx, hc, b, co.Slug, payload, csrf)
		var httpErr *util.HTTPError
		if errors.As(err, &httpErr) && bootErr != nil {
			// Some tenants only hand out the token after a first failed call.
			bootErr = nil
			if csrf, err = s.bootstrap(ctx, hc, co.Slug); err == nil {
				data, err = s.post(ctx, hc, b, co.Slug, payload, csrf)
			} else if errors.Is(err, ErrBlocked) {
				s.markBlocked(b.host)
			}
		}
		if err != nil {
			if len(out) > 0 {
				log.Printf("[source:workday] company=%q page=%d err=%v; keeping %d earlier postings", co.DisplayName(), page+1, err, len(out))
				return out, nil
			}
			return nil, err
		}

		var jr wdResponse
		if err := json.Unmarshal(data, &jr); err != nil {
			return out, fmt.Errorf("workday decode: %w", err)
		}
		if len(jr.JobPostings) == 0 {
			break
		}
		for _, p := range jr.JobPostings {
			if rec, ok := toRecord(b, co, p); ok {
				out = append(out, rec)
			}
		}
		if jr.Total > 0 && (page+1)*size >= jr.Total {
			break
		}
	}
	return out, nil
}

func (s *Scraper) post(ctx context.Context, hc *http.Client, b board, referer string, payload []byte, csrf string) ([]byte, error) {
	endpoint := b.jobsEndpoint()
	if err := s.f.Limiter.WaitURL(ctx, endpoint); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.f.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", b.origin())
	req.Header.Set("Referer", strings.TrimRight(referer, "/"))
	req.Header.Set("Accept-Language", firstNonEmpty(b.locale, "en-US"))
	if csrf != "" {
		req.Header.Set("x-calypso-csrf-token", csrf)
	}

	res, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workday post jobs: %w", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &util.HTTPError{Method: req.Method, URL: endpoint, StatusCode: res.StatusCode, Body: data}
	}
	return data, nil
}

// bootstrap loads the career page so the jar picks up the session cookies
// and returns the CSRF token, if the tenant sets one.
func (s *Scraper) bootstrap(ctx context.Context, hc *http.Client, boardURL string) (string, error) {
	if err := s.f.Limiter.WaitURL(ctx, boardURL); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US")

	res, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	preview, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	_, _ = io.Copy(io.Discard, res.Body)
	if looksLikeCloudflareBlock(res, string(preview)) {
		return "", ErrBlocked
	}

	u, _ := url.Parse(boardURL)
	for _, c := range hc.Jar.Cookies(u) {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("workday bootstrap: no CALYPSO_CSRF_TOKEN cookie (status=%d)", res.StatusCode)
}

func looksLikeCloudflareBlock(res *http.Response, preview string) bool {
	server := strings.ToLower(res.Header.Get("Server"))
	if strings.Contains(server, "cloudflare") && res.Header.Get("CF-RAY") != "" {
		return true
	}
	low := strings.ToLower(preview)
	if strings.Contains(low, "/cdn-cgi/") ||
		(strings.Contains(low, "cloudflare") && strings.Contains(low, "checking your browser")) {
		return true
	}
	return res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests
}

func toRecord(b board, co domain.Company, p wdPosting) (domain.RawRecord, bool) {
	title := util.CleanText(p.Title)
	link := b.jobURL(p)
	if title == "" || link == "" {
		return domain.RawRecord{}, false
	}
	at := time.Now().UTC()
	if t, ok := parsePostedOn(p.PostedOnDate); ok {
		at = t
	}
	return domain.RawRecord{
		Source:      "Workday",
		Title:       title,
		Company:     co.DisplayName(),
		Location:    util.NormalizeLocation(firstNonEmpty(p.LocationsText, p.Location)),
		JobType:     util.InferJobType(append([]string{title}, p.BulletFields...)...),
		URL:         link,
		RetrievedAt: at,
	}, true
}

// parsePostedOn accepts RFC 3339, a bare date or epoch seconds/millis.
func parsePostedOn(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= 1_000_000_000_000 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
