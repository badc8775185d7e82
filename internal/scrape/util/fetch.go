package util

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes     = 8 << 20
)

// ErrBlocked marks responses that mean the site refused us (403, 429).
var ErrBlocked = errors.New("blocked by upstream")

// HTTPError carries the status and a body snippet of a non-2xx response.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrBlocked &&
		(e.StatusCode == http.StatusForbidden || e.StatusCode == http.StatusTooManyRequests)
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Fetcher is the one HTTP client every source goes through: per-request
// timeout, host rate limiting, a browser user agent and gzip/br decoding.
type Fetcher struct {
	Client    *http.Client
	Limiter   *HostLimiter
	UserAgent string
}

func NewFetcher(timeout time.Duration, limiter *HostLimiter, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		Limiter:   limiter,
		UserAgent: userAgent,
	}
}

// Get returns the decoded body of a 2xx response.
func (f *Fetcher) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if err := f.Limiter.WaitURL(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if accept == "" {
		accept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, br")

	res, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer res.Body.Close()

	body, err := decodeBody(res)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &HTTPError{Method: req.Method, URL: rawURL, StatusCode: res.StatusCode, Body: body}
	}
	return body, nil
}

func (f *Fetcher) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.Get(ctx, rawURL, "")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", rawURL, err)
	}
	return doc, nil
}

func (f *Fetcher) JSON(ctx context.Context, rawURL string, out any) error {
	body, err := f.Get(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json parse error: %w body=%s", err, snippet(body, 300))
	}
	return nil
}

func decodeBody(res *http.Response) ([]byte, error) {
	var r io.Reader = res.Body
	switch strings.ToLower(strings.TrimSpace(res.Header.Get("Content-Encoding"))) {
	case "br":
		r = brotli.NewReader(res.Body)
	case "gzip":
		zr, err := gzip.NewReader(res.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}
