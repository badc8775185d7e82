package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobscout-engine/internal/pipeline"

	"github.com/gofrs/flock"
)

var ErrExportBusy = errors.New("another export holds the lock")

type Files struct {
	CSV      string `json:"csv,omitempty"`
	Insights string `json:"insights,omitempty"`
}

// Exporter writes run files into Dir. Concurrent exporters, in this process
// or another, serialize on Dir/.export.lock.
type Exporter struct {
	Dir      string
	CSV      bool
	Insights bool
	// LockWait bounds how long Export waits for the lock.
	LockWait time.Duration
}

func (e Exporter) Export(ctx context.Context, res pipeline.Result, at time.Time) (Files, error) {
	var out Files
	if res.Empty() || (!e.CSV && !e.Insights) {
		return out, nil
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return out, err
	}

	wait := e.LockWait
	if wait <= 0 {
		wait = 10 * time.Second
	}
	lctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	fl := flock.New(filepath.Join(e.Dir, ".export.lock"))
	ok, err := fl.TryLockContext(lctx, 100*time.Millisecond)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrExportBusy, err)
	}
	if !ok {
		return out, ErrExportBusy
	}
	defer func() { _ = fl.Unlock() }()

	crit := res.Summary.Criteria
	stamp := at.Format("20060102_150405")
	enriched := res.Summary.Enrichment != ""

	if e.CSV {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, res.Jobs, enriched); err != nil {
			return out, err
		}
		name := fmt.Sprintf("ai_jobs_%s_%s_%s.csv", slug(crit.Term), slug(crit.Location), stamp)
		out.CSV = filepath.Join(e.Dir, name)
		if err := writeFileAtomic(out.CSV, buf.Bytes()); err != nil {
			return Files{}, err
		}
	}

	if e.Insights && strings.TrimSpace(res.Insights) != "" {
		var buf bytes.Buffer
		if err := WriteInsights(&buf, crit.Term, crit.Location, at, res.Insights); err != nil {
			return out, err
		}
		out.Insights = filepath.Join(e.Dir, fmt.Sprintf("ai_insights_%s_%s.txt", slug(crit.Term), stamp))
		if err := writeFileAtomic(out.Insights, buf.Bytes()); err != nil {
			return out, err
		}
	}
	return out, nil
}

// slug lowercases s and replaces spaces and path separators with "_".
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, s)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
