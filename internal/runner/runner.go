// Package runner executes one search run with its side effects: progress
// events, the SQLite export, the CSV and insights files, and the status the
// HTTP API reports. Only one run is active at a time.
package runner

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"path/filepath"
	"sync/atomic"
	"time"

	"jobscout-engine/internal/collect"
	"jobscout-engine/internal/config"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/pipeline"
	"jobscout-engine/internal/report"
	"jobscout-engine/internal/store"
)

var ErrBusy = errors.New("a search is already running")

type Status struct {
	Running   bool              `json:"running"`
	Request   *pipeline.Request `json:"request,omitempty"`
	LastRunAt string            `json:"last_run_at"`
	LastOkAt  string            `json:"last_ok_at"`
	LastError string            `json:"last_error"`
	LastRunID int64             `json:"last_run_id,omitempty"`
	LastJobs  int               `json:"last_jobs"`
	Files     report.Files      `json:"files"`
}

type Outcome struct {
	Result pipeline.Result `json:"result"`
	RunID  int64           `json:"run_id,omitempty"`
	Files  report.Files    `json:"files"`
}

// PipelineFunc builds the pipeline for one run.
type PipelineFunc func(ctx context.Context, cfg config.Config, onSource func(collect.SourceCount)) *pipeline.Pipeline

type Runner struct {
	cfg    func() config.Config
	db     *sql.DB
	hub    *events.Hub
	build  PipelineFunc
	now    func() time.Time
	active atomic.Bool
	status atomic.Value // Status
}

// New returns a Runner reading the live config through cfg. db and hub may
// be nil.
func New(cfg func() config.Config, db *sql.DB, hub *events.Hub) *Runner {
	r := &Runner{cfg: cfg, db: db, hub: hub, build: pipeline.FromConfig, now: time.Now}
	r.status.Store(Status{})
	return r
}

// WithPipeline replaces the pipeline factory.
func (r *Runner) WithPipeline(f PipelineFunc) *Runner {
	r.build = f
	return r
}

func (r *Runner) Status() Status { return r.status.Load().(Status) }

// DefaultRequest is the search configured under search: in the config file.
func DefaultRequest(cfg config.Config) pipeline.Request {
	return pipeline.Request{
		Term:     cfg.Search.Term,
		Location: cfg.Search.Location,
		Keywords: cfg.Search.Keywords,
		Enrich:   cfg.Enrich.Enabled,
	}
}

// ExportDir is export.dir or <data_dir>/exports.
func ExportDir(cfg config.Config) string {
	if cfg.Export.Dir != "" {
		return cfg.Export.Dir
	}
	return filepath.Join(cfg.App.DataDir, "exports")
}

// Run executes req. The search itself cannot fail; the error reports a busy
// runner or a failed export, in which case the Outcome still holds the
// ranked jobs.
func (r *Runner) Run(ctx context.Context, req pipeline.Request, reqID string) (Outcome, error) {
	if !r.active.CompareAndSwap(false, true) {
		return Outcome{}, ErrBusy
	}
	defer r.active.Store(false)
	return r.run(ctx, req, reqID)
}

// Start runs req in the background and returns at once; ErrBusy is reported
// synchronously.
func (r *Runner) Start(ctx context.Context, req pipeline.Request, reqID string) error {
	if !r.active.CompareAndSwap(false, true) {
		return ErrBusy
	}
	go func() {
		defer r.active.Store(false)
		if _, err := r.run(ctx, req, reqID); err != nil {
			log.Printf("[runner] request_id=%s: %v", reqID, err)
		}
	}()
	return nil
}

func (r *Runner) run(ctx context.Context, req pipeline.Request, reqID string) (Outcome, error) {
	cfg := r.cfg()
	started := r.now()
	prev := r.Status()
	r.status.Store(Status{
		Running:   true,
		Request:   &req,
		LastRunAt: started.Format(time.RFC3339),
		LastOkAt:  prev.LastOkAt,
	})
	r.hub.Emit(reqID, events.RunStarted, req)

	p := r.build(ctx, cfg, func(sc collect.SourceCount) {
		r.hub.Emit(reqID, events.SourceDone, sc)
	})
	res := p.Run(ctx, req)
	out := Outcome{Result: res}

	var errs []error
	if cfg.Export.SQLite && r.db != nil && !res.Empty() {
		id, err := store.SaveRun(ctx, r.db, res)
		if err != nil {
			errs = append(errs, err)
		}
		out.RunID = id
	}

	exp := report.Exporter{Dir: ExportDir(cfg), CSV: cfg.Export.CSV, Insights: cfg.Export.Insights}
	files, err := exp.Export(ctx, res, started)
	if err != nil {
		errs = append(errs, err)
	}
	out.Files = files

	err = errors.Join(errs...)
	now := r.now().Format(time.RFC3339)
	next := Status{
		LastRunAt: now,
		LastOkAt:  prev.LastOkAt,
		LastRunID: out.RunID,
		LastJobs:  len(res.Jobs),
		Files:     files,
	}
	if err != nil {
		next.LastError = err.Error()
	} else {
		next.LastOkAt = now
	}
	r.status.Store(next)

	r.hub.Emit(reqID, events.RunFinished, map[string]any{
		"run_id":  out.RunID,
		"jobs":    len(res.Jobs),
		"files":   files,
		"summary": res.Summary,
		"error":   next.LastError,
	})
	return out, err
}
