package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/httpapi"
	"jobscout-engine/internal/report"
	"jobscout-engine/internal/runner"
	"jobscout-engine/internal/scheduler"
	"jobscout-engine/internal/secrets"
	"jobscout-engine/internal/store"

	"github.com/urfave/cli/v2"
)

const (
	dbFile             = "jobscout.db"
	envShutdownToken   = "JOBSCOUT_SHUTDOWN_TOKEN"
	insightsPreviewLen = 600
)

func main() {
	// .env first so the flag EnvVars below can see it
	config.LoadEnv()

	app := &cli.App{
		Name:  "jobscout",
		Usage: "Collect job listings from many sources, rank them and export the results",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding config.yml, the SQLite export and exported files",
				Value:   "./data",
				EnvVars: []string{config.EnvDataDir},
			},
			&cli.StringFlag{
				Name:  "default-config",
				Usage: "Config copied into the data dir on first start",
				Value: filepath.Join("config", "config.yml"),
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			serveCommand(),
			configCommand(),
			secretsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// readConfig loads path with the companies overlay and environment
// overrides applied, then normalizes it.
func readConfig(path, dataDir string) (config.Config, config.Validation, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, config.Validation{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := config.OverlayCompanies(&cfg, filepath.Join(dataDir, "companies.yml")); err != nil {
		return cfg, config.Validation{}, fmt.Errorf("companies overlay: %w", err)
	}
	config.ApplyEnv(&cfg)
	if dataDir != "" {
		cfg.App.DataDir = dataDir
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	return cfg, vr, nil
}

// loadConfig bootstraps the user config and fails on validation errors.
func loadConfig(c *cli.Context) (string, config.Config, error) {
	dataDir := c.String("data-dir")
	path, err := config.EnsureUserConfig(dataDir, c.String("default-config"))
	if err != nil {
		return "", config.Config{}, fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, vr, err := readConfig(path, dataDir)
	if err != nil {
		return "", cfg, err
	}
	for _, w := range vr.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !vr.OK() {
		return "", cfg, fmt.Errorf("invalid config %s: %s", path, strings.Join(vr.Errors, "; "))
	}
	return path, cfg, nil
}

func openDB(cfg config.Config) (*store.DB, error) {
	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		return nil, err
	}
	return store.Open(filepath.Join(cfg.App.DataDir, dbFile))
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Run one search and print the top results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "term", Aliases: []string{"t"}, Usage: "Job title or search term (default: search.term)"},
			&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "Location (default: search.location)"},
			&cli.StringFlag{Name: "keywords", Aliases: []string{"k"}, Usage: "Comma separated relevance keywords (default: the term)"},
			&cli.BoolFlag{Name: "enrich", Usage: "Force the enrichment stage on"},
			&cli.BoolFlag{Name: "no-enrich", Usage: "Skip the enrichment stage"},
			&cli.IntFlag{Name: "top", Usage: "Rows in the printed table", Value: report.TopN},
		},
		Action: runSearch,
	}
}

func runSearch(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	req := runner.DefaultRequest(cfg)
	if c.IsSet("term") {
		req.Term = c.String("term")
	}
	if c.IsSet("location") {
		req.Location = c.String("location")
	}
	if c.IsSet("keywords") {
		req.Keywords = c.String("keywords")
	}
	if c.Bool("enrich") {
		req.Enrich = true
	}
	if c.Bool("no-enrich") {
		req.Enrich = false
	}

	var pool *sql.DB
	if cfg.Export.SQLite {
		db, err := openDB(cfg)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		pool = db.Pool
	}

	r := runner.New(func() config.Config { return cfg }, pool, nil)
	out, runErr := r.Run(ctx, req, "cli")
	res := out.Result

	w := c.App.Writer
	if res.Empty() {
		fmt.Fprintf(w, "No jobs found for %q in %q. Try a broader term or enable more sources.\n", req.Term, req.Location)
		return runErr
	}

	enriched := res.Summary.Enrichment != ""
	fmt.Fprintf(w, "\nTop jobs for %q in %q (%d kept of %d collected, %d duplicates)\n\n",
		req.Term, req.Location, res.Summary.Kept, res.Summary.Collected, res.Summary.Duplicates)
	report.PrintTop(w, res.Jobs, c.Int("top"), enriched)
	fmt.Fprintln(w)
	report.PrintStats(w, report.ComputeStats(res.Jobs))

	if res.Insights != "" {
		fmt.Fprintf(w, "\nMarket insights:\n%s\n", previewText(res.Insights, insightsPreviewLen))
	}
	if out.Files.CSV != "" {
		fmt.Fprintf(w, "\nCSV: %s\n", out.Files.CSV)
	}
	if out.Files.Insights != "" {
		fmt.Fprintf(w, "Insights: %s\n", out.Files.Insights)
	}
	if out.RunID > 0 {
		fmt.Fprintf(w, "Saved as run %d in %s\n", out.RunID, filepath.Join(cfg.App.DataDir, dbFile))
	}
	return runErr
}

func previewText(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local HTTP service with scheduled searches",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "keep-days", Usage: "Delete exported runs older than this many days (0 keeps all)", Value: 30},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath, cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	dataDir := c.String("data-dir")

	var cfgVal atomic.Value // config.Config
	cfgVal.Store(cfg)
	current := func() config.Config { return cfgVal.Load().(config.Config) }

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	hub := events.NewHub()
	run := runner.New(current, db.Pool, hub)

	mux := httpapi.NewMux(httpapi.Deps{
		Ctx:         ctx,
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg: func() (config.Config, error) {
			cfg, _, err := readConfig(cfgPath, dataDir)
			return cfg, err
		},
		Runner: run,
	})

	token := os.Getenv(envShutdownToken)
	if token == "" {
		if token, err = randomToken(16); err != nil {
			return err
		}
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           httpapi.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(token, srv))

	if m := cfg.Schedule.IntervalMinutes; m > 0 {
		go scheduler.Every(ctx, time.Duration(m)*time.Minute, "schedule", func(ctx context.Context) error {
			_, err := run.Run(ctx, runner.DefaultRequest(current()), "schedule")
			if errors.Is(err, runner.ErrBusy) {
				log.Printf("[schedule] a search is already running, skipping")
				return nil
			}
			return err
		})
	}
	if days := c.Int("keep-days"); days > 0 {
		go scheduler.Every(ctx, 24*time.Hour, "cleanup", func(ctx context.Context) error {
			n, err := store.CleanupOldRuns(ctx, db.Pool, time.Duration(days)*24*time.Hour)
			if n > 0 {
				log.Printf("[cleanup] deleted %d runs older than %d days", n, days)
			}
			return err
		})
	}

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Printf("engine listening on http://%s (data=%s)", addr, cfg.App.DataDir)
	// The desktop shell reads the token from the first stdout line.
	fmt.Fprintf(c.App.Writer, "%s=%s\n", envShutdownToken, token)

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect the user config",
		Subcommands: []*cli.Command{
			{
				Name:  "path",
				Usage: "Print the config file path, creating it on first use",
				Action: func(c *cli.Context) error {
					path, err := config.EnsureUserConfig(c.String("data-dir"), c.String("default-config"))
					if err != nil {
						return err
					}
					abs, _ := filepath.Abs(path)
					fmt.Fprintln(c.App.Writer, abs)
					return nil
				},
			},
			{
				Name:  "validate",
				Usage: "Report config errors and warnings",
				Action: func(c *cli.Context) error {
					dataDir := c.String("data-dir")
					path, err := config.EnsureUserConfig(dataDir, c.String("default-config"))
					if err != nil {
						return err
					}
					_, vr, err := readConfig(path, dataDir)
					if err != nil {
						return err
					}
					for _, w := range vr.Warnings {
						fmt.Fprintf(c.App.Writer, "warning: %s\n", w)
					}
					for _, e := range vr.Errors {
						fmt.Fprintf(c.App.Writer, "error: %s\n", e)
					}
					if !vr.OK() {
						return cli.Exit(fmt.Sprintf("%s has %d errors", path, len(vr.Errors)), 1)
					}
					fmt.Fprintf(c.App.Writer, "%s is valid\n", path)
					return nil
				},
			},
		},
	}
}

func secretsCommand() *cli.Command {
	return &cli.Command{
		Name:  "secrets",
		Usage: "Store credentials in the OS keychain",
		Subcommands: []*cli.Command{
			{
				Name:      "set-imap",
				Usage:     "Store the IMAP password for email.username@email.imap_host",
				ArgsUsage: "<password>",
				Action: func(c *cli.Context) error {
					_, cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					if c.NArg() != 1 {
						return cli.Exit("usage: jobscout secrets set-imap <password>", 2)
					}
					return secrets.SetIMAPPassword(secrets.IMAPKeyringAccount(cfg), c.Args().First())
				},
			},
			{
				Name:  "delete-imap",
				Usage: "Remove the stored IMAP password",
				Action: func(c *cli.Context) error {
					_, cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					return secrets.DeleteIMAPPassword(secrets.IMAPKeyringAccount(cfg))
				},
			},
			{
				Name:      "set-llm",
				Usage:     "Store the API key of an enrichment provider",
				ArgsUsage: "<openai|googleai> <key>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: jobscout secrets set-llm <provider> <key>", 2)
					}
					provider := strings.ToLower(c.Args().Get(0))
					if _, ok := secrets.LLMKeyEnv[provider]; !ok {
						return cli.Exit("unknown provider "+provider, 2)
					}
					return secrets.SetLLMKey(provider, c.Args().Get(1))
				},
			},
			{
				Name:      "delete-llm",
				Usage:     "Remove the stored API key of a provider",
				ArgsUsage: "<openai|googleai>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: jobscout secrets delete-llm <provider>", 2)
					}
					return secrets.DeleteLLMKey(c.Args().First())
				},
			},
		},
	}
}
