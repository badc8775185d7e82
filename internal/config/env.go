package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDataDir = "JOBSCOUT_DATA_DIR"
	EnvEnrich  = "JOBSCOUT_ENRICH"
	EnvWorkers = "JOBSCOUT_WORKERS"
	EnvPort    = "JOBSCOUT_PORT"
)

// LoadEnv reads a .env file from the working directory if there is one.
// Variables already set in the process win.
func LoadEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overrides cfg from JOBSCOUT_* variables. Unparseable values are
// logged and ignored.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnrich)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enrich.Enabled = b
		} else {
			log.Printf("[config] ignoring %s=%q: %v", EnvEnrich, v, err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Collect.Workers = n
		} else {
			log.Printf("[config] ignoring %s=%q", EnvWorkers, v)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		} else {
			log.Printf("[config] ignoring %s=%q", EnvPort, v)
		}
	}
}
