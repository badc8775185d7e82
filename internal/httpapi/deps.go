package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/runner"
)

type Deps struct {
	// Ctx bounds background searches started over HTTP.
	Ctx context.Context

	DB *sql.DB

	Hub *events.Hub

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Runner *runner.Runner
}
