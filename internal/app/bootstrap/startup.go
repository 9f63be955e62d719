// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/dalemusser/threads/internal/app/resources"
	"github.com/dalemusser/threads/internal/app/system/tasks"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

var (
	sweeperMu    sync.Mutex
	stateSweeper *workers.Runner
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// shared templates, applies TIMEOUT_* overrides and starts the expired
// OAuth state sweeper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	resources.LoadSharedTemplates()

	if deps.Mongo != nil {
		job := tasks.OAuthStateCleanupJob(deps.Mongo.Database, logger)
		sweeperMu.Lock()
		stateSweeper = workers.NewRunner(job, logger, timeouts.Long())
		stateSweeper.Start()
		sweeperMu.Unlock()
	}
	return nil
}

func stopStateSweeper() {
	sweeperMu.Lock()
	defer sweeperMu.Unlock()
	if stateSweeper != nil {
		stateSweeper.Stop()
		stateSweeper = nil
	}
}
