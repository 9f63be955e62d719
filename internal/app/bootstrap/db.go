// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/threads/internal/app/system/indexes"
	"github.com/dalemusser/threads/internal/app/system/mongoconn"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ConnectDB creates the shared MongoDB connector and makes a first connect
// attempt. Neither a missing URI nor an unreachable server aborts startup:
// database-backed routes answer 503 and retry the connect on each request.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	conn := mongoconn.New(mongoconn.Options{
		URI:         appCfg.MongoURI,
		Database:    appCfg.MongoDatabase,
		MaxPoolSize: appCfg.MongoMaxPoolSize,
		MinPoolSize: appCfg.MongoMinPoolSize,
	}, logger)
	deps := DBDeps{Mongo: conn}

	if !conn.Configured() {
		logger.Warn("mongo_uri not set; database-backed routes will answer 503")
		return deps, nil
	}
	if _, err := conn.Client(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return deps, err
		}
		logger.Warn("MongoDB unreachable at startup; connecting on demand", zap.Error(err))
	}
	return deps, nil
}

// EnsureSchema creates the collection indexes the stores rely on. When the
// database is not connected yet, index creation runs on the first successful
// connect instead.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ensure := func(ctx context.Context, db *mongo.Database) error {
		ictx, cancel := context.WithTimeout(ctx, timeouts.Long())
		defer cancel()

		if err := indexes.EnsureAll(ictx, db); err != nil {
			logger.Error("ensure indexes failed", zap.Error(err))
			return fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("indexes ensured", zap.String("database", db.Name()))
		return nil
	}
	return deps.Mongo.AfterConnect(ctx, ensure)
}
