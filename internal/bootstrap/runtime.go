// Package bootstrap wires process-level dependencies before the server starts.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"biolink/internal/cache"
	"biolink/internal/config"
	"biolink/internal/database"
	"biolink/internal/middleware"
	"biolink/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the shared handles created at startup.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	// ShutdownTracing flushes pending spans; it is never nil.
	ShutdownTracing func(context.Context) error
}

// InitRuntime connects to the database, applies the schema once, dials Redis
// when configured and prepares the avatar upload directory.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		Enabled:        cfg.TracingEnabled,
		ServiceName:    "biolink",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		_ = database.Close(db)
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("schema apply failed: %w", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		_ = database.Close(db)
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("create upload dir %q: %w", cfg.UploadDir, err)
	}

	// A missing or unreachable Redis leaves the client nil; caching and
	// session revocation are then disabled.
	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()

	middleware.Logger.Info("Runtime initialized",
		slog.String("db_driver", cfg.DBDriver),
		slog.Bool("redis", rdb != nil),
		slog.String("upload_dir", cfg.UploadDir),
	)

	return &Runtime{DB: db, Redis: rdb, ShutdownTracing: shutdownTracing}, nil
}
