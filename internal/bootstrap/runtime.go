// Package bootstrap wires process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"kumatter/internal/cache"
	"kumatter/internal/config"
	"kumatter/internal/database"
	"kumatter/internal/middleware"
	"kumatter/internal/models"
	"kumatter/internal/observability"
	"kumatter/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo data. Ignored in production.
	SeedDemo bool
	Seed     seed.Options
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
// Redis is optional: a nil client is returned when it is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()
	if r == nil {
		middleware.Logger.Warn("redis unavailable; caching, logout and realtime fan-out are disabled")
	}

	if opts.SeedDemo && !cfg.IsProduction() {
		if err := seedIfEmpty(db, opts.Seed); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// InitTracing starts the tracer provider described by cfg. The returned
// function flushes and stops it.
func InitTracing(cfg *config.Config) (func(context.Context) error, error) {
	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    "kumatter-api",
		ServiceVersion: Version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
}

// Version is stamped at build time with -ldflags "-X kumatter/internal/bootstrap.Version=...".
var Version = "dev"

func seedIfEmpty(db *gorm.DB, opts seed.Options) error {
	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.Info("demo seed skipped; database already has users", "users", users)
		return nil
	}
	_, err := seed.NewSeeder(db, opts).Seed()
	return err
}
