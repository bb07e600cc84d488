// Package bootstrap wires the shared runtime every command needs: tracing,
// the database with its schema, and the optional redis client.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"talents/internal/cache"
	"talents/internal/config"
	"talents/internal/database"
	"talents/internal/models"
	"talents/internal/observability"
	"talents/internal/seed"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	ServiceName string
	ApplySchema bool
	SeedDemo    bool
}

// Runtime holds the connections opened by InitRuntime.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime starts tracing, connects to the database and redis, and
// optionally applies the schema and seeds demo data. Redis may be nil.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap needs a config")
	}
	if cfg.Env == "development" {
		observability.SetLevel(slog.LevelDebug)
	}

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "talents-api"
	}
	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampling,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	span, ctx := observability.NewSpan(ctx, "bootstrap.init_runtime")
	defer span.End()

	db, err := database.Connect(cfg)
	if err != nil {
		span.SetError(err)
		_ = shutdown(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt := &Runtime{DB: db, shutdownTracing: shutdown}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			span.SetError(err)
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("schema apply failed: %w", err)
		}
	}

	rt.Redis = cache.InitRedis(cfg.RedisURL)
	span.AddAttributes(
		attribute.Bool("schema.applied", opts.ApplySchema),
		attribute.Bool("redis.available", rt.Redis != nil),
	)

	if opts.SeedDemo {
		if err := seedDemo(ctx, cfg, db); err != nil {
			span.SetError(err)
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("demo seed failed: %w", err)
		}
	}

	observability.GlobalLogger.Info("runtime ready",
		"service", serviceName,
		"env", cfg.Env,
		"trace_id", span.TraceID(),
	)
	return rt, nil
}

// seedDemo fills an empty development database. Production and databases
// that already hold users are left alone.
func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg.IsProduction() {
		return errors.New("demo data cannot be seeded in production")
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		observability.GlobalLogger.Info("demo seed skipped, database not empty", "users", users)
		return nil
	}

	_, err := seed.Seed(ctx, db, seed.DefaultOptions())
	return err
}

// ShutdownTracing flushes pending spans.
func (r *Runtime) ShutdownTracing(ctx context.Context) error {
	if r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}

// Close releases the database, redis and tracer.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if sqlDB, err := r.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	errs = append(errs, r.ShutdownTracing(ctx))
	return errors.Join(errs...)
}
