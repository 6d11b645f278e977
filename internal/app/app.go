// Package app assembles the repositories, audit journal and services selected
// by config. Both the HTTP server and atelierctl build on it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"atelier/internal/platform/config"
	"atelier/internal/platform/metrics"
	platformredis "atelier/internal/platform/redis"
	"atelier/internal/ports"
	"atelier/internal/store/memory"
	"atelier/internal/store/postgres"
	"atelier/internal/usecase"
	"atelier/internal/useradmin"
	audit "atelier/pkg/platform/audit"
	"atelier/pkg/platform/audit/publisher"
	auditmemory "atelier/pkg/platform/audit/store/memory"
	auditpg "atelier/pkg/platform/audit/store/postgres"
	auditredis "atelier/pkg/platform/audit/store/redis"
)

// App is the assembled dependency graph.
type App struct {
	Deps    usecase.Deps
	Tx      ports.TxRunner
	Roles   ports.RoleRepository
	Admin   *useradmin.Service
	Journal *publisher.Publisher
	Metrics *metrics.Metrics

	// DB is nil for the memory store.
	DB *sql.DB
	// Redis is nil unless ATELIER_REDIS_URL is set.
	Redis *platformredis.Client

	closers []func() error
}

// Build wires the stores named by cfg. reg may be nil, in which case the
// collectors are created but not registered.
func Build(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Metrics: metrics.New(reg)}

	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		a.DB = db
		a.closers = append(a.closers, db.Close)

		a.Deps = usecase.Deps{
			Users:         postgres.NewUserStore(db),
			Events:        postgres.NewEventStore(db),
			Registrations: postgres.NewRegistrationStore(db),
		}
		a.Roles = postgres.NewRoleStore(db)
		a.Tx = postgres.NewTxRunner(db)
	default:
		stores := memory.New()
		a.Deps = usecase.Deps{
			Users:         stores.Users,
			Events:        stores.Events,
			Registrations: stores.Registrations,
		}
		a.Roles = stores.Roles
		a.Tx = stores.Tx
	}
	a.Deps.NewID = uuid.NewString
	a.Deps.Metrics = a.Metrics

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	if redisClient != nil {
		a.Redis = redisClient
		a.closers = append(a.closers, redisClient.Close)
	}

	var primary, mirror audit.Store
	switch cfg.AuditSink {
	case config.SinkPostgres:
		if a.DB == nil {
			a.Close()
			return nil, errors.New("postgres audit sink requires the postgres store")
		}
		primary = auditpg.New(a.DB)
	case config.SinkRedis:
		if a.Redis == nil {
			a.Close()
			return nil, errors.New("redis audit sink requires ATELIER_REDIS_URL")
		}
		if a.DB != nil {
			a.Close()
			return nil, errors.New("redis audit sink cannot be combined with the postgres store")
		}
		primary = auditredis.New(a.Redis, cfg.Redis.Stream)
	default:
		primary = auditmemory.NewInMemoryStore()
	}
	if a.Redis != nil && cfg.AuditSink != config.SinkRedis {
		mirror = auditredis.New(a.Redis, cfg.Redis.Stream)
	}

	opts := []publisher.Option{
		publisher.WithLogger(logger),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
	}
	if mirror != nil {
		opts = append(opts, publisher.WithMirror(mirror))
	}
	a.Journal = publisher.New(primary, opts...)
	a.closers = append(a.closers, a.Journal.Close)

	a.Admin = useradmin.New(a.Deps.Users, a.Roles,
		useradmin.WithAuditSink(a.Journal),
		useradmin.WithLogger(logger),
	)

	logger.InfoContext(ctx, "dependencies assembled",
		"store", cfg.Store,
		"audit_sink", cfg.AuditSink,
		"audit_mirror", mirror != nil,
	)
	return a, nil
}

// Health pings the backing services that are configured.
func (a *App) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if a.DB != nil {
		if err := a.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
