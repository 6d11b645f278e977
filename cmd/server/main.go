package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"atelier/internal/app"
	"atelier/internal/platform/config"
	"atelier/internal/platform/httpserver"
	"atelier/internal/platform/logger"
	"atelier/internal/platform/metrics"
	"atelier/internal/platform/tracing"
	"atelier/internal/store/postgres"
	httptransport "atelier/internal/transport/http"
	"atelier/pkg/platform/audit/outbox"
	"atelier/pkg/platform/middleware/auth"
)

const serviceName = "atelier"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/usecase.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	reg := metrics.NewRegistry()
	deps, err := app.Build(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer deps.Close()

	if deps.DB != nil {
		if err := postgres.Migrate(deps.DB, "up"); err != nil {
			return err
		}
	}

	routerCfg := httptransport.RouterConfig{
		Observer:       deps.Metrics,
		MetricsHandler: metrics.Handler(reg),
		Health:         deps.Health,
	}
	if cfg.JWTSigningKey != "" {
		routerCfg.Validator = auth.NewJWTService(cfg.JWTSigningKey)
	} else {
		log.Warn("ATELIER_JWT_SIGNING_KEY not set, every request is anonymous")
	}

	handler := httptransport.NewHandler(deps.Deps, deps.Tx, deps.Admin,
		httptransport.WithAuditSink(deps.Journal),
		httptransport.WithLogger(log),
	)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, routerCfg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, log)
	})

	if cfg.RelayEnabled() {
		client, err := outbox.NewKafkaClient(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer client.Close()

		relay := outbox.NewRelay(outbox.NewPostgresQueue(deps.DB), client, cfg.Kafka.Topic,
			outbox.WithPollInterval(cfg.Kafka.PollInterval),
			outbox.WithLogger(log),
		)
		g.Go(func() error { return relay.Run(gctx) })
	}

	return g.Wait()
}
