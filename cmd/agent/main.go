package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/observatorycheck/internal/check"
	"github.com/hamed0406/observatorycheck/internal/config"
	"github.com/hamed0406/observatorycheck/internal/httpapi"
	apimw "github.com/hamed0406/observatorycheck/internal/httpapi/middleware"
	"github.com/hamed0406/observatorycheck/internal/logging"
	"github.com/hamed0406/observatorycheck/internal/metrics"
	"github.com/hamed0406/observatorycheck/internal/notify"
	"github.com/hamed0406/observatorycheck/internal/observatory"
	"github.com/hamed0406/observatorycheck/internal/repo"
	"github.com/hamed0406/observatorycheck/internal/repo/memory"
	"github.com/hamed0406/observatorycheck/internal/repo/postgres"
	"github.com/hamed0406/observatorycheck/internal/scheduler"
)

type store interface {
	repo.ObservationStore
	repo.GradeStore
}

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks, err := config.LoadChecks(cfg.ChecksPath)
	if err != nil {
		logger.Fatal("checks_load_error", zap.String("path", cfg.ChecksPath), zap.Error(err))
	}
	instances := checks.ResolveInstances()
	logger.Info("checks_loaded", zap.String("path", cfg.ChecksPath), zap.Int("instances", len(instances)))

	var st store = memory.New()
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("db_connect_error", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("db_schema_error", zap.Error(err))
		}
		st = pg
		logger.Info("store_postgres")
	} else {
		logger.Info("store_memory")
	}

	exporter := metrics.NewExporter()
	obsCheck := check.New(logger, observatory.NewClient(logger))
	runner := scheduler.NewRunner(logger, obsCheck, instances, st, cfg.CheckInterval, cfg.MaxConcurrent, exporter)
	go runner.Run(ctx)

	var notifiers notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		notifiers = append(notifiers, s)
	}
	alerter := scheduler.NewAlerter(logger, st, st, notifiers, scheduler.AlerterConfig{
		AlertOnRecovery: cfg.AlertOnRecovery,
		Cooldown:        cfg.AlertCooldown,
		PollInterval:    time.Minute,
	})
	go func() {
		if err := alerter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("alerter_stopped", zap.Error(err))
		}
	}()

	api := httpapi.NewServer(logger, instances, st, runner, exporter.Registry())
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen_error", zap.Error(err))
	}
	logger.Info("agent_stopped")
}
