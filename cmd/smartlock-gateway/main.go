package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smartlock/gateway/internal/config"
	"github.com/smartlock/gateway/internal/db"
	"github.com/smartlock/gateway/internal/httpapi"
	"github.com/smartlock/gateway/internal/logging"
	"github.com/smartlock/gateway/internal/notify"
	"github.com/smartlock/gateway/internal/smartlock/service"
	"github.com/smartlock/gateway/internal/smartlock/store/sqlite"
)

func main() {
	cfg := config.MustLoad()
	logger := logging.New("smartlock-gateway", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Fatal().Err(err).Msg("seed dev users")
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	userStore := sqlite.NewUserStore(conn)
	attemptStore := sqlite.NewAttemptStore(conn, writer)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.AdminWebhookURL != "" {
		notifier = notify.NewWebhook(cfg.AdminWebhookURL)
	} else {
		logger.Warn().Msg("no admin webhook configured, alerts will be dropped")
	}

	accessSvc := service.NewAccessService(service.AccessServiceDeps{
		Directory: service.NewDirectory(userStore),
		Attempts:  attemptStore,
		Notifier:  notifier,
		Policy: service.AccessPolicy{
			WorkdayStart:      cfg.WorkdayStart.Seconds(),
			WorkdayEnd:        cfg.WorkdayEnd.Seconds(),
			MaxHourlyAttempts: cfg.MaxHourlyAttempts,
			MaxDailyAttempts:  cfg.MaxDailyAttempts,
		},
		Logger:           logger,
		SerializePerUser: cfg.SerializePerUser,
	})
	auditSvc := service.NewAuditService(attemptStore, nil)

	pruner := service.NewAttemptPruner(attemptStore, service.PrunerConfig{
		RetentionDays: cfg.AttemptRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger: logger,
		Addr:   cfg.HTTPAddr,
		Access: accessSvc,
		Audit:  auditSvc,
	})

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPAddr).
			Str("env", cfg.Env).
			Msg("listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
