package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/rifqipratama/sibat/internal/config"
	"github.com/rifqipratama/sibat/internal/events"
	"github.com/rifqipratama/sibat/internal/repository/sheets"
	"github.com/rifqipratama/sibat/internal/repository/sqlstore"
	"github.com/rifqipratama/sibat/internal/scheduler"
	"github.com/rifqipratama/sibat/internal/server/handlers"
	"github.com/rifqipratama/sibat/internal/server/router"
	"github.com/rifqipratama/sibat/internal/service/audit"
	authsvc "github.com/rifqipratama/sibat/internal/service/auth"
	partnersvc "github.com/rifqipratama/sibat/internal/service/partner"
	protocolsvc "github.com/rifqipratama/sibat/internal/service/protocol"
	reportingsvc "github.com/rifqipratama/sibat/internal/service/reporting"
	"github.com/rifqipratama/sibat/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := sqlstore.Open(context.Background(), cfg.Database.DSN)
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close database", zap.Error(err))
		}
	}()

	var exporter sheets.Exporter
	if cfg.SheetsEnabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("google sheets export enabled")
	}

	var broadcaster events.Broadcaster = events.NopBroadcaster{}
	if cfg.Broadcast.WebhookURL != "" {
		broadcaster = events.NewWebhookBroadcaster(cfg.Broadcast.WebhookURL, logger.Named(baseLogger, "events"))
		baseLogger.Info("event webhook enabled")
	}

	recorder := audit.NewRecorder(store, logger.Named(baseLogger, "svc.audit"))
	authService := authsvc.NewService(store, logger.Named(baseLogger, "svc.auth"))
	partnerService := partnersvc.NewService(store, recorder, logger.Named(baseLogger, "svc.partner"))
	protocolService := protocolsvc.NewService(store, protocolsvc.NewGenerator(), broadcaster, recorder, logger.Named(baseLogger, "svc.protocol"))
	reportingService := reportingsvc.NewService(store, exporter, logger.Named(baseLogger, "svc.reporting"))

	if err := authService.EnsureDefaultAdmin(context.Background(), cfg.Auth.AdminPassword); err != nil {
		baseLogger.Fatal("failed to seed admin account", zap.Error(err))
	}

	engine := router.New(router.Handlers{
		Auth:      handlers.NewAuthHandler(authService, logger.Named(baseLogger, "handlers.auth")),
		Partner:   handlers.NewPartnerHandler(partnerService, logger.Named(baseLogger, "handlers.partner")),
		Protocol:  handlers.NewProtocolHandler(protocolService, logger.Named(baseLogger, "handlers.protocol")),
		Reporting: handlers.NewReportingHandler(reportingService, recorder, logger.Named(baseLogger, "handlers.reporting")),
	}, authService, logger.Named(baseLogger, "router"))

	sched := scheduler.NewScheduler(cfg.Reporting, reportingService, logger.Named(baseLogger, "scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
