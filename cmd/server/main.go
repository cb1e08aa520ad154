package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/lagranja/livestock/internal/config"
	"github.com/lagranja/livestock/internal/repository"
	"github.com/lagranja/livestock/internal/repository/memory"
	"github.com/lagranja/livestock/internal/repository/mongodb"
	"github.com/lagranja/livestock/internal/repository/sheets"
	"github.com/lagranja/livestock/internal/scheduler"
	gqlserver "github.com/lagranja/livestock/internal/server/graphql"
	"github.com/lagranja/livestock/internal/server/handlers"
	"github.com/lagranja/livestock/internal/server/router"
	auditsvc "github.com/lagranja/livestock/internal/service/audit"
	importersvc "github.com/lagranja/livestock/internal/service/importer"
	ledgersvc "github.com/lagranja/livestock/internal/service/ledger"
	registrysvc "github.com/lagranja/livestock/internal/service/registry"
	reportingsvc "github.com/lagranja/livestock/internal/service/reporting"
	"github.com/lagranja/livestock/pkg/clients/alerts"
	"github.com/lagranja/livestock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store repository.Store
	if cfg.MongoDB.URI == "memory" {
		baseLogger.Info("using in-process store")
		store = memory.NewStore()
	} else {
		mongoStore, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
		}
		defer func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoStore
	}

	clientSvc := registrysvc.NewClientService(store, baseLogger.Named("svc.clients"))
	feedTypeSvc := registrysvc.NewFeedTypeService(store, baseLogger.Named("svc.feedtypes"))
	animalSvc := registrysvc.NewAnimalService(store, baseLogger.Named("svc.animals"))
	ledgerSvc := ledgersvc.NewService(store, baseLogger.Named("svc.ledger"))
	reportingSvc := reportingsvc.NewService(store, baseLogger.Named("svc.reporting"))
	importerSvc := importersvc.NewService(store, clientSvc, feedTypeSvc, animalSvc, baseLogger.Named("svc.importer"))

	var notifier alerts.Notifier
	if cfg.Alerts.WebhookURL != "" {
		notifier = alerts.NewWebhookClient(cfg.Alerts.WebhookURL)
		baseLogger.Info("low-stock webhook alerts enabled")
	}

	var exporter sheets.Exporter
	if cfg.SheetsEnabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("consumption report export to sheets enabled")
	}

	auditSvc := auditsvc.NewService(store, reportingSvc, notifier, exporter, cfg.Audit.LowStockThreshold, baseLogger.Named("svc.audit"))

	schema, err := gqlserver.NewSchema(gqlserver.Services{
		Clients:   clientSvc,
		FeedTypes: feedTypeSvc,
		Animals:   animalSvc,
		Ledger:    ledgerSvc,
		Reporting: reportingSvc,
	})
	if err != nil {
		baseLogger.Fatal("failed to build graphql schema", zap.Error(err))
	}

	engine := router.New(router.Handlers{
		Clients:   handlers.NewClientHandler(clientSvc, baseLogger.Named("handlers.clients")),
		FeedTypes: handlers.NewFeedTypeHandler(feedTypeSvc, baseLogger.Named("handlers.feedtypes")),
		Animals:   handlers.NewAnimalHandler(animalSvc, ledgerSvc, baseLogger.Named("handlers.animals")),
		Reports:   handlers.NewReportHandler(reportingSvc, baseLogger.Named("handlers.reports")),
		Imports:   handlers.NewImportHandler(importerSvc, baseLogger.Named("handlers.imports")),
		Audit:     handlers.NewAuditHandler(auditSvc, baseLogger.Named("handlers.audit")),
		GraphQL:   gqlserver.Handler(schema, baseLogger.Named("handlers.graphql")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, auditSvc, baseLogger.Named("scheduler"))
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
