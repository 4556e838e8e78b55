package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/metrics"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
	"github.com/mamadbah2/stockledger/internal/repository/sheets"
	"github.com/mamadbah2/stockledger/internal/scheduler"
	"github.com/mamadbah2/stockledger/internal/server/handlers"
	"github.com/mamadbah2/stockledger/internal/server/router"
	catalogsvc "github.com/mamadbah2/stockledger/internal/service/catalog"
	inventorysvc "github.com/mamadbah2/stockledger/internal/service/inventory"
	labelsvc "github.com/mamadbah2/stockledger/internal/service/labels"
	reportingsvc "github.com/mamadbah2/stockledger/internal/service/reporting"
	ticketsvc "github.com/mamadbah2/stockledger/internal/service/tickets"
	whatsappsvc "github.com/mamadbah2/stockledger/internal/service/whatsapp"
	"github.com/mamadbah2/stockledger/pkg/clients/anthropic"
	"github.com/mamadbah2/stockledger/pkg/clients/appscript"
	whatsappclient "github.com/mamadbah2/stockledger/pkg/clients/whatsapp"
	"github.com/mamadbah2/stockledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	metrics.InitMetrics()

	sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
	if err != nil {
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	}

	scriptClient := appscript.NewClient(cfg.Script.URL, cfg.Script.Timeout)

	inventory := inventorysvc.NewService(sheetsRepo, scriptClient, cfg.Ledger, baseLogger.Named("svc.inventory"))

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	if _, err := inventory.Reload(startupCtx); err != nil {
		// The scheduled refresh and POST /api/ledger/refresh retry later.
		baseLogger.Error("initial ledger load failed", zap.Error(err))
	}
	cancelStartup()

	var writer ticketsvc.Writer = ticketsvc.ScriptWriter{Script: scriptClient}
	if cfg.Ledger.WriteMode == config.WriteModeSheets {
		writer = ticketsvc.SheetsWriter{Sheets: sheetsRepo, Range: cfg.Ledger.AppendRange()}
	}
	baseLogger.Info("ticket writer selected", zap.String("mode", cfg.Ledger.WriteMode))

	tickets := ticketsvc.NewService(ticketsvc.NewDraftStore(), inventory, writer, baseLogger.Named("svc.tickets"))
	reporting := reportingsvc.NewService(inventory, baseLogger.Named("svc.reporting"))
	labels := labelsvc.NewService(inventory)
	catalogs := catalogsvc.NewService(sheetsRepo, scriptClient, baseLogger.Named("svc.catalog"))

	var (
		snapshotStore  scheduler.SnapshotStore
		snapshotReader handlers.SnapshotReader
	)
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		snapshotStore, snapshotReader = mongoRepo, mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, inventory snapshots disabled")
	}

	var analyzer handlers.Analyzer
	if cfg.AI.AnthropicKey != "" {
		analyzer = anthropic.NewClient(cfg.AI.AnthropicKey)
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, ticket analysis disabled")
	}

	var notifier scheduler.ManagerNotifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, baseLogger.Named("svc.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp not configured, anomaly digest disabled")
	}

	engine := router.New(router.Handlers{
		Inventory: handlers.NewInventoryHandler(inventory, reporting, snapshotReader, baseLogger.Named("handlers.inventory")),
		Tickets:   handlers.NewTicketHandler(tickets, labels, analyzer, baseLogger.Named("handlers.tickets")),
		Catalogs:  handlers.NewCatalogHandler(catalogs, baseLogger.Named("handlers.catalog")),
	}, cfg.Server.AllowedOrigins, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Schedule, inventory, reporting, snapshotStore, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Script.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
