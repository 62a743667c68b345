package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/config"
	"github.com/mamadbah2/microgreens/internal/repository/mongodb"
	rediscache "github.com/mamadbah2/microgreens/internal/repository/redis"
	"github.com/mamadbah2/microgreens/internal/repository/s3backup"
	"github.com/mamadbah2/microgreens/internal/repository/sheets"
	"github.com/mamadbah2/microgreens/internal/scheduler"
	"github.com/mamadbah2/microgreens/internal/server/handlers"
	"github.com/mamadbah2/microgreens/internal/server/router"
	commandsvc "github.com/mamadbah2/microgreens/internal/service/commands"
	"github.com/mamadbah2/microgreens/internal/service/planning"
	reportingsvc "github.com/mamadbah2/microgreens/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/microgreens/internal/service/whatsapp"
	"github.com/mamadbah2/microgreens/internal/store"
	"github.com/mamadbah2/microgreens/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/microgreens/pkg/clients/whatsapp"
	"github.com/mamadbah2/microgreens/pkg/logger"
)

const startupTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc := cfg.Location()
	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	// Persistence
	var repo store.Repository
	var summaryRepo reportingsvc.SummaryRepository
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(startCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		repo = mongoRepo
		summaryRepo = mongoRepo
	} else {
		baseLogger.Warn("mongodb not configured, application data is kept in memory only")
	}

	st := store.Open(startCtx, repo, loc, logger.Named(baseLogger, "svc.store"))

	// AI forecast and advice
	var forecaster planning.ForecastProvider
	var advisor planning.SuggestionProvider
	if cfg.AI.Enabled() {
		aiClient := anthropic.NewClient(cfg.AI.AnthropicKey, cfg.AI.Model)
		forecaster = aiClient
		advisor = aiClient
		baseLogger.Info("anthropic ai client enabled", zap.String("model", cfg.AI.Model))

		if cfg.Redis.Enabled() {
			redisClient, err := rediscache.NewClient(startCtx, cfg.Redis)
			if err != nil {
				baseLogger.Error("redis unavailable, forecasts will not be cached", zap.Error(err))
			} else {
				defer func() { _ = redisClient.Close() }()
				cache := rediscache.NewForecastCache(redisClient, cfg.AI.ForecastTTL)
				forecaster = planning.NewCachedForecaster(aiClient, cache, logger.Named(baseLogger, "svc.forecast_cache"))
			}
		}
	} else {
		baseLogger.Warn("anthropic api key missing, forecasts and suggestions disabled")
	}

	planner := planning.NewPlanner(forecaster, loc, logger.Named(baseLogger, "svc.planning"))
	reportingSvc := reportingsvc.NewService(st, summaryRepo, logger.Named(baseLogger, "svc.reporting"))
	farmHandler := handlers.NewFarmHandler(st, planner, advisor, logger.Named(baseLogger, "handlers.farm"))

	deps := scheduler.Deps{State: st, Planner: planner, Reporter: reportingSvc}

	// WhatsApp operations channel
	var webhookHandler *handlers.WebhookHandler
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(st, planner, logger.Named(baseLogger, "svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, logger.Named(baseLogger, "svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp"))
		if cfg.WhatsApp.ManagerNumber != "" {
			deps.Notifier = messagingSvc
		} else if len(cfg.WhatsApp.AllowedSenders) == 0 {
			baseLogger.Warn("no manager number or allowed senders configured, any whatsapp number can run commands")
		}
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startCtx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Error("failed to init sheets repository, plan export disabled", zap.Error(err))
		} else {
			deps.Sheet = sheetsRepo
		}
	}

	if cfg.Backup.Enabled() {
		backup, err := s3backup.New(startCtx, cfg.Backup, logger.Named(baseLogger, "repo.s3backup"))
		if err != nil {
			baseLogger.Error("failed to init s3 backup, backups disabled", zap.Error(err))
		} else {
			deps.Backup = backup
		}
	}
	if deps.Backup == nil {
		cfg.Scheduler.BackupCron = ""
	}

	engine := router.New(cfg.Server, farmHandler, webhookHandler, logger.Named(baseLogger, "router"))

	sched := scheduler.NewScheduler(*cfg, loc, deps, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("timezone", loc.String()))
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
