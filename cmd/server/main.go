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

	"github.com/mamadbah2/pantry/internal/cache"
	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/repository/mongodb"
	"github.com/mamadbah2/pantry/internal/repository/sheets"
	"github.com/mamadbah2/pantry/internal/scheduler"
	"github.com/mamadbah2/pantry/internal/server/handlers"
	"github.com/mamadbah2/pantry/internal/server/router"
	expirysvc "github.com/mamadbah2/pantry/internal/service/expiry"
	pantrysvc "github.com/mamadbah2/pantry/internal/service/pantry"
	voicesvc "github.com/mamadbah2/pantry/internal/service/voice"
	whatsappsvc "github.com/mamadbah2/pantry/internal/service/whatsapp"
	"github.com/mamadbah2/pantry/pkg/clients/anthropic"
	"github.com/mamadbah2/pantry/pkg/clients/pantryapi"
	whatsappclient "github.com/mamadbah2/pantry/pkg/clients/whatsapp"
	"github.com/mamadbah2/pantry/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Schedule.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	recipeCache, err := cache.NewRecipeCache(startupCtx, cfg.Redis, logger.Named(baseLogger, "cache.recipes"))
	if err != nil {
		baseLogger.Fatal("failed to init recipe cache", zap.Error(err))
	}
	defer func() { _ = recipeCache.Close() }()

	mongoRepo, err := mongodb.NewMongoDBRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var journal expirysvc.Journal
	if cfg.Sheets.Enabled() {
		store, err := sheets.NewSheetRowStore(startupCtx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets journal", zap.Error(err))
		}
		journal = sheets.NewJournal(store, logger.Named(baseLogger, "repo.journal"))
	} else {
		baseLogger.Warn("google sheets not configured, sweep journal disabled")
	}

	var aiClient voicesvc.Extractor
	if cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(cfg.AI)
		baseLogger.Info("anthropic ai client enabled", zap.String("model", cfg.AI.Model))
	} else {
		baseLogger.Warn("anthropic api key missing, voice commands use keyword parsing")
	}

	api := pantryapi.NewClient(cfg.PantryAPI)
	pantryService := pantrysvc.NewService(api, recipeCache, loc, logger.Named(baseLogger, "svc.pantry"))
	voiceService := voicesvc.NewService(pantryService, aiClient, logger.Named(baseLogger, "svc.voice"))

	var (
		messagingSvc   *whatsappsvc.MetaWhatsAppService
		notifier       expirysvc.Notifier
		webhookHandler *handlers.WebhookHandler
	)
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc = whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, voiceService, logger.Named(baseLogger, "svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp"))
		if cfg.WhatsApp.NotifyTo != "" {
			notifier = messagingSvc
		}
	} else {
		baseLogger.Warn("whatsapp not configured, webhook and push notifications disabled")
	}

	expiryService := expirysvc.NewService(api, mongoRepo, journal, notifier, loc, logger.Named(baseLogger, "svc.expiry"))

	engine := router.New(*cfg, router.Handlers{
		Pantry:  handlers.NewPantryHandler(pantryService, logger.Named(baseLogger, "handlers.pantry")),
		Expiry:  handlers.NewExpiryHandler(expiryService, logger.Named(baseLogger, "handlers.expiry")),
		Voice:   handlers.NewVoiceHandler(voiceService, logger.Named(baseLogger, "handlers.voice")),
		Webhook: webhookHandler,
	}, logger.Named(baseLogger, "router"))

	sched := scheduler.NewScheduler(cfg.Schedule, loc, expiryService, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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
