package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/flashqueue/internal/api"
	"github.com/vytor/flashqueue/internal/cleanup"
	"github.com/vytor/flashqueue/internal/config"
	"github.com/vytor/flashqueue/internal/db"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/repository/sqlite"
	"github.com/vytor/flashqueue/internal/services"
	"github.com/vytor/flashqueue/internal/telegram"
	"github.com/vytor/flashqueue/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("FlashQueue Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("telegram_enabled=%t", cfg.BotEnabled())
	log.Debug("telegram_workers=%d", cfg.TelegramWorkers)
	log.Debug("telegram_queue_size=%d", cfg.TelegramQueueSize)
	log.Debug("idle_session_ttl=%s", cfg.IdleSessionTTL)
	log.Debug("idle_sweep_interval=%s", cfg.IdleSweepInterval)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize services
	deckRepo := sqlite.NewDeckRepository(database.DB)
	sessionService := services.NewSessionService(sqlite.NewSessionStore(database.DB), deckRepo)
	deckService := services.NewDeckService(deckRepo)

	srv := &api.Server{
		Sessions: sessionService,
		Decks:    deckService,
		DB:       database,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.BotEnabled() {
		botAPI, err := telegram.Connect(cfg.TelegramToken)
		if err != nil {
			log.Error("failed to start telegram bot: %v", err)
			os.Exit(1)
		}
		bot := telegram.New(botAPI, sessionService, deckService, worker.NewPool(cfg.TelegramWorkers, cfg.TelegramQueueSize))
		g.Go(func() error { return bot.Run(ctx) })
	} else {
		log.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	if cfg.ReaperEnabled() {
		reaper := cleanup.NewReaper(sessionService, cfg.IdleSessionTTL, cfg.IdleSweepInterval)
		g.Go(func() error { return reaper.Run(ctx) })
	}

	if err := g.Wait(); err != nil {
		log.Error("server error: %v", err)
	}

	log.Info("===========================================")
	log.Info("FlashQueue Server Stopped")
	log.Info("===========================================")
}
