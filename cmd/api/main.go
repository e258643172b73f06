package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabito1451/Aframp/config"
	"github.com/gabito1451/Aframp/internal/adapter/horizon"
	httpHandler "github.com/gabito1451/Aframp/internal/adapter/http/handler"
	"github.com/gabito1451/Aframp/internal/adapter/settlement"
	pgStorage "github.com/gabito1451/Aframp/internal/adapter/storage/postgres"
	redisStorage "github.com/gabito1451/Aframp/internal/adapter/storage/redis"
	"github.com/gabito1451/Aframp/internal/adapter/wallet"
	"github.com/gabito1451/Aframp/internal/core/ports"
	"github.com/gabito1451/Aframp/internal/service"
	"github.com/gabito1451/Aframp/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("demo", cfg.Server.Demo).
		Msg("Starting Aframp on-ramp service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	if err := pgStorage.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories and stores
	orderRepo := redisStorage.NewOrderRepo(rdb)
	draftStore := redisStorage.NewDraftStore(rdb)
	sessionStore := redisStorage.NewSessionStore(rdb)
	archiveRepo := pgStorage.NewOrderArchiveRepo(pool)

	// Initialize outbound adapters
	settlementSim := settlement.NewSimulator(cfg.Settlement, log)
	balanceSource := horizon.NewClient(cfg.Horizon, log)
	walletProvider := wallet.NewSimProvider(cfg.Wallet)

	// Initialize business services
	watcher := service.NewOrderWatcher()
	notifier := service.NewNotifierService(&http.Client{Timeout: 10 * time.Second}, cfg.Orders.NotifyURL, log)
	orderSvc := service.NewOrderService(orderRepo, cfg.Orders.Rates, cfg.Orders.PaymentWindow, cfg.Server.Demo, log)
	progressionSvc := service.NewProgressionService(orderRepo, settlementSim, archiveRepo, notifier, watcher, cfg.Progression, log)
	tracker := service.NewPollerManager(progressionSvc, cfg.Progression.PollInterval, log)
	defer tracker.Close()
	walletSvc := service.NewWalletService(walletProvider, balanceSource, sessionStore, cfg.Wallet.BalanceRefreshInterval, log)

	// Restore a remembered wallet session, if any
	walletSvc.AutoReconnect(ctx)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		OrderSvc:       orderSvc,
		Tracker:        tracker,
		Subscriber:     watcher,
		WalletSvc:      walletSvc,
		DraftStore:     draftStore,
		Archive:        archiveRepo,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
