package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crowdfund-ledger/config"
	"crowdfund-ledger/internal/adapter/gateway/paystack"
	httpHandler "crowdfund-ledger/internal/adapter/http/handler"
	"crowdfund-ledger/internal/adapter/rates"
	pgStorage "crowdfund-ledger/internal/adapter/storage/postgres"
	redisStorage "crowdfund-ledger/internal/adapter/storage/redis"
	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"
	"crowdfund-ledger/internal/service"
	"crowdfund-ledger/pkg/logger"
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
		Msg("Starting Settlement Ledger Engine")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	settlementRepo := pgStorage.NewSettlementRepo(pool)
	campaignRepo := pgStorage.NewCampaignRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	settingsRepo := pgStorage.NewSettingsRepo(pool)
	eventRepo := pgStorage.NewGatewayEventRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Exchange rates: HTTP source behind a Redis cache
	rateCache := redisStorage.NewRateCache(rdb)
	rateClient := rates.NewClient(&http.Client{Timeout: cfg.Rates.Timeout}, cfg.Rates.BaseURL, cfg.Rates.APIKey, log)
	rateSource := rates.NewCachedSource(rateClient, rateCache, cfg.Rates.CacheTTL, log)

	// Gateway client (secret fetched from platform settings per call)
	gatewayClient := paystack.NewClient(&http.Client{Timeout: cfg.Gateway.Timeout}, cfg.Gateway.BaseURL, settingsRepo, log)

	// Initialize core services
	sigSvc := service.NewHMACSignatureService()
	feeSvc := service.NewFeeService(rateSource, log)
	recorder := service.NewEventRecorder(eventRepo, log)

	// Balance-holder adapters
	holders := []ports.BalanceHolder{
		service.NewCampaignHolder(campaignRepo),
		service.NewWalletHolder(walletRepo),
	}

	// A campaign goes active on its first settled pledge. Best-effort: a
	// failure here never unwinds the committed settlement.
	activateOnFirstCharge := func(ctx context.Context, record *domain.SettlementRecord) {
		if record.Holder.Kind != domain.HolderKindCampaign || record.Direction != domain.DirectionIn {
			return
		}
		if err := campaignRepo.Activate(ctx, record.Holder.ID); err != nil {
			log.Error().Err(err).Str("campaign_id", record.Holder.ID.String()).Msg("campaign activation failed")
		}
	}

	engine := service.NewSettlementEngine(
		settlementRepo,
		ledgerRepo,
		holders,
		settingsRepo,
		gatewayClient,
		feeSvc,
		transactor,
		activateOnFirstCharge,
		log,
	)

	reconSvc := service.NewReconciliationService(ledgerRepo, holders, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Engine:         engine,
		Settings:       settingsRepo,
		SigSvc:         sigSvc,
		Recorder:       recorder,
		ReconSvc:       reconSvc,
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
