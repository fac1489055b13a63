package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/vlk/settlecore/internal/adapter/http"
	"github.com/vlk/settlecore/internal/adapter/http/handler"
	postgresRepo "github.com/vlk/settlecore/internal/adapter/repository/postgres"
	redisRepo "github.com/vlk/settlecore/internal/adapter/repository/redis"
	"github.com/vlk/settlecore/internal/infrastructure/config"
	"github.com/vlk/settlecore/internal/infrastructure/logger"
	"github.com/vlk/settlecore/internal/infrastructure/metrics"
	"github.com/vlk/settlecore/internal/infrastructure/postgres"
	"github.com/vlk/settlecore/internal/infrastructure/redis"
	"github.com/vlk/settlecore/internal/infrastructure/resultpublisher"
	"github.com/vlk/settlecore/internal/lockmgr"
	"github.com/vlk/settlecore/internal/screening"
	"github.com/vlk/settlecore/internal/usecase"
)

const migrationsPath = "migrations"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "settlecore"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	sanctionsRepo := postgresRepo.NewSanctionsRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	resultCache := redisRepo.NewResultCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	m := metrics.New()
	locks := lockmgr.New()
	searcher := screening.NewSearcher()

	// Initialize use cases
	recorder := usecase.NewChainRecorder(auditRepo, idGen, m)
	verifier := usecase.NewChainVerifier(auditRepo, slog.Default(), m)
	screeningUC := usecase.NewScreeningUseCase(txManager, transferRepo, outboxRepo, recorder, searcher, idGen, m, cfg.ScreeningThreshold)
	settlementUC := usecase.NewSettlementUseCase(txManager, accountRepo, transferRepo, entryRepo, outboxRepo, recorder, locks, idGen, retrier, m, cfg.LockTimeout)
	submissionUC := usecase.NewSubmissionUseCase(txManager, transferRepo, screeningUC, settlementUC, recorder, resultCache, idGen, log.Logger, m)
	reviewUC := usecase.NewReviewUseCase(txManager, transferRepo, outboxRepo, settlementUC, recorder, idGen, log.Logger, m)
	sanctionsUC := usecase.NewSanctionsUseCase(txManager, sanctionsRepo, recorder, searcher, idGen, log.Logger, m)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, recorder)
	consistencyUC := usecase.NewConsistencyUseCase(accountRepo, entryRepo, ledgerRepo)
	queryUC := usecase.NewQueryUseCase(transferRepo, entryRepo)

	// Load the sanctions index from the stored watchlist
	if err := sanctionsUC.Rebuild(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to build sanctions index")
	}
	log.Info().Int("entries", searcher.Size()).Msg("sanctions index ready")

	// Background workers
	publisher := resultpublisher.New(resultpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  resultpublisher.NewLogPublisher(slog.Default()),
		BatchSize:  cfg.PublishBatchSize,
		Interval:   cfg.PublishInterval,
	})
	go func() {
		if err := publisher.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("result publisher stopped")
		}
	}()

	if cfg.ChainVerifyInterval > 0 {
		go func() {
			if err := verifier.Start(ctx, cfg.ChainVerifyInterval); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("chain verifier stopped")
			}
		}()
	}

	// Initialize handlers
	transferHandler := handler.NewTransferHandler(submissionUC, queryUC)
	reviewHandler := handler.NewReviewHandler(reviewUC)
	accountHandler := handler.NewAccountHandler(accountUC, queryUC, consistencyUC)
	auditHandler := handler.NewAuditHandler(verifier, consistencyUC)
	sanctionsHandler := handler.NewSanctionsHandler(sanctionsUC, screeningUC, searcher)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:           log.Logger,
		TransferHandler:  transferHandler,
		ReviewHandler:    reviewHandler,
		AccountHandler:   accountHandler,
		AuditHandler:     auditHandler,
		SanctionsHandler: sanctionsHandler,
		HealthHandler:    healthHandler,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	stop()
	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
