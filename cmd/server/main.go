package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/paynearme-callbacks/internal/adapters/cache"
	"github.com/kevin07696/paynearme-callbacks/internal/adapters/memory"
	"github.com/kevin07696/paynearme-callbacks/internal/adapters/postgres"
	"github.com/kevin07696/paynearme-callbacks/internal/adapters/secrets"
	"github.com/kevin07696/paynearme-callbacks/internal/config"
	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
	callbackHandler "github.com/kevin07696/paynearme-callbacks/internal/handlers/callbacks"
	callbackService "github.com/kevin07696/paynearme-callbacks/internal/services/callbacks"
	"github.com/kevin07696/paynearme-callbacks/internal/signature"
	"github.com/kevin07696/paynearme-callbacks/pkg/middleware"
	"github.com/kevin07696/paynearme-callbacks/pkg/observability"
)

const version = "0.1.0"

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		bootstrap, _ := zap.NewDevelopment()
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting PayNearMe callbacks receiver",
		zap.String("version", version),
	)

	// Idempotency ledger: PostgreSQL in production, in-memory for local
	// development only.
	var ledger ports.PaymentLedger
	var dbPool *pgxpool.Pool
	if getEnv("LEDGER_BACKEND", "postgres") == "memory" {
		logger.Warn("Using in-memory ledger; confirm dedup will not survive restarts")
		ledger = memory.NewLedger()
	} else {
		dbPool, err = initDatabase(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer dbPool.Close()
		ledger = postgres.NewLedgerRepository(dbPool, logger, cfg.Database.LedgerTimeout)

		logger.Info("Ledger database connection established",
			zap.String("database", cfg.Database.Database),
		)
	}

	// Special-condition flag store (optional)
	var rdb *redis.Client
	var interceptor ports.Interceptor
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		interceptor = cache.NewFlagInterceptor(rdb, cfg.Redis.ParkKey, logger)
		logger.Info("Special-condition interceptor enabled",
			zap.String("redis_addr", cfg.Redis.Addr),
			zap.String("park_key", cfg.Redis.ParkKey),
		)
	}

	secretSource, err := initSecretSource(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize secret source", zap.Error(err))
	}

	svc := callbackService.NewService(
		signature.NewSigner(secretSource),
		signature.NewFreshnessChecker(cfg.Callback.MaxAge, cfg.Callback.MaxFutureSkew),
		ledger,
		interceptor,
		callbackService.PrefixPolicy{Prefix: cfg.Callback.AcceptPrefix},
		callbackService.NewLogRecorder(logger),
		logger,
	)

	authorizeHdlr := callbackHandler.NewAuthorizeHandler(svc, logger)
	confirmHdlr := callbackHandler.NewConfirmHandler(svc, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst, logger)
	defer rateLimiter.Shutdown()

	mux := http.NewServeMux()
	mux.HandleFunc("/authorize", rateLimiter.Wrap(
		callbackHandler.Timed("authorize", cfg.Callback.LatencyBudget, logger, authorizeHdlr.Handle)))
	mux.HandleFunc("/confirm", rateLimiter.Wrap(
		callbackHandler.Timed("confirm", cfg.Callback.LatencyBudget, logger, confirmHdlr.Handle)))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: mux,
	}

	// Metrics and health on a separate port
	healthChecker := observability.NewHealthChecker(dbPool, rdb)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", observability.MetricsHandler())
	metricsMux.HandleFunc("/health", healthChecker.HealthHandler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	go func() {
		logger.Info("Callback server listening",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("Metrics server listening",
			zap.Int("port", cfg.Server.MetricsPort),
		)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Callback server shutdown error", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server shutdown error", zap.Error(err))
	}

	logger.Info("Servers stopped")
}

// initLogger builds the zap logger from configuration. An unparseable level
// falls back to info.
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, _ := zapCfg.Build()
	return logger
}

// initDatabase initializes the PostgreSQL connection pool
func initDatabase(cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// initSecretSource selects the shared-secret backend from configuration.
func initSecretSource(cfg *config.Config, logger *zap.Logger) (ports.SecretSource, error) {
	switch cfg.Secrets.Backend {
	case "env":
		logger.Warn("Shared secret loaded from environment; use aws or vault in production")
		return secrets.NewStaticSource(cfg.Secrets.Secret), nil
	case "local":
		return secrets.NewLocalSource(cfg.Secrets.SecretFile, logger), nil
	case "aws":
		return secrets.NewAWSSource(context.Background(), &secrets.AWSSourceConfig{
			Region:     cfg.Secrets.AWSRegion,
			SecretName: cfg.Secrets.AWSSecretName,
			CacheTTL:   cfg.Secrets.CacheTTL,
		}, logger)
	case "vault":
		return secrets.NewVaultSource(&secrets.VaultSourceConfig{
			Address:    cfg.Secrets.VaultAddress,
			Token:      cfg.Secrets.VaultToken,
			MountPath:  cfg.Secrets.VaultMountPath,
			SecretPath: cfg.Secrets.VaultSecretPath,
			CacheTTL:   cfg.Secrets.CacheTTL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown secret backend: %s", cfg.Secrets.Backend)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
