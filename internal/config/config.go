package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Callback CallbackConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int

	// Rate limiting for the callback endpoints
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// DatabaseConfig holds PostgreSQL configuration for the payment ledger
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32

	// LedgerTimeout bounds every ledger access
	LedgerTimeout time.Duration
}

// RedisConfig holds the special-condition flag store configuration.
// Addr empty disables interception.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	ParkKey  string
}

// CallbackConfig holds protocol-level settings
type CallbackConfig struct {
	// MaxAge is how stale a callback timestamp may be
	MaxAge time.Duration
	// MaxFutureSkew tolerates the processor's clock running ahead of ours
	MaxFutureSkew time.Duration
	// LatencyBudget triggers the slow-request warning
	LatencyBudget time.Duration
	// AcceptPrefix drives the default authorize policy
	AcceptPrefix string
}

// SecretsConfig selects the shared-secret backend
type SecretsConfig struct {
	// Backend: "env", "local", "aws", or "vault"
	Backend string

	// env backend
	Secret string

	// local backend
	SecretFile string

	// aws backend
	AWSRegion     string
	AWSSecretName string

	// vault backend
	VaultAddress    string
	VaultToken      string
	VaultMountPath  string
	VaultSecretPath string

	CacheTTL time.Duration
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort:        getEnvAsInt("METRICS_PORT", 9090),
			RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnvAsInt("DB_PORT", 5432),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			Database:      getEnv("DB_NAME", "paynearme_callbacks"),
			SSLMode:       getEnv("DB_SSL_MODE", "disable"),
			MaxConns:      int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:      int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			LedgerTimeout: getEnvAsSeconds("LEDGER_TIMEOUT_SECS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			ParkKey:  getEnv("CALLBACK_PARK_KEY", "callbacks:park"),
		},
		Callback: CallbackConfig{
			MaxAge:        getEnvAsSeconds("CALLBACK_MAX_AGE_SECS", 300),
			MaxFutureSkew: getEnvAsSeconds("CALLBACK_FUTURE_SKEW_SECS", 60),
			LatencyBudget: time.Duration(getEnvAsInt("CALLBACK_LATENCY_BUDGET_MS", 6000)) * time.Millisecond,
			AcceptPrefix:  getEnv("AUTHORIZE_ACCEPT_PREFIX", "TEST"),
		},
		Secrets: SecretsConfig{
			Backend:         getEnv("SECRET_BACKEND", "env"),
			Secret:          getEnv("CALLBACK_SECRET", ""),
			SecretFile:      getEnv("CALLBACK_SECRET_FILE", ""),
			AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
			AWSSecretName:   getEnv("AWS_SECRET_NAME", ""),
			VaultAddress:    getEnv("VAULT_ADDR", ""),
			VaultToken:      getEnv("VAULT_TOKEN", ""),
			VaultMountPath:  getEnv("VAULT_MOUNT_PATH", "secret"),
			VaultSecretPath: getEnv("VAULT_SECRET_PATH", "paynearme/callback"),
			CacheTTL:        getEnvAsSeconds("SECRET_CACHE_TTL_SECS", 300),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate the selected secret backend
	switch cfg.Secrets.Backend {
	case "env":
		if cfg.Secrets.Secret == "" {
			return nil, fmt.Errorf("CALLBACK_SECRET is required with SECRET_BACKEND=env")
		}
	case "local":
		if cfg.Secrets.SecretFile == "" {
			return nil, fmt.Errorf("CALLBACK_SECRET_FILE is required with SECRET_BACKEND=local")
		}
	case "aws":
		if cfg.Secrets.AWSSecretName == "" {
			return nil, fmt.Errorf("AWS_SECRET_NAME is required with SECRET_BACKEND=aws")
		}
	case "vault":
		if cfg.Secrets.VaultAddress == "" || cfg.Secrets.VaultToken == "" {
			return nil, fmt.Errorf("VAULT_ADDR and VAULT_TOKEN are required with SECRET_BACKEND=vault")
		}
	default:
		return nil, fmt.Errorf("unknown SECRET_BACKEND: %s", cfg.Secrets.Backend)
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}
