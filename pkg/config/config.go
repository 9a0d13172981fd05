package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingRPC    = errors.New("RPC_MAINNET needed on .env")
	ErrMissingAPIKey = errors.New("RESERVOIR_API_KEY or RESERVOIR_API_KEY_SECRET needed on .env")
)

// Config holds the runtime configuration for the unlockd CLI.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	RPCURL string

	ReservoirBaseURL      string
	ReservoirAPIKey       string
	ReservoirAPIKeySecret string // AWS Secrets Manager name, used when ReservoirAPIKey is empty
	AWSRegion             string
	SecretCacheTTL        time.Duration

	HTTPTimeout    time.Duration
	HTTPRetryMax   int
	RateLimitRPS   int
	RateLimitBurst int

	FixtureDir string

	// Quote cache is disabled when RedisAddr is empty.
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	QuoteCacheTTL time.Duration

	PushgatewayURL string
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:           GetEnv("SERVICE_NAME", "unlockd-cli"),
		Env:                   GetEnv("ENV", "dev"),
		LogLevel:              GetEnv("LOG_LEVEL", "info"),
		RPCURL:                GetEnv("RPC_MAINNET", ""),
		ReservoirBaseURL:      GetEnv("RESERVOIR_BASE_URL", "https://api.reservoir.tools"),
		ReservoirAPIKey:       GetEnv("RESERVOIR_API_KEY", ""),
		ReservoirAPIKeySecret: GetEnv("RESERVOIR_API_KEY_SECRET", ""),
		AWSRegion:             GetEnv("AWS_REGION", "us-east-2"),
		SecretCacheTTL:        GetEnvDuration("SECRET_CACHE_TTL", time.Hour),
		HTTPTimeout:           GetEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		HTTPRetryMax:          GetEnvInt("HTTP_RETRY_MAX", 2),
		RateLimitRPS:          GetEnvInt("RESERVOIR_RPS", 2),
		RateLimitBurst:        GetEnvInt("RESERVOIR_BURST", 4),
		FixtureDir:            GetEnv("FIXTURE_DIR", "./exec"),
		RedisAddr:             GetEnv("REDIS_ADDR", ""),
		RedisDB:               GetEnvInt("REDIS_DB", 0),
		RedisPass:             GetEnv("REDIS_PASS", ""),
		QuoteCacheTTL:         GetEnvDuration("QUOTE_CACHE_TTL", 5*time.Minute),
		PushgatewayURL:        GetEnv("PUSHGATEWAY_URL", ""),
	}
}

// ValidateGenerate checks the settings the generate command cannot run without.
func (c *Config) ValidateGenerate() error {
	if c.RPCURL == "" {
		return ErrMissingRPC
	}
	if c.ReservoirAPIKey == "" && c.ReservoirAPIKeySecret == "" {
		return ErrMissingAPIKey
	}
	return nil
}
