package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

const (
	defaultJWTSecret    = "a-very-secret-key-should-be-longer-and-random"
	defaultJWTExpiry    = time.Hour
	defaultJWTIssuer    = "terminal-banking"
	defaultSavingsRate  = "2.5"
	defaultKafkaTopic   = "ledger.transactions"
	defaultRateLimit    = "100-M"
	defaultLogLevel     = "info"
	defaultStoreDriver  = StoreDriverPostgres
	defaultPort         = "8080"
	defaultCORSOrigins  = "*"
	defaultRunMigration = true
)

// Config holds application configuration.
type Config struct {
	StoreDriver   string
	DatabaseURL   string
	RunMigrations bool
	Port          string
	IsProduction  bool
	LogLevel      string
	LogFile       string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	RateLimit          string
	CORSAllowedOrigins []string

	SavingsInterestRate decimal.Decimal
	BcryptCost          int

	KafkaBrokers []string
	KafkaTopic   string

	// Warnings lists the fallbacks applied while loading. They are returned
	// rather than logged because the logger is built from this config.
	Warnings []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("STORE_DRIVER", defaultStoreDriver)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("RUN_MIGRATIONS", defaultRunMigration)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", defaultJWTExpiry.String())
	v.SetDefault("JWT_ISSUER", defaultJWTIssuer)
	v.SetDefault("RATE_LIMIT", defaultRateLimit)
	v.SetDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)
	v.SetDefault("SAVINGS_INTEREST_RATE", defaultSavingsRate)
	v.SetDefault("BCRYPT_COST", 0)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", defaultKafkaTopic)
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:   v.GetString("PGSQL_URL"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		LogFile:       v.GetString("LOG_FILE"),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
		KafkaBrokers:  splitList(v.GetString("KAFKA_BROKERS")),
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER")))
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when STORE_DRIVER is %q", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want %q or %q)", cfg.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = defaultPort
		cfg.warn("PORT not set. Defaulting to %s", cfg.Port)
	}

	cfg.LogLevel = strings.ToLower(v.GetString("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		cfg.warn("JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiry, err := time.ParseDuration(jwtExpiryStr)
	if err != nil || jwtExpiry <= 0 {
		jwtExpiry = defaultJWTExpiry
		cfg.warn("Invalid value for JWT_EXPIRY_DURATION (%q). Defaulting to %s.", jwtExpiryStr, jwtExpiry)
	}
	cfg.JWTExpiryDuration = jwtExpiry

	cfg.JWTIssuer = v.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = defaultJWTIssuer
	}

	cfg.RateLimit = v.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = defaultRateLimit
	}

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{defaultCORSOrigins}
	}

	rateStr := v.GetString("SAVINGS_INTEREST_RATE")
	rate, err := decimal.NewFromString(strings.TrimSpace(rateStr))
	if err != nil || rate.IsNegative() {
		rate = decimal.RequireFromString(defaultSavingsRate)
		cfg.warn("Invalid value for SAVINGS_INTEREST_RATE (%q). Defaulting to %s.", rateStr, rate)
	}
	cfg.SavingsInterestRate = rate

	cfg.KafkaTopic = v.GetString("KAFKA_TOPIC")
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = defaultKafkaTopic
	}

	return cfg, nil
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
