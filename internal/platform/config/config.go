package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// DefaultGracePeriodDays applies when a company does not carry its own
	// grace period between document emission and due date.
	DefaultGracePeriodDays int

	// RefinancingWindowDays is the extended payment window granted when a
	// receivable is refinanced.
	RefinancingWindowDays int

	// RateLimit uses the limiter formatted syntax, e.g. "100-M" for 100
	// requests per minute per client IP.
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("DEFAULT_GRACE_PERIOD_DAYS", 15)
	viper.SetDefault("REFINANCING_WINDOW_DAYS", 30)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:            viper.GetString("PGSQL_URL"),
		Port:                   viper.GetString("PORT"),
		IsProduction:           viper.GetBool("IS_PRODUCTION"),
		JWTSecret:              viper.GetString("JWT_SECRET"),
		DefaultGracePeriodDays: viper.GetInt("DEFAULT_GRACE_PERIOD_DAYS"),
		RefinancingWindowDays:  viper.GetInt("REFINANCING_WINDOW_DAYS"),
		RateLimit:              viper.GetString("RATE_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL not set. Falling back to the in-memory store; data will not survive a restart.")
	}
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" && cfg.IsProduction {
		log.Println("Warning: JWT_SECRET is the default insecure key. CHANGE IT IN PRODUCTION.")
	}

	return cfg, nil
}
