// Package config loads CLI configuration from file, environment and .env.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the CLI configuration.
type Config struct {
	Dialect     string
	DatabaseURL string
	Debug       bool
}

// Load reads configuration from .sqlexpr.yaml in the working directory,
// SQLEXPR_* environment variables and a local .env file. Missing sources
// are not errors.
func Load() (*Config, error) {
	viper.SetConfigName(".sqlexpr")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SQLEXPR")
	viper.AutomaticEnv()

	viper.SetDefault("dialect", "postgres")
	viper.SetDefault("debug", false)

	_ = viper.ReadInConfig()

	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	return &Config{
		Dialect:     viper.GetString("dialect"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Debug:       viper.GetBool("debug"),
	}, nil
}
