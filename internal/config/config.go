package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Engine EngineConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// EngineConfig tunes the computation engine defaults.
type EngineConfig struct {
	MaxShifts       int
	DedupGapMinutes int
	PairWindowHours int
	RunWorkers      int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Engine configuration
	maxShifts, err := strconv.Atoi(getEnv("ENGINE_MAX_SHIFTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_MAX_SHIFTS: %w", err)
	}
	dedupGap, err := strconv.Atoi(getEnv("ENGINE_DEDUP_GAP_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_DEDUP_GAP_MINUTES: %w", err)
	}
	pairWindow, err := strconv.Atoi(getEnv("ENGINE_PAIR_WINDOW_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_PAIR_WINDOW_HOURS: %w", err)
	}
	runWorkers, err := strconv.Atoi(getEnv("ENGINE_RUN_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_RUN_WORKERS: %w", err)
	}

	config.Engine = EngineConfig{
		MaxShifts:       maxShifts,
		DedupGapMinutes: dedupGap,
		PairWindowHours: pairWindow,
		RunWorkers:      runWorkers,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	if c.Engine.MaxShifts < 1 {
		return fmt.Errorf("ENGINE_MAX_SHIFTS must be at least 1")
	}
	if c.Engine.DedupGapMinutes < 0 {
		return fmt.Errorf("ENGINE_DEDUP_GAP_MINUTES must be non-negative")
	}
	if c.Engine.PairWindowHours < 1 {
		return fmt.Errorf("ENGINE_PAIR_WINDOW_HOURS must be at least 1")
	}
	if c.Engine.RunWorkers < 1 {
		return fmt.Errorf("ENGINE_RUN_WORKERS must be at least 1")
	}
	return nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
