package config

import (
	"fmt"
	"os"

	"freight-auction/src/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Storage
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}
	if c.Storage.RetentionDays <= 0 {
		return fmt.Errorf("retention days must be greater than 0")
	}

	// Auction defaults
	if c.Auction.DurationSeconds <= 0 {
		return fmt.Errorf("auction duration must be greater than 0")
	}
	if c.Auction.CooldownSeconds <= 0 {
		return fmt.Errorf("auction cooldown must be greater than 0")
	}
	if c.Auction.LeaderboardSize <= 0 {
		return fmt.Errorf("leaderboard size must be greater than 0")
	}
	dec, err := decimal.NewFromString(c.Auction.MinDecrement)
	if err != nil {
		return fmt.Errorf("min_decrement is not a valid decimal: %w", err)
	}
	if dec.Sign() <= 0 {
		return fmt.Errorf("min_decrement must be positive, got %s", dec)
	}

	// Agent defaults
	if c.Agent.Aggressiveness < 0 || c.Agent.Aggressiveness > 100 {
		return fmt.Errorf("agent aggressiveness must be in [0, 100], got %d", c.Agent.Aggressiveness)
	}
	switch models.RiskTolerance(c.Agent.RiskTolerance) {
	case models.RiskLow, models.RiskMedium, models.RiskHigh:
	default:
		return fmt.Errorf("invalid agent risk tolerance: %s", c.Agent.RiskTolerance)
	}
	switch models.BidFrequency(c.Agent.Frequency) {
	case models.FrequencyLow, models.FrequencyMedium, models.FrequencyHigh:
	default:
		return fmt.Errorf("invalid agent frequency: %s", c.Agent.Frequency)
	}

	// Calendar
	if c.Calendar.Enforce && c.Calendar.MIC == "" {
		return fmt.Errorf("calendar mic cannot be empty when enforcement is enabled")
	}

	return nil
}

// -----------------------------------------------------------------------------

// MinDecrementValue returns the configured default minimum decrement.
// Validate guarantees the string parses.
func (c *Config) MinDecrementValue() decimal.Decimal {
	dec, _ := decimal.NewFromString(c.Auction.MinDecrement)
	return dec
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
