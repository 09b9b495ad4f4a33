package config

import (
	"os"
	"path/filepath"
	"testing"

	"freight-auction/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

const validYAML = `
name: freight-auction
host: 127.0.0.1
port: 8090
log_level: INFO
storage:
  db_type: sqlite
  db_path: test.db
  retention_days: 30
auction:
  duration_seconds: 600
  cooldown_seconds: 30
  min_decrement: "15"
  leaderboard_size: 10
  tick_interval_seconds: 1
agent:
  risk_tolerance: medium
  aggressiveness: 50
  frequency: medium
  rebid_cooldown_seconds: 5
calendar:
  enforce: false
  mic: xnys
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// -----------------------------------------------------------------------------

func TestNewConfigLoadsYAML(t *testing.T) {
	cfg, err := NewConfig(writeTempConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "freight-auction", cfg.Name)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.Equal(t, 600, cfg.Auction.DurationSeconds)
	assert.True(t, cfg.MinDecrementValue().Equal(decimal.NewFromInt(15)))
}

// -----------------------------------------------------------------------------

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := NewConfig(writeTempConfig(t, validYAML))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*models.MConfig)
	}{
		{"empty name", func(c *models.MConfig) { c.Name = "" }},
		{"privileged port", func(c *models.MConfig) { c.Port = 80 }},
		{"sqlite without path", func(c *models.MConfig) { c.Storage.DBPath = "" }},
		{"postgres without dsn", func(c *models.MConfig) { c.Storage.DBType = "postgres" }},
		{"zero retention", func(c *models.MConfig) { c.Storage.RetentionDays = 0 }},
		{"zero duration", func(c *models.MConfig) { c.Auction.DurationSeconds = 0 }},
		{"unparseable decrement", func(c *models.MConfig) { c.Auction.MinDecrement = "cheap" }},
		{"negative decrement", func(c *models.MConfig) { c.Auction.MinDecrement = "-5" }},
		{"aggressiveness out of range", func(c *models.MConfig) { c.Agent.Aggressiveness = 150 }},
		{"unknown risk tier", func(c *models.MConfig) { c.Agent.RiskTolerance = "reckless" }},
		{"unknown frequency", func(c *models.MConfig) { c.Agent.Frequency = "sometimes" }},
		{"calendar enforced without mic", func(c *models.MConfig) {
			c.Calendar.Enforce = true
			c.Calendar.MIC = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg.MConfig)
			assert.Error(t, cfg.Validate())
		})
	}
}

// -----------------------------------------------------------------------------

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeTempConfig(t, validYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	reloaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.MConfig, reloaded.MConfig)
}
