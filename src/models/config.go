package models

// MConfig Structure
type MConfig struct {
	Name     string           `yaml:"name"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	LogLevel string           `yaml:"log_level"`
	Storage  MStorageConfig   `yaml:"storage"`
	Auction  MAuctionDefaults `yaml:"auction"`
	Agent    MAgentDefaults   `yaml:"agent"`
	Calendar MCalendarConfig  `yaml:"calendar"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MAuctionDefaults struct {
	DurationSeconds     int    `yaml:"duration_seconds"`
	CooldownSeconds     int    `yaml:"cooldown_seconds"`
	MinDecrement        string `yaml:"min_decrement"` // decimal string, e.g. "15"
	LeaderboardSize     int    `yaml:"leaderboard_size"`
	TickIntervalSeconds int    `yaml:"tick_interval_seconds"`
}

type MAgentDefaults struct {
	RiskTolerance        string `yaml:"risk_tolerance"`
	Aggressiveness       int    `yaml:"aggressiveness"`
	Frequency            string `yaml:"frequency"`
	RebidCooldownSeconds int    `yaml:"rebid_cooldown_seconds"`
}

type MCalendarConfig struct {
	Enforce bool   `yaml:"enforce"` // gate auction creation on business hours
	MIC     string `yaml:"mic"`     // ISO 10383 market identifier, e.g. "xnys"
}
