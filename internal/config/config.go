package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	ClickUp ClickUpConfig `mapstructure:"clickup" validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Extract ExtractConfig `mapstructure:"extract" validate:"required"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ClickUpConfig contains settings for the task API and its retry policy.
type ClickUpConfig struct {
	APIKey      string        `mapstructure:"api_key" validate:"required"`
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	BaseDelay   time.Duration `mapstructure:"base_delay" validate:"gt=0"`
	MaxDelay    time.Duration `mapstructure:"max_delay" validate:"gtefield=BaseDelay"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// Enabled turns on summary enrichment for extracted records.
	Enabled      bool   `mapstructure:"enabled"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	// Models is the tier escalation order: cheapest first, most quota
	// headroom last. Each model draws from its own quota bucket.
	Models          []string      `mapstructure:"models" validate:"required,min=1,dive,required"`
	Temperature     float32       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens" validate:"gt=0"`
	MaxAttempts     int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	BaseDelay       time.Duration `mapstructure:"base_delay" validate:"gt=0"`
	MaxDelay        time.Duration `mapstructure:"max_delay" validate:"gtefield=BaseDelay"`
}

// ExtractConfig selects which tasks the batch walks and how it runs.
type ExtractConfig struct {
	Workspace        string   `mapstructure:"workspace" validate:"required"`
	Space            string   `mapstructure:"space" validate:"required"`
	IncludeCompleted bool     `mapstructure:"include_completed"`
	ExcludeStatuses  []string `mapstructure:"exclude_statuses"`
	DateFilter       string   `mapstructure:"date_filter" validate:"oneof=AllOpen ThisWeek LastWeek"`
	Concurrency      int      `mapstructure:"concurrency" validate:"min=1,max=32"`
	// Output is the JSON-lines destination; "-" means stdout.
	Output string `mapstructure:"output" validate:"required"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// MetricsConfig controls the optional ops server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}
