package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable key, e.g.
// EXTRACTOR_EXTRACT_WORKSPACE.
const EnvPrefix = "EXTRACTOR"

// Default values applied before any file, environment, or flag source.
const (
	DefaultClickUpBaseURL = "https://api.clickup.com/api/v2"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = 1 * time.Second
	DefaultMaxDelay       = 30 * time.Second
)

// DefaultModels is the default tier order.
var DefaultModels = []string{
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash-lite",
	"gemini-2.0-flash",
}

// ErrInvalidConfig wraps every validation failure returned by Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads configuration from defaults, an optional config file, and the
// environment. Environment variables take precedence over the file.
func Load(configFile string) (*Config, error) {
	return LoadWith(viper.New(), configFile)
}

// LoadWith is Load on a caller-supplied viper instance, which lets the CLI
// bind command-line flags before loading. Flags win over every other source.
func LoadWith(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The credentials are also accepted under their conventional names.
	if err := v.BindEnv("clickup.api_key", EnvPrefix+"_CLICKUP_API_KEY", "CLICKUP_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind clickup api key env: %w", err)
	}
	if err := v.BindEnv("llm.gemini_api_key", EnvPrefix+"_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind gemini api key env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("clickup.api_key", "")
	v.SetDefault("clickup.base_url", DefaultClickUpBaseURL)
	v.SetDefault("clickup.timeout", DefaultTimeout)
	v.SetDefault("clickup.max_attempts", DefaultMaxAttempts)
	v.SetDefault("clickup.base_delay", DefaultBaseDelay)
	v.SetDefault("clickup.max_delay", DefaultMaxDelay)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.models", DefaultModels)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_output_tokens", 150)
	v.SetDefault("llm.max_attempts", DefaultMaxAttempts)
	v.SetDefault("llm.base_delay", DefaultBaseDelay)
	v.SetDefault("llm.max_delay", DefaultMaxDelay)

	v.SetDefault("extract.workspace", "")
	v.SetDefault("extract.space", "")
	v.SetDefault("extract.include_completed", false)
	v.SetDefault("extract.exclude_statuses", []string{"Blocked", "Dormant", "On Hold", "Document"})
	v.SetDefault("extract.date_filter", "AllOpen")
	v.SetDefault("extract.concurrency", 1)
	v.SetDefault("extract.output", "-")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", defaultLogFormat())

	v.SetDefault("metrics.addr", "")
}

// ciEnvVars are set by the common CI providers.
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS", "CIRCLECI"}

// defaultLogFormat is json under CI, where logs are shipped rather than
// read, and text otherwise.
func defaultLogFormat() string {
	for _, name := range ciEnvVars {
		if os.Getenv(name) != "" {
			return "json"
		}
	}
	return "text"
}
