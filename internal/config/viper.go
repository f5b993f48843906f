// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/parsererror"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LEDGER_LOG_LEVEL.
const EnvPrefix = "LEDGER"

// LogConfig controls the logrus adapter.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// IngestConfig controls document intake and text extraction.
type IngestConfig struct {
	DefaultCurrency     string   `mapstructure:"default_currency" yaml:"default_currency"`
	MinTextLength       int      `mapstructure:"min_text_length" yaml:"min_text_length"`
	ValidationPageLimit int      `mapstructure:"validation_page_limit" yaml:"validation_page_limit"`
	AllowedExtensions   []string `mapstructure:"allowed_extensions" yaml:"allowed_extensions"`
}

// ValidationConfig holds the validator decision thresholds.
type ValidationConfig struct {
	HighKeywords   int    `mapstructure:"high_keywords" yaml:"high_keywords"`
	HighDates      int    `mapstructure:"high_dates" yaml:"high_dates"`
	HighCurrency   int    `mapstructure:"high_currency" yaml:"high_currency"`
	MediumKeywords int    `mapstructure:"medium_keywords" yaml:"medium_keywords"`
	MediumDates    int    `mapstructure:"medium_dates" yaml:"medium_dates"`
	VocabularyFile string `mapstructure:"vocabulary_file" yaml:"vocabulary_file"`
}

// CategorizationConfig controls the rule table and fuzzy matching.
type CategorizationConfig struct {
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold"`
	RulesFile      string  `mapstructure:"rules_file" yaml:"rules_file"`
	WatchRules     bool    `mapstructure:"watch_rules" yaml:"watch_rules"`
}

// ExportConfig controls report generation.
type ExportConfig struct {
	Mode      string `mapstructure:"mode" yaml:"mode"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// ReportFormat additionally writes a batch run report (json or xml). Empty disables it.
	ReportFormat string `mapstructure:"report_format" yaml:"report_format"`
}

// Config represents the complete application configuration
type Config struct {
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	Ingest         IngestConfig         `mapstructure:"ingest" yaml:"ingest"`
	Validation     ValidationConfig     `mapstructure:"validation" yaml:"validation"`
	Categorization CategorizationConfig `mapstructure:"categorization" yaml:"categorization"`
	Export         ExportConfig         `mapstructure:"export" yaml:"export"`
}

// DelimiterRune returns the export delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	if c.Export.Delimiter == "" {
		return ','
	}
	return []rune(c.Export.Delimiter)[0]
}

// IsAllowedExtension reports whether ext (with leading dot) may be ingested.
func (c *Config) IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range c.Ingest.AllowedExtensions {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig loads configuration from defaults, an optional explicit file (or
// the standard search paths when configFile is empty) and the environment.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.statement-ledger")
		v.AddConfigPath(".statement-ledger")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Ingest defaults
	v.SetDefault("ingest.default_currency", "MUR")
	v.SetDefault("ingest.min_text_length", 50)
	v.SetDefault("ingest.validation_page_limit", 3)
	v.SetDefault("ingest.allowed_extensions", []string{".pdf", ".txt"})

	// Validation thresholds
	v.SetDefault("validation.high_keywords", 3)
	v.SetDefault("validation.high_dates", 3)
	v.SetDefault("validation.high_currency", 1)
	v.SetDefault("validation.medium_keywords", 2)
	v.SetDefault("validation.medium_dates", 2)
	v.SetDefault("validation.vocabulary_file", "")

	// Categorization defaults
	v.SetDefault("categorization.fuzzy_threshold", 0.6)
	v.SetDefault("categorization.rules_file", "")
	v.SetDefault("categorization.watch_rules", false)

	// Export defaults
	v.SetDefault("export.mode", "separate")
	v.SetDefault("export.delimiter", ",")
	v.SetDefault("export.report_format", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return &parsererror.ConfigError{Key: "log.level", Reason: fmt.Sprintf("invalid log level: %s", config.Log.Level)}
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return &parsererror.ConfigError{Key: "log.format", Reason: fmt.Sprintf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)}
	}

	if len([]rune(config.Export.Delimiter)) != 1 {
		return &parsererror.ConfigError{Key: "export.delimiter", Reason: fmt.Sprintf("delimiter must be a single character, got: %q", config.Export.Delimiter)}
	}

	switch strings.ToLower(config.Export.Mode) {
	case "separate", "combined":
	default:
		return &parsererror.ConfigError{Key: "export.mode", Reason: fmt.Sprintf("must be 'separate' or 'combined', got: %s", config.Export.Mode)}
	}

	switch config.Export.ReportFormat {
	case "", "json", "xml":
	default:
		return &parsererror.ConfigError{Key: "export.report_format", Reason: fmt.Sprintf("must be 'json' or 'xml', got: %s", config.Export.ReportFormat)}
	}

	if config.Categorization.FuzzyThreshold <= 0.0 || config.Categorization.FuzzyThreshold > 1.0 {
		return &parsererror.ConfigError{Key: "categorization.fuzzy_threshold", Reason: fmt.Sprintf("must be within (0.0, 1.0], got: %f", config.Categorization.FuzzyThreshold)}
	}

	positive := []struct {
		key   string
		value int
	}{
		{"ingest.min_text_length", config.Ingest.MinTextLength},
		{"ingest.validation_page_limit", config.Ingest.ValidationPageLimit},
		{"validation.high_keywords", config.Validation.HighKeywords},
		{"validation.high_dates", config.Validation.HighDates},
		{"validation.high_currency", config.Validation.HighCurrency},
		{"validation.medium_keywords", config.Validation.MediumKeywords},
		{"validation.medium_dates", config.Validation.MediumDates},
	}
	for _, p := range positive {
		if p.value < 1 {
			return &parsererror.ConfigError{Key: p.key, Reason: fmt.Sprintf("must be positive, got: %d", p.value)}
		}
	}

	if config.Validation.MediumKeywords > config.Validation.HighKeywords ||
		config.Validation.MediumDates > config.Validation.HighDates {
		return &parsererror.ConfigError{Key: "validation", Reason: "medium thresholds must not exceed high thresholds"}
	}

	if len(config.Ingest.AllowedExtensions) == 0 {
		return &parsererror.ConfigError{Key: "ingest.allowed_extensions", Reason: "at least one extension is required"}
	}

	return nil
}

// ConfigureLoggingFromConfig builds the application logger from the Config struct
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(strings.ToLower(config.Log.Level), strings.ToLower(config.Log.Format))
}
