package config

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "MUR", config.Ingest.DefaultCurrency)
	assert.Equal(t, 50, config.Ingest.MinTextLength)
	assert.Equal(t, 3, config.Ingest.ValidationPageLimit)
	assert.Equal(t, []string{".pdf", ".txt"}, config.Ingest.AllowedExtensions)
	assert.Equal(t, 3, config.Validation.HighKeywords)
	assert.Equal(t, 3, config.Validation.HighDates)
	assert.Equal(t, 1, config.Validation.HighCurrency)
	assert.Equal(t, 2, config.Validation.MediumKeywords)
	assert.Equal(t, 2, config.Validation.MediumDates)
	assert.Equal(t, 0.6, config.Categorization.FuzzyThreshold)
	assert.Equal(t, "", config.Categorization.RulesFile)
	assert.False(t, config.Categorization.WatchRules)
	assert.Equal(t, "separate", config.Export.Mode)
	assert.Equal(t, ",", config.Export.Delimiter)
	assert.Equal(t, ',', config.DelimiterRune())
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())

	testEnvVars := map[string]string{
		"LEDGER_LOG_LEVEL":                      "debug",
		"LEDGER_LOG_FORMAT":                     "json",
		"LEDGER_EXPORT_DELIMITER":               ";",
		"LEDGER_EXPORT_MODE":                    "combined",
		"LEDGER_INGEST_DEFAULT_CURRENCY":        "USD",
		"LEDGER_CATEGORIZATION_FUZZY_THRESHOLD": "0.75",
		"LEDGER_CATEGORIZATION_WATCH_RULES":     "true",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ";", config.Export.Delimiter)
	assert.Equal(t, "combined", config.Export.Mode)
	assert.Equal(t, "USD", config.Ingest.DefaultCurrency)
	assert.Equal(t, 0.75, config.Categorization.FuzzyThreshold)
	assert.True(t, config.Categorization.WatchRules)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)

	tempDir := t.TempDir()
	configContent := `
log:
  level: "warn"
  format: "json"
validation:
  high_keywords: 4
  medium_keywords: 3
categorization:
  rules_file: "rules.yaml"
export:
  delimiter: "|"
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0600))
	chdir(t, tempDir)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, 4, config.Validation.HighKeywords)
	assert.Equal(t, 3, config.Validation.MediumKeywords)
	assert.Equal(t, "rules.yaml", config.Categorization.RulesFile)
	assert.Equal(t, '|', config.DelimiterRune())
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)

	tempDir := t.TempDir()
	configContent := `
log:
  level: "warn"
export:
  delimiter: "|"
ingest:
  validation_page_limit: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0600))
	chdir(t, tempDir)

	t.Setenv("LEDGER_LOG_LEVEL", "error")
	t.Setenv("LEDGER_INGEST_VALIDATION_PAGE_LIMIT", "2")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level)            // env var wins
	assert.Equal(t, "|", config.Export.Delimiter)         // config file value
	assert.Equal(t, 2, config.Ingest.ValidationPageLimit) // env var wins
	assert.Equal(t, 50, config.Ingest.MinTextLength)      // default
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	clearTestEnvVars(t)
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  mode: combined\n"), 0600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "combined", config.Export.Mode)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestLoadConfig_InvalidFileRejected(t *testing.T) {
	clearTestEnvVars(t)
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  mode: zip\n"), 0600))

	_, err := LoadConfig(path)

	var cfgErr *parsererror.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "export.mode", cfgErr.Key)
}

func validConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Ingest: IngestConfig{
			DefaultCurrency:     "MUR",
			MinTextLength:       50,
			ValidationPageLimit: 3,
			AllowedExtensions:   []string{".pdf"},
		},
		Validation: ValidationConfig{
			HighKeywords: 3, HighDates: 3, HighCurrency: 1,
			MediumKeywords: 2, MediumDates: 2,
		},
		Categorization: CategorizationConfig{FuzzyThreshold: 0.6},
		Export:         ExportConfig{Mode: "separate", Delimiter: ","},
	}
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectKey    string
	}{
		{"invalid log level", func(c *Config) { c.Log.Level = "invalid" }, "log.level"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"multi-char delimiter", func(c *Config) { c.Export.Delimiter = "abc" }, "export.delimiter"},
		{"empty delimiter", func(c *Config) { c.Export.Delimiter = "" }, "export.delimiter"},
		{"unknown export mode", func(c *Config) { c.Export.Mode = "zip" }, "export.mode"},
		{"unknown report format", func(c *Config) { c.Export.ReportFormat = "yaml" }, "export.report_format"},
		{"threshold above one", func(c *Config) { c.Categorization.FuzzyThreshold = 1.5 }, "categorization.fuzzy_threshold"},
		{"zero threshold", func(c *Config) { c.Categorization.FuzzyThreshold = 0 }, "categorization.fuzzy_threshold"},
		{"zero min text length", func(c *Config) { c.Ingest.MinTextLength = 0 }, "ingest.min_text_length"},
		{"negative page limit", func(c *Config) { c.Ingest.ValidationPageLimit = -1 }, "ingest.validation_page_limit"},
		{"zero high dates", func(c *Config) { c.Validation.HighDates = 0 }, "validation.high_dates"},
		{"medium above high", func(c *Config) { c.Validation.MediumKeywords = 5 }, "validation"},
		{"no extensions", func(c *Config) { c.Ingest.AllowedExtensions = nil }, "ingest.allowed_extensions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.modifyConfig(config)

			err := validateConfig(config)

			var cfgErr *parsererror.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.expectKey, cfgErr.Key)
		})
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	assert.NoError(t, validateConfig(validConfig()))
}

func TestConfig_IsAllowedExtension(t *testing.T) {
	config := validConfig()
	config.Ingest.AllowedExtensions = []string{".pdf", ".TXT"}

	assert.True(t, config.IsAllowedExtension(".pdf"))
	assert.True(t, config.IsAllowedExtension(".PDF"))
	assert.True(t, config.IsAllowedExtension(".txt"))
	assert.False(t, config.IsAllowedExtension(".docx"))
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		config := validConfig()
		config.Log.Format = format
		assert.NotNil(t, ConfigureLoggingFromConfig(config))
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_TEST_ONLY=from-dotenv\n"), 0600))
	chdir(t, dir)
	t.Setenv("LEDGER_TEST_ONLY", "")
	require.NoError(t, os.Unsetenv("LEDGER_TEST_ONLY"))

	logger := logging.NewMockLogger()
	loaded := LoadEnv(logger)

	assert.Equal(t, ".env", loaded)
	assert.Equal(t, "from-dotenv", GetEnv("LEDGER_TEST_ONLY", "fallback"))
	assert.True(t, logger.HasEntry("DEBUG", "Loaded environment variables"))
}

func TestGetEnv_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", GetEnv("LEDGER_DEFINITELY_UNSET_VARIABLE", "fallback"))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(originalDir))
	})
}

// clearTestEnvVars unsets every LEDGER_ override for the duration of the test.
func clearTestEnvVars(t *testing.T) {
	envVars := []string{
		"LEDGER_LOG_LEVEL",
		"LEDGER_LOG_FORMAT",
		"LEDGER_INGEST_DEFAULT_CURRENCY",
		"LEDGER_INGEST_MIN_TEXT_LENGTH",
		"LEDGER_INGEST_VALIDATION_PAGE_LIMIT",
		"LEDGER_INGEST_ALLOWED_EXTENSIONS",
		"LEDGER_VALIDATION_HIGH_KEYWORDS",
		"LEDGER_VALIDATION_HIGH_DATES",
		"LEDGER_VALIDATION_HIGH_CURRENCY",
		"LEDGER_VALIDATION_MEDIUM_KEYWORDS",
		"LEDGER_VALIDATION_MEDIUM_DATES",
		"LEDGER_VALIDATION_VOCABULARY_FILE",
		"LEDGER_CATEGORIZATION_FUZZY_THRESHOLD",
		"LEDGER_CATEGORIZATION_RULES_FILE",
		"LEDGER_CATEGORIZATION_WATCH_RULES",
		"LEDGER_EXPORT_MODE",
		"LEDGER_EXPORT_DELIMITER",
	}
	for _, envVar := range envVars {
		// t.Setenv restores the previous value after the test
		t.Setenv(envVar, "")
		require.NoError(t, os.Unsetenv(envVar))
	}
}
