// Package store loads and saves the rule table and the validator vocabulary.
package store

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/parsererror"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/rules.yaml
var defaultRulesYAML []byte

//go:embed defaults/vocabulary.yaml
var defaultVocabularyYAML []byte

// AppDirName is the per-user configuration directory under $HOME.
const AppDirName = ".statement-ledger"

// RulesFile is the on-disk rule table layout.
type RulesFile struct {
	Rules []models.CategoryRule `yaml:"rules"`
}

// RuleStore manages loading and saving of categorization rules and validator vocabulary.
// An empty file name selects the embedded defaults.
type RuleStore struct {
	RulesFile      string
	VocabularyFile string
	logger         logging.Logger
}

// NewRuleStore creates a new store for the given files.
func NewRuleStore(rulesFile, vocabularyFile string, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &RuleStore{
		RulesFile:      rulesFile,
		VocabularyFile: vocabularyFile,
		logger:         logger,
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *RuleStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, AppDirName, filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadRules returns the ordered rule table.
func (s *RuleStore) LoadRules() ([]models.CategoryRule, error) {
	data := defaultRulesYAML
	source := "embedded defaults"
	if s.RulesFile != "" {
		path, err := s.FindConfigFile(s.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("rules file not found: %s", s.RulesFile)
		}
		data, err = os.ReadFile(path) // #nosec G304 -- user-provided configuration path
		if err != nil {
			return nil, fmt.Errorf("error reading rules file: %w", err)
		}
		source = path
	}

	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("error loading rules from %s: %w", source, err)
	}

	s.logger.Debug("Loaded categorization rules",
		logging.Field{Key: logging.FieldCount, Value: len(rules)},
		logging.Field{Key: logging.FieldFile, Value: source})
	return rules, nil
}

// ParseRules decodes and validates a rule table document.
func ParseRules(data []byte) ([]models.CategoryRule, error) {
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing rules: %w", err)
	}
	if err := ValidateRules(file.Rules); err != nil {
		return nil, err
	}
	return file.Rules, nil
}

// ValidateRules checks every rule has a keyword and targets a known category.
func ValidateRules(rules []models.CategoryRule) error {
	var errs []error
	for i, rule := range rules {
		key := fmt.Sprintf("rules[%d]", i)
		if strings.TrimSpace(rule.Keyword) == "" {
			errs = append(errs, &parsererror.ConfigError{Key: key, Reason: "empty keyword"})
		}
		if !models.IsKnownCategory(rule.Category) {
			errs = append(errs, &parsererror.ConfigError{Key: key, Reason: fmt.Sprintf("unknown category %q", rule.Category)})
		}
	}
	return errors.Join(errs...)
}

// SaveRules writes the rule table to RulesFile, creating parent directories.
func (s *RuleStore) SaveRules(rules []models.CategoryRule) error {
	if s.RulesFile == "" {
		return errors.New("no rules file configured")
	}
	if err := ValidateRules(rules); err != nil {
		return err
	}

	filePath, err := s.FindConfigFile(s.RulesFile)
	if err != nil {
		filePath = s.RulesFile
	}

	if err := os.MkdirAll(filepath.Dir(filePath), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(RulesFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("error marshaling rules: %w", err)
	}
	if err := os.WriteFile(filePath, data, models.PermissionReportFile); err != nil {
		return fmt.Errorf("error writing rules: %w", err)
	}

	s.logger.Debug("Saved categorization rules",
		logging.Field{Key: logging.FieldCount, Value: len(rules)},
		logging.Field{Key: logging.FieldFile, Value: filePath})
	return nil
}

// LoadVocabulary returns the validator vocabulary.
func (s *RuleStore) LoadVocabulary() (models.Vocabulary, error) {
	data := defaultVocabularyYAML
	if s.VocabularyFile != "" {
		path, err := s.FindConfigFile(s.VocabularyFile)
		if err != nil {
			return models.Vocabulary{}, fmt.Errorf("vocabulary file not found: %s", s.VocabularyFile)
		}
		data, err = os.ReadFile(path) // #nosec G304 -- user-provided configuration path
		if err != nil {
			return models.Vocabulary{}, fmt.Errorf("error reading vocabulary file: %w", err)
		}
	}

	var vocab models.Vocabulary
	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return models.Vocabulary{}, fmt.Errorf("error parsing vocabulary: %w", err)
	}
	if len(vocab.BankingKeywords) == 0 {
		return models.Vocabulary{}, &parsererror.ConfigError{Key: "banking_keywords", Reason: "vocabulary is empty"}
	}
	return vocab, nil
}

// DefaultRules returns the embedded rule table.
func DefaultRules() []models.CategoryRule {
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rules are invalid: %v", err))
	}
	return rules
}

// DefaultVocabulary returns the embedded validator vocabulary.
func DefaultVocabulary() models.Vocabulary {
	vocab, err := NewRuleStore("", "", nil).LoadVocabulary()
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return vocab
}
