// Package container provides dependency injection for the statement-ledger application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/statement-ledger/internal/batch"
	"fjacquet/statement-ledger/internal/categorizer"
	"fjacquet/statement-ledger/internal/config"
	"fjacquet/statement-ledger/internal/export"
	"fjacquet/statement-ledger/internal/extractor"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/metadata"
	"fjacquet/statement-ledger/internal/report"
	"fjacquet/statement-ledger/internal/statementparser"
	"fjacquet/statement-ledger/internal/store"
	"fjacquet/statement-ledger/internal/validator"
)

// Option customizes container construction.
type Option func(*options)

type options struct {
	logger    logging.Logger
	extractor extractor.TextExtractor
}

// WithLogger replaces the logrus adapter built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithExtractor replaces the media type dispatching text extractor.
func WithExtractor(ext extractor.TextExtractor) Option {
	return func(o *options) { o.extractor = ext }
}

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger       logging.Logger
	config       *config.Config
	store        *store.RuleStore
	engine       *categorizer.Engine
	metadata     *metadata.Extractor
	validator    *validator.Validator
	parser       *statementparser.Parser
	extractor    extractor.TextExtractor
	exporter     *export.CSVExporter
	reports      *report.Generator
	orchestrator *batch.Orchestrator

	mu          sync.Mutex
	stopWatcher context.CancelFunc
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = config.ConfigureLoggingFromConfig(cfg)
	}

	ruleStore := store.NewRuleStore(cfg.Categorization.RulesFile, cfg.Validation.VocabularyFile, logger)
	rules, err := ruleStore.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("error loading categorization rules: %w", err)
	}
	vocab, err := ruleStore.LoadVocabulary()
	if err != nil {
		return nil, fmt.Errorf("error loading validator vocabulary: %w", err)
	}

	engine := categorizer.NewEngine(rules, cfg.Categorization.FuzzyThreshold, logger)
	meta := metadata.NewExtractor(logger, cfg.Ingest.DefaultCurrency)

	thresholds := validator.Thresholds{
		HighKeywords:   cfg.Validation.HighKeywords,
		HighDates:      cfg.Validation.HighDates,
		HighCurrency:   cfg.Validation.HighCurrency,
		MediumKeywords: cfg.Validation.MediumKeywords,
		MediumDates:    cfg.Validation.MediumDates,
	}
	v := validator.NewValidator(logger, meta, vocab, thresholds)
	v.SetMinTextLength(cfg.Ingest.MinTextLength)

	parser := statementparser.NewParser(logger)
	if len(vocab.NoisePhrases) > 0 {
		parser.SetNoisePhrases(vocab.NoisePhrases)
	}

	ext := o.extractor
	if ext == nil {
		ext = extractor.NewMediaTypeExtractor(extractor.NewPlainTextExtractor(), extractor.NewPDFExtractor(logger))
	}

	orchestrator := batch.NewOrchestrator(ext, v, meta, parser, engine, logger)
	orchestrator.SetValidationPageLimit(cfg.Ingest.ValidationPageLimit)

	exporter := export.NewCSVExporter(cfg.DelimiterRune(), logger)

	logger.Debug("Container initialized successfully",
		logging.Field{Key: "rules_count", Value: len(rules)},
		logging.Field{Key: "banking_keywords", Value: len(vocab.BankingKeywords)})

	return &Container{
		logger:       logger,
		config:       cfg,
		store:        ruleStore,
		engine:       engine,
		metadata:     meta,
		validator:    v,
		parser:       parser,
		extractor:    ext,
		exporter:     exporter,
		reports:      report.NewGenerator(logger),
		orchestrator: orchestrator,
	}, nil
}

// StartRuleWatcher reloads the rule table into the categorization engine
// whenever the configured rules file changes. It is a no-op unless
// categorization.watch_rules is set and a rules file is configured.
func (c *Container) StartRuleWatcher(ctx context.Context) error {
	if !c.config.Categorization.WatchRules || c.config.Categorization.RulesFile == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopWatcher != nil {
		return nil
	}

	watcher, err := store.NewRuleWatcher(c.store, c.engine, c.logger)
	if err != nil {
		return err
	}
	watchCtx, cancel := context.WithCancel(ctx)
	if err := watcher.Start(watchCtx); err != nil {
		cancel()
		return err
	}
	c.stopWatcher = cancel
	return nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the rule and vocabulary store.
func (c *Container) GetStore() *store.RuleStore {
	return c.store
}

// GetCategorizer returns the categorization engine.
func (c *Container) GetCategorizer() *categorizer.Engine {
	return c.engine
}

// GetMetadataExtractor returns the statement metadata extractor.
func (c *Container) GetMetadataExtractor() *metadata.Extractor {
	return c.metadata
}

// GetValidator returns the document validator.
func (c *Container) GetValidator() *validator.Validator {
	return c.validator
}

// GetParser returns the transaction parser.
func (c *Container) GetParser() *statementparser.Parser {
	return c.parser
}

// GetExtractor returns the text extraction collaborator.
func (c *Container) GetExtractor() extractor.TextExtractor {
	return c.extractor
}

// GetExporter returns the CSV exporter.
func (c *Container) GetExporter() export.Exporter {
	return c.exporter
}

// GetReportGenerator returns the batch report generator.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}

// GetOrchestrator returns the batch orchestrator.
func (c *Container) GetOrchestrator() *batch.Orchestrator {
	return c.orchestrator
}

// Close stops the rule watcher if one is running.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopWatcher != nil {
		c.stopWatcher()
		c.stopWatcher = nil
	}
	c.logger.Debug("Container closed")
	return nil
}
