package store

import (
	"context"
	"fmt"
	"path/filepath"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/fsnotify/fsnotify"
)

// RuleSink receives a freshly loaded rule table.
type RuleSink interface {
	SetRules(rules []models.CategoryRule)
}

// RuleWatcher reloads the rule file into a sink whenever it changes on disk.
// An invalid file is logged and the previous rules stay in effect.
type RuleWatcher struct {
	store   *RuleStore
	sink    RuleSink
	logger  logging.Logger
	path    string
	watcher *fsnotify.Watcher

	// OnReload is called after each reload attempt.
	OnReload func(count int, err error)
}

// NewRuleWatcher prepares a watcher on the store's rule file.
func NewRuleWatcher(store *RuleStore, sink RuleSink, logger logging.Logger) (*RuleWatcher, error) {
	if store.RulesFile == "" {
		return nil, fmt.Errorf("no rules file configured")
	}
	path, err := store.FindConfigFile(store.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("rules file not found: %s", store.RulesFile)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving rules file: %w", err)
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &RuleWatcher{store: store, sink: sink, logger: logger, path: abs}, nil
}

// Start watches the directory holding the rule file until ctx is done.
// Editors often replace files on save, so the directory is watched rather than the file.
func (w *RuleWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("error watching %s: %w", w.path, err)
	}
	w.watcher = watcher

	w.logger.Info("Watching categorization rules",
		logging.Field{Key: logging.FieldFile, Value: w.path})

	go w.loop(ctx)
	return nil
}

func (w *RuleWatcher) loop(ctx context.Context) {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.WithError(err).Warn("Failed to close rule watcher")
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("Rule watcher error")
		}
	}
}

// handleEvent reloads the rules for write and create events on the rule file.
// It reports whether a reload was attempted.
func (w *RuleWatcher) handleEvent(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.path {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	w.reload()
	return true
}

func (w *RuleWatcher) reload() {
	rules, err := w.store.LoadRules()
	if err != nil {
		w.logger.WithError(err).Warn("Keeping previous categorization rules",
			logging.Field{Key: logging.FieldFile, Value: w.path})
	} else {
		w.sink.SetRules(rules)
		w.logger.Info("Reloaded categorization rules",
			logging.Field{Key: logging.FieldFile, Value: w.path},
			logging.Field{Key: logging.FieldCount, Value: len(rules)})
	}
	if w.OnReload != nil {
		w.OnReload(len(rules), err)
	}
}
