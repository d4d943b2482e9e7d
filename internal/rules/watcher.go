package rules

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher hot-reloads the rule file whenever it changes on disk. A reload
// that fails validation is logged and discarded; the active snapshot stays
// published.
type Watcher struct {
	store   *Store
	path    string
	logger  *logrus.Logger
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the rule file at path. Watching the parent
// directory instead of the file itself survives editors and config systems
// that replace the file via rename.
func NewWatcher(store *Store, path string, logger *logrus.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching rule directory: %w", err)
	}

	return &Watcher{
		store:   store,
		path:    path,
		logger:  logger,
		watcher: fw,
	}, nil
}

// Run blocks until ctx is cancelled, reloading the rule set on every write
// or rename event touching the rule file.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	target := filepath.Clean(w.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			count, version, err := w.store.Reload(w.path)
			if err != nil {
				w.logger.WithError(err).WithField("path", w.path).
					Warn("Rule file changed but failed validation, keeping active set")
				continue
			}
			w.logger.WithFields(logrus.Fields{
				"rule_count": count,
				"version":    version,
			}).Info("Rule file change applied")

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Rule file watcher error")
		}
	}
}
