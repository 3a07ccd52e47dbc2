// Package watch keeps the vector index in sync with a directory of note
// files. File writes trigger reindexing; removals drop the document.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/reef-labs/reefrag/internal/core/domain"
	"github.com/reef-labs/reefrag/internal/core/ports/driving"
	"github.com/reef-labs/reefrag/internal/logger"
)

// Event reports one index update caused by a file change.
type Event struct {
	// DocumentID is the derived document identifier (file name without
	// extension).
	DocumentID string

	// Path is the file that changed.
	Path string

	// Deleted is true when the document was removed from the index.
	Deleted bool

	// Err is set when handling the change failed; the watch continues.
	Err error
}

// Watcher reindexes changed note files in a watched directory.
type Watcher struct {
	rag          driving.RAGService
	courseID     string
	documentType domain.DocumentType
}

// NewWatcher creates a watcher that indexes files into the given course.
func NewWatcher(rag driving.RAGService, courseID string, documentType domain.DocumentType) *Watcher {
	return &Watcher{
		rag:          rag,
		courseID:     courseID,
		documentType: documentType,
	}
}

// Watch observes dir for note file changes until the context is cancelled.
// The returned channel reports each handled change and closes when the
// watch ends.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch root error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root error: %s is not a directory", dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	events := make(chan Event)
	go w.run(ctx, fsWatcher, events)

	logger.Info("Watching %s for course %s", dir, w.courseID)
	return events, nil
}

// run is the watch loop. It owns the fsnotify watcher and the events
// channel.
func (w *Watcher) run(ctx context.Context, fsWatcher *fsnotify.Watcher, events chan<- Event) {
	defer close(events)
	defer fsWatcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case fsEvent, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			event, handled := w.handle(ctx, fsEvent)
			if !handled {
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handle maps one filesystem event to an index update. Returns false for
// events on non-note files or operations that need no action.
func (w *Watcher) handle(ctx context.Context, fsEvent fsnotify.Event) (Event, bool) {
	if !isNoteFile(fsEvent.Name) {
		return Event{}, false
	}

	documentID := documentIDForPath(fsEvent.Name)

	switch {
	case fsEvent.Op.Has(fsnotify.Remove) || fsEvent.Op.Has(fsnotify.Rename):
		logger.Debug("File removed: %s, deleting document %s", fsEvent.Name, documentID)
		err := w.rag.DeleteDocument(ctx, documentID)
		return Event{DocumentID: documentID, Path: fsEvent.Name, Deleted: true, Err: err}, true

	case fsEvent.Op.Has(fsnotify.Create) || fsEvent.Op.Has(fsnotify.Write):
		logger.Debug("File changed: %s, reindexing document %s", fsEvent.Name, documentID)
		err := w.reindex(ctx, fsEvent.Name, documentID)
		return Event{DocumentID: documentID, Path: fsEvent.Name, Err: err}, true

	default:
		return Event{}, false
	}
}

// reindex reads the file and replaces the document's index records.
func (w *Watcher) reindex(ctx context.Context, path, documentID string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return w.rag.IndexDocument(ctx, documentID, w.documentType, w.courseID, string(content))
}

// isNoteFile reports whether the path looks like an indexable note file.
func isNoteFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return true
	default:
		return false
	}
}

// documentIDForPath derives the stable document ID from a file path.
func documentIDForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
