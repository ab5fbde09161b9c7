package usecases

import (
	"context"
	"fmt"
	"sync"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/Milo82/construction-ai-assistant/internal/domain/ports"
	"github.com/apex/log"
)

// SharedFolder keeps an in-memory snapshot of a documents directory that any
// session may ingest. The snapshot is refreshed whenever the watcher reports
// a change.
type SharedFolder struct {
	source  ports.DocumentSource
	watcher ports.FileWatcher

	mu   sync.RWMutex
	docs []entities.UploadedDocument
}

// NewSharedFolder creates a SharedFolder. The watcher may be nil, in which
// case the snapshot only changes on Refresh.
func NewSharedFolder(source ports.DocumentSource, watcher ports.FileWatcher) *SharedFolder {
	return &SharedFolder{source: source, watcher: watcher}
}

// Refresh re-reads the source and replaces the snapshot.
func (f *SharedFolder) Refresh(ctx context.Context) error {
	docs, err := f.source.Documents(ctx)
	if err != nil {
		return fmt.Errorf("refreshing shared folder: %w", err)
	}

	f.mu.Lock()
	f.docs = docs
	f.mu.Unlock()

	log.WithField("documents", len(docs)).Info("folder.refreshed")
	return nil
}

// Snapshot returns a copy of the current document list.
func (f *SharedFolder) Snapshot() []entities.UploadedDocument {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]entities.UploadedDocument, len(f.docs))
	copy(out, f.docs)
	return out
}

// Run loads the initial snapshot and then refreshes it on every file event
// in dir. It blocks until ctx is done or the watcher closes. A failed refresh
// keeps the previous snapshot.
func (f *SharedFolder) Run(ctx context.Context, dir string) error {
	if err := f.Refresh(ctx); err != nil {
		log.WithError(err).Warn("folder.refresh.failed")
	}
	if f.watcher == nil {
		<-ctx.Done()
		return nil
	}

	events, err := f.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			log.WithFields(log.Fields{"path": ev.Path, "op": ev.Operation}).Debug("folder.change")
			if err := f.Refresh(ctx); err != nil {
				log.WithError(err).Warn("folder.refresh.failed")
			}
		}
	}
}
