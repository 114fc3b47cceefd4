package sqlite

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// startWatcher watches the data directory for edits to collection files
// made outside this backend. Events are debounced per collection. Callers
// hold mu.
func (b *Backend) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(b.dataDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", b.dataDir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.watcher = watcher
	b.watchCancel = cancel

	b.watchWG.Add(1)
	go func() {
		defer b.watchWG.Done()
		timers := make(map[string]*time.Timer)
		defer func() {
			for _, t := range timers {
				t.Stop()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				collection, ok := collectionOf(event.Name)
				if !ok {
					continue
				}
				if t, exists := timers[collection]; exists {
					t.Stop()
				}
				timers[collection] = time.AfterFunc(b.debounce, func() {
					if ctx.Err() == nil {
						b.reload(ctx, collection)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				b.log.Warn("watcher error", "error", err)
			}
		}
	}()
	return nil
}

// stopWatcher stops the watch goroutine and closes the watcher.
func (b *Backend) stopWatcher() {
	b.mu.Lock()
	cancel, watcher := b.watchCancel, b.watcher
	b.watchCancel, b.watcher = nil, nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.watchWG.Wait()
	if watcher != nil {
		watcher.Close()
	}
}

// reload loads a collection file changed by another process and pushes the
// new snapshot. Files identical to the last write of this backend are
// ignored. A failed reload is delivered to the collection's subscribers.
func (b *Backend) reload(ctx context.Context, collection string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached || ctx.Err() != nil {
		return
	}

	data, err := os.ReadFile(collectionFile(b.dataDir, collection))
	if err != nil && !os.IsNotExist(err) {
		b.publishError(collection, fmt.Errorf("reading %s: %w", collection, err))
		return
	}
	if prev, ok := b.persisted[collection]; ok && bytes.Equal(prev, data) {
		return
	}

	if err := reloadCollection(b.db, b.dataDir, collection); err != nil {
		b.log.Warn("reload failed", "collection", collection, "error", err)
		b.publishError(collection, err)
		return
	}
	b.persisted[collection] = data
	b.log.Info("collection reloaded", "collection", collection)
	if err := b.publishLocked(ctx, collection); err != nil {
		b.publishError(collection, err)
	}
}
