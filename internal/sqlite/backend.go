// Package sqlite implements the SQLite collection store for boardroom.
//
// JSONL files in the data directory are the source of truth, one file per
// collection. On attach they are loaded into a fresh SQLite database that
// serves reads; every write updates SQLite and then rewrites the
// collection's file atomically. Subscribers receive the full collection
// after every change, including edits made to the files by other processes
// when watching is enabled.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// dbFile is the SQLite database created in the data directory. It is
// rebuilt from the JSONL files on every attach.
const dbFile = "boardroom.db"

// DefaultDebounce is how long the watcher waits after the last event on a
// collection file before reloading it.
const DefaultDebounce = 100 * time.Millisecond

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Backend) { b.log = log }
}

// WithClock sets the clock used to resolve server timestamps.
func WithClock(clock func() time.Time) Option {
	return func(b *Backend) { b.clock = clock }
}

// WithDebounce sets the watcher debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(b *Backend) { b.debounce = d }
}

// Backend implements types.Store using SQLite as the query engine and JSONL
// files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
	log      *slog.Logger
	clock    func() time.Time
	debounce time.Duration

	// persisted holds the bytes last written per collection file, so the
	// watcher can tell our own writes from external edits.
	persisted map[string][]byte

	subMu   sync.Mutex
	subs    map[string]map[int]*subscription
	nextSub int

	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc
	watchWG     sync.WaitGroup
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		log:       slog.Default(),
		clock:     time.Now,
		debounce:  DefaultDebounce,
		persisted: make(map[string][]byte),
		subs:      make(map[string]map[int]*subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With("component", "store")
	return b
}

// Attach initializes the backend with the given configuration. It creates
// DataDir if needed, builds a fresh database, loads every collection file
// and, when config.Watch is set, starts watching the directory.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	// The database is a cache of the JSONL files; start from scratch.
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// A single connection serializes writers inside SQLite.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	collections, err := loadAllJSONL(db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.persisted = make(map[string][]byte)
	for _, c := range collections {
		if data, err := os.ReadFile(collectionFile(dataDir, c)); err == nil {
			b.persisted[c] = data
		}
	}

	if config.Watch {
		if err := b.startWatcher(); err != nil {
			db.Close()
			b.db = nil
			return fmt.Errorf("starting watcher: %w", err)
		}
	}

	b.attached = true
	b.log.Debug("attached", "data_dir", dataDir, "collections", len(collections), "watch", config.Watch)
	return nil
}

// Detach stops the watcher, ends every subscription and closes the
// database. After Detach, operations return ErrStoreDetached. Detach is
// idempotent.
func (b *Backend) Detach() error {
	b.stopWatcher()

	b.subMu.Lock()
	for path, subs := range b.subs {
		for _, s := range subs {
			s.stop()
		}
		delete(b.subs, path)
	}
	b.subMu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}
	b.log.Debug("detached")
	return nil
}

// DataDir returns the directory holding the collection files.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

// generateUUID generates a new UUID v7 for record keys.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
