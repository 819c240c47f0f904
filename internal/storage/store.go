// Package storage owns the handle to the embedded ledger database.
//
// Every unit of work acquires the handle through View, Update, Exclusive or Reopen and releases it
// on every exit path. Nothing keeps a connection in ambient state between requests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// ErrClosed is returned when a unit of work starts on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Store guards the single connection to the database file.
// Ordinary units of work share a read lock; migrations, snapshots and restores take the write lock.
type Store struct {
	mu      sync.RWMutex
	path    string
	db      *sqlx.DB
	version atomic.Int32
}

// Open opens (creating if needed) the database file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create instance dir: %w", err)
	}
	s := &Store{path: path}
	if err := s.open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// New wraps an already open handle. Reopen is not available on such a store unless path is set.
func New(db *sqlx.DB, path string) *Store {
	return &Store{db: db, path: path}
}

func (s *Store) open(ctx context.Context) error {
	dsn := s.path + "?_pragma=busy_timeout(5000)"
	db, err := sqlx.ConnectContext(ctx, DriverName, dsn)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", s.path, err)
	}
	// One connection: SQLite has a single writer and the ledger has a single user.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	s.db = db
	logger.Log.Debugw("database opened", "path", s.path)
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Version returns the cached schema version of the open file.
func (s *Store) Version() models.SchemaVersion {
	return models.SchemaVersion(s.version.Load())
}

// SetVersion caches the schema version computed by the migrator.
func (s *Store) SetVersion(v models.SchemaVersion) {
	s.version.Store(int32(v))
}

// Close releases the handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// View runs a read-only unit of work.
func (s *Store) View(ctx context.Context, fn func(q sqlx.ExtContext) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	return fn(s.db)
}

// Update runs fn inside one transaction. Any error or panic rolls everything back.
func (s *Store) Update(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	return WithTx(ctx, s.db, fn)
}

// Exclusive runs fn while no other unit of work is active.
func (s *Store) Exclusive(ctx context.Context, fn func(db *sqlx.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	return fn(s.db)
}

// Reopen closes the handle, lets fn work on the bare file and opens the file again.
// The store is reopened even when fn fails. When ready is set it runs on the reopened handle
// before any other unit of work can start.
func (s *Store) Reopen(ctx context.Context, fn func(path string) error, ready func(db *sqlx.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("storage: close before reopen: %w", err)
		}
		s.db = nil
	}

	fnErr := fn(s.path)
	if err := s.open(ctx); err != nil {
		return errors.Join(fnErr, err)
	}
	if ready != nil {
		return errors.Join(fnErr, ready(s.db))
	}
	return fnErr
}
