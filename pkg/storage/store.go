// Package storage implements the durable-collection abstraction the
// metadata store is built on: named, indexed collections of JSON records
// backed by a single BoltDB file, with periodic snapshotting and a
// flush-on-close guarantee.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/tablestore/pkg/log"
)

// AutosaveInterval is the default autosave cadence, used when Open is
// given a zero or negative interval.
const AutosaveInterval = 5 * time.Second

// Store owns a single BoltDB file and the buckets ("collections") inside
// it. Every collection mutation is synchronous and committed to the
// BoltDB file in its own write transaction; the autosave tick and close
// additionally write a snapshot copy next to it.
type Store struct {
	mu               sync.RWMutex
	db               *bolt.DB
	path             string
	closed           bool
	autosaveInterval time.Duration

	stopAutosave chan struct{}
	autosaveDone chan struct{}

	onSnapshot func(d time.Duration, err error)
}

// Open creates the backing file if absent (absence is not an error) and
// returns a Store ready for collection access. An autosaveInterval <= 0
// falls back to AutosaveInterval.
func Open(dataDir string, autosaveInterval time.Duration) (*Store, error) {
	if autosaveInterval <= 0 {
		autosaveInterval = AutosaveInterval
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	path := filepath.Join(dataDir, "tablestore.db")

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	s := &Store{
		db:               db,
		path:             path,
		autosaveInterval: autosaveInterval,
		stopAutosave:     make(chan struct{}),
		autosaveDone:     make(chan struct{}),
	}
	go s.autosaveLoop()
	return s, nil
}

// Path returns the backing file path, primarily for admin tooling that
// opens the same file out-of-process (cmd/tablestore-admin).
func (s *Store) Path() string {
	return s.path
}

// SetSnapshotHook registers fn to be called after every SaveDatabase
// attempt (autosave tick, explicit call, or final close) with how long
// it took and its error, if any. pkg/storage has no metrics dependency
// of its own; this hook is how a caller that does (pkg/metastore) wires
// snapshot observability in without this package importing pkg/metrics.
func (s *Store) SetSnapshotHook(fn func(d time.Duration, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSnapshot = fn
}

func (s *Store) autosaveLoop() {
	defer close(s.autosaveDone)
	ticker := time.NewTicker(s.autosaveInterval)
	defer ticker.Stop()

	lg := log.WithComponent("storage")
	for {
		select {
		case <-ticker.C:
			if err := s.SaveDatabase(); err != nil {
				lg.Warn().Err(err).Msg("autosave snapshot failed")
			}
		case <-s.stopAutosave:
			return
		}
	}
}

// SaveDatabase snapshots the current database to "<path>.snapshot" using
// BoltDB's hot-backup transaction, mirroring the durable-collection
// library's periodic on-disk snapshot. It is safe to call concurrently
// with in-flight collection mutations.
func (s *Store) SaveDatabase() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("storage: save on closed store")
	}

	start := time.Now()
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(s.path+".snapshot", 0o600)
	})
	if s.onSnapshot != nil {
		s.onSnapshot(time.Since(start), err)
	}
	return err
}

// Close flushes through the durable-collection layer and marks the store
// closed; subsequent operations must observably fail.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stopAutosave)
	<-s.autosaveDone

	if err := s.SaveDatabase(); err != nil {
		log.WithComponent("storage").Warn().Err(err).Msg("final snapshot on close failed")
	}
	return s.db.Close()
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// EnsureCollection creates the named bucket if it doesn't already exist.
func (s *Store) EnsureCollection(name string) error {
	if s.Closed() {
		return fmt.Errorf("storage: store is closed")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
}

// HasCollection reports whether the named bucket currently exists.
func (s *Store) HasCollection(name string) (bool, error) {
	if s.Closed() {
		return false, fmt.Errorf("storage: store is closed")
	}
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket([]byte(name)) != nil
		return nil
	})
	return found, err
}

// CollectionSize reports the number of keys in the named bucket using
// bbolt's own bucket statistics rather than iterating and unmarshaling
// every record, so metrics collection stays cheap even for large
// collections. Returns 0 for an absent bucket.
func (s *Store) CollectionSize(name string) (int, error) {
	if s.Closed() {
		return 0, fmt.Errorf("storage: store is closed")
	}
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(name))
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// RemoveCollection drops the named bucket if present; dropping an absent
// bucket is a no-op, not an error.
func (s *Store) RemoveCollection(name string) error {
	if s.Closed() {
		return fmt.Errorf("storage: store is closed")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(name)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(name))
	})
}
