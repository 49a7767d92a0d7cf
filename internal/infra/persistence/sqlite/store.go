// Package sqlite provides a SQLite-backed persistent store that snapshots the
// in-memory state after every successful transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"herdcore/internal/infra/persistence/memory"
	"herdcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store persists the in-memory state to a single SQLite table as JSON blobs.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store.
func NewStore(path string, engine *domain.RulesEngine) (*Store, error) {
	if path == "" {
		path = "herdcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, errors.Wrap(err, "create dirs")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, errors.Wrap(err, "create state table")
	}
	mem := memory.NewStore(engine)
	s := &Store{Store: mem, db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

const (
	bucketAnimals   = "animals"
	bucketEvents    = "breeding_events"
	bucketCycles    = "lactation_cycles"
	bucketMaterials = "genetic_materials"
)

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return errors.Wrap(err, "select state")
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{}
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return errors.Wrap(err, "scan state row")
		}
		loaded = true
		switch bucket {
		case bucketAnimals:
			if err := json.Unmarshal(payload, &snapshot.Animals); err != nil {
				return errors.Wrap(err, "decode animals")
			}
		case bucketEvents:
			if err := json.Unmarshal(payload, &snapshot.Events); err != nil {
				return errors.Wrap(err, "decode breeding events")
			}
		case bucketCycles:
			if err := json.Unmarshal(payload, &snapshot.Cycles); err != nil {
				return errors.Wrap(err, "decode lactation cycles")
			}
		case bucketMaterials:
			if err := json.Unmarshal(payload, &snapshot.Materials); err != nil {
				return errors.Wrap(err, "decode genetic materials")
			}
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate state rows")
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin snapshot tx")
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	buckets := []struct {
		name  string
		value any
	}{
		{bucketAnimals, snapshot.Animals},
		{bucketEvents, snapshot.Events},
		{bucketCycles, snapshot.Cycles},
		{bucketMaterials, snapshot.Materials},
	}
	for _, bucket := range buckets {
		payload, err := json.Marshal(bucket.value)
		if err != nil {
			return errors.Wrapf(err, "encode %s", bucket.name)
		}
		if _, err := tx.Exec(
			`INSERT INTO state (bucket, payload) VALUES (?, ?)
			ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
			bucket.name, payload,
		); err != nil {
			return errors.Wrapf(err, "upsert %s", bucket.name)
		}
	}
	return errors.Wrap(tx.Commit(), "commit snapshot")
}

// RunInTransaction applies fn within the in-memory transaction boundary, then
// snapshots the committed state to SQLite.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if err := s.persist(); err != nil {
		return res, err
	}
	return res, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}
