// Package postgres provides a Postgres-backed persistent store that mirrors
// the in-memory semantics while snapshotting state after each transaction.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"herdcore/internal/infra/persistence/memory"
	"herdcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// defaultDSN keeps parity with local development defaults; deployments
	// override it via configuration.
	defaultDSN = "postgres://localhost/herdcore?sslmode=disable"
)

// sqlOpen is swappable so tests can inject a mocked database handle.
var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists state to Postgres while reusing the in-memory implementation
// for transactions.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

var postgresBuckets = []string{"animals", "breeding_events", "lactation_cycles", "genetic_materials"}

// NewStore opens a Postgres-backed store using the provided DSN (falls back to
// defaultDSN), ensures the snapshot table exists, and hydrates the in-memory
// store from any existing snapshot.
func NewStore(dsn string, engine *domain.RulesEngine) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}
	if err := ensureStateTable(ctx, db); err != nil {
		return nil, err
	}
	snapshot, err := loadSnapshot(ctx, db)
	if err != nil {
		return nil, err
	}
	mem := memory.NewStore(engine)
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

// RunInTransaction applies fn within the in-memory transaction boundary, then
// snapshots the committed state to Postgres.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if err := s.persist(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "ensure state table")
	}
	return nil
}

func loadSnapshot(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return memory.Snapshot{}, errors.Wrap(err, "select state")
	}
	defer func() { _ = rows.Close() }()

	var snapshot memory.Snapshot
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, errors.Wrap(err, "scan state row")
		}
		switch bucket {
		case "animals":
			if err := json.Unmarshal(payload, &snapshot.Animals); err != nil {
				return memory.Snapshot{}, errors.Wrap(err, "decode animals")
			}
		case "breeding_events":
			if err := json.Unmarshal(payload, &snapshot.Events); err != nil {
				return memory.Snapshot{}, errors.Wrap(err, "decode breeding events")
			}
		case "lactation_cycles":
			if err := json.Unmarshal(payload, &snapshot.Cycles); err != nil {
				return memory.Snapshot{}, errors.Wrap(err, "decode lactation cycles")
			}
		case "genetic_materials":
			if err := json.Unmarshal(payload, &snapshot.Materials); err != nil {
				return memory.Snapshot{}, errors.Wrap(err, "decode genetic materials")
			}
		}
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, errors.Wrap(err, "iterate state rows")
	}
	return snapshot, nil
}

func (s *Store) persist(ctx context.Context) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.ExportState()
	payloads := map[string]any{
		"animals":           snapshot.Animals,
		"breeding_events":   snapshot.Events,
		"lactation_cycles":  snapshot.Cycles,
		"genetic_materials": snapshot.Materials,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin snapshot tx")
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, bucket := range postgresBuckets {
		payload, err := json.Marshal(payloads[bucket])
		if err != nil {
			return errors.Wrapf(err, "encode %s", bucket)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state (bucket, payload) VALUES ($1, $2)
			ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload`,
			bucket, payload,
		); err != nil {
			return errors.Wrapf(err, "upsert %s", bucket)
		}
	}
	return errors.Wrap(tx.Commit(), "commit snapshot")
}
