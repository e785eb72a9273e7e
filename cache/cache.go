// Package cache persists sweep results keyed by a content hash of the
// sweep configuration and base kinetic parameters. Sweeps can enumerate
// tens of thousands of conditions, so re-rendering a report must not
// recompute unless the configuration genuinely changed.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
)

// ErrCacheMismatch signals that a persisted entry exists under the
// requested key but its content no longer matches the requested sweep.
// It is not fatal: the caller recomputes and overwrites the entry.
var ErrCacheMismatch = errors.New("cached sweep does not match requested configuration")

// Expectation describes what a valid cached entry for a sweep must look
// like. The distinct-condition check guards against partially overlapping
// or stale caches that a bare row count would miss.
type Expectation struct {
	Base       kinetics.Params
	RowCount   int
	Conditions map[string]struct{}
}

// Store is a SQLite-backed sweep result cache. A single sweep invocation
// owns the store at a time; entries are read at sweep start and written
// once at sweep end.
type Store struct {
	db  *sql.DB
	log *slog.Logger

	mu         sync.Mutex
	hits       int64
	misses     int64
	mismatches int64
}

// Open opens (creating if needed) the cache database at path.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache schema: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sweeps (
		key        TEXT PRIMARY KEY,
		run_id     TEXT NOT NULL,
		created_at TEXT NOT NULL,
		payload    BLOB NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get looks up the entry under key and verifies it against want. Returns
// (nil, nil) when no entry exists and (nil, ErrCacheMismatch) when an
// entry exists but fails verification.
func (s *Store) Get(key string, want Expectation) (*results.SweepResult, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM sweeps WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		s.count(&s.misses)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	res, err := results.Unmarshal(payload)
	if err != nil {
		// Corrupt payloads are treated as a mismatch, not a fatal error.
		s.count(&s.mismatches)
		return nil, fmt.Errorf("%w: %v", ErrCacheMismatch, err)
	}

	if err := verify(res, want); err != nil {
		s.count(&s.mismatches)
		return nil, fmt.Errorf("%w: %v", ErrCacheMismatch, err)
	}

	s.count(&s.hits)
	return res, nil
}

// verify compares the stored result against the freshly enumerated sweep:
// base parameters field by field, total row count, and the exact distinct
// condition set.
func verify(res *results.SweepResult, want Expectation) error {
	if res.BaseParams != want.Base {
		return fmt.Errorf("base parameters differ: cached %+v, requested %+v",
			res.BaseParams, want.Base)
	}
	if len(res.Rows) != want.RowCount {
		return fmt.Errorf("row count differs: cached %d, expected %d", len(res.Rows), want.RowCount)
	}
	got := res.DistinctConditions()
	if len(got) != len(want.Conditions) {
		return fmt.Errorf("distinct condition count differs: cached %d, expected %d",
			len(got), len(want.Conditions))
	}
	for k := range want.Conditions {
		if _, ok := got[k]; !ok {
			return fmt.Errorf("condition missing from cache: %s", k)
		}
	}
	return nil
}

// Put stores the result under key, overwriting any stale entry.
func (s *Store) Put(key string, res *results.SweepResult) error {
	payload, err := results.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal sweep result: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO sweeps (key, run_id, created_at, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET run_id = excluded.run_id,
			created_at = excluded.created_at, payload = excluded.payload`,
		key, res.RunID, time.Now().UTC().Format(time.RFC3339), payload)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// GetOrCompute returns the cached result for key when it verifies against
// want; otherwise it invokes compute, persists the fresh result and
// returns it. The boolean reports whether the result came from the cache.
func (s *Store) GetOrCompute(key string, want Expectation,
	compute func() (*results.SweepResult, error)) (*results.SweepResult, bool, error) {

	res, err := s.Get(key, want)
	if res != nil {
		s.log.Info("sweep served from cache", "key", key[:12], "rows", len(res.Rows))
		return res, true, nil
	}
	if err != nil {
		if !errors.Is(err, ErrCacheMismatch) {
			return nil, false, err
		}
		// Mismatch forces a recompute; silently returning a mismatched
		// result would corrupt downstream ratio computations.
		s.log.Warn("cache mismatch, recomputing sweep", "key", key[:12], "reason", err)
	}

	res, err = compute()
	if err != nil {
		return nil, false, err
	}
	if err := s.Put(key, res); err != nil {
		return nil, false, err
	}
	return res, false, nil
}

func (s *Store) count(field *int64) {
	s.mu.Lock()
	*field++
	s.mu.Unlock()
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits       int64
	Misses     int64
	Mismatches int64
}

// Stats returns a snapshot of the counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Hits: s.hits, Misses: s.misses, Mismatches: s.mismatches}
}
