// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists resolution results in a SQLite database so
// repeat runs over the same document skip provider and AI calls.
// Implements: prd006-cache (R1-R3).
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/cite-engine/pkg/types"
)

const dbFile = "citations.db"

// Store manages the resolution cache SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the cache database at dir/citations.db and
// creates the schema if it does not exist.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS resolutions (
			key TEXT PRIMARY KEY,
			resolved INTEGER NOT NULL,
			reason TEXT,
			citation TEXT NOT NULL,
			best TEXT,
			resolved_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_resolved ON resolutions(resolved)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the cached result for a citation key, or nil when the
// key has never been resolved.
func (s *Store) Get(ctx context.Context, key string) (*types.ResolutionResult, error) {
	var (
		resolved     int
		reason       string
		citationJSON string
		bestJSON     sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT resolved, reason, citation, best FROM resolutions WHERE key = ?`, key,
	).Scan(&resolved, &reason, &citationJSON, &bestJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	result := &types.ResolutionResult{
		Resolved: resolved != 0,
		Reason:   types.UnresolvedReason(reason),
	}
	if err := json.Unmarshal([]byte(citationJSON), &result.Citation); err != nil {
		return nil, fmt.Errorf("decoding cached citation %s: %w", key, err)
	}
	if bestJSON.Valid && bestJSON.String != "" {
		var best types.ScoredCandidate
		if err := json.Unmarshal([]byte(bestJSON.String), &best); err != nil {
			return nil, fmt.Errorf("decoding cached candidate %s: %w", key, err)
		}
		result.Best = &best
	}
	return result, nil
}

// Put stores a resolution result, replacing any earlier entry for the
// same citation key.
func (s *Store) Put(ctx context.Context, result types.ResolutionResult) error {
	citationJSON, err := json.Marshal(result.Citation)
	if err != nil {
		return fmt.Errorf("encoding citation: %w", err)
	}
	var bestJSON string
	if result.Best != nil {
		b, err := json.Marshal(result.Best)
		if err != nil {
			return fmt.Errorf("encoding candidate: %w", err)
		}
		bestJSON = string(b)
	}

	resolved := 0
	if result.Resolved {
		resolved = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resolutions (key, resolved, reason, citation, best, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			resolved=excluded.resolved, reason=excluded.reason,
			citation=excluded.citation, best=excluded.best,
			resolved_at=excluded.resolved_at`,
		result.Citation.Key(), resolved, string(result.Reason),
		string(citationJSON), bestJSON,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", result.Citation.Key(), err)
	}
	return nil
}

// Delete removes a cached entry. Deleting a missing key is not an
// error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resolutions WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

// Stats reports how many entries the cache holds, split by outcome.
type Stats struct {
	Resolved   int
	Unresolved int
}

// Total returns the number of cached entries.
func (st Stats) Total() int {
	return st.Resolved + st.Unresolved
}

// Count tallies cached entries by outcome.
func (s *Store) Count(ctx context.Context) (Stats, error) {
	var st Stats
	rows, err := s.db.QueryContext(ctx,
		`SELECT resolved, count(*) FROM resolutions GROUP BY resolved`)
	if err != nil {
		return st, fmt.Errorf("counting cache entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var resolved, n int
		if err := rows.Scan(&resolved, &n); err != nil {
			return st, fmt.Errorf("scanning cache counts: %w", err)
		}
		if resolved != 0 {
			st.Resolved = n
		} else {
			st.Unresolved = n
		}
	}
	return st, rows.Err()
}
