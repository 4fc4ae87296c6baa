// Package kernelstore persists an append-only log of kernel declarations
// to SQLite, grounded on the teacher's go.mod dependency on
// modernc.org/sqlite (present but never directly imported by the
// teacher's own source — this package gives it its first real job) and on
// the append-only event-log pattern the teacher's internal/ext host uses
// for its plugin call log, adapted here to back a replayable history of
// kernel declarations rather than host-plugin calls.
package kernelstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Kind enumerates the declaration shapes a Store records.
type Kind string

const (
	KindAxiom     Kind = "axiom"
	KindDef       Kind = "def"
	KindInductive Kind = "inductive"
)

// Row is one logged declaration.
type Row struct {
	Seq     int64
	Kind    Kind
	Name    string
	Payload string // caller-supplied text describing the declaration
}

// Store wraps a SQLite-backed append-only declaration log.
type Store struct {
	db *sql.DB
}

// Open creates or reuses the SQLite database at path (use ":memory:" for
// an ephemeral store) and ensures its schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("kernelstore: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS declarations (
			seq     INTEGER PRIMARY KEY AUTOINCREMENT,
			kind    TEXT NOT NULL,
			name    TEXT NOT NULL,
			payload TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("kernelstore: migrate: %w", err)
	}
	return nil
}

// Append records one declaration and returns its assigned sequence
// number.
func (s *Store) Append(ctx context.Context, kind Kind, name, payload string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO declarations (kind, name, payload) VALUES (?, ?, ?)`,
		string(kind), name, payload)
	if err != nil {
		return 0, fmt.Errorf("kernelstore: append %s %s: %w", kind, name, err)
	}
	return res.LastInsertId()
}

// Replay returns every logged declaration in insertion order.
func (s *Store) Replay(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, kind, name, payload FROM declarations ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("kernelstore: replay: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var kind string
		if err := rows.Scan(&r.Seq, &kind, &r.Name, &r.Payload); err != nil {
			return nil, fmt.Errorf("kernelstore: scan: %w", err)
		}
		r.Kind = Kind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
