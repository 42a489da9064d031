package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/fitlife/internal/codec"
	_ "modernc.org/sqlite"
)

// SQLiteBackend stores each record as a JSON row in a single-file database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, errors.New("sqlite store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS records (
		kind     TEXT    NOT NULL,
		position INTEGER NOT NULL,
		body     TEXT    NOT NULL,
		PRIMARY KEY (kind, position)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating records table: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) LoadAll(ctx context.Context, kind Kind) ([]codec.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM records WHERE kind = ? ORDER BY position`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", kind, err)
	}
	defer rows.Close()

	records := []codec.Record{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		r, err := unmarshalRecord([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("decoding %s row %d: %w", kind, len(records), err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteBackend) SaveAll(ctx context.Context, kind Kind, records []codec.Record) (err error) {
	if err := checkKind(kind); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("clearing %s: %w", kind, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (kind, position, body) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var body []byte
		body, err = json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding %s record %d: %w", kind, i, err)
		}
		if _, err = stmt.ExecContext(ctx, string(kind), i, string(body)); err != nil {
			return fmt.Errorf("inserting %s record %d: %w", kind, i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", kind, err)
	}
	return nil
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}

func unmarshalRecord(data []byte) (codec.Record, error) {
	var r codec.Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}
	return r, nil
}
