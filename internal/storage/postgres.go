package storage

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/fitlife/internal/codec"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresBackend stores records as JSONB rows, one row per record.
type PostgresBackend struct {
	Pool *pgxpool.Pool
}

// OpenPostgres connects, pings and applies pending migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	if dsn == "" {
		return nil, errors.New("postgres store: dsn is required")
	}
	if err := RunMigrations(dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresBackend{Pool: pool}, nil
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (p *PostgresBackend) LoadAll(ctx context.Context, kind Kind) ([]codec.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	rows, err := p.Pool.Query(ctx,
		`SELECT body FROM records WHERE kind = $1 ORDER BY position`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", kind, err)
	}
	defer rows.Close()

	records := []codec.Record{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		r, err := unmarshalRecord(body)
		if err != nil {
			return nil, fmt.Errorf("decoding %s row %d: %w", kind, len(records), err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", kind, err)
	}
	return records, nil
}

// SaveAll replaces the collection inside one transaction, bulk-loading the
// new rows with COPY.
func (p *PostgresBackend) SaveAll(ctx context.Context, kind Kind, records []codec.Record) (err error) {
	if err := checkKind(kind); err != nil {
		return err
	}

	rows := make([][]any, 0, len(records))
	for i, r := range records {
		body, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding %s record %d: %w", kind, i, err)
		}
		rows = append(rows, []any{string(kind), i, body})
	}

	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = fmt.Errorf("rolling back: %w: %w", rbErr, err)
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM records WHERE kind = $1`, string(kind)); err != nil {
		return fmt.Errorf("clearing %s: %w", kind, err)
	}
	if _, err = tx.CopyFrom(ctx,
		pgx.Identifier{"records"},
		[]string{"kind", "position", "body"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copying %s: %w", kind, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing %s: %w", kind, err)
	}
	return nil
}

func (p *PostgresBackend) Close() error {
	p.Pool.Close()
	return nil
}
