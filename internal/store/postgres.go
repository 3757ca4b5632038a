package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lox/holdemtable/internal/errcode"
)

const schema = `
CREATE TABLE IF NOT EXISTS table_states (
	table_id   TEXT PRIMARY KEY,
	version    BIGINT NOT NULL,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres keeps snapshots in a single table_states table. Writes are a
// conditional UPDATE on the version column.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for dsn, pings it and ensures the schema exists.
func Connect(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Migrate creates the table_states table if it is missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate table_states: %w", err)
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Create(ctx context.Context, tableID string, data []byte) (Record, error) {
	q := `
		INSERT INTO table_states (table_id, version, state, updated_at)
		VALUES ($1, 1, $2, now())
		ON CONFLICT (table_id) DO NOTHING
		RETURNING version, updated_at
	`
	rec := Record{TableID: tableID, Data: data}
	err := p.pool.QueryRow(ctx, q, tableID, data).Scan(&rec.Version, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, errcode.ErrTableExists.Withf("table %s", tableID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("create table %s: %w", tableID, err)
	}
	return rec, nil
}

func (p *Postgres) Read(ctx context.Context, tableID string) (Record, error) {
	q := `SELECT version, state, updated_at FROM table_states WHERE table_id = $1`
	rec := Record{TableID: tableID}
	err := p.pool.QueryRow(ctx, q, tableID).Scan(&rec.Version, &rec.Data, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, errcode.ErrTableNotFound.Withf("table %s", tableID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("read table %s: %w", tableID, err)
	}
	return rec, nil
}

func (p *Postgres) Write(ctx context.Context, tableID string, expectedVersion int64, data []byte) (Record, error) {
	q := `
		UPDATE table_states
		SET version = version + 1, state = $3, updated_at = now()
		WHERE table_id = $1 AND version = $2
		RETURNING version, updated_at
	`
	rec := Record{TableID: tableID, Data: data}
	err := p.pool.QueryRow(ctx, q, tableID, expectedVersion, data).Scan(&rec.Version, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a missing table from a stale version.
		if _, readErr := p.Read(ctx, tableID); readErr != nil {
			return Record{}, readErr
		}
		return Record{}, errcode.ErrVersionConflict.Withf("table %s moved past version %d", tableID, expectedVersion)
	}
	if err != nil {
		return Record{}, fmt.Errorf("write table %s: %w", tableID, err)
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT table_id FROM table_states ORDER BY table_id`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return ids, nil
}
