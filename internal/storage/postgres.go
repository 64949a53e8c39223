package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSlotsTable = `
CREATE TABLE IF NOT EXISTS slots (
    key        TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresSlot keeps slots in a shared PostgreSQL table.
type PostgresSlot struct {
	pool *pgxpool.Pool
}

func NewPostgresSlot(ctx context.Context, dsn string) (*PostgresSlot, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createSlotsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}
	return &PostgresSlot{pool: pool}, nil
}

func (s *PostgresSlot) Load(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.pool.QueryRow(ctx, `SELECT payload FROM slots WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %s: %w", key, err)
	}
	return []byte(payload), nil
}

func (s *PostgresSlot) Save(ctx context.Context, key string, payload []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO slots (key, payload, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		key, string(payload))
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", key, err)
	}
	return nil
}

func (s *PostgresSlot) Close() error {
	s.pool.Close()
	return nil
}
