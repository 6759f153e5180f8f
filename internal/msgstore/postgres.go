package msgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The column layout matches existing deployments: nullable text and marker.
const postgresSchema = `CREATE TABLE IF NOT EXISTS messages (
	id      SERIAL PRIMARY KEY,
	message TEXT,
	updated INTEGER
)`

// PostgresStore keeps messages in a PostgreSQL table through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url, verifies the connection and ensures the
// messages table exists.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("msgstore: postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("msgstore: postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("msgstore: postgres schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, text string) (Message, error) {
	row := s.pool.QueryRow(ctx, `INSERT INTO messages (message) VALUES ($1) RETURNING id, message, updated`, text)
	m, err := scanPostgres(row)
	if err != nil {
		return Message{}, fmt.Errorf("msgstore: append: %w", err)
	}
	return m, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, message, updated FROM messages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("msgstore: list: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (Message, error) { return scanPostgres(r) })
	if err != nil {
		return nil, fmt.Errorf("msgstore: list: %w", err)
	}
	return out, nil
}

func scanPostgres(row pgx.Row) (Message, error) {
	var (
		id      int64
		text    *string
		updated *int32
	)
	if err := row.Scan(&id, &text, &updated); err != nil {
		return Message{}, err
	}
	m := Message{ID: id}
	if text != nil {
		m.Text = *text
	}
	if updated != nil {
		m.Updated = int64(*updated)
	}
	return m, nil
}

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
