package msgstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS messages (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	message TEXT,
	updated INTEGER
)`

type sqliteRow struct {
	ID      int64          `db:"id"`
	Message sql.NullString `db:"message"`
	Updated sql.NullInt64  `db:"updated"`
}

func (r sqliteRow) message() Message {
	return Message{ID: r.ID, Text: r.Message.String, Updated: r.Updated.Int64}
}

// SQLiteStore keeps messages in a SQLite file. A single connection
// serializes writers.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens the database at path (":memory:" is accepted) and ensures
// the messages table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("msgstore: sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("msgstore: sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, text string) (Message, error) {
	var row sqliteRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO messages (message, updated) VALUES (?, ?) RETURNING id, message, updated`,
		text, nowMs())
	if err != nil {
		return Message{}, fmt.Errorf("msgstore: append: %w", err)
	}
	return row.message(), nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Message, error) {
	var rows []sqliteRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, message, updated FROM messages ORDER BY id`); err != nil {
		return nil, fmt.Errorf("msgstore: list: %w", err)
	}
	out := make([]Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.message())
	}
	return out, nil
}

// Ping implements Store.
func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }
