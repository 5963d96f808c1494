// Package sqlite persists chat history in a single SQLite file. The
// autoincrement message id is the insertion order that replay relies on.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roomcast/roomcast-server/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	room     TEXT NOT NULL,
	username TEXT NOT NULL,
	text     TEXT NOT NULL,
	time     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, id);
`

// Store implements history.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and creates if needed) the database at path and applies
// the schema. Use ":memory:" for an ephemeral database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Append persists one message.
func (s *Store) Append(ctx context.Context, msg core.Message) error {
	query := `
		INSERT INTO messages (room, username, text, time)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, msg.Room, msg.From, msg.Text, msg.Time); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Replay returns the room's messages in insertion order. With limit > 0
// only the most recent limit messages are returned, still oldest-first.
func (s *Store) Replay(ctx context.Context, room string, limit int) ([]core.Message, error) {
	query := `
		SELECT room, username, text, time FROM messages
		WHERE room = ?
		ORDER BY id ASC
	`
	args := []any{room}
	if limit > 0 {
		query = `
			SELECT room, username, text, time FROM (
				SELECT id, room, username, text, time FROM messages
				WHERE room = ?
				ORDER BY id DESC
				LIMIT ?
			)
			ORDER BY id ASC
		`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []core.Message
	for rows.Next() {
		var msg core.Message
		if err := rows.Scan(&msg.Room, &msg.From, &msg.Text, &msg.Time); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
