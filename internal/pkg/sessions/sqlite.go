package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Pure-Go SQLite driver: no CGO, so the gateway builds on Alpine
	// images without a toolchain.
	_ "modernc.org/sqlite"
)

// The table holds at most one row: the active session is singular.
const schema = `
CREATE TABLE IF NOT EXISTS session (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    token      TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the session database at path and
// applies the schema. WAL mode keeps a reader from blocking the writer
// when a request loads the token while login is saving it.
func OpenSQLiteStore(path string) (Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sessions: open sqlite at %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sessions: apply schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Save(ctx context.Context, token string) error {
	const q = `
INSERT INTO session (id, token, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at;`
	_, err := s.db.ExecContext(ctx, q, token, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sessions: save token: %w", err)
	}
	return nil
}

func (s *sqliteStore) Load(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM session WHERE id = 1`).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("sessions: load token: %w", err)
	}
	return token, nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("sessions: clear token: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
