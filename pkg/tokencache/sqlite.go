package tokencache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS tokens (
	key          TEXT PRIMARY KEY,
	access_token TEXT NOT NULL,
	expires_at   INTEGER NOT NULL
)`

// SQLiteStore keeps tokens in a small SQLite database, useful when several
// processes on one host share a token.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at dbPath and ensures the schema.
func OpenSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("could not create token database directory: %w", err)
		}
		dsn += "?_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping token database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create token schema: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, bool) {
	var (
		token     string
		expiresAt int64
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT access_token, expires_at FROM tokens WHERE key = ?`, key,
	).Scan(&token, &expiresAt)
	if err != nil {
		return Entry{}, false
	}
	return Entry{AccessToken: token, ExpiresAt: time.Unix(expiresAt, 0)}, true
}

func (s *SQLiteStore) Put(ctx context.Context, key string, e Entry) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO tokens (key, access_token, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			access_token = excluded.access_token,
			expires_at   = excluded.expires_at`,
		key, e.AccessToken, e.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}
