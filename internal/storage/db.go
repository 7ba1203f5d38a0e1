package storage

import (
	"database/sql"
	"errors"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// Keys under which the durable session state is stored. They mirror the two
// browser localStorage entries the backend contract was designed around.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// DB wraps a sql.DB connection holding the durable session key-value store.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS session (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Get returns the value stored under key, or ErrNotFound.
func (db *DB) Get(key string) (string, error) {
	row := db.conn.QueryRow("SELECT value FROM session WHERE key = ?", key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (db *DB) Set(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	return err
}

// SetSession stores the token and serialized user in a single transaction so
// a crash cannot leave one key without the other.
func (db *DB) SetSession(token, userJSON string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	const upsert = `INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := tx.Exec(upsert, KeyToken, token); err != nil {
		return err
	}
	if _, err := tx.Exec(upsert, KeyUser, userJSON); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearSession removes both session keys. Clearing an already-empty store is
// not an error.
func (db *DB) ClearSession() error {
	_, err := db.conn.Exec("DELETE FROM session WHERE key IN (?, ?)", KeyToken, KeyUser)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
