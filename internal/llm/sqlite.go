package llm

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const contextSchema = `
CREATE TABLE IF NOT EXISTS contexts (
	key     TEXT NOT NULL,
	seq     INTEGER NOT NULL,
	role    TEXT NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (key, seq)
);
`

// SQLiteContextStore persists conversation contexts in a single
// SQLite database, one row per message.
type SQLiteContextStore struct {
	db *sql.DB
}

// NewSQLiteContextStore opens (creating if needed) the database at
// path and ensures the schema exists.
func NewSQLiteContextStore(path string) (*SQLiteContextStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open context db: %w", err)
	}
	if _, err := db.Exec(contextSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create context schema: %w", err)
	}
	return &SQLiteContextStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteContextStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteContextStore) Save(key string, messages []Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM contexts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("clear previous context: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO contexts (key, seq, role, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, m := range messages {
		if _, err := stmt.Exec(key, i, m.Role, m.Content); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteContextStore) Load(key string) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT role, content FROM contexts WHERE key = ? ORDER BY seq`, key)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLiteContextStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM contexts WHERE key = ?`, key)
	return err
}
