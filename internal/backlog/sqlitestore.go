package backlog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the list in a single-table sqlite database. Replace
// runs delete-and-reinsert inside one transaction, which gives the same
// all-or-nothing guarantee the file store gets from rename.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS backlog (
		pos     INTEGER PRIMARY KEY AUTOINCREMENT,
		payload TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init backlog table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetList() ([]string, error) {
	rows, err := s.db.Query(`SELECT payload FROM backlog ORDER BY pos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		items = append(items, payload)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) Replace(items []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM backlog`); err != nil {
		return err
	}
	for _, payload := range items {
		if _, err := tx.Exec(`INSERT INTO backlog (payload) VALUES (?)`, payload); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
