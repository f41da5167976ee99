package export

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const entriesSchema = `CREATE TABLE entries (
    id INTEGER PRIMARY KEY,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    duration INTEGER NOT NULL,
    code1 TEXT,
    code2 TEXT,
    code3 TEXT,
    activity TEXT NOT NULL
)`

// WriteSQLite writes the records into the entries table of the SQLite
// database at path. An existing entries table is replaced; everything
// happens in one transaction. Codes beyond the third column are
// dropped.
func WriteSQLite(path string, records []Record) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS entries"); err != nil {
		return fmt.Errorf("failed to drop old entries table: %w", err)
	}
	if _, err := tx.Exec(entriesSchema); err != nil {
		return fmt.Errorf("failed to create entries table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO entries
        (start_time, end_time, duration, code1, code2, code3, activity)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		codes := make([]any, 3)
		for i := 0; i < len(codes) && i < len(r.Codes); i++ {
			codes[i] = r.Codes[i]
		}
		_, err := stmt.Exec(
			r.StartTime.Format(time.RFC3339),
			r.EndTime.Format(time.RFC3339),
			r.Duration,
			codes[0], codes[1], codes[2],
			r.Activity)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}
	return tx.Commit()
}
