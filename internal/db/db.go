package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Init opens the sqlite database, creating the data directory if needed.
// The connection string should enable foreign keys and WAL, e.g.
// "./data/reveille.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)".
func Init(connection string) (*sqlx.DB, error) {
	path, _, _ := strings.Cut(connection, "?")
	if path != "" && !strings.Contains(path, ":memory:") {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	// Alarm triggers and the client can write concurrently; a single writer
	// connection avoids SQLITE_BUSY churn under WAL.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected", "connection", connection)
	return db, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
