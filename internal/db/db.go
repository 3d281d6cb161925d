package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

var dbInitialized bool

// GetDB returns the database connection, initializing if needed.
//
// The connection is opened with _txlock=immediate so every transaction takes
// the write lock at BEGIN. That is what serializes two concurrent mutations
// of the same case: the loser blocks at BEGIN, then re-validates against the
// committed row and aborts cleanly.
func GetDB() (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	rcfaDir, err := Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(rcfaDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .rcfa directory: %w", err)
	}

	dbPath := filepath.Join(rcfaDir, "rcfa.db")
	db, err = sql.Open("sqlite3", "file:"+dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and wait out short lock contention
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if !dbInitialized {
		dbInitialized = true
		if err := InitSchema(); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return db, nil
}

// Dir returns the rcfa data directory. RCFA_DIR overrides the default
// ~/.rcfa, which keeps tests and multi-project setups isolated.
func Dir() (string, error) {
	if dir := os.Getenv("RCFA_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".rcfa"), nil
}

// InitSchema applies the authoritative schema.
func InitSchema() error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
