// Package sqlite_test contains integration tests for SQLite repositories.
//
// The schema is loaded in exactly one place: setupTestDB uses
// db.GetSchemaSQL(), so a column referenced by repository code but missing
// from the authoritative schema fails here with "no such column" instead of
// passing against a drifted copy.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/rcfa/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedUser inserts a test user and returns its ID.
func seedUser(t *testing.T, db *sql.DB, id string, active bool) string {
	t.Helper()
	if id == "" {
		id = "alice"
	}
	_, err := db.Exec("INSERT INTO users (id, name, role, active) VALUES (?, ?, 'member', ?)",
		id, "Test User", active)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// seedCase inserts a test case and returns its ID.
func seedCase(t *testing.T, db *sql.DB, id, status string) string {
	t.Helper()
	if id == "" {
		id = "CASE-001"
	}
	if status == "" {
		status = "draft"
	}
	_, err := db.Exec(
		`INSERT INTO cases (id, title, failure_description, status, owner_id, creator_id)
		 VALUES (?, 'Pump P-101 seal failure', 'Seal leaked during startup', ?, 'alice', 'alice')`,
		id, status)
	if err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}
	return id
}

// seedItem inserts a test action item and returns its ID.
func seedItem(t *testing.T, db *sql.DB, id, caseID string, number int, status string) string {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO action_items (id, case_id, number, title, status, created_by)
		 VALUES (?, ?, ?, 'Replace seal', ?, 'alice')`,
		id, caseID, number, status)
	if err != nil {
		t.Fatalf("failed to seed action item: %v", err)
	}
	return id
}
