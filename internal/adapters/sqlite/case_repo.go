package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rcfa/internal/ports/secondary"
)

// CaseRepository implements secondary.CaseRepository with SQLite.
type CaseRepository struct {
	db DBTX
}

// NewCaseRepository creates a new SQLite case repository.
func NewCaseRepository(db DBTX) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `id, title, asset, failure_description, background, status, owner_id, creator_id,
	notes, notes_updated_at, deleted, closed_by, closed_at, closure_summary, created_at, updated_at`

// Create persists a new case.
func (r *CaseRepository) Create(ctx context.Context, c *secondary.CaseRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cases (id, title, asset, failure_description, background, status, owner_id, creator_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, nullString(c.Asset), nullString(c.FailureDescription), nullString(c.Background),
		c.Status, c.OwnerID, c.CreatorID,
	)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

func (r *CaseRepository) scanCase(row *sql.Row) (*secondary.CaseRecord, error) {
	var (
		asset, failureDesc, background, notes sql.NullString
		closedBy, closureSummary              sql.NullString
		notesUpdatedAt, closedAt              sql.NullTime
	)
	record := &secondary.CaseRecord{}
	err := row.Scan(
		&record.ID, &record.Title, &asset, &failureDesc, &background, &record.Status,
		&record.OwnerID, &record.CreatorID, &notes, &notesUpdatedAt, &record.Deleted,
		&closedBy, &closedAt, &closureSummary, &record.CreatedAt, &record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	record.Asset = asset.String
	record.FailureDescription = failureDesc.String
	record.Background = background.String
	record.Notes = notes.String
	record.NotesUpdatedAt = timePtr(notesUpdatedAt)
	record.ClosedBy = closedBy.String
	record.ClosedAt = timePtr(closedAt)
	record.ClosureSummary = closureSummary.String
	return record, nil
}

// GetByID retrieves a case by its ID, including soft-deleted ones.
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*secondary.CaseRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+caseColumns+" FROM cases WHERE id = ?", id)
	return r.scanCase(row)
}

// List retrieves cases matching the given filters, excluding soft-deleted ones.
func (r *CaseRepository) List(ctx context.Context, filters secondary.CaseFilters) ([]*secondary.CaseRecord, error) {
	query := "SELECT " + caseColumns + " FROM cases WHERE deleted = 0"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.OwnerID != "" {
		query += " AND owner_id = ?"
		args = append(args, filters.OwnerID)
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []*secondary.CaseRecord
	for rows.Next() {
		var (
			asset, failureDesc, background, notes sql.NullString
			closedBy, closureSummary              sql.NullString
			notesUpdatedAt, closedAt              sql.NullTime
		)
		record := &secondary.CaseRecord{}
		err := rows.Scan(
			&record.ID, &record.Title, &asset, &failureDesc, &background, &record.Status,
			&record.OwnerID, &record.CreatorID, &notes, &notesUpdatedAt, &record.Deleted,
			&closedBy, &closedAt, &closureSummary, &record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		record.Asset = asset.String
		record.FailureDescription = failureDesc.String
		record.Background = background.String
		record.Notes = notes.String
		record.NotesUpdatedAt = timePtr(notesUpdatedAt)
		record.ClosedBy = closedBy.String
		record.ClosedAt = timePtr(closedAt)
		record.ClosureSummary = closureSummary.String
		cases = append(cases, record)
	}
	return cases, rows.Err()
}

// GetNextID returns the next available case ID.
func (r *CaseRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM cases",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next case ID: %w", err)
	}
	return fmt.Sprintf("CASE-%03d", maxID+1), nil
}

// UpdateStatus sets the case status.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE cases SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}
	return requireRow(result, "case", id)
}

// UpdateNotes replaces the investigation notes and bumps their timestamp.
func (r *CaseRepository) UpdateNotes(ctx context.Context, id, notes string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cases SET notes = ?, notes_updated_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullString(notes), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update case notes: %w", err)
	}
	return requireRow(result, "case", id)
}

// SetClosing records who closed the case and the closure summary.
func (r *CaseRepository) SetClosing(ctx context.Context, id, closedBy, summary string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cases SET closed_by = ?, closed_at = CURRENT_TIMESTAMP, closure_summary = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		closedBy, nullString(summary), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set closing fields: %w", err)
	}
	return requireRow(result, "case", id)
}

// ClearClosing removes the closing fields when a case is reopened.
func (r *CaseRepository) ClearClosing(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cases SET closed_by = NULL, closed_at = NULL, closure_summary = NULL,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to clear closing fields: %w", err)
	}
	return requireRow(result, "case", id)
}

// SoftDelete marks the case deleted without removing its children.
func (r *CaseRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE cases SET deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft-delete case: %w", err)
	}
	return requireRow(result, "case", id)
}

func requireRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s not found", kind, id)
	}
	return nil
}

// Ensure CaseRepository implements the interface
var _ secondary.CaseRepository = (*CaseRepository)(nil)
