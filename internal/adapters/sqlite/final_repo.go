package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rcfa/internal/ports/secondary"
)

// FinalRepository implements secondary.FinalRepository with SQLite.
type FinalRepository struct {
	db DBTX
}

// NewFinalRepository creates a new SQLite final repository.
func NewFinalRepository(db DBTX) *FinalRepository {
	return &FinalRepository{db: db}
}

// Create persists a new final root cause.
func (r *FinalRepository) Create(ctx context.Context, final *secondary.FinalRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO root_cause_finals (id, case_id, cause_text, detail, promoted_from_id, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		final.ID, final.CaseID, final.CauseText, nullString(final.Detail),
		nullString(final.PromotedFromID), final.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create final root cause: %w", err)
	}
	return nil
}

const finalColumns = "id, case_id, cause_text, detail, promoted_from_id, created_by, created_at"

// GetByID retrieves a final by its ID.
func (r *FinalRepository) GetByID(ctx context.Context, id string) (*secondary.FinalRecord, error) {
	var detail, promotedFrom sql.NullString
	record := &secondary.FinalRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT "+finalColumns+" FROM root_cause_finals WHERE id = ?", id,
	).Scan(&record.ID, &record.CaseID, &record.CauseText, &detail, &promotedFrom,
		&record.CreatedBy, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get final root cause: %w", err)
	}
	record.Detail = detail.String
	record.PromotedFromID = promotedFrom.String
	return record, nil
}

// ListByCase retrieves all finals for a case.
func (r *FinalRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.FinalRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+finalColumns+" FROM root_cause_finals WHERE case_id = ? ORDER BY id", caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list final root causes: %w", err)
	}
	defer rows.Close()

	var finals []*secondary.FinalRecord
	for rows.Next() {
		var detail, promotedFrom sql.NullString
		record := &secondary.FinalRecord{}
		err := rows.Scan(&record.ID, &record.CaseID, &record.CauseText, &detail, &promotedFrom,
			&record.CreatedBy, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan final root cause: %w", err)
		}
		record.Detail = detail.String
		record.PromotedFromID = promotedFrom.String
		finals = append(finals, record)
	}
	return finals, rows.Err()
}

// CountByCase returns the number of finals for a case.
func (r *FinalRepository) CountByCase(ctx context.Context, caseID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM root_cause_finals WHERE case_id = ?", caseID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count final root causes: %w", err)
	}
	return count, nil
}

// ExistsForCandidate reports whether a final already references the candidate.
func (r *FinalRepository) ExistsForCandidate(ctx context.Context, candidateID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM root_cause_finals WHERE promoted_from_id = ?", candidateID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check promotion: %w", err)
	}
	return count > 0, nil
}

// GetNextID returns the next available final ID.
func (r *FinalRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 4) AS INTEGER)), 0) FROM root_cause_finals",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next final ID: %w", err)
	}
	return fmt.Sprintf("RF-%03d", maxID+1), nil
}

// Delete removes a final.
func (r *FinalRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM root_cause_finals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete final root cause: %w", err)
	}
	return requireRow(result, "final root cause", id)
}

// Ensure FinalRepository implements the interface
var _ secondary.FinalRepository = (*FinalRepository)(nil)
