package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rcfa/internal/ports/secondary"
)

// CandidateRepository implements secondary.CandidateRepository with SQLite.
type CandidateRepository struct {
	db DBTX
}

// NewCandidateRepository creates a new SQLite candidate repository.
func NewCandidateRepository(db DBTX) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// BulkCreateRootCauses persists a batch of root-cause candidates, assigning
// sequential IDs on the passed records.
func (r *CandidateRepository) BulkCreateRootCauses(ctx context.Context, candidates []*secondary.RootCauseCandidateRecord) error {
	if len(candidates) == 0 {
		return nil
	}

	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 4) AS INTEGER)), 0) FROM root_cause_candidates",
	).Scan(&maxID)
	if err != nil {
		return fmt.Errorf("failed to get next root cause candidate ID: %w", err)
	}

	for i, c := range candidates {
		c.ID = fmt.Sprintf("RC-%03d", maxID+i+1)
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO root_cause_candidates (id, case_id, cause_text, detail, confidence, generated_by)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.CaseID, c.CauseText, nullString(c.Detail), c.Confidence, c.GeneratedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to create root cause candidate: %w", err)
		}
	}
	return nil
}

// BulkCreateActionItems persists a batch of action-item candidates,
// assigning sequential IDs on the passed records.
func (r *CandidateRepository) BulkCreateActionItems(ctx context.Context, candidates []*secondary.ActionItemCandidateRecord) error {
	if len(candidates) == 0 {
		return nil
	}

	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 4) AS INTEGER)), 0) FROM action_item_candidates",
	).Scan(&maxID)
	if err != nil {
		return fmt.Errorf("failed to get next action item candidate ID: %w", err)
	}

	for i, c := range candidates {
		c.ID = fmt.Sprintf("AC-%03d", maxID+i+1)
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO action_item_candidates (id, case_id, text, description, priority, generated_by)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.CaseID, c.Text, nullString(c.Description), c.Priority, c.GeneratedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to create action item candidate: %w", err)
		}
	}
	return nil
}

// GetRootCauseByID retrieves a root-cause candidate by its ID.
func (r *CandidateRepository) GetRootCauseByID(ctx context.Context, id string) (*secondary.RootCauseCandidateRecord, error) {
	var detail sql.NullString
	record := &secondary.RootCauseCandidateRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, case_id, cause_text, detail, confidence, generated_by, created_at, updated_at
		 FROM root_cause_candidates WHERE id = ?`, id,
	).Scan(&record.ID, &record.CaseID, &record.CauseText, &detail, &record.Confidence,
		&record.GeneratedBy, &record.CreatedAt, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get root cause candidate: %w", err)
	}
	record.Detail = detail.String
	return record, nil
}

// GetActionItemByID retrieves an action-item candidate by its ID.
func (r *CandidateRepository) GetActionItemByID(ctx context.Context, id string) (*secondary.ActionItemCandidateRecord, error) {
	var description sql.NullString
	record := &secondary.ActionItemCandidateRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, case_id, text, description, priority, generated_by, created_at, updated_at
		 FROM action_item_candidates WHERE id = ?`, id,
	).Scan(&record.ID, &record.CaseID, &record.Text, &description, &record.Priority,
		&record.GeneratedBy, &record.CreatedAt, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action item candidate: %w", err)
	}
	record.Description = description.String
	return record, nil
}

// ListRootCausesByCase retrieves all root-cause candidates for a case.
func (r *CandidateRepository) ListRootCausesByCase(ctx context.Context, caseID string) ([]*secondary.RootCauseCandidateRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, cause_text, detail, confidence, generated_by, created_at, updated_at
		 FROM root_cause_candidates WHERE case_id = ? ORDER BY id`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list root cause candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*secondary.RootCauseCandidateRecord
	for rows.Next() {
		var detail sql.NullString
		record := &secondary.RootCauseCandidateRecord{}
		err := rows.Scan(&record.ID, &record.CaseID, &record.CauseText, &detail, &record.Confidence,
			&record.GeneratedBy, &record.CreatedAt, &record.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan root cause candidate: %w", err)
		}
		record.Detail = detail.String
		candidates = append(candidates, record)
	}
	return candidates, rows.Err()
}

// ListActionItemsByCase retrieves all action-item candidates for a case.
func (r *CandidateRepository) ListActionItemsByCase(ctx context.Context, caseID string) ([]*secondary.ActionItemCandidateRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, text, description, priority, generated_by, created_at, updated_at
		 FROM action_item_candidates WHERE case_id = ? ORDER BY id`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action item candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*secondary.ActionItemCandidateRecord
	for rows.Next() {
		var description sql.NullString
		record := &secondary.ActionItemCandidateRecord{}
		err := rows.Scan(&record.ID, &record.CaseID, &record.Text, &description, &record.Priority,
			&record.GeneratedBy, &record.CreatedAt, &record.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action item candidate: %w", err)
		}
		record.Description = description.String
		candidates = append(candidates, record)
	}
	return candidates, rows.Err()
}

// UpdateRootCauseConfidence sets the confidence label of a root-cause candidate.
func (r *CandidateRepository) UpdateRootCauseConfidence(ctx context.Context, id, confidence string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE root_cause_candidates SET confidence = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		confidence, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update root cause confidence: %w", err)
	}
	return requireRow(result, "root cause candidate", id)
}

// UpdateActionItemPriority sets the priority label of an action-item candidate.
func (r *CandidateRepository) UpdateActionItemPriority(ctx context.Context, id, priority string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE action_item_candidates SET priority = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		priority, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update action item priority: %w", err)
	}
	return requireRow(result, "action item candidate", id)
}

// Ensure CandidateRepository implements the interface
var _ secondary.CandidateRepository = (*CandidateRepository)(nil)
