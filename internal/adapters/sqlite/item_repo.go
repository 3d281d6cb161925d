package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/rcfa/internal/ports/secondary"
)

// ActionItemRepository implements secondary.ActionItemRepository with SQLite.
type ActionItemRepository struct {
	db DBTX
}

// NewActionItemRepository creates a new SQLite action item repository.
func NewActionItemRepository(db DBTX) *ActionItemRepository {
	return &ActionItemRepository{db: db}
}

// Create persists a new action item.
func (r *ActionItemRepository) Create(ctx context.Context, item *secondary.ActionItemRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO action_items (id, case_id, number, title, description, priority, status, owner_id, due_date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.CaseID, item.Number, item.Title, nullString(item.Description),
		item.Priority, item.Status, nullString(item.OwnerID), nullTime(item.DueDate), item.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create action item: %w", err)
	}
	return nil
}

const itemColumns = `id, case_id, number, title, description, priority, status, owner_id,
	due_date, completed_at, completion_note, created_by, created_at, updated_at`

func scanItem(scan func(dest ...any) error) (*secondary.ActionItemRecord, error) {
	var (
		description, ownerID, completionNote sql.NullString
		dueDate, completedAt                 sql.NullTime
	)
	record := &secondary.ActionItemRecord{}
	err := scan(&record.ID, &record.CaseID, &record.Number, &record.Title, &description,
		&record.Priority, &record.Status, &ownerID, &dueDate, &completedAt,
		&completionNote, &record.CreatedBy, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	record.Description = description.String
	record.OwnerID = ownerID.String
	record.CompletionNote = completionNote.String
	record.DueDate = timePtr(dueDate)
	record.CompletedAt = timePtr(completedAt)
	return record, nil
}

// GetByID retrieves an action item by its ID.
func (r *ActionItemRepository) GetByID(ctx context.Context, id string) (*secondary.ActionItemRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM action_items WHERE id = ?", id)
	record, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action item: %w", err)
	}
	return record, nil
}

// ListByCase retrieves all action items for a case ordered by number.
func (r *ActionItemRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.ActionItemRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM action_items WHERE case_id = ? ORDER BY number", caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action items: %w", err)
	}
	defer rows.Close()

	var items []*secondary.ActionItemRecord
	for rows.Next() {
		record, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action item: %w", err)
		}
		items = append(items, record)
	}
	return items, rows.Err()
}

// NextNumber returns the next per-case item number.
func (r *ActionItemRepository) NextNumber(ctx context.Context, caseID string) (int, error) {
	var maxNumber int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(number), 0) FROM action_items WHERE case_id = ?", caseID,
	).Scan(&maxNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to get next item number: %w", err)
	}
	return maxNumber + 1, nil
}

// GetNextID returns the next available item ID.
func (r *ActionItemRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 4) AS INTEGER)), 0) FROM action_items",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next item ID: %w", err)
	}
	return fmt.Sprintf("AI-%03d", maxID+1), nil
}

// Update replaces the item's editable fields. Empty fields keep their stored
// value.
func (r *ActionItemRepository) Update(ctx context.Context, item *secondary.ActionItemRecord) error {
	query := "UPDATE action_items SET updated_at = CURRENT_TIMESTAMP"
	args := []any{}

	if item.Title != "" {
		query += ", title = ?"
		args = append(args, item.Title)
	}
	if item.Description != "" {
		query += ", description = ?"
		args = append(args, item.Description)
	}
	if item.Priority != "" {
		query += ", priority = ?"
		args = append(args, item.Priority)
	}
	if item.OwnerID != "" {
		query += ", owner_id = ?"
		args = append(args, item.OwnerID)
	}
	if item.DueDate != nil {
		query += ", due_date = ?"
		args = append(args, *item.DueDate)
	}

	query += " WHERE id = ?"
	args = append(args, item.ID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update action item: %w", err)
	}
	return requireRow(result, "action item", item.ID)
}

// SetStatus sets the item status. Done items get their completion fields
// set; leaving done clears them.
func (r *ActionItemRepository) SetStatus(ctx context.Context, id, status, completionNote string) error {
	var result sql.Result
	var err error
	if status == "done" {
		result, err = r.db.ExecContext(ctx,
			`UPDATE action_items SET status = ?, completed_at = CURRENT_TIMESTAMP, completion_note = ?,
			 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			status, nullString(completionNote), id,
		)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE action_items SET status = ?, completed_at = NULL, completion_note = NULL,
			 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			status, id,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to set action item status: %w", err)
	}
	return requireRow(result, "action item", id)
}

// ActivateDrafts transitions the given draft items to open.
func (r *ActionItemRepository) ActivateDrafts(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE action_items SET status = 'open', updated_at = CURRENT_TIMESTAMP
		 WHERE status = 'draft' AND id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to activate draft items: %w", err)
	}
	return nil
}

// Delete removes an action item.
func (r *ActionItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM action_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete action item: %w", err)
	}
	return requireRow(result, "action item", id)
}

// Ensure ActionItemRepository implements the interface
var _ secondary.ActionItemRepository = (*ActionItemRepository)(nil)
