package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/rcfa/internal/ports/secondary"
)

// AuditRepository implements secondary.AuditRepository with SQLite. The
// audit log is append-only: this type exposes no update or delete, and the
// schema has no path to alter a written row.
type AuditRepository struct {
	db DBTX
}

// NewAuditRepository creates a new SQLite audit repository.
func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append persists a new audit event.
func (r *AuditRepository) Append(ctx context.Context, event *secondary.AuditEventRecord) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_events (case_id, event_type, actor_id, payload) VALUES (?, ?, ?, ?)",
		event.CaseID, event.EventType, event.ActorID, string(event.Payload),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read audit event id: %w", err)
	}
	event.ID = id
	return nil
}

const auditColumns = "id, case_id, event_type, actor_id, payload, created_at"

// ListByCase retrieves all events for a case in append order.
func (r *AuditRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.AuditEventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+auditColumns+" FROM audit_events WHERE case_id = ? ORDER BY id", caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.AuditEventRecord
	for rows.Next() {
		record := &secondary.AuditEventRecord{}
		var payload string
		err := rows.Scan(&record.ID, &record.CaseID, &record.EventType, &record.ActorID,
			&payload, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		record.Payload = []byte(payload)
		events = append(events, record)
	}
	return events, rows.Err()
}

// LastGenerated retrieves the most recent candidates_generated event for a
// case, or (nil, nil) if none exists.
func (r *AuditRepository) LastGenerated(ctx context.Context, caseID string) (*secondary.AuditEventRecord, error) {
	record := &secondary.AuditEventRecord{}
	var payload string
	err := r.db.QueryRowContext(ctx,
		"SELECT "+auditColumns+` FROM audit_events
		 WHERE case_id = ? AND event_type = ? ORDER BY id DESC LIMIT 1`,
		caseID, secondary.EventCandidatesGenerated,
	).Scan(&record.ID, &record.CaseID, &record.EventType, &record.ActorID, &payload, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last generated event: %w", err)
	}
	record.Payload = []byte(payload)
	return record, nil
}

// Ensure AuditRepository implements the interface
var _ secondary.AuditRepository = (*AuditRepository)(nil)
