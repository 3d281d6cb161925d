package primary

import "context"

// AuditService defines the primary port for reading the audit trail of a
// case. The log is append-only; there is no mutating operation.
type AuditService interface {
	// ListEvents retrieves all audit events for a case in append order.
	ListEvents(ctx context.Context, caseID string) ([]*AuditEvent, error)
}

// AuditEvent represents one audit event at the port boundary. Payload is the
// raw JSON payload, whose shape is fixed per event type.
type AuditEvent struct {
	ID        int64
	CaseID    string
	EventType string
	ActorID   string
	Payload   string
	CreatedAt string
}
