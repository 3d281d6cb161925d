package app

import (
	"context"
	"fmt"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/ports/primary"
	"github.com/example/rcfa/internal/ports/secondary"
)

// AuditServiceImpl implements the AuditService interface. The trail of a
// soft-deleted case stays readable; the deletion itself is the last event.
type AuditServiceImpl struct {
	caseRepo  secondary.CaseRepository
	auditRepo secondary.AuditRepository
}

// NewAuditService creates a new AuditService with injected dependencies.
func NewAuditService(
	caseRepo secondary.CaseRepository,
	auditRepo secondary.AuditRepository,
) *AuditServiceImpl {
	return &AuditServiceImpl{
		caseRepo:  caseRepo,
		auditRepo: auditRepo,
	}
}

// ListEvents retrieves all audit events for a case in append order.
func (s *AuditServiceImpl) ListEvents(ctx context.Context, caseID string) ([]*primary.AuditEvent, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &apperr.NotFoundError{Kind: "case", ID: caseID}
	}

	records, err := s.auditRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	events := make([]*primary.AuditEvent, len(records))
	for i, r := range records {
		events[i] = &primary.AuditEvent{
			ID:        r.ID,
			CaseID:    r.CaseID,
			EventType: r.EventType,
			ActorID:   r.ActorID,
			Payload:   string(r.Payload),
			CreatedAt: formatTime(r.CreatedAt),
		}
	}
	return events, nil
}

// Ensure AuditServiceImpl implements the interface
var _ primary.AuditService = (*AuditServiceImpl)(nil)
