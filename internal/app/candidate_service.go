package app

import (
	"context"
	"fmt"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/core/reconcile"
	"github.com/example/rcfa/internal/core/workflow"
	"github.com/example/rcfa/internal/ports/primary"
	"github.com/example/rcfa/internal/ports/secondary"
)

// CandidateServiceImpl implements the CandidateService interface.
//
// Human-authored candidates carry the human tag, which shields them from the
// reconciliation engine. Finals can only change while the case is under
// investigation, so the finalize gate's "at least one final" check cannot be
// undermined afterwards.
type CandidateServiceImpl struct {
	caseRepo      secondary.CaseRepository
	candidateRepo secondary.CandidateRepository
	finalRepo     secondary.FinalRepository
	coord         secondary.CaseCoordinator
}

// NewCandidateService creates a new CandidateService with injected dependencies.
func NewCandidateService(
	caseRepo secondary.CaseRepository,
	candidateRepo secondary.CandidateRepository,
	finalRepo secondary.FinalRepository,
	coord secondary.CaseCoordinator,
) *CandidateServiceImpl {
	return &CandidateServiceImpl{
		caseRepo:      caseRepo,
		candidateRepo: candidateRepo,
		finalRepo:     finalRepo,
		coord:         coord,
	}
}

// AddRootCauseCandidate creates a human-authored root-cause candidate.
func (s *CandidateServiceImpl) AddRootCauseCandidate(ctx context.Context, req primary.AddRootCauseCandidateRequest) (*primary.RootCauseCandidate, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}
	if req.CauseText == "" {
		return nil, apperr.NewValidation("causeText", "required")
	}
	confidence := req.Confidence
	if confidence == "" {
		confidence = "medium"
	}
	if !reconcile.ValidConfidence(confidence) {
		return nil, apperr.NewValidation("confidence", fmt.Sprintf("unknown confidence %q", confidence))
	}

	var created *secondary.RootCauseCandidateRecord
	err := s.coord.WithCase(ctx, req.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireInvestigation(c); err != nil {
			return err
		}
		record := &secondary.RootCauseCandidateRecord{
			CaseID:      c.ID,
			CauseText:   req.CauseText,
			Detail:      req.Detail,
			Confidence:  confidence,
			GeneratedBy: reconcile.GeneratedByHuman,
		}
		if err := tx.Candidates.BulkCreateRootCauses(ctx, []*secondary.RootCauseCandidateRecord{record}); err != nil {
			return fmt.Errorf("failed to create root cause candidate: %w", err)
		}
		if err := appendEvent(ctx, tx.Audit, c.ID, secondary.EventCandidateAdded, candidateAddedPayload{
			CandidateID:   record.ID,
			CandidateType: reconcile.TypeRootCause,
			Label:         confidence,
		}); err != nil {
			return err
		}

		var err error
		created, err = tx.Candidates.GetRootCauseByID(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch created candidate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.recordToRootCause(created), nil
}

// AddActionItemCandidate creates a human-authored action-item candidate.
func (s *CandidateServiceImpl) AddActionItemCandidate(ctx context.Context, req primary.AddActionItemCandidateRequest) (*primary.ActionItemCandidate, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}
	if req.Text == "" {
		return nil, apperr.NewValidation("text", "required")
	}
	priority := req.Priority
	if priority == "" {
		priority = reconcile.DefaultPriority
	}
	if !reconcile.ValidPriority(priority) {
		return nil, apperr.NewValidation("priority", fmt.Sprintf("unknown priority %q", priority))
	}

	var created *secondary.ActionItemCandidateRecord
	err := s.coord.WithCase(ctx, req.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireInvestigation(c); err != nil {
			return err
		}
		record := &secondary.ActionItemCandidateRecord{
			CaseID:      c.ID,
			Text:        req.Text,
			Description: req.Description,
			Priority:    priority,
			GeneratedBy: reconcile.GeneratedByHuman,
		}
		if err := tx.Candidates.BulkCreateActionItems(ctx, []*secondary.ActionItemCandidateRecord{record}); err != nil {
			return fmt.Errorf("failed to create action item candidate: %w", err)
		}
		if err := appendEvent(ctx, tx.Audit, c.ID, secondary.EventCandidateAdded, candidateAddedPayload{
			CandidateID:   record.ID,
			CandidateType: reconcile.TypeActionItem,
			Label:         priority,
		}); err != nil {
			return err
		}

		var err error
		created, err = tx.Candidates.GetActionItemByID(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch created candidate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.recordToActionItem(created), nil
}

// ListRootCauseCandidates retrieves the root-cause candidates of a case.
func (s *CandidateServiceImpl) ListRootCauseCandidates(ctx context.Context, caseID string) ([]*primary.RootCauseCandidate, error) {
	if err := s.requireCase(ctx, caseID); err != nil {
		return nil, err
	}
	records, err := s.candidateRepo.ListRootCausesByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list root cause candidates: %w", err)
	}
	candidates := make([]*primary.RootCauseCandidate, len(records))
	for i, r := range records {
		candidates[i] = s.recordToRootCause(r)
	}
	return candidates, nil
}

// ListActionItemCandidates retrieves the action-item candidates of a case.
func (s *CandidateServiceImpl) ListActionItemCandidates(ctx context.Context, caseID string) ([]*primary.ActionItemCandidate, error) {
	if err := s.requireCase(ctx, caseID); err != nil {
		return nil, err
	}
	records, err := s.candidateRepo.ListActionItemsByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action item candidates: %w", err)
	}
	candidates := make([]*primary.ActionItemCandidate, len(records))
	for i, r := range records {
		candidates[i] = s.recordToActionItem(r)
	}
	return candidates, nil
}

// PromoteRootCause ratifies a candidate into a final root cause. A candidate
// can be promoted at most once; the uniqueness check runs under the case lock
// and is backed by a unique index, so two concurrent promotions cannot both
// land.
func (s *CandidateServiceImpl) PromoteRootCause(ctx context.Context, req primary.PromoteRootCauseRequest) (*primary.RootCauseFinal, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	candidate, err := s.candidateRepo.GetRootCauseByID(ctx, req.CandidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, &apperr.NotFoundError{Kind: "root cause candidate", ID: req.CandidateID}
	}

	var created *secondary.FinalRecord
	err = s.coord.WithCase(ctx, candidate.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireInvestigation(c); err != nil {
			return err
		}
		candidate, err := tx.Candidates.GetRootCauseByID(ctx, req.CandidateID)
		if err != nil {
			return err
		}
		if candidate == nil {
			return &apperr.NotFoundError{Kind: "root cause candidate", ID: req.CandidateID}
		}
		promoted, err := tx.Finals.ExistsForCandidate(ctx, candidate.ID)
		if err != nil {
			return fmt.Errorf("failed to check prior promotion: %w", err)
		}
		if promoted {
			return &apperr.ConflictError{Reason: fmt.Sprintf("candidate %s is already promoted", candidate.ID)}
		}

		causeText := req.CauseText
		if causeText == "" {
			causeText = candidate.CauseText
		}
		detail := req.Detail
		if detail == "" {
			detail = candidate.Detail
		}
		created, err = s.createFinal(ctx, tx, &secondary.FinalRecord{
			CaseID:         c.ID,
			CauseText:      causeText,
			Detail:         detail,
			PromotedFromID: candidate.ID,
			CreatedBy:      actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.recordToFinal(created), nil
}

// AddFinal creates a final root cause authored directly, without a backing
// candidate.
func (s *CandidateServiceImpl) AddFinal(ctx context.Context, req primary.AddFinalRequest) (*primary.RootCauseFinal, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if req.CauseText == "" {
		return nil, apperr.NewValidation("causeText", "required")
	}

	var created *secondary.FinalRecord
	err = s.coord.WithCase(ctx, req.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireInvestigation(c); err != nil {
			return err
		}
		created, err = s.createFinal(ctx, tx, &secondary.FinalRecord{
			CaseID:    c.ID,
			CauseText: req.CauseText,
			Detail:    req.Detail,
			CreatedBy: actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.recordToFinal(created), nil
}

// ListFinals retrieves the final root causes of a case.
func (s *CandidateServiceImpl) ListFinals(ctx context.Context, caseID string) ([]*primary.RootCauseFinal, error) {
	if err := s.requireCase(ctx, caseID); err != nil {
		return nil, err
	}
	records, err := s.finalRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list final root causes: %w", err)
	}
	finals := make([]*primary.RootCauseFinal, len(records))
	for i, r := range records {
		finals[i] = s.recordToFinal(r)
	}
	return finals, nil
}

// DeleteFinal removes a final root cause, auditing its key fields. Only
// allowed while the case is under investigation.
func (s *CandidateServiceImpl) DeleteFinal(ctx context.Context, finalID string) error {
	if _, err := requireActor(ctx); err != nil {
		return err
	}

	final, err := s.finalRepo.GetByID(ctx, finalID)
	if err != nil {
		return err
	}
	if final == nil {
		return &apperr.NotFoundError{Kind: "final root cause", ID: finalID}
	}

	return s.coord.WithCase(ctx, final.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireInvestigation(c); err != nil {
			return err
		}
		final, err := tx.Finals.GetByID(ctx, finalID)
		if err != nil {
			return err
		}
		if final == nil {
			return &apperr.NotFoundError{Kind: "final root cause", ID: finalID}
		}
		if err := tx.Finals.Delete(ctx, final.ID); err != nil {
			return fmt.Errorf("failed to delete final root cause: %w", err)
		}
		return appendEvent(ctx, tx.Audit, c.ID, secondary.EventFinalDeleted, finalDeletedPayload{
			FinalID:        final.ID,
			CauseText:      final.CauseText,
			PromotedFromID: final.PromotedFromID,
		})
	})
}

// createFinal assigns the next final ID, inserts the record, and writes the
// final_added event.
func (s *CandidateServiceImpl) createFinal(ctx context.Context, tx secondary.Tx, record *secondary.FinalRecord) (*secondary.FinalRecord, error) {
	nextID, err := tx.Finals.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate final ID: %w", err)
	}
	record.ID = nextID
	if err := tx.Finals.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create final root cause: %w", err)
	}
	if err := appendEvent(ctx, tx.Audit, record.CaseID, secondary.EventFinalAdded, finalAddedPayload{
		FinalID:        record.ID,
		CauseText:      record.CauseText,
		PromotedFromID: record.PromotedFromID,
	}); err != nil {
		return nil, err
	}
	created, err := tx.Finals.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created final: %w", err)
	}
	return created, nil
}

func (s *CandidateServiceImpl) requireCase(ctx context.Context, caseID string) error {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if c == nil || c.Deleted {
		return &apperr.NotFoundError{Kind: "case", ID: caseID}
	}
	return nil
}

// requireInvestigation gates candidate and final mutations on case status.
func requireInvestigation(c *secondary.CaseRecord) error {
	if err := requireLiveCase(c); err != nil {
		return err
	}
	if workflow.Status(c.Status) != workflow.StatusInvestigation {
		return &apperr.ConflictError{
			Reason: fmt.Sprintf("case must be under investigation (status is %s)", c.Status),
		}
	}
	return nil
}

// Helper methods

func (s *CandidateServiceImpl) recordToRootCause(r *secondary.RootCauseCandidateRecord) *primary.RootCauseCandidate {
	return &primary.RootCauseCandidate{
		ID:          r.ID,
		CaseID:      r.CaseID,
		CauseText:   r.CauseText,
		Detail:      r.Detail,
		Confidence:  r.Confidence,
		GeneratedBy: r.GeneratedBy,
		CreatedAt:   formatTime(r.CreatedAt),
		UpdatedAt:   formatTime(r.UpdatedAt),
	}
}

func (s *CandidateServiceImpl) recordToActionItem(r *secondary.ActionItemCandidateRecord) *primary.ActionItemCandidate {
	return &primary.ActionItemCandidate{
		ID:          r.ID,
		CaseID:      r.CaseID,
		Text:        r.Text,
		Description: r.Description,
		Priority:    r.Priority,
		GeneratedBy: r.GeneratedBy,
		CreatedAt:   formatTime(r.CreatedAt),
		UpdatedAt:   formatTime(r.UpdatedAt),
	}
}

func (s *CandidateServiceImpl) recordToFinal(r *secondary.FinalRecord) *primary.RootCauseFinal {
	return &primary.RootCauseFinal{
		ID:             r.ID,
		CaseID:         r.CaseID,
		CauseText:      r.CauseText,
		Detail:         r.Detail,
		PromotedFromID: r.PromotedFromID,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      formatTime(r.CreatedAt),
	}
}

// Ensure CandidateServiceImpl implements the interface
var _ primary.CandidateService = (*CandidateServiceImpl)(nil)
