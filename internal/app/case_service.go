package app

import (
	"context"
	"fmt"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/core/gate"
	"github.com/example/rcfa/internal/core/workflow"
	"github.com/example/rcfa/internal/ports/primary"
	"github.com/example/rcfa/internal/ports/secondary"
)

// CaseServiceImpl implements the CaseService interface.
type CaseServiceImpl struct {
	caseRepo secondary.CaseRepository
	coord    secondary.CaseCoordinator
}

// NewCaseService creates a new CaseService with injected dependencies.
func NewCaseService(
	caseRepo secondary.CaseRepository,
	coord secondary.CaseCoordinator,
) *CaseServiceImpl {
	return &CaseServiceImpl{
		caseRepo: caseRepo,
		coord:    coord,
	}
}

// CreateCase creates a new case in draft status. The actor becomes both
// creator and initial owner.
func (s *CaseServiceImpl) CreateCase(ctx context.Context, req primary.CreateCaseRequest) (*primary.Case, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if req.Title == "" {
		fields["title"] = "required"
	}
	if req.FailureDescription == "" {
		fields["failureDescription"] = "required"
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	var created *secondary.CaseRecord
	err = s.coord.WithTx(ctx, func(tx secondary.Tx) error {
		nextID, err := tx.Cases.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate case ID: %w", err)
		}

		record := &secondary.CaseRecord{
			ID:                 nextID,
			Title:              req.Title,
			Asset:              req.Asset,
			FailureDescription: req.FailureDescription,
			Background:         req.Background,
			Status:             string(workflow.StatusDraft),
			OwnerID:            actor.UserID,
			CreatorID:          actor.UserID,
		}
		if err := tx.Cases.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}

		if err := appendEvent(ctx, tx.Audit, nextID, secondary.EventCaseCreated, caseCreatedPayload{
			Title: req.Title,
			Asset: req.Asset,
		}); err != nil {
			return err
		}

		created, err = tx.Cases.GetByID(ctx, nextID)
		if err != nil {
			return fmt.Errorf("failed to fetch created case: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.recordToCase(created), nil
}

// GetCase retrieves a case by ID.
func (s *CaseServiceImpl) GetCase(ctx context.Context, caseID string) (*primary.Case, error) {
	record, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Deleted {
		return nil, &apperr.NotFoundError{Kind: "case", ID: caseID}
	}
	return s.recordToCase(record), nil
}

// ListCases lists cases with optional filters.
func (s *CaseServiceImpl) ListCases(ctx context.Context, filters primary.CaseFilters) ([]*primary.Case, error) {
	records, err := s.caseRepo.List(ctx, secondary.CaseFilters{
		Status:  filters.Status,
		OwnerID: filters.OwnerID,
		Limit:   filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	cases := make([]*primary.Case, len(records))
	for i, r := range records {
		cases[i] = s.recordToCase(r)
	}
	return cases, nil
}

// StartInvestigation moves a draft case to investigation without running the
// analysis. Only the creating user may start it.
func (s *CaseServiceImpl) StartInvestigation(ctx context.Context, caseID string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}

	return s.coord.WithCase(ctx, caseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		if c.CreatorID != actor.UserID {
			return &apperr.AuthorizationError{Reason: "only the case creator may start the investigation"}
		}
		return s.transition(ctx, tx, c, workflow.StatusInvestigation, workflow.FullMap, viaStartInvestigation)
	})
}

// SetStatus applies a backward or reopen transition under the restricted map.
// Forward progress must go through Analyze, Finalize, and Close so their
// preconditions cannot be bypassed.
func (s *CaseServiceImpl) SetStatus(ctx context.Context, caseID, target string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	to := workflow.Status(target)
	if !workflow.Valid(to) {
		return apperr.NewValidation("status", fmt.Sprintf("unknown status %q", target))
	}

	return s.coord.WithCase(ctx, caseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		from := workflow.Status(c.Status)
		if from == workflow.StatusClosed && to != from {
			if !actor.IsAdmin() {
				return &apperr.AuthorizationError{Reason: "only an admin may reopen a closed case"}
			}
			if err := tx.Cases.ClearClosing(ctx, c.ID); err != nil {
				return fmt.Errorf("failed to clear closing fields: %w", err)
			}
		}
		return s.transition(ctx, tx, c, to, workflow.RestrictedMap, viaSetStatus)
	})
}

// Finalize moves investigation to actions_open once the completeness gate
// passes, activating every draft action item in the same transaction.
func (s *CaseServiceImpl) Finalize(ctx context.Context, caseID string) (*primary.FinalizeResponse, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}

	var activated []string
	err := s.coord.WithCase(ctx, caseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		from := workflow.Status(c.Status)
		if result := workflow.Validate(from, workflow.StatusActionsOpen, workflow.FullMap); !result.Allowed {
			return &apperr.ConflictError{
				Reason:         result.Reason,
				AllowedTargets: workflow.TargetStrings(result.AllowedTargets),
			}
		}

		gateCtx, err := s.buildFinalizeContext(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		result := gate.CheckFinalize(gateCtx)
		if !result.Allowed {
			return &apperr.ConflictError{
				Reason:          result.Reason,
				IncompleteItems: toIncompleteItems(result.Incomplete),
			}
		}

		if len(result.DraftIDs) > 0 {
			if err := tx.Items.ActivateDrafts(ctx, result.DraftIDs); err != nil {
				return fmt.Errorf("failed to activate draft items: %w", err)
			}
		}
		if err := s.transition(ctx, tx, c, workflow.StatusActionsOpen, workflow.FullMap, viaFinalize); err != nil {
			return err
		}
		// Written with an empty list when no drafts existed, so every
		// finalize produces the same event pair.
		ids := result.DraftIDs
		if ids == nil {
			ids = []string{}
		}
		if err := appendEvent(ctx, tx.Audit, c.ID, secondary.EventDraftItemsActivated, draftItemsActivatedPayload{
			ItemIDs: ids,
		}); err != nil {
			return err
		}
		activated = result.DraftIDs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &primary.FinalizeResponse{ActivatedItemIDs: activated}, nil
}

// Close moves actions_open to closed once every action item is terminal,
// recording who closed the case and why.
func (s *CaseServiceImpl) Close(ctx context.Context, caseID, summary string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if summary == "" {
		return apperr.NewValidation("summary", "required")
	}

	return s.coord.WithCase(ctx, caseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		from := workflow.Status(c.Status)
		if result := workflow.Validate(from, workflow.StatusClosed, workflow.FullMap); !result.Allowed {
			return &apperr.ConflictError{
				Reason:         result.Reason,
				AllowedTargets: workflow.TargetStrings(result.AllowedTargets),
			}
		}

		items, err := s.itemSnapshots(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		result := gate.CheckClose(items)
		if !result.Allowed {
			return &apperr.ConflictError{
				Reason:           result.Reason,
				NonTerminalItems: toNonTerminalItems(result.NonTerminal),
			}
		}

		if err := tx.Cases.SetClosing(ctx, c.ID, actor.UserID, summary); err != nil {
			return fmt.Errorf("failed to record closure: %w", err)
		}
		return s.transition(ctx, tx, c, workflow.StatusClosed, workflow.FullMap, viaClose)
	})
}

// Reopen moves a closed case back to actions_open and clears the closing
// fields. Admin only.
func (s *CaseServiceImpl) Reopen(ctx context.Context, caseID string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}

	return s.coord.WithCase(ctx, caseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		if !actor.IsAdmin() {
			return &apperr.AuthorizationError{Reason: "only an admin may reopen a closed case"}
		}
		from := workflow.Status(c.Status)
		if result := workflow.Validate(from, workflow.StatusActionsOpen, workflow.RestrictedMap); !result.Allowed {
			return &apperr.ConflictError{
				Reason:         result.Reason,
				AllowedTargets: workflow.TargetStrings(result.AllowedTargets),
			}
		}
		if from == workflow.StatusActionsOpen {
			return nil
		}

		previous := caseReopenedPayload{
			PreviousClosedBy: c.ClosedBy,
			ClosureSummary:   c.ClosureSummary,
		}
		if err := tx.Cases.ClearClosing(ctx, c.ID); err != nil {
			return fmt.Errorf("failed to clear closing fields: %w", err)
		}
		if err := s.transition(ctx, tx, c, workflow.StatusActionsOpen, workflow.RestrictedMap, viaReopen); err != nil {
			return err
		}
		return appendEvent(ctx, tx.Audit, c.ID, secondary.EventCaseReopened, previous)
	})
}

// UpdateNotes replaces the free-form investigation notes.
func (s *CaseServiceImpl) UpdateNotes(ctx context.Context, caseID, notes string) error {
	if _, err := requireActor(ctx); err != nil {
		return err
	}

	return s.coord.WithCase(ctx, caseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		if workflow.Status(c.Status) == workflow.StatusClosed {
			return &apperr.ConflictError{Reason: "cannot edit notes on a closed case"}
		}
		if err := tx.Cases.UpdateNotes(ctx, c.ID, notes); err != nil {
			return fmt.Errorf("failed to update notes: %w", err)
		}
		return appendEvent(ctx, tx.Audit, c.ID, secondary.EventNotesUpdated, notesUpdatedPayload{
			Length: len(notes),
		})
	})
}

// DeleteCase soft-deletes a case. Children and audit events stay intact.
func (s *CaseServiceImpl) DeleteCase(ctx context.Context, caseID string) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}

	return s.coord.WithCase(ctx, caseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		if c.CreatorID != actor.UserID && !actor.IsAdmin() {
			return &apperr.AuthorizationError{Reason: "only the case creator or an admin may delete a case"}
		}
		if err := tx.Cases.SoftDelete(ctx, c.ID); err != nil {
			return fmt.Errorf("failed to delete case: %w", err)
		}
		return appendEvent(ctx, tx.Audit, c.ID, secondary.EventCaseDeleted, caseDeletedPayload{
			Title: c.Title,
		})
	})
}

// transition validates and applies a status change under the given map,
// writing the status_changed event. A no-op transition writes nothing.
func (s *CaseServiceImpl) transition(ctx context.Context, tx secondary.Tx, c *secondary.CaseRecord, to workflow.Status, m workflow.Map, via string) error {
	from := workflow.Status(c.Status)
	result := workflow.Validate(from, to, m)
	if !result.Allowed {
		return &apperr.ConflictError{
			Reason:         result.Reason,
			AllowedTargets: workflow.TargetStrings(result.AllowedTargets),
		}
	}
	if from == to {
		return nil
	}
	if err := tx.Cases.UpdateStatus(ctx, c.ID, string(to)); err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}
	c.Status = string(to)
	return appendEvent(ctx, tx.Audit, c.ID, secondary.EventStatusChanged, statusChangedPayload{
		From: string(from),
		To:   string(to),
		Via:  via,
	})
}

// buildFinalizeContext loads everything the finalize gate evaluates, all
// inside the open transaction.
func (s *CaseServiceImpl) buildFinalizeContext(ctx context.Context, tx secondary.Tx, caseID string) (gate.FinalizeContext, error) {
	finalCount, err := tx.Finals.CountByCase(ctx, caseID)
	if err != nil {
		return gate.FinalizeContext{}, fmt.Errorf("failed to count final root causes: %w", err)
	}
	items, err := s.itemSnapshots(ctx, tx, caseID)
	if err != nil {
		return gate.FinalizeContext{}, err
	}
	users, err := tx.Users.List(ctx)
	if err != nil {
		return gate.FinalizeContext{}, fmt.Errorf("failed to list users: %w", err)
	}
	active := make(map[string]bool, len(users))
	for _, u := range users {
		active[u.ID] = u.Active
	}
	return gate.FinalizeContext{
		FinalCount:  finalCount,
		Items:       items,
		ActiveUsers: active,
	}, nil
}

func (s *CaseServiceImpl) itemSnapshots(ctx context.Context, tx secondary.Tx, caseID string) ([]gate.ItemSnapshot, error) {
	records, err := tx.Items.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action items: %w", err)
	}
	snapshots := make([]gate.ItemSnapshot, len(records))
	for i, r := range records {
		snapshots[i] = gate.ItemSnapshot{
			ID:          r.ID,
			Number:      r.Number,
			Title:       r.Title,
			Description: r.Description,
			Priority:    r.Priority,
			Status:      r.Status,
			OwnerID:     r.OwnerID,
			HasDueDate:  r.DueDate != nil,
		}
	}
	return snapshots, nil
}

func toIncompleteItems(in []gate.IncompleteItem) []apperr.IncompleteItem {
	out := make([]apperr.IncompleteItem, len(in))
	for i, item := range in {
		out[i] = apperr.IncompleteItem{
			ItemNumber:    item.Number,
			MissingFields: item.MissingFields,
			InactiveOwner: item.InactiveOwner,
		}
	}
	return out
}

func toNonTerminalItems(in []gate.NonTerminalItem) []apperr.NonTerminalItem {
	out := make([]apperr.NonTerminalItem, len(in))
	for i, item := range in {
		out[i] = apperr.NonTerminalItem{
			ItemNumber: item.Number,
			Status:     item.Status,
		}
	}
	return out
}

// Helper methods

func (s *CaseServiceImpl) recordToCase(r *secondary.CaseRecord) *primary.Case {
	return &primary.Case{
		ID:                 r.ID,
		Title:              r.Title,
		Asset:              r.Asset,
		FailureDescription: r.FailureDescription,
		Background:         r.Background,
		Status:             r.Status,
		OwnerID:            r.OwnerID,
		CreatorID:          r.CreatorID,
		Notes:              r.Notes,
		ClosedBy:           r.ClosedBy,
		ClosedAt:           formatTimePtr(r.ClosedAt),
		ClosureSummary:     r.ClosureSummary,
		CreatedAt:          formatTime(r.CreatedAt),
		UpdatedAt:          formatTime(r.UpdatedAt),
	}
}

// Ensure CaseServiceImpl implements the interface
var _ primary.CaseService = (*CaseServiceImpl)(nil)
