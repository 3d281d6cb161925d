package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/core/gate"
	"github.com/example/rcfa/internal/core/reconcile"
	"github.com/example/rcfa/internal/core/workflow"
	"github.com/example/rcfa/internal/ports/primary"
	"github.com/example/rcfa/internal/ports/secondary"
)

// ActionItemServiceImpl implements the ActionItemService interface.
//
// Items created during investigation are born draft and activated in bulk by
// the finalize gate; items created once actions are open are born open.
// Draft can never be requested through SetItemStatus.
type ActionItemServiceImpl struct {
	caseRepo secondary.CaseRepository
	itemRepo secondary.ActionItemRepository
	userRepo secondary.UserRepository
	coord    secondary.CaseCoordinator
}

// NewActionItemService creates a new ActionItemService with injected dependencies.
func NewActionItemService(
	caseRepo secondary.CaseRepository,
	itemRepo secondary.ActionItemRepository,
	userRepo secondary.UserRepository,
	coord secondary.CaseCoordinator,
) *ActionItemServiceImpl {
	return &ActionItemServiceImpl{
		caseRepo: caseRepo,
		itemRepo: itemRepo,
		userRepo: userRepo,
		coord:    coord,
	}
}

// CreateItem creates an action item on a case.
func (s *ActionItemServiceImpl) CreateItem(ctx context.Context, req primary.CreateItemRequest) (*primary.ActionItem, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, apperr.NewValidation("title", "required")
	}
	priority := req.Priority
	if priority == "" {
		priority = reconcile.DefaultPriority
	}
	if !reconcile.ValidPriority(priority) {
		return nil, apperr.NewValidation("priority", fmt.Sprintf("unknown priority %q", priority))
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		dueDate, err = parseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
	}

	var created *secondary.ActionItemRecord
	err = s.coord.WithCase(ctx, req.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		var status string
		switch workflow.Status(c.Status) {
		case workflow.StatusInvestigation:
			status = gate.ItemStatusDraft
		case workflow.StatusActionsOpen:
			status = gate.ItemStatusOpen
		default:
			return &apperr.ConflictError{
				Reason: fmt.Sprintf("action items need an investigation or open actions (status is %s)", c.Status),
			}
		}
		if req.OwnerID != "" {
			if err := s.requireUser(ctx, tx, req.OwnerID); err != nil {
				return err
			}
		}

		nextID, err := tx.Items.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate item ID: %w", err)
		}
		number, err := tx.Items.NextNumber(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("failed to assign item number: %w", err)
		}

		record := &secondary.ActionItemRecord{
			ID:          nextID,
			CaseID:      c.ID,
			Number:      number,
			Title:       req.Title,
			Description: req.Description,
			Priority:    priority,
			Status:      status,
			OwnerID:     req.OwnerID,
			DueDate:     dueDate,
			CreatedBy:   actor.UserID,
		}
		if err := tx.Items.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create action item: %w", err)
		}
		if err := appendEvent(ctx, tx.Audit, c.ID, secondary.EventActionItemAdded, actionItemAddedPayload{
			ItemID: nextID,
			Number: number,
			Title:  req.Title,
			Status: status,
		}); err != nil {
			return err
		}

		created, err = tx.Items.GetByID(ctx, nextID)
		if err != nil {
			return fmt.Errorf("failed to fetch created item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.recordToItem(created), nil
}

// UpdateItem replaces an item's editable fields. Empty request fields keep
// their stored values.
func (s *ActionItemServiceImpl) UpdateItem(ctx context.Context, req primary.UpdateItemRequest) error {
	if _, err := requireActor(ctx); err != nil {
		return err
	}
	if req.Priority != "" && !reconcile.ValidPriority(req.Priority) {
		return apperr.NewValidation("priority", fmt.Sprintf("unknown priority %q", req.Priority))
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		var err error
		dueDate, err = parseDueDate(req.DueDate)
		if err != nil {
			return err
		}
	}

	item, err := s.itemRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return &apperr.NotFoundError{Kind: "action item", ID: req.ItemID}
	}

	return s.coord.WithCase(ctx, item.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		if workflow.Status(c.Status) == workflow.StatusClosed {
			return &apperr.ConflictError{Reason: "cannot edit items on a closed case"}
		}
		item, err := tx.Items.GetByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return &apperr.NotFoundError{Kind: "action item", ID: req.ItemID}
		}

		if req.Title != "" {
			item.Title = req.Title
		}
		if req.Description != "" {
			item.Description = req.Description
		}
		if req.Priority != "" {
			item.Priority = req.Priority
		}
		if req.OwnerID != "" {
			if err := s.requireUser(ctx, tx, req.OwnerID); err != nil {
				return err
			}
			item.OwnerID = req.OwnerID
		}
		if dueDate != nil {
			item.DueDate = dueDate
		}

		if err := tx.Items.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update action item: %w", err)
		}
		return appendEvent(ctx, tx.Audit, c.ID, secondary.EventActionItemUpdated, actionItemUpdatedPayload{
			ItemID: item.ID,
			Number: item.Number,
		})
	})
}

// SetItemStatus moves an item between externally settable statuses. Items
// only move while the case has its actions open.
func (s *ActionItemServiceImpl) SetItemStatus(ctx context.Context, itemID, status, completionNote string) error {
	if _, err := requireActor(ctx); err != nil {
		return err
	}
	if !gate.SettableItemStatus(status) {
		return apperr.NewValidation("status", fmt.Sprintf("cannot set item status %q", status))
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return &apperr.NotFoundError{Kind: "action item", ID: itemID}
	}

	return s.coord.WithCase(ctx, item.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		if workflow.Status(c.Status) != workflow.StatusActionsOpen {
			return &apperr.ConflictError{
				Reason: fmt.Sprintf("items only move while actions are open (case status is %s)", c.Status),
			}
		}
		item, err := tx.Items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return &apperr.NotFoundError{Kind: "action item", ID: itemID}
		}
		if item.Status == gate.ItemStatusDraft {
			return &apperr.ConflictError{Reason: fmt.Sprintf("item %s has not been activated", item.ID)}
		}
		if item.Status == status {
			return nil
		}

		if err := tx.Items.SetStatus(ctx, item.ID, status, completionNote); err != nil {
			return fmt.Errorf("failed to set item status: %w", err)
		}
		return appendEvent(ctx, tx.Audit, c.ID, secondary.EventActionItemStatusChanged, actionItemStatusChangedPayload{
			ItemID: item.ID,
			Number: item.Number,
			From:   item.Status,
			To:     status,
		})
	})
}

// ListItems retrieves the action items of a case ordered by number.
func (s *ActionItemServiceImpl) ListItems(ctx context.Context, caseID string) ([]*primary.ActionItem, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Deleted {
		return nil, &apperr.NotFoundError{Kind: "case", ID: caseID}
	}
	records, err := s.itemRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action items: %w", err)
	}
	items := make([]*primary.ActionItem, len(records))
	for i, r := range records {
		items[i] = s.recordToItem(r)
	}
	return items, nil
}

// DeleteItem removes an action item. Only draft items may be deleted; an
// activated item is part of the closure record and gets canceled instead.
func (s *ActionItemServiceImpl) DeleteItem(ctx context.Context, itemID string) error {
	if _, err := requireActor(ctx); err != nil {
		return err
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return &apperr.NotFoundError{Kind: "action item", ID: itemID}
	}

	return s.coord.WithCase(ctx, item.CaseID, func(tx secondary.Tx, c *secondary.CaseRecord) error {
		if err := requireLiveCase(c); err != nil {
			return err
		}
		item, err := tx.Items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return &apperr.NotFoundError{Kind: "action item", ID: itemID}
		}
		if item.Status != gate.ItemStatusDraft {
			return &apperr.ConflictError{Reason: fmt.Sprintf("item %s is active; cancel it instead of deleting", item.ID)}
		}
		if err := tx.Items.Delete(ctx, item.ID); err != nil {
			return fmt.Errorf("failed to delete action item: %w", err)
		}
		return appendEvent(ctx, tx.Audit, c.ID, secondary.EventActionItemDeleted, actionItemDeletedPayload{
			ItemID: item.ID,
			Number: item.Number,
			Title:  item.Title,
			Status: item.Status,
		})
	})
}

// requireUser validates that an owner id refers to an existing user.
// Activity is deliberately not checked here; the finalize gate re-verifies
// owners at the moment it matters.
func (s *ActionItemServiceImpl) requireUser(ctx context.Context, tx secondary.Tx, userID string) error {
	user, err := tx.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NewValidation("ownerId", fmt.Sprintf("unknown user %q", userID))
	}
	return nil
}

// Helper methods

func (s *ActionItemServiceImpl) recordToItem(r *secondary.ActionItemRecord) *primary.ActionItem {
	return &primary.ActionItem{
		ID:             r.ID,
		CaseID:         r.CaseID,
		Number:         r.Number,
		Title:          r.Title,
		Description:    r.Description,
		Priority:       r.Priority,
		Status:         r.Status,
		OwnerID:        r.OwnerID,
		DueDate:        formatDueDate(r.DueDate),
		CompletedAt:    formatTimePtr(r.CompletedAt),
		CompletionNote: r.CompletionNote,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      formatTime(r.CreatedAt),
		UpdatedAt:      formatTime(r.UpdatedAt),
	}
}

// Ensure ActionItemServiceImpl implements the interface
var _ primary.ActionItemService = (*ActionItemServiceImpl)(nil)
