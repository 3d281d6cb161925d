package primary

import "context"

// ActionItemService defines the primary port for corrective action items.
// Items created while the case is still under investigation are born in
// draft status; draft is system-set only and can never be requested
// externally.
type ActionItemService interface {
	// CreateItem creates an action item on a case.
	CreateItem(ctx context.Context, req CreateItemRequest) (*ActionItem, error)

	// UpdateItem replaces an item's editable fields.
	UpdateItem(ctx context.Context, req UpdateItemRequest) error

	// SetItemStatus moves an item between externally settable statuses.
	SetItemStatus(ctx context.Context, itemID, status, completionNote string) error

	// ListItems retrieves the action items of a case ordered by number.
	ListItems(ctx context.Context, caseID string) ([]*ActionItem, error)

	// DeleteItem removes an action item, auditing its key fields.
	DeleteItem(ctx context.Context, itemID string) error
}

// CreateItemRequest contains the fields for a new action item. DueDate is
// RFC3339 date or empty.
type CreateItemRequest struct {
	CaseID      string
	Title       string
	Description string
	Priority    string
	OwnerID     string
	DueDate     string
}

// UpdateItemRequest contains the editable fields of an action item. Empty
// fields keep their stored value.
type UpdateItemRequest struct {
	ItemID      string
	Title       string
	Description string
	Priority    string
	OwnerID     string
	DueDate     string
}

// ActionItem represents an action item at the port boundary.
type ActionItem struct {
	ID             string
	CaseID         string
	Number         int
	Title          string
	Description    string
	Priority       string
	Status         string
	OwnerID        string
	DueDate        string
	CompletedAt    string
	CompletionNote string
	CreatedBy      string
	CreatedAt      string
	UpdatedAt      string
}
