package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/rcfa/internal/ports/primary"
)

// ItemAdapter is a thin adapter that translates CLI operations to
// ActionItemService calls.
type ItemAdapter struct {
	service primary.ActionItemService
	out     io.Writer
}

// NewItemAdapter creates a new ItemAdapter with the given service.
func NewItemAdapter(service primary.ActionItemService, out io.Writer) *ItemAdapter {
	return &ItemAdapter{service: service, out: out}
}

func itemStatusColor(status string) string {
	switch status {
	case "draft":
		return color.New(color.FgHiBlack).Sprint(status)
	case "open":
		return color.New(color.FgHiCyan).Sprint(status)
	case "in_progress":
		return color.New(color.FgHiYellow).Sprint(status)
	case "blocked":
		return color.New(color.FgHiRed).Sprint(status)
	case "done":
		return color.New(color.FgHiGreen).Sprint(status)
	case "canceled":
		return color.New(color.FgHiBlack).Sprint(status)
	}
	return status
}

// Create creates an action item on a case.
func (a *ItemAdapter) Create(ctx context.Context, req primary.CreateItemRequest) error {
	item, err := a.service.CreateItem(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created item %s (#%d, %s): %s\n", item.ID, item.Number, itemStatusColor(item.Status), item.Title)
	return nil
}

// Update replaces an item's editable fields.
func (a *ItemAdapter) Update(ctx context.Context, req primary.UpdateItemRequest) error {
	if err := a.service.UpdateItem(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Updated item %s\n", req.ItemID)
	return nil
}

// SetStatus moves an item between settable statuses.
func (a *ItemAdapter) SetStatus(ctx context.Context, itemID, status, note string) error {
	if err := a.service.SetItemStatus(ctx, itemID, status, note); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Item %s is now %s\n", itemID, itemStatusColor(status))
	return nil
}

// List prints the action items of a case.
func (a *ItemAdapter) List(ctx context.Context, caseID string) error {
	items, err := a.service.ListItems(ctx, caseID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No action items")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t#\tSTATUS\tPRIORITY\tOWNER\tDUE\tTITLE")
	for _, item := range items {
		owner := item.OwnerID
		if owner == "" {
			owner = "-"
		}
		due := item.DueDate
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Number, itemStatusColor(item.Status), item.Priority, owner, due, item.Title)
	}
	return w.Flush()
}

// Delete removes a draft action item.
func (a *ItemAdapter) Delete(ctx context.Context, itemID string) error {
	if err := a.service.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted item %s\n", itemID)
	return nil
}
