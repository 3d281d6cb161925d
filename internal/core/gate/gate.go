// Package gate contains the pure completeness checks that guard the forward
// transitions out of investigation and actions_open. Gates evaluate
// snapshots; they perform no I/O.
package gate

import "fmt"

// Action item statuses. Draft is system-set only: items created while the
// case is still under investigation are born draft and activated in bulk by
// the finalize gate.
const (
	ItemStatusDraft      = "draft"
	ItemStatusOpen       = "open"
	ItemStatusInProgress = "in_progress"
	ItemStatusBlocked    = "blocked"
	ItemStatusDone       = "done"
	ItemStatusCanceled   = "canceled"
)

// SettableItemStatuses are the item statuses an external request may set.
// Draft is deliberately absent.
var SettableItemStatuses = []string{
	ItemStatusOpen, ItemStatusInProgress, ItemStatusBlocked, ItemStatusDone, ItemStatusCanceled,
}

// SettableItemStatus reports whether an external request may set s.
func SettableItemStatus(s string) bool {
	for _, v := range SettableItemStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// TerminalItemStatus reports whether s counts as finished for the close gate.
func TerminalItemStatus(s string) bool {
	return s == ItemStatusDone || s == ItemStatusCanceled
}

// ItemSnapshot is the view of one action item that the gates evaluate.
type ItemSnapshot struct {
	ID          string
	Number      int
	Title       string
	Description string
	Priority    string
	Status      string
	OwnerID     string
	HasDueDate  bool
}

// IncompleteItem identifies a draft item that blocks finalization.
type IncompleteItem struct {
	Number        int
	MissingFields []string
	InactiveOwner string
}

// FinalizeContext provides the snapshots the finalize gate evaluates.
// ActiveUsers is keyed by user id; owners absent from the map count as
// inactive, because a deactivated owner must be caught at finalize time.
type FinalizeContext struct {
	FinalCount  int
	Items       []ItemSnapshot
	ActiveUsers map[string]bool
}

// FinalizeResult reports whether the case may leave investigation, and if
// not, exactly which items block it.
type FinalizeResult struct {
	Allowed    bool
	Reason     string
	Incomplete []IncompleteItem
	DraftIDs   []string
}

// CheckFinalize evaluates the investigation -> actions_open preconditions.
// Rules:
//   - At least one final root cause must exist.
//   - At least one action item must exist.
//   - Every draft item needs title, description, owner, due date, and
//     priority; its owner must currently be active.
func CheckFinalize(ctx FinalizeContext) FinalizeResult {
	if ctx.FinalCount == 0 {
		return FinalizeResult{Reason: "at least one final root cause is required"}
	}
	if len(ctx.Items) == 0 {
		return FinalizeResult{Reason: "at least one action item is required"}
	}

	var incomplete []IncompleteItem
	var draftIDs []string
	for _, item := range ctx.Items {
		if item.Status != ItemStatusDraft {
			continue
		}
		draftIDs = append(draftIDs, item.ID)

		var missing []string
		if item.Title == "" {
			missing = append(missing, "title")
		}
		if item.Description == "" {
			missing = append(missing, "description")
		}
		if item.OwnerID == "" {
			missing = append(missing, "owner")
		}
		if !item.HasDueDate {
			missing = append(missing, "dueDate")
		}
		// Priority always has a default; checked anyway so a bad row cannot
		// slip through activation.
		if item.Priority == "" {
			missing = append(missing, "priority")
		}

		inactiveOwner := ""
		if item.OwnerID != "" && !ctx.ActiveUsers[item.OwnerID] {
			inactiveOwner = item.OwnerID
		}

		if len(missing) > 0 || inactiveOwner != "" {
			incomplete = append(incomplete, IncompleteItem{
				Number:        item.Number,
				MissingFields: missing,
				InactiveOwner: inactiveOwner,
			})
		}
	}

	if len(incomplete) > 0 {
		return FinalizeResult{
			Reason:     fmt.Sprintf("%d draft action item(s) are incomplete", len(incomplete)),
			Incomplete: incomplete,
		}
	}

	return FinalizeResult{Allowed: true, DraftIDs: draftIDs}
}

// NonTerminalItem identifies an action item that blocks closing.
type NonTerminalItem struct {
	Number int
	Status string
}

// CloseResult reports whether the case may close.
type CloseResult struct {
	Allowed     bool
	Reason      string
	NonTerminal []NonTerminalItem
}

// CheckClose evaluates the actions_open -> closed precondition: every action
// item must be done or canceled.
func CheckClose(items []ItemSnapshot) CloseResult {
	var open []NonTerminalItem
	for _, item := range items {
		if !TerminalItemStatus(item.Status) {
			open = append(open, NonTerminalItem{Number: item.Number, Status: item.Status})
		}
	}
	if len(open) > 0 {
		return CloseResult{
			Reason:      fmt.Sprintf("%d action item(s) are not finished", len(open)),
			NonTerminal: open,
		}
	}
	return CloseResult{Allowed: true}
}
