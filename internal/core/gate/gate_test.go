package gate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func completeItem(id string, number int) ItemSnapshot {
	return ItemSnapshot{
		ID:          id,
		Number:      number,
		Title:       "Replace bearing",
		Description: "Replace the worn drive-end bearing",
		Priority:    "high",
		Status:      ItemStatusDraft,
		OwnerID:     "U-001",
		HasDueDate:  true,
	}
}

func TestCheckFinalize(t *testing.T) {
	activeOwner := map[string]bool{"U-001": true}

	tests := []struct {
		name           string
		ctx            FinalizeContext
		wantAllowed    bool
		wantReason     string
		wantIncomplete []IncompleteItem
	}{
		{
			name: "complete draft items pass",
			ctx: FinalizeContext{
				FinalCount:  1,
				Items:       []ItemSnapshot{completeItem("AI-001", 1)},
				ActiveUsers: activeOwner,
			},
			wantAllowed: true,
		},
		{
			name: "no final root cause",
			ctx: FinalizeContext{
				FinalCount:  0,
				Items:       []ItemSnapshot{completeItem("AI-001", 1)},
				ActiveUsers: activeOwner,
			},
			wantAllowed: false,
			wantReason:  "at least one final root cause is required",
		},
		{
			name:        "no action items",
			ctx:         FinalizeContext{FinalCount: 1, ActiveUsers: activeOwner},
			wantAllowed: false,
			wantReason:  "at least one action item is required",
		},
		{
			name: "draft item missing due date is reported by number and field",
			ctx: FinalizeContext{
				FinalCount: 1,
				Items: []ItemSnapshot{
					completeItem("AI-001", 1),
					func() ItemSnapshot {
						i := completeItem("AI-002", 2)
						i.HasDueDate = false
						return i
					}(),
				},
				ActiveUsers: activeOwner,
			},
			wantAllowed: false,
			wantReason:  "1 draft action item(s) are incomplete",
			wantIncomplete: []IncompleteItem{
				{Number: 2, MissingFields: []string{"dueDate"}},
			},
		},
		{
			name: "deactivated owner is reported",
			ctx: FinalizeContext{
				FinalCount:  1,
				Items:       []ItemSnapshot{completeItem("AI-001", 1)},
				ActiveUsers: map[string]bool{},
			},
			wantAllowed: false,
			wantReason:  "1 draft action item(s) are incomplete",
			wantIncomplete: []IncompleteItem{
				{Number: 1, InactiveOwner: "U-001"},
			},
		},
		{
			name: "missing owner reports owner field, not inactive owner",
			ctx: FinalizeContext{
				FinalCount: 1,
				Items: []ItemSnapshot{
					func() ItemSnapshot {
						i := completeItem("AI-001", 1)
						i.OwnerID = ""
						return i
					}(),
				},
				ActiveUsers: activeOwner,
			},
			wantAllowed: false,
			wantReason:  "1 draft action item(s) are incomplete",
			wantIncomplete: []IncompleteItem{
				{Number: 1, MissingFields: []string{"owner"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckFinalize(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
			if diff := cmp.Diff(tt.wantIncomplete, result.Incomplete); diff != "" {
				t.Errorf("Incomplete mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckFinalizeCollectsDraftIDs(t *testing.T) {
	open := completeItem("AI-003", 3)
	open.Status = ItemStatusOpen

	result := CheckFinalize(FinalizeContext{
		FinalCount:  1,
		Items:       []ItemSnapshot{completeItem("AI-001", 1), completeItem("AI-002", 2), open},
		ActiveUsers: map[string]bool{"U-001": true},
	})
	if !result.Allowed {
		t.Fatalf("expected allowed, got reason %q", result.Reason)
	}
	want := []string{"AI-001", "AI-002"}
	if diff := cmp.Diff(want, result.DraftIDs); diff != "" {
		t.Errorf("DraftIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckClose(t *testing.T) {
	done := completeItem("AI-001", 1)
	done.Status = ItemStatusDone
	canceled := completeItem("AI-002", 2)
	canceled.Status = ItemStatusCanceled
	inProgress := completeItem("AI-003", 3)
	inProgress.Status = ItemStatusInProgress

	result := CheckClose([]ItemSnapshot{done, canceled})
	if !result.Allowed {
		t.Fatalf("expected allowed, got reason %q", result.Reason)
	}

	result = CheckClose([]ItemSnapshot{done, inProgress})
	if result.Allowed {
		t.Fatal("expected rejection with an in-progress item")
	}
	want := []NonTerminalItem{{Number: 3, Status: ItemStatusInProgress}}
	if diff := cmp.Diff(want, result.NonTerminal); diff != "" {
		t.Errorf("NonTerminal mismatch (-want +got):\n%s", diff)
	}
}

func TestSettableItemStatus(t *testing.T) {
	if SettableItemStatus(ItemStatusDraft) {
		t.Error("draft must never be externally settable")
	}
	for _, s := range SettableItemStatuses {
		if !SettableItemStatus(s) {
			t.Errorf("%s should be settable", s)
		}
	}
}
