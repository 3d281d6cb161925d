package app

import (
	"context"
	"time"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/ctxutil"
	"github.com/example/rcfa/internal/ports/secondary"
)

// formatTime renders a timestamp for the port boundary.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatTimePtr renders an optional timestamp, empty when unset.
func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// dueDateLayout is the wire format for action item due dates.
const dueDateLayout = "2006-01-02"

func parseDueDate(s string) (*time.Time, error) {
	t, err := time.Parse(dueDateLayout, s)
	if err != nil {
		return nil, apperr.NewValidation("dueDate", "must be a YYYY-MM-DD date")
	}
	return &t, nil
}

func formatDueDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dueDateLayout)
}

// requireActor returns the context actor, rejecting anonymous calls. Every
// mutation goes through here so audit events always carry a user id.
func requireActor(ctx context.Context) (ctxutil.Actor, error) {
	actor := ctxutil.ActorFromContext(ctx)
	if actor.UserID == "" {
		return ctxutil.Actor{}, &apperr.AuthorizationError{Reason: "no acting user in request context"}
	}
	return actor, nil
}

// requireLiveCase rejects soft-deleted cases. Deleted cases are invisible to
// every operation except the audit trail.
func requireLiveCase(c *secondary.CaseRecord) error {
	if c.Deleted {
		return &apperr.NotFoundError{Kind: "case", ID: c.ID}
	}
	return nil
}
