package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/rcfa/internal/ports/primary"
)

// AuditAdapter is a thin adapter that translates CLI operations to
// AuditService calls.
type AuditAdapter struct {
	service primary.AuditService
	out     io.Writer
}

// NewAuditAdapter creates a new AuditAdapter with the given service.
func NewAuditAdapter(service primary.AuditService, out io.Writer) *AuditAdapter {
	return &AuditAdapter{service: service, out: out}
}

// List prints the audit trail of a case in append order.
func (a *AuditAdapter) List(ctx context.Context, caseID string, showPayload bool) error {
	events, err := a.service.ListEvents(ctx, caseID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No audit events")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTIME\tEVENT\tACTOR")
	for _, e := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.CreatedAt, e.EventType, e.ActorID)
		if showPayload {
			fmt.Fprintf(w, "\t\t%s\t\n", e.Payload)
		}
	}
	return w.Flush()
}
