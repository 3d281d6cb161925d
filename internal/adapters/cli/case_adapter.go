// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// all business logic to services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/rcfa/internal/apperr"
	"github.com/example/rcfa/internal/ports/primary"
)

// CaseAdapter is a thin adapter that translates CLI operations to
// CaseService calls.
type CaseAdapter struct {
	service primary.CaseService
	out     io.Writer
}

// NewCaseAdapter creates a new CaseAdapter with the given service.
func NewCaseAdapter(service primary.CaseService, out io.Writer) *CaseAdapter {
	return &CaseAdapter{service: service, out: out}
}

// statusColor renders a case status with its conventional color.
func statusColor(status string) string {
	switch status {
	case "draft":
		return color.New(color.FgHiBlack).Sprint(status)
	case "investigation":
		return color.New(color.FgHiCyan).Sprint(status)
	case "actions_open":
		return color.New(color.FgHiYellow).Sprint(status)
	case "closed":
		return color.New(color.FgHiGreen).Sprint(status)
	}
	return status
}

// Create creates a new case and prints its identity.
func (a *CaseAdapter) Create(ctx context.Context, title, asset, failure, background string) error {
	c, err := a.service.CreateCase(ctx, primary.CreateCaseRequest{
		Title:              title,
		Asset:              asset,
		FailureDescription: failure,
		Background:         background,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created case %s: %s\n", c.ID, c.Title)
	fmt.Fprintf(a.out, "  Status: %s\n", statusColor(c.Status))
	return nil
}

// Show displays details for a single case.
func (a *CaseAdapter) Show(ctx context.Context, caseID string) error {
	c, err := a.service.GetCase(ctx, caseID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nCase:    %s\n", c.ID)
	fmt.Fprintf(a.out, "Title:   %s\n", c.Title)
	fmt.Fprintf(a.out, "Status:  %s\n", statusColor(c.Status))
	if c.Asset != "" {
		fmt.Fprintf(a.out, "Asset:   %s\n", c.Asset)
	}
	fmt.Fprintf(a.out, "Owner:   %s\n", c.OwnerID)
	fmt.Fprintf(a.out, "Failure: %s\n", c.FailureDescription)
	if c.Background != "" {
		fmt.Fprintf(a.out, "Background: %s\n", c.Background)
	}
	if c.Notes != "" {
		fmt.Fprintf(a.out, "Notes:   %s\n", c.Notes)
	}
	if c.ClosedBy != "" {
		fmt.Fprintf(a.out, "Closed:  %s by %s\n", c.ClosedAt, c.ClosedBy)
		fmt.Fprintf(a.out, "Summary: %s\n", c.ClosureSummary)
	}
	fmt.Fprintf(a.out, "Created: %s\n", c.CreatedAt)
	fmt.Fprintln(a.out)
	return nil
}

// List lists cases with optional filters.
func (a *CaseAdapter) List(ctx context.Context, status, owner string) error {
	cases, err := a.service.ListCases(ctx, primary.CaseFilters{Status: status, OwnerID: owner})
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		fmt.Fprintln(a.out, "No cases found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tASSET\tOWNER\tTITLE")
	for _, c := range cases {
		asset := c.Asset
		if asset == "" {
			asset = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, statusColor(c.Status), asset, c.OwnerID, c.Title)
	}
	return w.Flush()
}

// Start moves a draft case to investigation without running the analysis.
func (a *CaseAdapter) Start(ctx context.Context, caseID string) error {
	if err := a.service.StartInvestigation(ctx, caseID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Case %s moved to %s\n", caseID, statusColor("investigation"))
	return nil
}

// SetStatus applies a backward/reopen transition.
func (a *CaseAdapter) SetStatus(ctx context.Context, caseID, target string) error {
	if err := a.service.SetStatus(ctx, caseID, target); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Case %s moved to %s\n", caseID, statusColor(target))
	return nil
}

// Finalize runs the completeness gate and activates the draft items. Gate
// failures print the exact blockers before the error propagates.
func (a *CaseAdapter) Finalize(ctx context.Context, caseID string) error {
	resp, err := a.service.Finalize(ctx, caseID)
	if err != nil {
		a.printConflict(err)
		return err
	}
	fmt.Fprintf(a.out, "✓ Case %s moved to %s\n", caseID, statusColor("actions_open"))
	if len(resp.ActivatedItemIDs) > 0 {
		fmt.Fprintf(a.out, "  Activated %d draft item(s): %s\n",
			len(resp.ActivatedItemIDs), strings.Join(resp.ActivatedItemIDs, ", "))
	}
	return nil
}

// Close closes a case once every action item is terminal.
func (a *CaseAdapter) Close(ctx context.Context, caseID, summary string) error {
	if err := a.service.Close(ctx, caseID, summary); err != nil {
		a.printConflict(err)
		return err
	}
	fmt.Fprintf(a.out, "✓ Case %s %s\n", caseID, statusColor("closed"))
	return nil
}

// Reopen reopens a closed case.
func (a *CaseAdapter) Reopen(ctx context.Context, caseID string) error {
	if err := a.service.Reopen(ctx, caseID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Case %s reopened to %s\n", caseID, statusColor("actions_open"))
	return nil
}

// Notes replaces the investigation notes.
func (a *CaseAdapter) Notes(ctx context.Context, caseID, notes string) error {
	if err := a.service.UpdateNotes(ctx, caseID, notes); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Notes updated on %s\n", caseID)
	return nil
}

// Delete soft-deletes a case.
func (a *CaseAdapter) Delete(ctx context.Context, caseID string) error {
	if err := a.service.DeleteCase(ctx, caseID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted case %s\n", caseID)
	return nil
}

// printConflict expands the structured detail of a gate rejection.
func (a *CaseAdapter) printConflict(err error) {
	var cerr *apperr.ConflictError
	if !errors.As(err, &cerr) {
		return
	}
	for _, item := range cerr.IncompleteItems {
		line := fmt.Sprintf("  item #%d:", item.ItemNumber)
		if len(item.MissingFields) > 0 {
			line += " missing " + strings.Join(item.MissingFields, ", ")
		}
		if item.InactiveOwner != "" {
			line += fmt.Sprintf(" owner %s is inactive", item.InactiveOwner)
		}
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint(line))
	}
	for _, item := range cerr.NonTerminalItems {
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprintf("  item #%d is still %s", item.ItemNumber, item.Status))
	}
}
