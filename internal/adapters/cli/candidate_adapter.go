package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/rcfa/internal/ports/primary"
)

// CandidateAdapter is a thin adapter that translates CLI operations to
// CandidateService calls.
type CandidateAdapter struct {
	service primary.CandidateService
	out     io.Writer
}

// NewCandidateAdapter creates a new CandidateAdapter with the given service.
func NewCandidateAdapter(service primary.CandidateService, out io.Writer) *CandidateAdapter {
	return &CandidateAdapter{service: service, out: out}
}

func authorshipMark(generatedBy string) string {
	if generatedBy == "ai" {
		return color.New(color.FgHiBlue).Sprint("[ai]")
	}
	return color.New(color.FgHiGreen).Sprint("[human]")
}

// AddRootCause creates a human-authored root-cause candidate.
func (a *CandidateAdapter) AddRootCause(ctx context.Context, caseID, causeText, detail, confidence string) error {
	c, err := a.service.AddRootCauseCandidate(ctx, primary.AddRootCauseCandidateRequest{
		CaseID:     caseID,
		CauseText:  causeText,
		Detail:     detail,
		Confidence: confidence,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Added root cause candidate %s (%s)\n", c.ID, c.Confidence)
	return nil
}

// AddActionItem creates a human-authored action-item candidate.
func (a *CandidateAdapter) AddActionItem(ctx context.Context, caseID, text, description, priority string) error {
	c, err := a.service.AddActionItemCandidate(ctx, primary.AddActionItemCandidateRequest{
		CaseID:      caseID,
		Text:        text,
		Description: description,
		Priority:    priority,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Added action item candidate %s (%s)\n", c.ID, c.Priority)
	return nil
}

// ListRootCauses prints the root-cause candidates of a case.
func (a *CandidateAdapter) ListRootCauses(ctx context.Context, caseID string) error {
	candidates, err := a.service.ListRootCauseCandidates(ctx, caseID)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(a.out, "No root cause candidates")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCONFIDENCE\tBY\tCAUSE")
	for _, c := range candidates {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Confidence, authorshipMark(c.GeneratedBy), c.CauseText)
	}
	return w.Flush()
}

// ListActionItems prints the action-item candidates of a case.
func (a *CandidateAdapter) ListActionItems(ctx context.Context, caseID string) error {
	candidates, err := a.service.ListActionItemCandidates(ctx, caseID)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(a.out, "No action item candidates")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tBY\tACTION")
	for _, c := range candidates {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Priority, authorshipMark(c.GeneratedBy), c.Text)
	}
	return w.Flush()
}

// Promote ratifies a candidate into a final root cause.
func (a *CandidateAdapter) Promote(ctx context.Context, candidateID, causeText, detail string) error {
	final, err := a.service.PromoteRootCause(ctx, primary.PromoteRootCauseRequest{
		CandidateID: candidateID,
		CauseText:   causeText,
		Detail:      detail,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Promoted %s to final root cause %s\n", candidateID, final.ID)
	return nil
}

// AddFinal creates a directly authored final root cause.
func (a *CandidateAdapter) AddFinal(ctx context.Context, caseID, causeText, detail string) error {
	final, err := a.service.AddFinal(ctx, primary.AddFinalRequest{
		CaseID:    caseID,
		CauseText: causeText,
		Detail:    detail,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Added final root cause %s\n", final.ID)
	return nil
}

// ListFinals prints the final root causes of a case.
func (a *CandidateAdapter) ListFinals(ctx context.Context, caseID string) error {
	finals, err := a.service.ListFinals(ctx, caseID)
	if err != nil {
		return err
	}
	if len(finals) == 0 {
		fmt.Fprintln(a.out, "No final root causes")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFROM\tBY\tCAUSE")
	for _, f := range finals {
		from := f.PromotedFromID
		if from == "" {
			from = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, from, f.CreatedBy, f.CauseText)
	}
	return w.Flush()
}

// DeleteFinal removes a final root cause.
func (a *CandidateAdapter) DeleteFinal(ctx context.Context, finalID string) error {
	if err := a.service.DeleteFinal(ctx, finalID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted final root cause %s\n", finalID)
	return nil
}
