package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/rcfa/internal/ports/primary"
)

// AnalysisAdapter is a thin adapter that translates CLI operations to
// AnalysisService calls.
type AnalysisAdapter struct {
	service primary.AnalysisService
	out     io.Writer
}

// NewAnalysisAdapter creates a new AnalysisAdapter with the given service.
func NewAnalysisAdapter(service primary.AnalysisService, out io.Writer) *AnalysisAdapter {
	return &AnalysisAdapter{service: service, out: out}
}

// Analyze runs the initial analysis and reports what it created.
func (a *AnalysisAdapter) Analyze(ctx context.Context, caseID string) error {
	fmt.Fprintf(a.out, "Analyzing %s...\n", caseID)
	resp, err := a.service.Analyze(ctx, caseID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Case %s moved to %s\n", caseID, statusColor("investigation"))
	fmt.Fprintf(a.out, "  %d follow-up question(s)\n", resp.FollowUpQuestionCount)
	fmt.Fprintf(a.out, "  %d root cause candidate(s)\n", resp.RootCauseCandidateCount)
	fmt.Fprintf(a.out, "  %d action item candidate(s)\n", resp.ActionItemCandidateCount)
	return nil
}

// Reanalyze re-runs the analysis against the accumulated evidence.
func (a *AnalysisAdapter) Reanalyze(ctx context.Context, caseID string) error {
	fmt.Fprintf(a.out, "Re-analyzing %s...\n", caseID)
	resp, err := a.service.Reanalyze(ctx, caseID)
	if err != nil {
		return err
	}

	if !resp.MaterialChange {
		fmt.Fprintf(a.out, "✓ No material change: %s\n", resp.Rationale)
		if resp.DiscardedExtraneous {
			fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("  (model returned extraneous updates; discarded)"))
		}
		return nil
	}

	fmt.Fprintf(a.out, "✓ Material change: %s\n", resp.Rationale)
	fmt.Fprintf(a.out, "  %d candidate label(s) updated\n", resp.UpdatedCandidateCount)
	if resp.NewRootCauseCount > 0 {
		fmt.Fprintf(a.out, "  %d new root cause candidate(s)\n", resp.NewRootCauseCount)
	}
	if resp.NewActionItemCount > 0 {
		fmt.Fprintf(a.out, "  %d new action item candidate(s)\n", resp.NewActionItemCount)
	}
	for _, sk := range resp.SkippedUpdates {
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprintf("  skipped %s %s: %s", sk.CandidateType, sk.CandidateID, sk.Reason))
	}
	return nil
}
