package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/rcfa/internal/wire"
)

// AnalyzeCmd returns the analyze command
func AnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [case-id]",
		Short: "Run the initial analysis on a draft case",
		Long: `Run the initial analysis: generate follow-up questions, root cause
candidates, and action item candidates, then move the case to investigation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := actorContext()
			if err != nil {
				return err
			}
			return wire.AnalysisAdapter().Analyze(ctx, args[0])
		},
	}
}

// ReanalyzeCmd returns the reanalyze command
func ReanalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reanalyze [case-id]",
		Short: "Re-run the analysis against the accumulated evidence",
		Long: `Re-run the analysis against the answers and notes gathered since the
last run. Requires new evidence; candidate text is never rewritten, only
confidence and priority labels move, and new candidates may be appended.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := actorContext()
			if err != nil {
				return err
			}
			return wire.AnalysisAdapter().Reanalyze(ctx, args[0])
		},
	}
}
