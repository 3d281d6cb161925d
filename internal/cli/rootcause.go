package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/rcfa/internal/wire"
)

var causeCmd = &cobra.Command{
	Use:   "cause",
	Short: "Manage root cause candidates and final root causes",
	Long:  "Add and list root cause candidates, promote them, and manage finals",
}

var causeAddCmd = &cobra.Command{
	Use:   "add [case-id] [cause-text]",
	Short: "Add a human-authored root cause candidate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		detail, _ := cmd.Flags().GetString("detail")
		confidence, _ := cmd.Flags().GetString("confidence")
		return wire.CandidateAdapter().AddRootCause(ctx, args[0], args[1], detail, confidence)
	},
}

var causeListCmd = &cobra.Command{
	Use:   "list [case-id]",
	Short: "List the root cause candidates of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CandidateAdapter().ListRootCauses(ctx, args[0])
	},
}

var causePromoteCmd = &cobra.Command{
	Use:   "promote [candidate-id]",
	Short: "Ratify a candidate into a final root cause",
	Long: `Ratify a candidate into a final root cause. The final carries the
candidate's text unless edited with --text/--detail; a candidate can be
promoted at most once.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		text, _ := cmd.Flags().GetString("text")
		detail, _ := cmd.Flags().GetString("detail")
		return wire.CandidateAdapter().Promote(ctx, args[0], text, detail)
	},
}

var finalCmd = &cobra.Command{
	Use:   "final",
	Short: "Manage final (ratified) root causes",
}

var finalAddCmd = &cobra.Command{
	Use:   "add [case-id] [cause-text]",
	Short: "Add a final root cause without a backing candidate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		detail, _ := cmd.Flags().GetString("detail")
		return wire.CandidateAdapter().AddFinal(ctx, args[0], args[1], detail)
	},
}

var finalListCmd = &cobra.Command{
	Use:   "list [case-id]",
	Short: "List the final root causes of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CandidateAdapter().ListFinals(ctx, args[0])
	},
}

var finalDeleteCmd = &cobra.Command{
	Use:   "delete [final-id]",
	Short: "Delete a final root cause (only while under investigation)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CandidateAdapter().DeleteFinal(ctx, args[0])
	},
}

func init() {
	causeAddCmd.Flags().String("detail", "", "Supporting detail")
	causeAddCmd.Flags().String("confidence", "", "Confidence: low, medium, or high (default medium)")

	causePromoteCmd.Flags().String("text", "", "Edited cause text (defaults to the candidate's)")
	causePromoteCmd.Flags().String("detail", "", "Edited detail (defaults to the candidate's)")

	finalAddCmd.Flags().String("detail", "", "Supporting detail")

	finalCmd.AddCommand(finalAddCmd)
	finalCmd.AddCommand(finalListCmd)
	finalCmd.AddCommand(finalDeleteCmd)

	causeCmd.AddCommand(causeAddCmd)
	causeCmd.AddCommand(causeListCmd)
	causeCmd.AddCommand(causePromoteCmd)
	causeCmd.AddCommand(finalCmd)
}

// CauseCmd returns the cause command
func CauseCmd() *cobra.Command {
	return causeCmd
}
