package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rcfa/internal/wire"
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Manage failure analysis cases",
	Long:  "Create, list, and move cases through the analysis workflow",
}

var caseCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new case in draft status",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		asset, _ := cmd.Flags().GetString("asset")
		failure, _ := cmd.Flags().GetString("failure")
		background, _ := cmd.Flags().GetString("background")

		if failure == "" {
			return fmt.Errorf("--failure flag is required")
		}

		return wire.CaseAdapter().Create(ctx, args[0], asset, failure, background)
	},
}

var caseShowCmd = &cobra.Command{
	Use:   "show [case-id]",
	Short: "Show case details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CaseAdapter().Show(ctx, args[0])
	},
}

var caseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		owner, _ := cmd.Flags().GetString("owner")
		return wire.CaseAdapter().List(ctx, status, owner)
	},
}

var caseStartCmd = &cobra.Command{
	Use:   "start [case-id]",
	Short: "Move a draft case to investigation without running the analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CaseAdapter().Start(ctx, args[0])
	},
}

var caseSetStatusCmd = &cobra.Command{
	Use:   "set-status [case-id] [status]",
	Short: "Move a case backward (forward progress goes through analyze/finalize/close)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CaseAdapter().SetStatus(ctx, args[0], args[1])
	},
}

var caseFinalizeCmd = &cobra.Command{
	Use:   "finalize [case-id]",
	Short: "Run the completeness gate and move the case to actions_open",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CaseAdapter().Finalize(ctx, args[0])
	},
}

var caseCloseCmd = &cobra.Command{
	Use:   "close [case-id]",
	Short: "Close a case once every action item is terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		summary, _ := cmd.Flags().GetString("summary")
		if summary == "" {
			return fmt.Errorf("--summary flag is required")
		}
		return wire.CaseAdapter().Close(ctx, args[0], summary)
	},
}

var caseReopenCmd = &cobra.Command{
	Use:   "reopen [case-id]",
	Short: "Reopen a closed case (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CaseAdapter().Reopen(ctx, args[0])
	},
}

var caseNotesCmd = &cobra.Command{
	Use:   "notes [case-id] [notes]",
	Short: "Replace the free-form investigation notes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CaseAdapter().Notes(ctx, args[0], args[1])
	},
}

var caseDeleteCmd = &cobra.Command{
	Use:   "delete [case-id]",
	Short: "Soft-delete a case (creator or admin; audit trail stays readable)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CaseAdapter().Delete(ctx, args[0])
	},
}

func init() {
	caseCreateCmd.Flags().String("asset", "", "Failed asset or equipment tag")
	caseCreateCmd.Flags().String("failure", "", "Failure description (required)")
	caseCreateCmd.Flags().String("background", "", "Operating background and history")

	caseListCmd.Flags().String("status", "", "Filter by status")
	caseListCmd.Flags().String("owner", "", "Filter by owner")

	caseCloseCmd.Flags().String("summary", "", "Closure summary (required)")

	caseCmd.AddCommand(caseCreateCmd)
	caseCmd.AddCommand(caseShowCmd)
	caseCmd.AddCommand(caseListCmd)
	caseCmd.AddCommand(caseStartCmd)
	caseCmd.AddCommand(caseSetStatusCmd)
	caseCmd.AddCommand(caseFinalizeCmd)
	caseCmd.AddCommand(caseCloseCmd)
	caseCmd.AddCommand(caseReopenCmd)
	caseCmd.AddCommand(caseNotesCmd)
	caseCmd.AddCommand(caseDeleteCmd)
}

// CaseCmd returns the case command
func CaseCmd() *cobra.Command {
	return caseCmd
}
