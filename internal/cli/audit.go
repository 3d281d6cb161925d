package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/rcfa/internal/wire"
)

// AuditCmd returns the audit command
func AuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [case-id]",
		Short: "Show the audit trail of a case",
		Long:  "Show the append-only audit trail of a case, oldest first. Works on deleted cases.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := actorContext()
			if err != nil {
				return err
			}
			showPayload, _ := cmd.Flags().GetBool("payload")
			return wire.AuditAdapter().List(ctx, args[0], showPayload)
		},
	}
	cmd.Flags().Bool("payload", false, "Include the JSON payload of each event")
	return cmd
}
