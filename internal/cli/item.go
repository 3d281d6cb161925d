package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/rcfa/internal/ports/primary"
	"github.com/example/rcfa/internal/wire"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage corrective action items",
	Long:  "Create, update, and track corrective action items on a case",
}

var itemAddCmd = &cobra.Command{
	Use:   "add [case-id] [title]",
	Short: "Create an action item",
	Long: `Create an action item. Items created while the case is under
investigation are born as drafts and activate at finalize; items created
on an actions_open case are born open.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		owner, _ := cmd.Flags().GetString("owner")
		due, _ := cmd.Flags().GetString("due")

		return wire.ItemAdapter().Create(ctx, primary.CreateItemRequest{
			CaseID:      args[0],
			Title:       args[1],
			Description: description,
			Priority:    priority,
			OwnerID:     owner,
			DueDate:     due,
		})
	},
}

var itemUpdateCmd = &cobra.Command{
	Use:   "update [item-id]",
	Short: "Update an action item's editable fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		owner, _ := cmd.Flags().GetString("owner")
		due, _ := cmd.Flags().GetString("due")

		return wire.ItemAdapter().Update(ctx, primary.UpdateItemRequest{
			ItemID:      args[0],
			Title:       title,
			Description: description,
			Priority:    priority,
			OwnerID:     owner,
			DueDate:     due,
		})
	},
}

var itemSetStatusCmd = &cobra.Command{
	Use:   "set-status [item-id] [status]",
	Short: "Move an action item between open, in_progress, blocked, done, and canceled",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		note, _ := cmd.Flags().GetString("note")
		return wire.ItemAdapter().SetStatus(ctx, args[0], args[1], note)
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list [case-id]",
	Short: "List the action items of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.ItemAdapter().List(ctx, args[0])
	},
}

var itemDeleteCmd = &cobra.Command{
	Use:   "delete [item-id]",
	Short: "Delete a draft action item (active items must be canceled instead)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.ItemAdapter().Delete(ctx, args[0])
	},
}

var itemCandidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Manage action item candidates",
}

var itemCandidateAddCmd = &cobra.Command{
	Use:   "add [case-id] [text]",
	Short: "Add a human-authored action item candidate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		return wire.CandidateAdapter().AddActionItem(ctx, args[0], args[1], description, priority)
	},
}

var itemCandidateListCmd = &cobra.Command{
	Use:   "list [case-id]",
	Short: "List the action item candidates of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.CandidateAdapter().ListActionItems(ctx, args[0])
	},
}

func init() {
	itemAddCmd.Flags().String("description", "", "What the action entails")
	itemAddCmd.Flags().String("priority", "", "Priority: low, medium, or high (default medium)")
	itemAddCmd.Flags().String("owner", "", "Owning user ID")
	itemAddCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")

	itemUpdateCmd.Flags().String("title", "", "New title")
	itemUpdateCmd.Flags().String("description", "", "New description")
	itemUpdateCmd.Flags().String("priority", "", "New priority")
	itemUpdateCmd.Flags().String("owner", "", "New owning user ID")
	itemUpdateCmd.Flags().String("due", "", "New due date (YYYY-MM-DD)")

	itemSetStatusCmd.Flags().String("note", "", "Completion note (recorded when moving to done)")

	itemCandidateAddCmd.Flags().String("description", "", "What the action entails")
	itemCandidateAddCmd.Flags().String("priority", "", "Priority: low, medium, or high (default medium)")

	itemCandidateCmd.AddCommand(itemCandidateAddCmd)
	itemCandidateCmd.AddCommand(itemCandidateListCmd)

	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemUpdateCmd)
	itemCmd.AddCommand(itemSetStatusCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemDeleteCmd)
	itemCmd.AddCommand(itemCandidateCmd)
}

// ItemCmd returns the item command
func ItemCmd() *cobra.Command {
	return itemCmd
}
