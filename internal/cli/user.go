package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/rcfa/internal/wire"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
	Long:  "Create users and control whether they may own action items",
}

var userCreateCmd = &cobra.Command{
	Use:   "create [user-id]",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		return wire.UserAdapter().Create(ctx, args[0], name, role)
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.UserAdapter().List(ctx)
	},
}

var userActivateCmd = &cobra.Command{
	Use:   "activate [user-id]",
	Short: "Reactivate a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.UserAdapter().SetActive(ctx, args[0], true)
	},
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate [user-id]",
	Short: "Deactivate a user (existing item ownership is kept; finalize re-checks it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.UserAdapter().SetActive(ctx, args[0], false)
	},
}

func init() {
	userCreateCmd.Flags().String("name", "", "Display name")
	userCreateCmd.Flags().String("role", "", "Role: member or admin (default member)")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userActivateCmd)
	userCmd.AddCommand(userDeactivateCmd)
}

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	return userCmd
}
