package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rcfa/internal/config"
	"github.com/example/rcfa/internal/ctxutil"
	"github.com/example/rcfa/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the RCFA database and configuration",
		Long:  `Initialize the RCFA database at ~/.rcfa/rcfa.db and write config.json identifying the acting user.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")
			model, _ := cmd.Flags().GetString("model")

			if userID == "" {
				return fmt.Errorf("--user flag is required")
			}
			if role != ctxutil.RoleMember && role != ctxutil.RoleAdmin {
				return fmt.Errorf("invalid role %q: must be %q or %q", role, ctxutil.RoleMember, ctxutil.RoleAdmin)
			}

			dir, err := db.Dir()
			if err != nil {
				return fmt.Errorf("failed to get data directory: %w", err)
			}

			fmt.Printf("Initializing RCFA database in %s\n", dir)
			if _, err := db.GetDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Println("✓ Database initialized successfully")

			cfg := &config.Config{
				Version: "1",
				UserID:  userID,
				Role:    role,
				Model:   model,
			}
			if err := config.Save(dir, cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Printf("✓ Configuration written (user %s, role %s)\n", userID, role)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Printf("  rcfa user create %s --name \"Your Name\"\n", userID)
			fmt.Println("  rcfa case create \"Pump P-101 seal failure\" --failure \"...\"")

			return nil
		},
	}

	cmd.Flags().String("user", "", "Acting user ID (required)")
	cmd.Flags().String("role", ctxutil.RoleMember, "Acting role: member or admin")
	cmd.Flags().String("model", "", "Analysis model override")
	return cmd
}
