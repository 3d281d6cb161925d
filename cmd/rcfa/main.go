package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/rcfa/internal/cli"
	"github.com/example/rcfa/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "rcfa",
		Short:   "RCFA - Root cause failure analysis workflow",
		Version: version.String(),
		Long: `RCFA is a CLI tool for running root cause failure analyses.
It walks a case from intake through AI-assisted investigation to
ratified root causes, tracked corrective actions, and closure.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.CaseCmd())
	rootCmd.AddCommand(cli.AnalyzeCmd())
	rootCmd.AddCommand(cli.ReanalyzeCmd())
	rootCmd.AddCommand(cli.QuestionCmd())
	rootCmd.AddCommand(cli.CauseCmd())
	rootCmd.AddCommand(cli.ItemCmd())
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.AuditCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
