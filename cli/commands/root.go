// Package commands implements the sqlexpr CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/sqlexpr/sqlexpr/cli/internal/config"
	"github.com/sqlexpr/sqlexpr/cli/internal/ui"
	"github.com/sqlexpr/sqlexpr/internal/debug"
)

// Version is set by the build.
var Version = "dev"

// Execute runs the root command.
func Execute() error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load configuration: %v", err)
		return err
	}

	rootCmd := &cobra.Command{
		Use:     "sqlexpr",
		Short:   "Inspect and render SQL expression trees",
		Long:    "sqlexpr renders composable expression trees to parametrized SQL for multiple database dialects.",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("debug")
			debug.Init(verbose || cfg.Debug)
		},
	}
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringP("dialect", "d", cfg.Dialect, "target dialect")

	rootCmd.AddCommand(NewDialectsCommand())
	rootCmd.AddCommand(NewRenderCommand())

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
