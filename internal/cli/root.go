// Package cli implements the optimizer terminal client's commands.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

// NewRootCmd builds the command tree. Running the bare command opens the
// interactive TUI.
func NewRootCmd(version string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "optimizer",
		Short:        "Shrink prompts and track what they cost",
		Long:         "optimizer rewrites prompts to use fewer tokens via the relay daemon,\nkeeps a local history of every optimization, and reports cost savings.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(configPath)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", DefaultConfigPath(), "Path to the client config file")

	cmd.AddCommand(
		newTUICmd(&configPath),
		newHistoryCmd(&configPath),
		newExportCmd(&configPath),
		newClearCmd(&configPath),
		newSetupCmd(&configPath),
	)

	return cmd
}

func newTUICmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive optimizer",
		Long:  "Open the full-screen prompt optimizer with live token counting.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(*configPath)
		},
	}
}
