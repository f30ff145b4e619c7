package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "fos",
		Short:   "Classify and reconcile Swiss bank statement transactions",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newClassifyCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
