package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "orgscout <url>...",
		Short: "Discover which organizations drive a repository",
		Long: `Analyzes a repository's public activity pages to work out which
organizations its contributors belong to, and ranks those organizations
by weighted contribution. Accepts repository URLs and pull request URLs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addAnalyzeFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdCache())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
