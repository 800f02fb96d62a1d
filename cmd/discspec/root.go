package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "discspec",
		Short:         "Disc technical specification enrichment service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newEnqueueCommand())
	rootCmd.AddCommand(newJobsCommand())

	return rootCmd
}
