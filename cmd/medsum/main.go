package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "medsum",
		Short:         "Summarize clinical reports from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(batchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
