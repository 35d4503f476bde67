package cmd

import (
	"fmt"
	"os"

	"muselib/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "muselib",
	Short: "muselib is a music-library management service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
