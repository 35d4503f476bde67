package cmd

import (
	"muselib/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the muselib HTTP server",
	Long:  `Start the muselib HTTP server, serving the catalog API, media files and the mutation event feed.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
