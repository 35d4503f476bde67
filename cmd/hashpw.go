package cmd

import (
	"fmt"
	"os"

	"muselib/core/auth"

	"github.com/spf13/cobra"
)

var hashpwCmd = &cobra.Command{
	Use:   "hashpw <password>",
	Short: "Generate a bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
	},
}

func init() {
	rootCmd.AddCommand(hashpwCmd)
}
