package cmd

import (
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication (login, logout, register, password)",
	Long: `Manage authentication against the drawball deployment.

Subcommands let you create an account (register), obtain a session (login),
invalidate it (logout), and recover or change your password. The session is
stored in the OS keyring for use by other drawctl commands.

Examples:
  drawctl auth register --email a@example.com
  drawctl auth login --email a@example.com
  drawctl auth logout`,
}

func init() {
	rootCmd.AddCommand(authCmd)
}
