package cmd

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Long: `Remove the stored session and best-effort revoke it server-side.
Logout always succeeds locally even when the deployment is unreachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := newSDK(cmd)
		if err != nil {
			return err
		}
		mgr.CheckAuth(cmd.Context())
		printResult(mgr.Logout())
		return nil
	},
}

func init() {
	authCmd.AddCommand(logoutCmd)
}
