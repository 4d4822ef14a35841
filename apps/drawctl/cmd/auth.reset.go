package cmd

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Send a password-recovery email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := newSDK(cmd)
		if err != nil {
			return err
		}
		printResult(mgr.ResetPassword(args[0]))
		return nil
	},
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password <new-password>",
	Short: "Change the password of the logged-in account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := newSDK(cmd)
		if err != nil {
			return err
		}
		mgr.CheckAuth(cmd.Context())
		exitIfSdkError(requireLogin(mgr))
		printResult(mgr.UpdatePassword(args[0]))
		return nil
	},
}

func init() {
	authCmd.AddCommand(resetCmd)
	authCmd.AddCommand(setPasswordCmd)
}
