package cmd

import (
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <new-name>",
	Short: "Rename your player",
	Long: `Rename your player record. The role table's display name is kept
in sync best-effort; only the player update itself can fail the command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, tracker, err := newSDK(cmd)
		if err != nil {
			return err
		}

		mgr.CheckAuth(cmd.Context())
		exitIfSdkError(requireLogin(mgr))

		tracker.CheckStatus()
		printResult(tracker.UpdateName(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
