package cmd

import (
	"github.com/spf13/cobra"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join (or rejoin) the ball-drawing activity",
	Long: `Join the ball-drawing activity. The first join creates your player
record; a paused player rejoins. Leaving is an admin-only action - once
participating you stay in until an admin pauses you.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, tracker, err := newSDK(cmd)
		if err != nil {
			return err
		}

		mgr.CheckAuth(cmd.Context())
		exitIfSdkError(requireLogin(mgr))

		tracker.CheckStatus()
		printResult(tracker.Join())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
