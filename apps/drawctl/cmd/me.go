package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the current user, role and participation state",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, tracker, err := newSDK(cmd)
		if err != nil {
			return err
		}

		mgr.CheckAuth(cmd.Context())
		if !mgr.IsAuthenticated() {
			fmt.Println("Not logged in. Run 'drawctl auth login'.")
			return nil
		}

		user := mgr.CurrentUser()
		fmt.Printf("Logged in: %s (%s)\n", mgr.DisplayName(), user.Email)
		fmt.Printf("ID: %s\n", user.ID)
		if role := mgr.Role(); role != "" {
			fmt.Printf("Role: %s\n", role)
		}

		tracker.CheckStatus()
		if p := tracker.Player(); p != nil {
			fmt.Printf("Player: %s (balls=%d, participating=%t)\n", p.Name, p.Balls, p.IsParticipating)
		}
		fmt.Printf("Status: %s\n", tracker.ParticipationText())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(meCmd)
}
