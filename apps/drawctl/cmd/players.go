package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Admin operations on player records",
}

var playersSetCmd = &cobra.Command{
	Use:   "set <player-id> <participating>",
	Short: "Set a player's participation flag (admin only)",
	Long: `Override any player's participation flag. Requires the admin role.

Examples:
	drawctl players set 42 false
	drawctl players set 42 true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, tracker, err := newSDK(cmd)
		if err != nil {
			return err
		}

		playerID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid player id %q", args[0])
		}
		participating, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid participation flag %q", args[1])
		}

		mgr.CheckAuth(cmd.Context())
		printResult(tracker.SetPlayerParticipation(playerID, participating))
		return nil
	},
}

func init() {
	playersCmd.AddCommand(playersSetCmd)
	rootCmd.AddCommand(playersCmd)
}
