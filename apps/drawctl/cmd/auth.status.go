package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a valid session is stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := newSDK(cmd)
		if err != nil {
			return err
		}

		mgr.CheckAuth(cmd.Context())
		if !mgr.IsAuthenticated() {
			fmt.Println("Not logged in.")
			return nil
		}

		user := mgr.CurrentUser()
		fmt.Printf("Logged in as %s (%s)\n", mgr.DisplayName(), user.Email)
		if exp, ok := mgr.SessionExpiry(); ok {
			fmt.Printf("Session expires: %s\n", time.Unix(exp, 0).Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(statusCmd)
}
