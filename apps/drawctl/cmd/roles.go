package cmd

import (
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Admin operations on user roles",
}

var rolesSetCmd = &cobra.Command{
	Use:   "set <email> <role>",
	Short: "Assign a role to a user by email (admin only)",
	Long: `Assign 'admin' or 'participant' to a user, keyed by email.
Creates the role row when missing, overwrites it otherwise.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := newSDK(cmd)
		if err != nil {
			return err
		}

		mgr.CheckAuth(cmd.Context())
		printResult(mgr.AssignRole(args[0], args[1]))
		return nil
	},
}

func init() {
	rolesCmd.AddCommand(rolesSetCmd)
	rootCmd.AddCommand(rolesCmd)
}
