package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuchia/drawball/pkg/dsdk"
)

var displayNameStrategy string

var displayNameCmd = &cobra.Command{
	Use:   "display-name <name>",
	Short: "Update your display name",
	Long: `Update your display name. Strategies:

  direct  update the identity provider and role table over direct HTTP,
          then sync local state (default)
  all     fan out to role table, player record and identity metadata via
          the client library; succeeds when any target succeeds
  auth    identity-provider metadata only
  local   local state and stored session only, no network`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := newSDK(cmd)
		if err != nil {
			return err
		}

		mgr.CheckAuth(cmd.Context())
		exitIfSdkError(requireLogin(mgr))

		name := args[0]
		var res dsdk.Result
		switch displayNameStrategy {
		case "direct":
			res = mgr.UpdateDisplayNameDirect(name)
		case "all":
			res = mgr.UpdateDisplayName(name)
		case "auth":
			res = mgr.UpdateAuthDisplayName(name)
		case "local":
			res = mgr.SetLocalDisplayName(name)
		default:
			return fmt.Errorf("unknown strategy %q", displayNameStrategy)
		}
		printResult(res)
		return nil
	},
}

func init() {
	displayNameCmd.Flags().StringVar(&displayNameStrategy, "strategy", "direct", "update strategy: direct|all|auth|local")
	rootCmd.AddCommand(displayNameCmd)
}
