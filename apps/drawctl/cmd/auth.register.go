package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	registerEmail    string
	registerPassword string
	registerName     string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create an account on the drawball deployment. The display name
defaults to the part of your email before the '@'.

Examples:
	drawctl auth register --email a@example.com --name "Alice"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := newSDK(cmd)
		if err != nil {
			return err
		}

		if registerEmail == "" {
			return fmt.Errorf("--email is required")
		}
		password := registerPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, rerr := bufio.NewReader(os.Stdin).ReadString('\n')
			if rerr != nil {
				return fmt.Errorf("reading password: %w", rerr)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		res := mgr.Register(registerEmail, password, registerName)
		if res.Success && res.PendingConfirmation {
			fmt.Println("A confirmation email is on its way; verify before logging in.")
		}
		printResult(res.Result)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	authCmd.AddCommand(registerCmd)
}
