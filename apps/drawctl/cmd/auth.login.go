package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with email and password",
	Long: `Sign in to the drawball deployment with email and password.

Examples:
	drawctl auth login --email a@example.com
	drawctl auth login --email a@example.com --password secret

The password is read from stdin when not passed as a flag. On success the
session is saved and reused by subsequent commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := newSDK(cmd)
		if err != nil {
			return err
		}

		if loginEmail == "" {
			return fmt.Errorf("--email is required")
		}
		password := loginPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, rerr := bufio.NewReader(os.Stdin).ReadString('\n')
			if rerr != nil {
				return fmt.Errorf("reading password: %w", rerr)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		res := mgr.Login(loginEmail, password)
		if !res.Success {
			printResult(res.Result)
			return nil
		}

		fmt.Printf("Logged in as: %s (%s)\n", mgr.DisplayName(), res.User.Email)
		if exp, ok := mgr.SessionExpiry(); ok {
			fmt.Printf("Session expires: %s\n", time.Unix(exp, 0).Format(time.RFC3339))
		}
		printResult(res.Result)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	authCmd.AddCommand(loginCmd)
}
