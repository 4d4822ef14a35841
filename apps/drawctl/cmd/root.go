package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuchia/drawball/pkg/dlog"
	"github.com/yuchia/drawball/pkg/dsdk"
)

type contextKey string

const configContextKey contextKey = "drawballconfig"

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "drawctl",
		Short: "CLI for the drawball raffle (auth, participation, admin)",
		Long: `drawctl manages your account and participation in the drawball
ball-drawing raffle. Use the auth subcommands to register, log in and manage
your password; join/rename to control your player record; and the players and
roles subcommands for admin overrides.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := dsdk.LoadConfig(cfgFile)
			if err != nil {
				return err
			}

			if err := cfg.Viper().BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configContextKey, cfg)
			cmd.SetContext(ctx)

			return nil
		},
	}
)

// GetConfig retrieves the Config from the command context.
func GetConfig(cmd *cobra.Command) (*dsdk.Config, error) {
	ctx := cmd.Context()
	cfg, ok := ctx.Value(configContextKey).(*dsdk.Config)
	if !ok {
		return nil, errors.New("no config in context")
	}
	return cfg, nil
}

// newSDK builds the auth manager and participation tracker for a command.
// The session store falls back to memory when the OS keyring does not come
// up within its grace period.
func newSDK(cmd *cobra.Command) (*dsdk.Manager, *dsdk.Tracker, error) {
	cfg, err := GetConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log := dlog.NewQuiet()
	if verbose {
		log = dlog.NewVerbose()
	}
	store := dsdk.NewDefaultStore(cmd.Context(), log, 2*time.Second)
	mgr := dsdk.NewManager(cfg, store, log)
	return mgr, dsdk.NewTracker(mgr), nil
}

// printResult renders a uniform operation result and exits non-zero on
// failure.
func printResult(res dsdk.Result) {
	if res.Success {
		if res.Message != "" {
			fmt.Println("✅ " + res.Message)
		} else {
			fmt.Println("✅ OK")
		}
		return
	}
	fmt.Fprintln(os.Stderr, "❌ "+res.Error)
	os.Exit(1)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML). Searches: drawball.yaml, .drawball/config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("supabase-url", "", "Base URL of the BaaS deployment (overrides config)")
}
