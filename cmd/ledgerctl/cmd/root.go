package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/client"
)

var (
	serverURL string
	token     string
	viewUser  string
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Household ledger CLI",
	Long: `ledgerctl talks to the ledger API. Listing commands accept --view to
look at another member's data; it is honored for ADMIN sessions only.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("API_URL", "http://localhost:8431"), "Ledger API server URL (API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("API_TOKEN"), "Session token (API_TOKEN)")

	for _, c := range []*cobra.Command{transactionsCmd, categoriesCmd, vendorsCmd, summaryCmd} {
		c.Flags().StringVar(&viewUser, "view", "", "View another member's data (ADMIN only)")
	}

	rootCmd.AddCommand(tokenCmd, roleCmd, whoamiCmd, signoutCmd, usersCmd,
		transactionsCmd, categoriesCmd, vendorsCmd, summaryCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// apiClient builds a client, loads the identity and applies --view.
func apiClient(ctx context.Context) (*client.Client, error) {
	if token == "" {
		return nil, fmt.Errorf("no session token: pass --token or set API_TOKEN")
	}
	c, err := client.New(serverURL, token)
	if err != nil {
		return nil, err
	}
	me, err := c.LoadIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if viewUser != "" {
		if !me.CanSelectTarget {
			pterm.Warning.Println("--view is only available to ADMIN; showing your own data")
		} else {
			c.Viewing().SetTarget(viewUser)
		}
	}
	if c.Viewing().IsViewingOther() {
		pterm.Info.Printf("Viewing member %s (read-only)\n", c.Viewing().TargetUserID())
	}
	return c, nil
}
