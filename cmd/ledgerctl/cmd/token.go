package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-ledger-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-ledger-go/pkg/utilities"
)

var (
	tokenEmail string
	roleEmail  string
	roleName   string
)

// localUsers opens the database directly; token and role are operator
// commands run next to the server.
func localUsers(ctx context.Context) (*user.UserService, config.Config, func(), error) {
	cfg, err := config.ConfigFromEnv()
	if err != nil {
		return nil, cfg, nil, err
	}
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		lg = zap.NewNop()
	}
	db, err := database.Open(database.ConfigFromEnv())
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("db connect: %w", err)
	}
	repo := userrepo.NewUserRepo(db)
	if err := repo.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, cfg, nil, fmt.Errorf("ensure users table: %w", err)
	}
	cleanup := func() {
		_ = lg.Sync()
		db.Close()
	}
	return user.NewUserService(repo, cfg.IsAllowedEmail, lg.Sugar()), cfg, cleanup, nil
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign in an allow-listed email and print a session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		svc, cfg, cleanup, err := localUsers(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		u, err := svc.SignIn(ctx, tokenEmail)
		if err != nil {
			return fmt.Errorf("sign in failed: %w", err)
		}
		tokens, err := session.NewTokens(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL)
		if err != nil {
			return err
		}
		raw, exp, err := tokens.Issue(u.ID, u.Email)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		pterm.Success.Printf("Signed in %s (%s)\n", u.Email, u.Role)
		pterm.Info.Printf("Token expires at %s\n", exp.Format(time.RFC1123))
		pterm.Println(raw)
		return nil
	},
}

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Set a member's role (ADMIN or USER)",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := access.ParseRole(roleName)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		svc, _, cleanup, err := localUsers(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := svc.SetRole(ctx, roleEmail, role); err != nil {
			return fmt.Errorf("failed to set role: %w", err)
		}
		pterm.Success.Printf("%s is now %s\n", roleEmail, role)
		pterm.Info.Println("Running servers pick up the change once their principal cache expires.")
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Member email (must be in ALLOWED_EMAILS)")
	_ = tokenCmd.MarkFlagRequired("email")

	roleCmd.Flags().StringVar(&roleEmail, "email", "", "Member email")
	roleCmd.Flags().StringVar(&roleName, "role", "", "ADMIN or USER")
	_ = roleCmd.MarkFlagRequired("email")
	_ = roleCmd.MarkFlagRequired("role")
}
