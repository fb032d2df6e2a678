package users

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/config"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/bunx"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/repository"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/identity"
)

var (
	emailFlag     string
	usernameFlag  string
	passwordFlag  string
	roleFlag      string
	instituteFlag string
	stdinFlag     bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with its profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if roleFlag != "" {
			if _, ok := access.ParseSelection(roleFlag); !ok {
				return fmt.Errorf("invalid role %q: use host or participant", roleFlag)
			}
		}

		password := passwordFlag
		if stdinFlag {
			var err error
			if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
				return err
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		// Sign-up issues a session that create revokes immediately.
		secret, err := auth.GenerateSecret()
		if err != nil {
			return err
		}
		issuer, err := auth.NewTokenIssuer(secret, cfg.Session.TTL)
		if err != nil {
			return err
		}
		svc, err := identity.NewService(identity.Dependencies{
			Users:    repository.NewBunUserRepository(db),
			Sessions: repository.NewBunSessionRepository(db),
			Issuer:   issuer,
		})
		if err != nil {
			return fmt.Errorf("create identity service: %w", err)
		}

		return create(cmd.Context(), cmd.OutOrStdout(), svc, account{
			email:     emailFlag,
			password:  password,
			username:  usernameFlag,
			institute: instituteFlag,
			role:      roleFlag,
		})
	},
}

type account struct {
	email     string
	password  string
	username  string
	institute string
	role      string
}

// create registers the account and revokes the session sign-up issues.
func create(ctx context.Context, out io.Writer, svc identity.Service, a account) error {
	sess, err := svc.SignUp(ctx,
		identity.Credentials{Email: a.email, Password: a.password},
		identity.Attributes{Username: a.username, InstituteName: a.institute, Role: a.role},
		identity.ClientMeta{UserAgent: "arenaapi users create"})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if err := svc.SignOut(ctx, sess.ID); err != nil {
		return fmt.Errorf("revoke bootstrap session: %w", err)
	}

	role := a.role
	if role == "" {
		role = "unset"
	}
	fmt.Fprintln(out, "Account created")
	fmt.Fprintln(out, "----------------------------------------")
	fmt.Fprintf(out, "User ID: %s\n", sess.UserID)
	fmt.Fprintf(out, "Email:   %s\n", sess.Email)
	fmt.Fprintf(out, "Role:    %s\n", strings.ToLower(role))
	fmt.Fprintln(out, "----------------------------------------")
	return nil
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Enter password: ")
	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return "", nil
}
