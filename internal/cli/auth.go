package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ncassessoria/gerapost/pkg/config"
	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/session"
)

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to keep your draft in the remote store",
		Long: `Sign in with a Google or Facebook identity so the draft follows you.

While signed in and with [store] backend = "mongo", the draft is saved under
your user id. Signed out, it lives on this machine only. Your session is
stored in ~/.config/gerapost/sessions/`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authWhoamiCommand())

	return cmd
}

// authLoginCommand creates the login subcommand.
func (c *CLI) authLoginCommand() *cobra.Command {
	var provider, name, email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a provider identity",
		Long: `Sign in with a provider identity.

The email is asked for when --email is not given; press Ctrl+D to cancel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sessions, err := sessionStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if existing, _ := sessions.GetSession(ctx); existing.Authenticated() {
				printInfo("Already signed in as %s", existing.User.Email)
				printDetail("Run 'gerapost auth logout' first to switch accounts")
				return nil
			}

			sess, err := login(ctx, os.Stdin, provider, name, email)
			if err != nil {
				err = session.ClassifyAuthError(err)
				if perrors.Silent(err) {
					return nil
				}
				return err
			}
			if err := sessions.SaveSession(ctx, sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			printSuccess("Signed in as %s", sess.User.Name)
			printKeyValue("Provider", string(sess.User.Provider))
			printKeyValue("Email", sess.User.Email)
			if cfg, err := c.config(); err == nil && cfg.Store.Backend != config.StoreMongo {
				printDetail("Drafts stay local until [store] backend = \"mongo\" is configured")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", string(session.ProviderGoogle), "identity provider (google, facebook)")
	cmd.Flags().StringVar(&name, "name", "", "display name (default: email local part)")
	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

// login builds a session, asking for the email on in when it is empty.
func login(ctx context.Context, in io.Reader, provider, name, email string) (*session.Session, error) {
	p, err := session.ParseProvider(provider)
	if err != nil {
		return nil, err
	}
	if email == "" {
		email, err = prompt(ctx, in, "Email: ")
		if err != nil {
			return nil, err
		}
	}
	return session.New(p, name, email, session.DefaultTTL)
}

// prompt reads one line from in. End of input counts as cancellation.
func prompt(ctx context.Context, in io.Reader, label string) (string, error) {
	printInline("%s", label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		printNewline()
		if err == io.EOF {
			return "", context.Canceled
		}
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// authLogoutCommand creates the logout subcommand.
func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and reset the local draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			sessions, err := sessionStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if err := sessions.DeleteSession(ctx); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}

			adapter, err := c.newAdapter(ctx, cfg)
			if err != nil {
				return err
			}
			defer adapter.Close()
			if _, err := adapter.SignOut(ctx); err != nil {
				return err
			}

			printSuccess("Signed out")
			printDetail("The local draft was reset to the defaults")
			return nil
		},
	}
}

// authWhoamiCommand creates the whoami subcommand.
func (c *CLI) authWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := sessionStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			sess, err := sessions.GetSession(cmd.Context())
			if err != nil {
				return fmt.Errorf("get session: %w", err)
			}
			if !sess.Authenticated() {
				printInfo("Not signed in")
				printNextStep("Sign in", "gerapost auth login --email you@example.com")
				return nil
			}

			printSuccess("Session")
			printKeyValue("Name", sess.User.Name)
			printKeyValue("Email", sess.User.Email)
			printKeyValue("Provider", string(sess.User.Provider))
			printKeyValue("User id", sess.UserID())
			printKeyValue("Signed in", sess.CreatedAt.Format("Jan 2, 2006"))
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			return nil
		},
	}
}
