package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/essai/internal/api"
	"github.com/llehouerou/essai/internal/errmsg"
	"github.com/llehouerou/essai/internal/state"
)

var (
	loginEmail    string
	registerName  string
	passwordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, st *state.Manager, c *api.Client) error {
			creds, err := readCredentials(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			sess, err := c.Login(ctx, creds)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpLogin, err))
			}
			return storeSession(cmd.OutOrStdout(), st, sess)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, st *state.Manager, c *api.Client) error {
			creds, err := readCredentials(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			sess, err := c.Register(ctx, api.Registration{
				Email:    creds.Email,
				Password: creds.Password,
				Name:     registerName,
			})
			if err != nil {
				return err
			}
			return storeSession(cmd.OutOrStdout(), st, sess)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, st *state.Manager, c *api.Client) error {
			if c.HasToken() {
				// The server side is best effort, the local token goes regardless.
				if err := c.Logout(ctx); err != nil {
					logger.Warn("server logout failed", "err", err)
				}
			}
			if err := st.DeleteToken(); err != nil {
				return errors.New(errmsg.Format(errmsg.OpLogout, err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, _ *state.Manager, c *api.Client) error {
			if err := requireLogin(c); err != nil {
				return err
			}
			u, err := c.Me(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.Name, u.Email)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&loginEmail, "email", "", "account email")
		c.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin without prompting")
	}
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

// readCredentials prompts for whatever the flags did not provide.
func readCredentials(in io.Reader, out io.Writer) (api.Credentials, error) {
	r := bufio.NewReader(in)
	prompt := func(label string) (string, error) {
		if !passwordStdin {
			fmt.Fprint(out, label)
		}
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	creds := api.Credentials{Email: loginEmail}
	var err error
	if creds.Email == "" {
		if creds.Email, err = prompt("Email: "); err != nil {
			return creds, err
		}
	}
	if creds.Password, err = prompt("Password: "); err != nil {
		return creds, err
	}
	if creds.Email == "" || creds.Password == "" {
		return creds, errors.New("email and password are required")
	}
	return creds, nil
}

func storeSession(out io.Writer, st *state.Manager, sess *api.Session) error {
	if err := st.SaveToken(sess.AccessToken); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	name := sess.User.Name
	if name == "" {
		name = sess.User.Email
	}
	fmt.Fprintf(out, "Logged in as %s.\n", name)
	if cfg.API.Token != "" {
		fmt.Fprintln(out, "Note: the configured API token takes precedence over this login.")
	}
	return nil
}
