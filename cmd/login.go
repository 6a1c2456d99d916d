package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLoginCmd creates the login command with the given options.
func newLoginCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Robinhood",
		Long: `Log in to Robinhood and save the session tokens.

Saved tokens are reused on later runs; login only prompts when the
saved session cannot be restored. The password is read from the
RH_PASSWORD environment variable, the system keyring, or a hidden
terminal prompt, in that order.

Examples:
  rh login
  RH_PASSWORD=... rh login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runLogin(cmd *cobra.Command, opts *appOptions) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", opts.session.Credentials().Username)
	return nil
}

func init() {
	var opts appOptions

	loginCmd := newLoginCmd(&opts)
	loginCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd, &opts)
	}
	rootCmd.AddCommand(loginCmd)
}
