package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rhshell/rh/internal/creds"
	"github.com/rhshell/rh/internal/keyring"
)

// newLogoutCmd creates the logout command with the given options.
func newLogoutCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and discard saved tokens",
		Long: `Revoke the session with Robinhood and remove the saved tokens.

Local tokens are always removed, even when the remote revocation fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runLogout(cmd *cobra.Command, opts *appOptions) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts.session.Logout(ctx)

	if err := creds.Clear(opts.blobs); err != nil {
		return fmt.Errorf("failed to remove saved tokens: %w", err)
	}
	if err := opts.secrets.Delete(keyring.ServiceName, keyring.KeyPassword); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		log.Warn().Err(err).Msg("could not remove password from keyring")
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func init() {
	var opts appOptions

	logoutCmd := newLogoutCmd(&opts)
	logoutCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd, &opts)
	}
	rootCmd.AddCommand(logoutCmd)
}
