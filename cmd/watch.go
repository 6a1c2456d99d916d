package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhshell/rh/internal/output"
)

// newWatchCmd creates the watch command group with the given options.
func newWatchCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the local watchlist",
		Long: `Track symbols locally and show their quotes.

Examples:
  rh watch add AAPL MSFT   # Track symbols
  rh watch remove AAPL     # Stop tracking a symbol
  rh watch list            # Quotes for every tracked symbol
  rh watch remote          # List watchlists saved on the server`,
	}

	cmd.SilenceUsage = true

	cmd.AddCommand(newWatchAddCmd(opts))
	cmd.AddCommand(newWatchRemoveCmd(opts))
	cmd.AddCommand(newWatchListCmd(opts))
	cmd.AddCommand(newWatchRemoteCmd(opts))

	return cmd
}

func newWatchAddCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add SYMBOL [SYMBOL...]",
		Short: "Add symbols to the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchAdd(cmd, opts, args)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runWatchAdd(cmd *cobra.Command, opts *appOptions, symbols []string) error {
	added := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if opts.watch.Add(sym) {
			added = append(added, strings.ToUpper(sym))
		}
	}
	persistWatchlist(opts)

	if len(added) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Already watching")
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", strings.Join(added, ", "))
	return nil
}

func newWatchRemoveCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove SYMBOL [SYMBOL...]",
		Short: "Remove symbols from the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchRemove(cmd, opts, args)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runWatchRemove(cmd *cobra.Command, opts *appOptions, symbols []string) error {
	removed := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if opts.watch.Remove(sym) {
			removed = append(removed, strings.ToUpper(sym))
		}
	}
	persistWatchlist(opts)

	if len(removed) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not watching any of those symbols")
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stopped watching %s\n", strings.Join(removed, ", "))
	return nil
}

func newWatchListCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show quotes for every watched symbol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchList(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runWatchList(cmd *cobra.Command, opts *appOptions) error {
	if opts.watch.Len() == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Watchlist is empty")
		return nil
	}

	return runQuote(cmd, opts, opts.watch.Symbols())
}

func newWatchRemoteCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "List watchlists saved on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchRemote(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runWatchRemote(cmd *cobra.Command, opts *appOptions) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lists, err := opts.market.Watchlists(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch watchlists: %w", err)
	}

	if opts.jsonMode {
		formatter := output.New(cmd.OutOrStdout(), true)
		return formatter.Print(lists)
	}

	if len(lists) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No server watchlists")
		return nil
	}
	for _, list := range lists {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), list.Name)
	}
	return nil
}

func init() {
	var opts appOptions

	watchCmd := newWatchCmd(&opts)
	watchCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd, &opts)
	}
	rootCmd.AddCommand(watchCmd)
}
