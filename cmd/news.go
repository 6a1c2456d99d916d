package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhshell/rh/internal/output"
)

// newNewsCmd creates the news command with the given options.
func newNewsCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news SYMBOL",
		Short: "Recent news for a symbol",
		Long: `Show recent news stories for a symbol.

Examples:
  rh news AAPL
  rh news AAPL --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNews(cmd, opts, args[0])
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runNews(cmd *cobra.Command, opts *appOptions, symbol string) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := opts.market.News(ctx, strings.ToUpper(symbol))
	if err != nil {
		return fmt.Errorf("failed to fetch news: %w", err)
	}

	if opts.jsonMode {
		formatter := output.New(cmd.OutOrStdout(), true)
		return formatter.Print(items)
	}

	if len(items) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No news")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, item := range items {
		_, _ = fmt.Fprintf(out, "%s  %s\n", item.PublishedAt, item.Title)
		_, _ = fmt.Fprintf(out, "    %s  %s\n", item.Source, item.URL)
	}
	return nil
}

func init() {
	var opts appOptions

	newsCmd := newNewsCmd(&opts)
	newsCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd, &opts)
	}
	rootCmd.AddCommand(newsCmd)
}
