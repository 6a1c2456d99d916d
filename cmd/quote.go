package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhshell/rh/internal/output"
)

// newQuoteCmd creates the quote command with the given options.
func newQuoteCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote SYMBOL [SYMBOL...]",
		Short: "Get stock quotes",
		Long: `Get quotes for one or more stock symbols.

Examples:
  rh quote AAPL              # Get quote for Apple
  rh quote AAPL GOOG MSFT    # Get quotes for multiple symbols
  rh quote AAPL --json       # Output in JSON format`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts, args)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runQuote(cmd *cobra.Command, opts *appOptions, symbols []string) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for i, sym := range symbols {
		symbols[i] = strings.ToUpper(sym)
	}

	quotes, err := opts.market.Quotes(ctx, symbols)
	if err != nil {
		return fmt.Errorf("failed to fetch quotes: %w", err)
	}

	if len(quotes) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No quotes returned")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Symbol", "Last", "Bid", "Ask", "Change", "Change %"}
	rows := make([][]string, 0, len(quotes))
	for i := range quotes {
		q := &quotes[i]
		rows = append(rows, []string{
			q.Symbol,
			output.Money(q.LastTradePrice),
			output.MoneyNull(q.BidPrice),
			output.MoneyNull(q.AskPrice),
			output.SignedMoney(q.DayChange()),
			output.Percent(q.DayChangePercent()),
		})
	}

	return formatter.Table(headers, rows)
}

func init() {
	var opts appOptions

	quoteCmd := newQuoteCmd(&opts)
	quoteCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd, &opts)
	}
	rootCmd.AddCommand(quoteCmd)
}
