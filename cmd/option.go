package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rhshell/rh/internal/output"
)

// newOptionCmd creates the option command group with the given options.
func newOptionCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "option",
		Short: "Option chain quotes",
		Long: `Look up option contract prices by underlying, type, and strike.

Examples:
  rh option quote AAPL call 150          # Mark price per expiration
  rh option quote AAPL put 140 --expiration 2026-10-16`,
	}

	cmd.SilenceUsage = true

	cmd.AddCommand(newOptionQuoteCmd(opts))

	return cmd
}

func newOptionQuoteCmd(opts *appOptions) *cobra.Command {
	var expiration string

	cmd := &cobra.Command{
		Use:   "quote SYMBOL TYPE STRIKE",
		Short: "Quote option contracts",
		Long: `Quote active option contracts for an underlying at a strike.
TYPE is call or put. Without --expiration every listed expiration is
shown, soonest first.

Examples:
  rh option quote AAPL call 150
  rh option quote AAPL put 140 --expiration 2026-10-16`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			optionType := strings.ToLower(args[1])
			if optionType != "call" && optionType != "put" {
				return fmt.Errorf("type must be call or put, got %q", args[1])
			}
			strike, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid strike price %q", args[2])
			}
			return runOptionQuote(cmd, opts, args[0], optionType, strike, expiration)
		},
	}

	cmd.Flags().StringVar(&expiration, "expiration", "", "Only this expiration date (YYYY-MM-DD)")
	cmd.SilenceUsage = true

	return cmd
}

func runOptionQuote(cmd *cobra.Command, opts *appOptions, symbol, optionType string, strike decimal.Decimal, expiration string) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filters := map[string]string{
		"type":         optionType,
		"strike_price": strike.String(),
	}
	if expiration != "" {
		filters["expiration_dates"] = expiration
	}

	quotes, err := opts.market.OptionQuotes(ctx, strings.ToUpper(symbol), filters)
	if err != nil {
		return fmt.Errorf("failed to fetch option quotes: %w", err)
	}

	if len(quotes) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No contracts found")
		return nil
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, []string{q.ExpirationDate, output.Money(q.Price)})
	}
	return formatter.Table([]string{"Expiration", "Price"}, rows)
}

func init() {
	var opts appOptions

	optionCmd := newOptionCmd(&opts)
	optionCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd, &opts)
	}
	rootCmd.AddCommand(optionCmd)
}
