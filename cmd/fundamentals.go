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

// newFundamentalsCmd creates the fundamentals command with the given
// options.
func newFundamentalsCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fundamentals SYMBOL",
		Short: "Fundamentals for a symbol",
		Long: `Show fundamentals for a symbol: day range, volume, 52-week range,
market cap, dividend yield and P/E ratio.

Examples:
  rh fundamentals AAPL
  rh fundamentals AAPL --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFundamentals(cmd, opts, args[0])
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runFundamentals(cmd *cobra.Command, opts *appOptions, symbol string) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	symbol = strings.ToUpper(symbol)
	record, err := opts.market.Fundamentals(ctx, symbol)
	if err != nil {
		return fmt.Errorf("failed to fetch fundamentals: %w", err)
	}

	if opts.jsonMode {
		formatter := output.New(cmd.OutOrStdout(), true)
		return formatter.Print(record)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "\n%s Fundamentals:\n", symbol)
	_, _ = fmt.Fprintf(out, "  Open:           %s\n", output.MoneyNull(record.Open))
	_, _ = fmt.Fprintf(out, "  Day Range:      %s - %s\n", output.MoneyNull(record.Low), output.MoneyNull(record.High))
	_, _ = fmt.Fprintf(out, "  Volume:         %s\n", output.Quantity(record.Volume))
	_, _ = fmt.Fprintf(out, "  Avg Volume:     %s\n", quantityNull(record.AverageVolume))
	_, _ = fmt.Fprintf(out, "  52-Week Range:  %s - %s\n", output.MoneyNull(record.Low52Weeks), output.MoneyNull(record.High52Weeks))
	_, _ = fmt.Fprintf(out, "  Market Cap:     %s\n", output.MoneyNull(record.MarketCap))
	_, _ = fmt.Fprintf(out, "  Dividend Yield: %s\n", ratioNull(record.DividendYield))
	_, _ = fmt.Fprintf(out, "  P/E Ratio:      %s\n", ratioNull(record.PERatio))
	if record.Description != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", record.Description)
	}
	return nil
}

func quantityNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return output.Quantity(d.Decimal)
}

func ratioNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}

func init() {
	var opts appOptions

	fundamentalsCmd := newFundamentalsCmd(&opts)
	fundamentalsCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd, &opts)
	}
	rootCmd.AddCommand(fundamentalsCmd)
}
