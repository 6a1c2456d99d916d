package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rhshell/rh/internal/output"
)

// newPortfolioCmd creates the portfolio command with the given options.
func newPortfolioCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "View positions and balances",
		Long: `View your positions with current prices and profit/loss, plus
account equity and unallocated cash.

Examples:
  rh portfolio
  rh portfolio --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPortfolio(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

// portfolioRow is one position enriched with quote data, used for the
// JSON rendering.
type portfolioRow struct {
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	LastPrice   decimal.Decimal `json:"last_price"`
	MarketValue decimal.Decimal `json:"market_value"`
	TotalGain   decimal.Decimal `json:"total_gain"`
	DayChange   decimal.Decimal `json:"day_change"`
}

func runPortfolio(cmd *cobra.Command, opts *appOptions) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	portfolio, err := opts.market.Portfolio(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch portfolio: %w", err)
	}

	account, err := opts.market.Account(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch account: %w", err)
	}

	positions, err := opts.market.Positions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch positions: %w", err)
	}

	rows := make([]portfolioRow, 0, len(positions))
	symbols := make([]string, 0, len(positions))
	for _, pos := range positions {
		symbol, err := opts.cache.ResolveURL(ctx, pos.Instrument)
		if err != nil {
			return fmt.Errorf("failed to resolve position instrument: %w", err)
		}
		symbols = append(symbols, symbol)
		rows = append(rows, portfolioRow{
			Symbol:      symbol,
			Quantity:    pos.Quantity,
			AverageCost: pos.AverageBuyPrice,
		})
	}
	persistCache(opts)

	if len(symbols) > 0 {
		quotes, err := opts.market.Quotes(ctx, symbols)
		if err != nil {
			return fmt.Errorf("failed to fetch quotes: %w", err)
		}
		bySymbol := make(map[string]int, len(quotes))
		for i := range quotes {
			bySymbol[quotes[i].Symbol] = i
		}
		for i := range rows {
			qi, ok := bySymbol[rows[i].Symbol]
			if !ok {
				continue
			}
			q := &quotes[qi]
			rows[i].LastPrice = q.LastTradePrice
			rows[i].MarketValue = q.LastTradePrice.Mul(rows[i].Quantity)
			rows[i].TotalGain = q.LastTradePrice.Sub(rows[i].AverageCost).Mul(rows[i].Quantity)
			rows[i].DayChange = q.DayChange().Mul(rows[i].Quantity)
		}
	}

	if opts.jsonMode {
		formatter := output.New(cmd.OutOrStdout(), true)
		return formatter.Print(map[string]any{
			"equity":    portfolio.Equity,
			"cash":      account.MarginBalances.UnallocatedMarginCash,
			"positions": rows,
		})
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Equity: %s  Cash: %s\n\n",
		output.Money(portfolio.Equity),
		output.Money(account.MarginBalances.UnallocatedMarginCash))

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, "No open positions")
		return nil
	}

	formatter := output.New(out, false)
	headers := []string{"Symbol", "Qty", "Avg Cost", "Last", "Value", "Total P/L", "Day P/L"}
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{
			row.Symbol,
			output.Quantity(row.Quantity),
			output.Money(row.AverageCost),
			output.Money(row.LastPrice),
			output.Money(row.MarketValue),
			output.SignedMoney(row.TotalGain),
			output.SignedMoney(row.DayChange),
		})
	}
	return formatter.Table(headers, table)
}

func init() {
	var opts appOptions

	portfolioCmd := newPortfolioCmd(&opts)
	portfolioCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd, &opts)
	}
	rootCmd.AddCommand(portfolioCmd)
}
