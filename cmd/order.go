package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rhshell/rh/internal/orders"
	"github.com/rhshell/rh/internal/output"
)

// newOrderCmd creates the order command group with the given options.
func newOrderCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place and manage orders",
		Long: `Place buy, sell, and stop-loss orders, list open orders, and
cancel them.

Examples:
  rh order buy AAPL 10                   # Buy 10 shares at the current bid
  rh order buy AAPL 10 --limit 150.00    # Limit buy
  rh order sell AAPL 5 --yes             # Sell without a confirmation prompt
  rh order stoploss AAPL 10 140.00       # Stop-loss sell at $140
  rh order list                          # List open orders
  rh order cancel ORDER_ID --yes         # Cancel an order
  rh order cancel-all --yes              # Cancel every open order`,
	}

	cmd.SilenceUsage = true

	cmd.AddCommand(newOrderBuyCmd(opts))
	cmd.AddCommand(newOrderSellCmd(opts))
	cmd.AddCommand(newOrderStopLossCmd(opts))
	cmd.AddCommand(newOrderListCmd(opts))
	cmd.AddCommand(newOrderCancelCmd(opts))
	cmd.AddCommand(newOrderCancelAllCmd(opts))

	return cmd
}

func newOrderBuyCmd(opts *appOptions) *cobra.Command {
	var limitFlag string
	var gtc bool
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "buy SYMBOL QUANTITY",
		Short: "Place a buy order",
		Long: `Place a buy order. Without --limit the current bid price is used.

Examples:
  rh order buy AAPL 10
  rh order buy AAPL 10 --limit 150.00 --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := parseIntent(args, limitFlag, orders.NewBuy)
			if err != nil {
				return err
			}
			if gtc {
				intent.TimeInForce = orders.GoodTillCanceled
			}
			return runPlaceOrder(cmd, opts, intent, skipConfirm)
		},
	}

	cmd.Flags().StringVar(&limitFlag, "limit", "", "Limit price (omit for a market order)")
	cmd.Flags().BoolVar(&gtc, "gtc", false, "Keep the order working until canceled")
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	cmd.SilenceUsage = true

	return cmd
}

func newOrderSellCmd(opts *appOptions) *cobra.Command {
	var limitFlag string
	var gtc bool
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "sell SYMBOL QUANTITY",
		Short: "Place a sell order",
		Long: `Place a sell order. Without --limit the current bid price is used.

Examples:
  rh order sell AAPL 5
  rh order sell AAPL 5 --limit 155.00 --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := parseIntent(args, limitFlag, orders.NewSell)
			if err != nil {
				return err
			}
			if gtc {
				intent.TimeInForce = orders.GoodTillCanceled
			}
			return runPlaceOrder(cmd, opts, intent, skipConfirm)
		},
	}

	cmd.Flags().StringVar(&limitFlag, "limit", "", "Limit price (omit for a market order)")
	cmd.Flags().BoolVar(&gtc, "gtc", false, "Keep the order working until canceled")
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	cmd.SilenceUsage = true

	return cmd
}

func newOrderStopLossCmd(opts *appOptions) *cobra.Command {
	var gtc bool
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "stoploss SYMBOL QUANTITY STOP_PRICE",
		Short: "Place a stop-loss sell order",
		Long: `Place a sell order that triggers when the price falls to the stop.

Examples:
  rh order stoploss AAPL 10 140.00 --yes`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			stop, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid stop price %q", args[2])
			}
			intent := orders.NewStopLoss(args[0], quantity, stop)
			if gtc {
				intent.TimeInForce = orders.GoodTillCanceled
			}
			return runPlaceOrder(cmd, opts, intent, skipConfirm)
		},
	}

	cmd.Flags().BoolVar(&gtc, "gtc", false, "Keep the order working until canceled")
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	cmd.SilenceUsage = true

	return cmd
}

// parseIntent builds an intent from SYMBOL QUANTITY args and an optional
// limit price flag.
func parseIntent(args []string, limitFlag string, build func(string, int64, *decimal.Decimal) orders.Intent) (orders.Intent, error) {
	quantity, err := parseQuantity(args[1])
	if err != nil {
		return orders.Intent{}, err
	}

	var limit *decimal.Decimal
	if limitFlag != "" {
		parsed, err := decimal.NewFromString(limitFlag)
		if err != nil {
			return orders.Intent{}, fmt.Errorf("invalid limit price %q", limitFlag)
		}
		limit = &parsed
	}

	return build(args[0], quantity, limit), nil
}

func parseQuantity(arg string) (int64, error) {
	quantity, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || quantity <= 0 {
		return 0, fmt.Errorf("invalid quantity %q", arg)
	}
	return quantity, nil
}

func runPlaceOrder(cmd *cobra.Command, opts *appOptions, intent orders.Intent, skipConfirm bool) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !opts.jsonMode {
		price := "current bid"
		if intent.LimitPrice != nil {
			price = output.Money(*intent.LimitPrice)
		}
		_, _ = fmt.Fprintf(out, "\n%s Order:\n", titleSide(intent))
		_, _ = fmt.Fprintf(out, "  Symbol:    %s\n", intent.Symbol)
		_, _ = fmt.Fprintf(out, "  Quantity:  %d\n", intent.Quantity)
		_, _ = fmt.Fprintf(out, "  Price:     %s\n\n", price)
	}

	if !skipConfirm {
		return fmt.Errorf("order requires confirmation (use --yes to confirm)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	placement, err := opts.orders.Place(ctx, intent)
	if err != nil {
		return err
	}
	persistCache(opts)

	if opts.jsonMode {
		formatter := output.New(out, true)
		return formatter.Print(placementView(placement))
	}

	if !placement.Accepted() {
		detail := placement.Detail
		if detail == "" {
			detail = fmt.Sprintf("status %d", placement.StatusCode)
		}
		_, _ = fmt.Fprintf(out, "Order rejected: %s\n", detail)
		return nil
	}

	_, _ = fmt.Fprintf(out, "Order placed at %s", output.Money(placement.Price))
	if placement.Order != nil {
		_, _ = fmt.Fprintf(out, " (id %s, state %s)", placement.Order.ID, placement.Order.State)
	}
	_, _ = fmt.Fprintln(out)
	return nil
}

func titleSide(intent orders.Intent) string {
	if intent.Trigger == orders.Stop {
		return "Stop-Loss"
	}
	if intent.Side == orders.Buy {
		return "Buy"
	}
	return "Sell"
}

// placementView shapes a placement for JSON output.
func placementView(p *orders.Placement) map[string]any {
	view := map[string]any{
		"accepted":    p.Accepted(),
		"status_code": p.StatusCode,
		"price":       p.Price,
	}
	if p.Order != nil {
		view["order"] = p.Order
	}
	if p.Detail != "" {
		view["detail"] = p.Detail
	}
	return view
}

func newOrderListCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open orders",
		Long: `List every order the server still reports as cancellable.

Examples:
  rh order list
  rh order list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderList(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runOrderList(cmd *cobra.Command, opts *appOptions) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	open, err := opts.orders.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	if opts.jsonMode {
		formatter := output.New(cmd.OutOrStdout(), true)
		return formatter.Print(open)
	}

	if len(open) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No open orders")
		return nil
	}

	rows := make([][]string, 0, len(open))
	for i := range open {
		order := &open[i]
		symbol, err := opts.cache.ResolveURL(ctx, order.Instrument)
		if err != nil {
			symbol = "?"
		}
		rows = append(rows, []string{
			order.ID,
			symbol,
			order.Side,
			order.Type,
			output.Quantity(order.Quantity),
			output.Money(order.DisplayPrice()),
			order.State,
		})
	}
	persistCache(opts)

	formatter := output.New(cmd.OutOrStdout(), false)
	return formatter.Table([]string{"ID", "Symbol", "Side", "Type", "Qty", "Price", "State"}, rows)
}

func newOrderCancelCmd(opts *appOptions) *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "cancel ORDER_ID",
		Short: "Cancel an open order",
		Long: `Cancel an order by its id.

Examples:
  rh order cancel 2f3a...        # Show what would be canceled
  rh order cancel 2f3a... --yes  # Cancel it`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderCancel(cmd, opts, args[0], skipConfirm)
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	cmd.SilenceUsage = true

	return cmd
}

func runOrderCancel(cmd *cobra.Command, opts *appOptions, orderID string, skipConfirm bool) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	if !opts.jsonMode {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nCancel Order:\n")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Order ID: %s\n\n", orderID)
	}

	if !skipConfirm {
		return fmt.Errorf("cancel requires confirmation (use --yes to confirm)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	order, err := opts.orders.Cancel(ctx, orderID)
	if err != nil {
		return err
	}

	if opts.jsonMode {
		formatter := output.New(cmd.OutOrStdout(), true)
		return formatter.Print(order)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Canceled order %s\n", order.ID)
	return nil
}

func newOrderCancelAllCmd(opts *appOptions) *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel every open order",
		Long: `Cancel every open order. Each cancellation is attempted
independently; one failure does not stop the rest.

Examples:
  rh order cancel-all --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderCancelAll(cmd, opts, skipConfirm)
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	cmd.SilenceUsage = true

	return cmd
}

func runOrderCancelAll(cmd *cobra.Command, opts *appOptions, skipConfirm bool) error {
	if err := ensureAuthenticated(cmd, opts); err != nil {
		return err
	}

	if !skipConfirm {
		return fmt.Errorf("cancel-all requires confirmation (use --yes to confirm)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcomes, err := opts.orders.CancelAllOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	out := cmd.OutOrStdout()

	if opts.jsonMode {
		type outcomeView struct {
			OrderID string `json:"order_id"`
			Error   string `json:"error,omitempty"`
		}
		views := make([]outcomeView, 0, len(outcomes))
		for _, o := range outcomes {
			view := outcomeView{OrderID: o.Order.ID}
			if o.Err != nil {
				view.Error = o.Err.Error()
			}
			views = append(views, view)
		}
		formatter := output.New(out, true)
		return formatter.Print(views)
	}

	if len(outcomes) == 0 {
		_, _ = fmt.Fprintln(out, "No open orders")
		return nil
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			_, _ = fmt.Fprintf(out, "Failed to cancel %s: %v\n", o.Order.ID, o.Err)
			continue
		}
		_, _ = fmt.Fprintf(out, "Canceled order %s\n", o.Order.ID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d cancellations failed", failed, len(outcomes))
	}
	return nil
}

func init() {
	var opts appOptions

	orderCmd := newOrderCmd(&opts)
	orderCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd, &opts)
	}
	rootCmd.AddCommand(orderCmd)
}
