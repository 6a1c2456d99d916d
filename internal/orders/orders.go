// Package orders builds order payloads from intents and manages the
// open-order cancellation lifecycle.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rhshell/rh/internal/api"
	"github.com/rhshell/rh/internal/instruments"
	"github.com/rhshell/rh/internal/market"
)

var (
	// ErrOrderNotFound indicates an order id could not be looked up.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNotCancellable indicates the order has reached a terminal
	// remote state (filled, canceled, rejected). The client never infers
	// this itself: the server-supplied cancel link is the only signal.
	ErrNotCancellable = errors.New("order is not cancellable")

	// ErrCancelFailed indicates the cancel POST was rejected.
	ErrCancelFailed = errors.New("cancel failed")
)

// Order is a remote-owned order record. Cancel is the server-supplied
// cancel URL; nil means the order is terminal.
type Order struct {
	ID           string              `json:"id"`
	URL          string              `json:"url"`
	Instrument   string              `json:"instrument"`
	Cancel       *string             `json:"cancel"`
	Side         string              `json:"side"`
	Type         string              `json:"type"`
	Trigger      string              `json:"trigger"`
	State        string              `json:"state"`
	Price        decimal.NullDecimal `json:"price"`
	StopPrice    decimal.NullDecimal `json:"stop_price"`
	AveragePrice decimal.NullDecimal `json:"average_price"`
	Quantity     decimal.Decimal     `json:"quantity"`
	CreatedAt    string              `json:"created_at"`
}

// Cancellable reports whether the server still accepts a cancel for
// this order.
func (o *Order) Cancellable() bool {
	return o.Cancel != nil && *o.Cancel != ""
}

// DisplayPrice returns the stop price for stop orders and the plain
// price otherwise.
func (o *Order) DisplayPrice() decimal.Decimal {
	if o.Trigger == string(Stop) && o.StopPrice.Valid {
		return o.StopPrice.Decimal
	}
	return o.Price.Decimal
}

// Placement is the outcome of an order submission. Rejections are
// business outcomes, not errors: the caller inspects StatusCode and
// Detail instead of matching an error type.
type Placement struct {
	StatusCode int
	Order      *Order
	Detail     string
	Price      decimal.Decimal
}

// Accepted reports whether the server accepted the order.
func (p *Placement) Accepted() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// Manager owns the order lifecycle against the remote API.
type Manager struct {
	client *api.Client
	cache  *instruments.Cache
	market *market.Service
}

// NewManager creates a Manager. The instrument cache resolves symbols
// to instrument URLs; the market service supplies bid prices and the
// account URL for payloads.
func NewManager(client *api.Client, cache *instruments.Cache, mkt *market.Service) *Manager {
	return &Manager{client: client, cache: cache, market: mkt}
}

// Place submits an intent.
//
// When the intent carries no limit price the current bid is fetched and
// sent as the price while type stays market. The upstream API observed
// here sends a price field even for market orders; that contradiction
// is preserved deliberately rather than silently corrected.
//
// A non-2xx response is returned as data in the Placement, never as an
// error; only transport and lookup failures error out.
func (m *Manager) Place(ctx context.Context, intent Intent) (*Placement, error) {
	instrumentURL, err := m.cache.Resolve(ctx, intent.Symbol)
	if err != nil {
		return nil, err
	}

	price, err := m.effectivePrice(ctx, intent)
	if err != nil {
		return nil, err
	}

	account, err := m.market.Account(ctx)
	if err != nil {
		return nil, err
	}

	form, err := intent.encode(account.URL, instrumentURL, price)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.PostForm(ctx, "/orders/", form)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	placement := &Placement{StatusCode: resp.StatusCode, Price: price}
	body, _ := io.ReadAll(resp.Body)

	if placement.Accepted() {
		var order Order
		if err := json.Unmarshal(body, &order); err == nil {
			placement.Order = &order
		}
		return placement, nil
	}

	var rejection struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &rejection)
	placement.Detail = rejection.Detail
	return placement, nil
}

func (m *Manager) effectivePrice(ctx context.Context, intent Intent) (decimal.Decimal, error) {
	if intent.LimitPrice != nil {
		return *intent.LimitPrice, nil
	}

	quote, err := m.market.Quote(ctx, intent.Symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !quote.BidPrice.Valid {
		return decimal.Zero, fmt.Errorf("no bid price available for %s", intent.Symbol)
	}
	return quote.BidPrice.Decimal, nil
}

// ListOpen returns every order the server still reports as cancellable.
// No open orders is an empty slice, not an error.
func (m *Manager) ListOpen(ctx context.Context) ([]Order, error) {
	resp, err := m.client.Get(ctx, "/orders/")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %d - %s", resp.StatusCode, string(body))
	}

	var history struct {
		Results []Order `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	open := make([]Order, 0, len(history.Results))
	for _, order := range history.Results {
		if order.Cancellable() {
			open = append(open, order)
		}
	}
	return open, nil
}

// Cancel looks up an order by id and posts to its cancel link. The
// order is returned on success.
func (m *Manager) Cancel(ctx context.Context, orderID string) (*Order, error) {
	resp, err := m.client.Get(ctx, "/orders/"+orderID+"/")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOrderNotFound, orderID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOrderNotFound, orderID, err)
	}

	if !order.Cancellable() {
		return nil, fmt.Errorf("%w: %s", ErrNotCancellable, orderID)
	}

	cancelResp, err := m.client.PostURL(ctx, *order.Cancel, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCancelFailed, orderID, err)
	}
	_ = cancelResp.Body.Close()

	if cancelResp.StatusCode < 200 || cancelResp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrCancelFailed, orderID, cancelResp.StatusCode)
	}

	return &order, nil
}

// CancelOutcome reports one attempt from CancelAllOpen.
type CancelOutcome struct {
	Order Order
	Err   error
}

// CancelAllOpen cancels every open order independently: a failure on
// one order does not abort the rest. The caller receives the outcome of
// every attempt instead of a hard success/fail.
func (m *Manager) CancelAllOpen(ctx context.Context) ([]CancelOutcome, error) {
	open, err := m.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]CancelOutcome, 0, len(open))
	for _, order := range open {
		_, cancelErr := m.Cancel(ctx, order.ID)
		outcomes = append(outcomes, CancelOutcome{Order: order, Err: cancelErr})
	}
	return outcomes, nil
}
