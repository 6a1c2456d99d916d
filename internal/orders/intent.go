package orders

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the order direction.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Trigger is the order trigger condition.
type Trigger string

const (
	Immediate Trigger = "immediate"
	Stop      Trigger = "stop"
)

// Type is the order execution type.
type Type string

const (
	Market Type = "market"
	Limit  Type = "limit"
)

// TimeInForce is how long the order stays working.
type TimeInForce string

const (
	GoodForDay       TimeInForce = "gfd"
	GoodTillCanceled TimeInForce = "gtc"
)

// Intent describes an order before submission. It is created per user
// command and never persisted.
//
// A nil LimitPrice means "best-effort fill at the current bid": the
// quote's bid is fetched at submission time and sent as the price while
// the remote type field is set to market. This matches the upstream
// API's observed behavior, contradictory as it is for a true market
// order; see Place.
type Intent struct {
	Symbol      string
	Quantity    int64
	LimitPrice  *decimal.Decimal
	Side        Side
	Trigger     Trigger
	Type        Type
	TimeInForce TimeInForce
}

// NewBuy builds a buy intent. The order type is market when no price is
// supplied and limit otherwise.
func NewBuy(symbol string, quantity int64, limitPrice *decimal.Decimal) Intent {
	return newIntent(symbol, quantity, limitPrice, Buy, Immediate)
}

// NewSell builds a sell intent with the same price semantics as NewBuy.
func NewSell(symbol string, quantity int64, limitPrice *decimal.Decimal) Intent {
	return newIntent(symbol, quantity, limitPrice, Sell, Immediate)
}

// NewStopLoss builds a sell intent that triggers at the given stop
// price. The stop price doubles as the limit price: there is only one
// price concept on an intent.
func NewStopLoss(symbol string, quantity int64, stopPrice decimal.Decimal) Intent {
	i := newIntent(symbol, quantity, &stopPrice, Sell, Stop)
	return i
}

func newIntent(symbol string, quantity int64, limitPrice *decimal.Decimal, side Side, trigger Trigger) Intent {
	typ := Limit
	if limitPrice == nil {
		typ = Market
	}
	return Intent{
		Symbol:      strings.ToUpper(symbol),
		Quantity:    quantity,
		LimitPrice:  limitPrice,
		Side:        side,
		Trigger:     trigger,
		Type:        typ,
		TimeInForce: GoodForDay,
	}
}

// encode serializes the intent into the order form payload. Every
// enum-like field is matched exhaustively; unrecognized values are
// rejected rather than passed through untyped.
func (i Intent) encode(accountURL, instrumentURL string, price decimal.Decimal) (url.Values, error) {
	switch i.Side {
	case Buy, Sell:
	default:
		return nil, fmt.Errorf("unrecognized side %q", i.Side)
	}
	switch i.Trigger {
	case Immediate, Stop:
	default:
		return nil, fmt.Errorf("unrecognized trigger %q", i.Trigger)
	}
	switch i.Type {
	case Market, Limit:
	default:
		return nil, fmt.Errorf("unrecognized order type %q", i.Type)
	}
	switch i.TimeInForce {
	case GoodForDay, GoodTillCanceled:
	default:
		return nil, fmt.Errorf("unrecognized time in force %q", i.TimeInForce)
	}
	if i.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", i.Quantity)
	}

	// Instrument URLs arrive percent-encoded in search results; the
	// orders endpoint wants them unescaped.
	unescaped, err := url.QueryUnescape(instrumentURL)
	if err != nil {
		unescaped = instrumentURL
	}

	form := url.Values{
		"account":       {accountURL},
		"instrument":    {unescaped},
		"symbol":        {i.Symbol},
		"side":          {string(i.Side)},
		"trigger":       {string(i.Trigger)},
		"type":          {string(i.Type)},
		"time_in_force": {string(i.TimeInForce)},
		"quantity":      {strconv.FormatInt(i.Quantity, 10)},
		"price":         {price.String()},
	}
	if i.Trigger == Stop {
		form.Set("stop_price", price.String())
	}
	return form, nil
}
