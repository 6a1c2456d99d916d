package market

import "github.com/shopspring/decimal"

// Quote is a single equity quote. Prices arrive as JSON strings and are
// decoded into decimals; bid/ask can be null outside market hours.
type Quote struct {
	Symbol                string              `json:"symbol"`
	BidPrice              decimal.NullDecimal `json:"bid_price"`
	AskPrice              decimal.NullDecimal `json:"ask_price"`
	BidSize               int64               `json:"bid_size"`
	AskSize               int64               `json:"ask_size"`
	LastTradePrice        decimal.Decimal     `json:"last_trade_price"`
	PreviousClose         decimal.Decimal     `json:"previous_close"`
	AdjustedPreviousClose decimal.Decimal     `json:"adjusted_previous_close"`
	UpdatedAt             string              `json:"updated_at"`
	Instrument            string              `json:"instrument"`
}

// DayChange returns the absolute move since the previous close.
func (q *Quote) DayChange() decimal.Decimal {
	return q.LastTradePrice.Sub(q.PreviousClose)
}

// DayChangePercent returns the percentage move since the previous close,
// zero when the previous close is zero.
func (q *Quote) DayChangePercent() decimal.Decimal {
	if q.PreviousClose.IsZero() {
		return decimal.Zero
	}
	return q.DayChange().Div(q.PreviousClose).Mul(decimal.NewFromInt(100))
}

// Position is a held security, identified by its instrument URL.
type Position struct {
	Instrument      string          `json:"instrument"`
	Quantity        decimal.Decimal `json:"quantity"`
	AverageBuyPrice decimal.Decimal `json:"average_buy_price"`
	Account         string          `json:"account"`
}

// Portfolio is the account-level equity summary.
type Portfolio struct {
	Equity              decimal.Decimal     `json:"equity"`
	ExtendedHoursEquity decimal.NullDecimal `json:"extended_hours_equity"`
	MarketValue         decimal.Decimal     `json:"market_value"`
	EquityPreviousClose decimal.Decimal     `json:"equity_previous_close"`
}

// Account is the brokerage account record; its URL goes into order
// payloads.
type Account struct {
	URL            string `json:"url"`
	AccountNumber  string `json:"account_number"`
	MarginBalances struct {
		UnallocatedMarginCash decimal.Decimal `json:"unallocated_margin_cash"`
	} `json:"margin_balances"`
}

// OptionChain is one chain from the option-chains endpoint.
type OptionChain struct {
	ID              string `json:"id"`
	Symbol          string `json:"symbol"`
	CanOpenPosition bool   `json:"can_open_position"`
}

// OptionInstrument is one contract from the option-instruments endpoint.
type OptionInstrument struct {
	URL            string          `json:"url"`
	ChainSymbol    string          `json:"chain_symbol"`
	ExpirationDate string          `json:"expiration_date"`
	StrikePrice    decimal.Decimal `json:"strike_price"`
	Type           string          `json:"type"`
}

// OptionMarketData is the market-data record for one option contract.
type OptionMarketData struct {
	Instrument        string              `json:"instrument"`
	AdjustedMarkPrice decimal.Decimal     `json:"adjusted_mark_price"`
	MarkPrice         decimal.NullDecimal `json:"mark_price"`
	OpenInterest      int64               `json:"open_interest"`
	Volume            int64               `json:"volume"`
}

// OptionQuote pairs an expiration date with the contract's mark price.
type OptionQuote struct {
	ExpirationDate string          `json:"expiration_date"`
	Price          decimal.Decimal `json:"price"`
}

// Fundamentals is the fundamentals record for one equity. Most figures
// are nullable: freshly listed instruments report no ratios yet.
type Fundamentals struct {
	Open          decimal.NullDecimal `json:"open"`
	High          decimal.NullDecimal `json:"high"`
	Low           decimal.NullDecimal `json:"low"`
	Volume        decimal.Decimal     `json:"volume"`
	AverageVolume decimal.NullDecimal `json:"average_volume"`
	High52Weeks   decimal.NullDecimal `json:"high_52_weeks"`
	Low52Weeks    decimal.NullDecimal `json:"low_52_weeks"`
	MarketCap     decimal.NullDecimal `json:"market_cap"`
	DividendYield decimal.NullDecimal `json:"dividend_yield"`
	PERatio       decimal.NullDecimal `json:"pe_ratio"`
	Description   string              `json:"description"`
}

// NewsItem is one story from the news endpoint.
type NewsItem struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	URL         string `json:"url"`
	Summary     string `json:"summary"`
}

// Watchlist is a remote watchlist record.
type Watchlist struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
