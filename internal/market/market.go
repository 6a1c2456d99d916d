// Package market fetches quotes, positions, portfolio state and option
// metadata. It is a thin typed layer over the remote endpoints; results
// flow back to callers unmodified except for status inspection.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/rhshell/rh/internal/api"
	"github.com/rhshell/rh/internal/instruments"
)

// Service exposes the read-side endpoints over an authenticated client.
type Service struct {
	client *api.Client
}

// NewService creates a Service over the given client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// decode checks the response status and unmarshals the body into target.
func decode(resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %d - %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Quote fetches a single quote. An unknown symbol maps to
// instruments.ErrSymbolNotFound so callers see one error regardless of
// which operation detected the bad symbol.
func (s *Service) Quote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(symbol)

	resp, err := s.client.Get(ctx, "/quotes/"+symbol+"/")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", instruments.ErrSymbolNotFound, symbol)
	}

	var quote Quote
	if err := decode(resp, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// Quotes fetches quotes for multiple symbols in one batched call.
// Invalid symbols come back as nulls from the API and are dropped.
func (s *Service) Quotes(ctx context.Context, symbols []string) ([]Quote, error) {
	joined := strings.ToUpper(strings.Join(symbols, ","))

	resp, err := s.client.GetWithParams(ctx, "/quotes/", map[string]string{"symbols": joined})
	if err != nil {
		return nil, err
	}

	var batch struct {
		Results []*Quote `json:"results"`
	}
	if err := decode(resp, &batch); err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(batch.Results))
	for _, q := range batch.Results {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	return quotes, nil
}

// Positions returns the positions with a nonzero share count.
func (s *Service) Positions(ctx context.Context) ([]Position, error) {
	resp, err := s.client.GetWithParams(ctx, "/positions/", map[string]string{"nonzero": "true"})
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []Position `json:"results"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// Portfolio returns the account-level equity summary.
func (s *Service) Portfolio(ctx context.Context) (*Portfolio, error) {
	resp, err := s.client.Get(ctx, "/portfolios/")
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []Portfolio `json:"results"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("no portfolio in response")
	}
	return &result.Results[0], nil
}

// Account returns the primary brokerage account.
func (s *Service) Account(ctx context.Context) (*Account, error) {
	resp, err := s.client.Get(ctx, "/accounts/")
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []Account `json:"results"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("no account in response")
	}
	return &result.Results[0], nil
}

// OptionChainID returns the id of the tradable option chain for an
// underlying: the first chain reporting can_open_position.
func (s *Service) OptionChainID(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToUpper(symbol)

	resp, err := s.client.GetWithParams(ctx, "/instruments/", map[string]string{"symbol": symbol})
	if err != nil {
		return "", err
	}
	var search struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := decode(resp, &search); err != nil {
		return "", err
	}
	if len(search.Results) == 0 {
		return "", fmt.Errorf("%w: %s", instruments.ErrSymbolNotFound, symbol)
	}

	resp, err = s.client.GetWithParams(ctx, "/options/chains/", map[string]string{
		"equity_instrument_ids": search.Results[0].ID,
	})
	if err != nil {
		return "", err
	}
	var chains struct {
		Results []OptionChain `json:"results"`
	}
	if err := decode(resp, &chains); err != nil {
		return "", err
	}

	for _, chain := range chains.Results {
		if chain.CanOpenPosition {
			return chain.ID, nil
		}
	}
	return "", fmt.Errorf("no open option chain for %s", symbol)
}

// OptionInstruments lists contracts on a chain, optionally filtered by
// expiration date, type (call/put) and strike.
func (s *Service) OptionInstruments(ctx context.Context, chainID string, filters map[string]string) ([]OptionInstrument, error) {
	params := map[string]string{"chain_id": chainID, "state": "active"}
	for k, v := range filters {
		params[k] = v
	}

	resp, err := s.client.GetWithParams(ctx, "/options/instruments/", params)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []OptionInstrument `json:"results"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// OptionMarketData fetches batched market data for option contracts,
// keyed by their instrument URLs.
func (s *Service) OptionMarketData(ctx context.Context, instrumentURLs []string) ([]OptionMarketData, error) {
	resp, err := s.client.GetWithParams(ctx, "/marketdata/options/", map[string]string{
		"instruments": strings.Join(instrumentURLs, ","),
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []OptionMarketData `json:"results"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// OptionQuotes resolves the chain for an underlying, lists matching
// contracts, fetches each contract's market data and returns
// (expiration, price) pairs sorted by expiration.
func (s *Service) OptionQuotes(ctx context.Context, symbol string, filters map[string]string) ([]OptionQuote, error) {
	chainID, err := s.OptionChainID(ctx, symbol)
	if err != nil {
		return nil, err
	}

	contracts, err := s.OptionInstruments(ctx, chainID, filters)
	if err != nil {
		return nil, err
	}

	quotes := make([]OptionQuote, 0, len(contracts))
	for _, contract := range contracts {
		data, err := s.OptionMarketData(ctx, []string{contract.URL})
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}
		quotes = append(quotes, OptionQuote{
			ExpirationDate: contract.ExpirationDate,
			Price:          data[0].AdjustedMarkPrice,
		})
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].ExpirationDate < quotes[j].ExpirationDate
	})
	return quotes, nil
}

// Fundamentals fetches the fundamentals record for a symbol. An unknown
// symbol maps to instruments.ErrSymbolNotFound, same as Quote.
func (s *Service) Fundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	symbol = strings.ToUpper(symbol)

	resp, err := s.client.Get(ctx, "/fundamentals/"+symbol+"/")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", instruments.ErrSymbolNotFound, symbol)
	}

	var record Fundamentals
	if err := decode(resp, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// News returns recent stories for a symbol.
func (s *Service) News(ctx context.Context, symbol string) ([]NewsItem, error) {
	symbol = strings.ToUpper(symbol)

	resp, err := s.client.Get(ctx, "/midlands/news/"+symbol+"/")
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []NewsItem `json:"results"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// Watchlists returns the remote watchlist records.
func (s *Service) Watchlists(ctx context.Context) ([]Watchlist, error) {
	resp, err := s.client.Get(ctx, "/watchlists/")
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []Watchlist `json:"results"`
	}
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}
