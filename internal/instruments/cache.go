// Package instruments resolves between human symbols and the opaque
// URL-shaped instrument ids the API uses, caching every resolution.
//
// The cache is a bijection: each symbol maps to exactly one instrument
// URL and vice versa within a process lifetime. Population is lazy and
// monotonic; entries are never evicted, and the persisted cache loaded
// at startup is merged with newly resolved entries winning conflicts.
package instruments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// BlobName is the store key for the persisted cache.
const BlobName = "instruments.json"

var (
	// ErrSymbolNotFound indicates the instrument search returned no
	// exact match for the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrInstrumentLookup indicates an instrument id could not be
	// dereferenced.
	ErrInstrumentLookup = errors.New("instrument lookup failed")
)

// Getter is the transport capability the cache needs: authenticated GETs
// against the API.
type Getter interface {
	GetWithParams(ctx context.Context, path string, params map[string]string) (*http.Response, error)
	GetURL(ctx context.Context, rawURL string) (*http.Response, error)
}

// instrumentRecord is the instrument payload, shared by the search
// endpoint and the by-id dereference. Option contracts carry
// chain_symbol, expiration_date, strike_price and type; equities only
// url and symbol.
type instrumentRecord struct {
	URL            string          `json:"url"`
	Symbol         string          `json:"symbol"`
	ChainSymbol    string          `json:"chain_symbol"`
	ExpirationDate string          `json:"expiration_date"`
	StrikePrice    decimal.Decimal `json:"strike_price"`
	Type           string          `json:"type"`
}

type searchResponse struct {
	Results []instrumentRecord `json:"results"`
}

// Cache is the bidirectional symbol/instrument-url map. It is not safe
// for concurrent use: the client is single-threaded by design.
type Cache struct {
	client   Getter
	bySymbol map[string]string
	byURL    map[string]string
}

// New creates an empty cache backed by the given transport.
func New(client Getter) *Cache {
	return &Cache{
		client:   client,
		bySymbol: make(map[string]string),
		byURL:    make(map[string]string),
	}
}

// Resolve returns the instrument URL for a symbol, querying the search
// endpoint on a cache miss. The remote search is fuzzy, so results are
// filtered to the case-insensitive exact match.
func (c *Cache) Resolve(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToUpper(symbol)
	if url, ok := c.bySymbol[symbol]; ok {
		return url, nil
	}

	resp, err := c.client.GetWithParams(ctx, "/instruments/", map[string]string{"query": symbol})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: search returned %d", ErrSymbolNotFound, resp.StatusCode)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSymbolNotFound, err)
	}

	for _, rec := range search.Results {
		if strings.EqualFold(rec.Symbol, symbol) {
			c.put(symbol, rec.URL)
			return rec.URL, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

// ResolveURL returns the symbol for an instrument URL, dereferencing the
// id on a cache miss. Equities resolve to their ticker; option contracts
// (recognized by the chain_symbol field) synthesize a contract symbol of
// the form "XYZ 2024-06-21 C 100.0".
func (c *Cache) ResolveURL(ctx context.Context, instrumentURL string) (string, error) {
	if symbol, ok := c.byURL[instrumentURL]; ok {
		return symbol, nil
	}

	resp, err := c.client.GetURL(ctx, instrumentURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %d", ErrInstrumentLookup, instrumentURL, resp.StatusCode)
	}

	var rec instrumentRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInstrumentLookup, err)
	}

	symbol := rec.Symbol
	if rec.ChainSymbol != "" {
		symbol = OptionSymbol(rec.ChainSymbol, rec.ExpirationDate, rec.Type, rec.StrikePrice)
	}
	if symbol == "" {
		return "", fmt.Errorf("%w: %s has no symbol", ErrInstrumentLookup, instrumentURL)
	}

	c.put(symbol, instrumentURL)
	return symbol, nil
}

// put records a symbol/url pair in both directions, dropping any stale
// pairing either side had so the map stays a bijection.
func (c *Cache) put(symbol, url string) {
	if old, ok := c.bySymbol[symbol]; ok && old != url {
		delete(c.byURL, old)
	}
	if old, ok := c.byURL[url]; ok && old != symbol {
		delete(c.bySymbol, old)
	}
	c.bySymbol[symbol] = url
	c.byURL[url] = symbol
}

// Len returns the number of cached pairs.
func (c *Cache) Len() int {
	return len(c.bySymbol)
}

// Merge loads a persisted symbol→url map into the cache. Entries already
// resolved in this run win over persisted ones.
func (c *Cache) Merge(data []byte) error {
	var persisted map[string]string
	if err := json.Unmarshal(data, &persisted); err != nil {
		return err
	}
	for symbol, url := range persisted {
		if _, ok := c.bySymbol[symbol]; ok {
			continue
		}
		if _, ok := c.byURL[url]; ok {
			continue
		}
		c.put(symbol, url)
	}
	return nil
}

// Bytes serializes the forward map for persistence. The reverse map is
// rebuilt on load.
func (c *Cache) Bytes() ([]byte, error) {
	return json.Marshal(c.bySymbol)
}

// OptionSymbol synthesizes the contract symbol for an option instrument:
// "<underlying> <expiration> <C|P> <strike>". The strike keeps at least
// one decimal place, so a 100 strike renders as "100.0".
func OptionSymbol(underlying, expiration, optionType string, strike decimal.Decimal) string {
	cp := "C"
	if strings.EqualFold(optionType, "put") {
		cp = "P"
	}
	return fmt.Sprintf("%s %s %s %s", strings.ToUpper(underlying), expiration, cp, formatStrike(strike))
}

func formatStrike(strike decimal.Decimal) string {
	if strike.IsInteger() {
		return strike.StringFixed(1)
	}
	return strike.String()
}
