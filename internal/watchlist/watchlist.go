// Package watchlist maintains the locally tracked symbol list.
package watchlist

import (
	"encoding/json"
	"strings"
)

// BlobName is the store blob the watchlist persists under.
const BlobName = "watchlist.json"

// List is an ordered, de-duplicated set of symbols. Order is insertion
// order and survives persistence round trips.
type List struct {
	symbols []string
}

// Load rebuilds a list from a persisted blob. An empty or nil blob
// yields an empty list; a corrupted blob does too, so a damaged file
// never blocks startup.
func Load(data []byte) *List {
	l := &List{}
	if len(data) == 0 {
		return l
	}
	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		return l
	}
	for _, s := range symbols {
		l.Add(s)
	}
	return l
}

// Add appends a symbol and reports whether it was newly added.
func (l *List) Add(symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || l.contains(symbol) {
		return false
	}
	l.symbols = append(l.symbols, symbol)
	return true
}

// Remove deletes a symbol and reports whether it was present.
func (l *List) Remove(symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for i, s := range l.symbols {
		if s == symbol {
			l.symbols = append(l.symbols[:i], l.symbols[i+1:]...)
			return true
		}
	}
	return false
}

// Symbols returns the tracked symbols in insertion order. The returned
// slice is a copy.
func (l *List) Symbols() []string {
	out := make([]string, len(l.symbols))
	copy(out, l.symbols)
	return out
}

// Len returns the number of tracked symbols.
func (l *List) Len() int {
	return len(l.symbols)
}

// Bytes serializes the list for the store.
func (l *List) Bytes() ([]byte, error) {
	return json.Marshal(l.symbols)
}

func (l *List) contains(symbol string) bool {
	for _, s := range l.symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
