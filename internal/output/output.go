// Package output renders command results as aligned tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

// Formatter writes command output in table or JSON mode.
type Formatter struct {
	Writer   io.Writer
	JSONMode bool
}

// New creates a Formatter for the given writer.
func New(w io.Writer, jsonMode bool) *Formatter {
	return &Formatter{Writer: w, JSONMode: jsonMode}
}

// Table renders headers and rows as an aligned text table, or as a JSON
// array of objects keyed by header when JSON mode is on.
func (f *Formatter) Table(headers []string, rows [][]string) error {
	if f.JSONMode {
		return f.tableAsJSON(headers, rows)
	}
	return f.tableAsText(headers, rows)
}

func (f *Formatter) tableAsText(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}

	separators := make([]string, len(headers))
	for i, h := range headers {
		separators[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(separators, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func (f *Formatter) tableAsJSON(headers []string, rows [][]string) error {
	result := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				obj[header] = row[i]
			} else {
				obj[header] = ""
			}
		}
		result = append(result, obj)
	}
	return f.Print(result)
}

// Print writes data as indented JSON in JSON mode, or with %v otherwise.
func (f *Formatter) Print(data any) error {
	if f.JSONMode {
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
	_, err := fmt.Fprintf(f.Writer, "%v\n", data)
	return err
}

// Money formats a price with two decimal places and a dollar sign.
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// MoneyNull formats a nullable price, rendering missing values as "-".
func MoneyNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return Money(d.Decimal)
}

// SignedMoney formats a gain/loss amount with an explicit sign.
func SignedMoney(d decimal.Decimal) string {
	if d.Sign() >= 0 {
		return "+" + Money(d)
	}
	return "-" + Money(d.Neg())
}

// Percent formats a ratio already scaled to percent, two decimals, with
// an explicit sign.
func Percent(d decimal.Decimal) string {
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

// Quantity trims a remote decimal quantity to a bare number, dropping
// the trailing zeros order records carry ("10.00000" renders as "10").
func Quantity(d decimal.Decimal) string {
	return d.String()
}
