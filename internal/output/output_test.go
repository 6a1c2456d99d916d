package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_TextMode(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf, false)

	err := f.Table(
		[]string{"Symbol", "Price"},
		[][]string{
			{"AAPL", "$150.25"},
			{"MSFT", "$410.00"},
		},
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Symbol")
	assert.Contains(t, out, "------")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "$410.00")
}

func TestTable_JSONMode(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf, true)

	err := f.Table(
		[]string{"Symbol", "Price"},
		[][]string{{"AAPL", "$150.25"}},
	)
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0]["Symbol"])
	assert.Equal(t, "$150.25", rows[0]["Price"])
}

func TestTable_EmptyRowsStillShowsHeaders(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf, false)

	require.NoError(t, f.Table([]string{"Symbol"}, nil))
	assert.Contains(t, buf.String(), "Symbol")
}

func TestPrint_JSONMode(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf, true)

	require.NoError(t, f.Print(map[string]string{"state": "queued"}))
	assert.Contains(t, buf.String(), `"state": "queued"`)
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "$150.25", Money(decimal.RequireFromString("150.25")))
	assert.Equal(t, "$150.00", Money(decimal.RequireFromString("150")))

	assert.Equal(t, "-", MoneyNull(decimal.NullDecimal{}))
	assert.Equal(t, "$1.50", MoneyNull(decimal.NewNullDecimal(decimal.RequireFromString("1.5"))))

	assert.Equal(t, "+$12.34", SignedMoney(decimal.RequireFromString("12.34")))
	assert.Equal(t, "-$12.34", SignedMoney(decimal.RequireFromString("-12.34")))
	assert.Equal(t, "+$0.00", SignedMoney(decimal.Zero))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "+3.14%", Percent(decimal.RequireFromString("3.141")))
	assert.Equal(t, "-2.00%", Percent(decimal.RequireFromString("-2")))
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, "10", Quantity(decimal.RequireFromString("10.00000")))
	assert.Equal(t, "0.5", Quantity(decimal.RequireFromString("0.50000")))
}
