package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhshell/rh/internal/watchlist"
)

func TestWatchAddCmd_PersistsAcrossLoads(t *testing.T) {
	opts, _ := newTestApp(t, nil)

	cmd := newWatchAddCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"aapl", "msft", "AAPL"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Watching AAPL, MSFT")

	data, ok, err := opts.blobs.Load(watchlist.BlobName)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"AAPL", "MSFT"}, watchlist.Load(data).Symbols())
}

func TestWatchRemoveCmd(t *testing.T) {
	opts, _ := newTestApp(t, nil)
	opts.watch.Add("AAPL")
	opts.watch.Add("MSFT")

	cmd := newWatchRemoveCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Stopped watching AAPL")
	assert.Equal(t, []string{"MSFT"}, opts.watch.Symbols())
}

func TestWatchRemoveCmd_NotWatching(t *testing.T) {
	opts, _ := newTestApp(t, nil)

	cmd := newWatchRemoveCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"TSLA"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Not watching")
}

func TestWatchListCmd_Empty(t *testing.T) {
	opts, _ := newTestApp(t, nil)

	cmd := newWatchListCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Watchlist is empty")
}

func TestWatchListCmd_QuotesWatchedSymbols(t *testing.T) {
	opts, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quotes/", r.URL.Path)
		assert.Equal(t, "AAPL,MSFT", r.URL.Query().Get("symbols"))
		fmt.Fprint(w, `{"results":[
			{"symbol":"AAPL","last_trade_price":"175.50","previous_close":"173.00"},
			{"symbol":"MSFT","last_trade_price":"410.00","previous_close":"412.00"}
		]}`)
	})
	opts.watch.Add("AAPL")
	opts.watch.Add("MSFT")

	cmd := newWatchListCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "AAPL")
	assert.Contains(t, out.String(), "MSFT")
}

func TestWatchRemoteCmd(t *testing.T) {
	opts, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/watchlists/", r.URL.Path)
		fmt.Fprint(w, `{"results":[{"name":"Default","url":"http://example/watchlists/Default/"}]}`)
	})

	cmd := newWatchRemoteCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Default")
}
