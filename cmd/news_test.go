package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsCmd(t *testing.T) {
	opts, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/midlands/news/AAPL/", r.URL.Path)
		fmt.Fprint(w, `{"results":[
			{"title":"Apple ships new thing","source":"Newswire","published_at":"2026-08-31T12:00:00Z","url":"https://example.com/1"}
		]}`)
	})

	cmd := newNewsCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"aapl"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Apple ships new thing")
	assert.Contains(t, out.String(), "Newswire")
}

func TestNewsCmd_JSONMode(t *testing.T) {
	opts, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"title":"Story","source":"Wire","url":"https://example.com/1"}]}`)
	})
	opts.jsonMode = true

	cmd := newNewsCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL"})

	err := cmd.Execute()
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Story", items[0]["title"])
}

func TestNewsCmd_Empty(t *testing.T) {
	opts, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	})

	cmd := newNewsCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No news")
}
