package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rhshell/rh/internal/api"
	"github.com/rhshell/rh/internal/config"
	"github.com/rhshell/rh/internal/creds"
	"github.com/rhshell/rh/internal/instruments"
	"github.com/rhshell/rh/internal/keyring"
	"github.com/rhshell/rh/internal/market"
	"github.com/rhshell/rh/internal/orders"
	"github.com/rhshell/rh/internal/store"
	"github.com/rhshell/rh/internal/watchlist"
)

// fakePasswordReader returns a canned password.
type fakePasswordReader struct {
	password string
	err      error
}

func (f *fakePasswordReader) ReadPassword() (string, error) {
	return f.password, f.err
}

func (f *fakePasswordReader) IsTerminal() bool {
	return true
}

// fakePrompter returns canned responses in order.
type fakePrompter struct {
	responses []string
	prompts   []string
}

func (f *fakePrompter) ReadLine(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.responses) == 0 {
		return "", fmt.Errorf("no responses left")
	}
	response := f.responses[0]
	f.responses = f.responses[1:]
	return response, nil
}

// newTestApp builds an appOptions wired to a test server. The server
// always accepts the session probe so commands start authenticated;
// everything else is routed to handler.
func newTestApp(t *testing.T, handler http.HandlerFunc) (*appOptions, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/user/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"username":"testuser"}`)
	})
	if handler != nil {
		mux.HandleFunc("/", handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	blobs := store.New(dir)

	cr := &creds.Credentials{Username: "testuser", AccessToken: "saved-token"}
	client := api.NewClient(server.URL)
	session := api.NewSession(client, cr)
	cache := instruments.New(client)
	mkt := market.NewService(client)

	cfg := config.DefaultConfig()
	cfg.Username = "testuser"
	cfg.APIBaseURL = server.URL

	return &appOptions{
		cfg:        cfg,
		configPath: filepath.Join(dir, "config.yaml"),
		blobs:      blobs,
		secrets:    keyring.NewMockStore(),
		session:    session,
		cache:      cache,
		market:     mkt,
		orders:     orders.NewManager(client, cache, mkt),
		watch:      watchlist.Load(nil),
		password:   &fakePasswordReader{},
		prompt:     &fakePrompter{},
	}, server
}
