package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestLoginCmd_ReusesSavedSession(t *testing.T) {
	opts, _ := newTestApp(t, nil)
	prompt := &fakePrompter{}
	opts.prompt = prompt

	cmd := newLoginCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Logged in as testuser")
	assert.Empty(t, prompt.prompts, "a restorable session must not prompt")
}

func TestLoginCmd_InteractiveWithChallenge(t *testing.T) {
	var loginCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/user/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/oauth2/token/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		loginCalls++
		assert.Equal(t, "testuser", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		assert.NotEmpty(t, r.PostForm.Get("device_token"))
		if r.PostForm.Get("mfa_code") == "" {
			fmt.Fprint(w, `{"mfa_required":true,"mfa_type":"sms"}`)
			return
		}
		assert.Equal(t, "123456", r.PostForm.Get("mfa_code"))
		fmt.Fprint(w, `{"access_token":"new-at","refresh_token":"new-rt","expires_in":86400}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	dir := t.TempDir()
	blobs := store.New(dir)
	client := api.NewClient(server.URL)
	session := api.NewSession(client, &creds.Credentials{Username: "testuser"})
	cache := instruments.New(client)
	mkt := market.NewService(client)

	cfg := config.DefaultConfig()
	cfg.APIBaseURL = server.URL

	secrets := keyring.NewMockStore()
	prompt := &fakePrompter{responses: []string{"123456"}}

	opts := &appOptions{
		cfg:        cfg,
		configPath: filepath.Join(dir, "config.yaml"),
		blobs:      blobs,
		secrets:    secrets,
		session:    session,
		cache:      cache,
		market:     mkt,
		orders:     orders.NewManager(client, cache, mkt),
		watch:      watchlist.Load(nil),
		password:   &fakePasswordReader{password: "hunter2"},
		prompt:     prompt,
	}

	cmd := newLoginCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Equal(t, 2, loginCalls)
	assert.Contains(t, out.String(), "Logged in as testuser")
	assert.Equal(t, api.Authenticated, session.State())

	// Password lands in the keyring after a successful prompt login.
	saved, err := secrets.Get(keyring.ServiceName, keyring.KeyPassword)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", saved)

	// Tokens are persisted for the next run.
	restored, err := creds.Load(blobs)
	require.NoError(t, err)
	assert.Equal(t, "new-at", restored.AccessToken)
	assert.Equal(t, "new-rt", restored.RefreshToken)
}

func TestLoginCmd_BadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/oauth2/token/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"Invalid credentials."}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	dir := t.TempDir()
	client := api.NewClient(server.URL)
	session := api.NewSession(client, &creds.Credentials{Username: "testuser"})

	opts := &appOptions{
		cfg:        config.DefaultConfig(),
		configPath: filepath.Join(dir, "config.yaml"),
		blobs:      store.New(dir),
		secrets:    keyring.NewMockStore(),
		session:    session,
		password:   &fakePasswordReader{password: "wrong"},
		prompt:     &fakePrompter{},
	}

	cmd := newLoginCmd(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrAuthenticationFailed)
}

func TestLogoutCmd_ClearsLocalState(t *testing.T) {
	opts, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	require.NoError(t, creds.Save(opts.blobs, opts.session.Credentials()))
	require.NoError(t, opts.secrets.Set(keyring.ServiceName, keyring.KeyPassword, "hunter2"))

	cmd := newLogoutCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Logged out")

	restored, err := creds.Load(opts.blobs)
	require.NoError(t, err)
	assert.Empty(t, restored.AccessToken)

	_, err = opts.secrets.Get(keyring.ServiceName, keyring.KeyPassword)
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}
