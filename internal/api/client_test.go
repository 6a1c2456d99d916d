package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_NoAuthorizationWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Get(context.Background(), "/instruments/")

	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestClient_AuthorizationPresentWithToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("tok-123")

	resp, err := client.Get(context.Background(), "/user/")
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestClient_ClearTokenRemovesAuthorization(t *testing.T) {
	var lastAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("tok-123")
	client.ClearToken()

	resp, err := client.Get(context.Background(), "/user/")
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Empty(t, lastAuth)
}

func TestClient_ProtocolHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1.0.0", r.Header.Get("X-Robinhood-API-Version"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Get(context.Background(), "/quotes/AAPL/")
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestClient_PostFormEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "buy", r.PostForm.Get("side"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.PostForm(context.Background(), "/orders/", url.Values{"side": {"buy"}})
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestClient_GetWithParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("query"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.GetWithParams(context.Background(), "/instruments/", map[string]string{"query": "AAPL"})
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestClient_TransportError(t *testing.T) {
	// Point at a closed server to force a connection error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	_, err := client.Get(context.Background(), "/user/")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_GetURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instruments/abc123/", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// GetURL takes the absolute URL as handed out by the API
	client := NewClient("https://unused.example.com")
	resp, err := client.GetURL(context.Background(), server.URL+"/instruments/abc123/")
	require.NoError(t, err)
	_ = resp.Body.Close()
}
