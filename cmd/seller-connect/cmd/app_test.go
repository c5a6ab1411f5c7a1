package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-seller-connect/internal/config"
)

const memoryConfig = `
database:
  backend: memory
ebay:
  environment: sandbox
  app_id: app
  cert_id: cert
  ru_name: ru
  token_url: http://127.0.0.1:1/token
tokens:
  sweep_enabled: true
  sweep_window: 1m
`

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(memoryConfig), 0o600))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestNewApp_MemoryBackend(t *testing.T) {
	t.Parallel()

	cfg := loadTestConfig(t)
	a, err := newApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.close()

	require.NotNil(t, a.sweeper)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{method: http.MethodGet, path: "/healthz", want: http.StatusOK},
		{method: http.MethodGet, path: "/readyz", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/scopes", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/quota", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/accounts/missing", want: http.StatusNotFound},
		{method: http.MethodPost, path: "/api/v1/accounts", body: `{"owner_user_id":"u1"}`, want: http.StatusCreated},
		{method: http.MethodGet, path: "/oauth/callback", want: http.StatusBadRequest},
		{method: http.MethodGet, path: "/metrics", want: http.StatusOK},
	}

	for _, tt := range tests {
		var body io.Reader
		if tt.body != "" {
			body = strings.NewReader(tt.body)
		}
		req := httptest.NewRequest(tt.method, tt.path, body)
		if tt.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		a.echo.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "%s %s: %s", tt.method, tt.path, rec.Body.String())
	}
}

func TestResolveEndpoints(t *testing.T) {
	t.Parallel()

	ep := resolveEndpoints(config.EbayConfig{
		Environment: "sandbox",
		TokenURL:    "http://localhost:9999/token",
	})
	assert.Equal(t, "http://localhost:9999/token", ep.TokenURL)
	assert.Equal(t, "https://auth.sandbox.ebay.com/oauth2/authorize", ep.AuthURL)
}

func TestConnectURL(t *testing.T) {
	t.Parallel()

	f := connectURL("https://connect.example.com")
	assert.Equal(t, "https://connect.example.com/api/v1/accounts/a%2Fb/connect", f("a/b"))
}
