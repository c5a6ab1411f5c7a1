package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListAccounts(context.Background(), ListAccountsOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`internal`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListAccounts(context.Background(), ListAccountsOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 500)")
	assert.Contains(t, err.Error(), "internal")
}

func TestClient_ProblemBodyDecoded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status":409,"title":"Conflict","detail":"reconnect","kind":"authorization","reauth_required":true,"upstream_code":1001}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.IssueToken(context.Background(), "a1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "authorization", apiErr.Kind)
	assert.True(t, apiErr.ReauthRequired)
	assert.Equal(t, 1001, apiErr.UpstreamCode)
	assert.Equal(t, "API error (HTTP 409) [authorization]: reconnect", err.Error())
}

func TestClient_ListAccounts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("owner"))
		assert.Equal(t, "active,requires_reauth", r.URL.Query().Get("status"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(AccountList{
			Accounts: []domain.AccountSummary{{ID: "a1", Status: domain.StatusActive}},
			Total:    1,
			Limit:    10,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	list, err := c.ListAccounts(context.Background(), ListAccountsOptions{
		Owner:    "u1",
		Statuses: []string{"active", "requires_reauth"},
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Accounts, 1)
	assert.Equal(t, "a1", list.Accounts[0].ID)
}

func TestClient_CreateAccount(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var req CreateAccountRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req.OwnerUserID)
		assert.Equal(t, []string{"sell_inventory"}, req.UserSelectedScopes)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.AccountSummary{
			ID:          "a-created",
			OwnerUserID: req.OwnerUserID,
			Status:      domain.StatusPending,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	a, err := c.CreateAccount(context.Background(), &CreateAccountRequest{
		OwnerUserID:        "u1",
		UserSelectedScopes: []string{"sell_inventory"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a-created", a.ID)
	assert.Equal(t, domain.StatusPending, a.Status)
}

func TestClient_SetEnabledAndScopes(t *testing.T) {
	t.Parallel()

	var gotPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPaths = append(gotPaths, r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if r.URL.Path == "/api/v1/accounts/a1/scopes" {
			assert.Equal(t, []any{}, body["scopes"])
		} else {
			assert.Equal(t, false, body["enabled"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.AccountSummary{ID: "a1"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.SetScopes(context.Background(), "a1", nil)
	require.NoError(t, err)
	_, err = c.SetEnabled(context.Background(), "a1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/v1/accounts/a1/scopes", "/api/v1/accounts/a1/enabled"}, gotPaths)
}

func TestClient_DeleteAccount(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/accounts/a1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.DeleteAccount(context.Background(), "a1"))
}

func TestClient_IssueToken(t *testing.T) {
	t.Parallel()

	exp := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/accounts/a1/token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Token{AccessToken: "v^1.1#abc", ExpiresAt: exp})
	}))
	defer srv.Close()

	c := New(srv.URL)
	tok, err := c.IssueToken(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "v^1.1#abc", tok.AccessToken)
	assert.True(t, exp.Equal(tok.ExpiresAt))
}

func TestClient_ListEventsAndQuota(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/accounts/a1/events":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"events":[{"id":"e1","account_id":"a1","type":"authorized"}]}`))
		case "/api/v1/quota":
			_, _ = w.Write([]byte(`{"quotas":[{"api":"trading","daily_limit":5000,"daily_used":12,"remaining":4988}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	events, err := c.ListEvents(context.Background(), "a1", 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)

	quotas, err := c.Quota(context.Background())
	require.NoError(t, err)
	require.Len(t, quotas, 1)
	assert.Equal(t, int64(4988), quotas[0].Remaining)
}

func TestClient_ConnectURL(t *testing.T) {
	t.Parallel()

	c := New("https://connect.example.com/")
	assert.Equal(t, "https://connect.example.com/api/v1/accounts/a1/connect", c.ConnectURL("a1", nil))
	assert.Equal(t,
		"https://connect.example.com/api/v1/accounts/a1/connect?scopes=sell_inventory%2Csell_fulfillment",
		c.ConnectURL("a1", []string{"sell_inventory", "sell_fulfillment"}),
	)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{Timeout: 3 * time.Second}
	c := New("http://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, c.http.GetClient())
}
