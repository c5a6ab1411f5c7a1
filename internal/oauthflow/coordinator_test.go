package oauthflow_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
	"github.com/donaldgifford/ebay-seller-connect/internal/oauthflow"
	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

const grantBody = `{"access_token":"A1","refresh_token":"R1","expires_in":7200,` +
	`"token_type":"User Access Token","scope":"api_scope sell_inventory"}`

func exchangeServer(t *testing.T, calls *atomic.Int32, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fakeIdentity struct {
	id  *ebay.Identity
	err error
}

func (f *fakeIdentity) Identity(context.Context, string) (*ebay.Identity, error) {
	return f.id, f.err
}

type fixture struct {
	store *store.MemoryStore
	coord *oauthflow.Coordinator
	calls *atomic.Int32
}

func newFixture(t *testing.T, status int, body string, id oauthflow.IdentityFetcher) *fixture {
	t.Helper()
	calls := &atomic.Int32{}
	srv := exchangeServer(t, calls, status, body)

	client := ebay.NewOAuthClient("app-id", "cert-id", "Ru-Name", ebay.Endpoints{
		AuthURL:  "https://auth.example.test/oauth2/authorize",
		TokenURL: srv.URL,
	})

	st := store.NewMemoryStore()
	opts := []oauthflow.Option{}
	if id != nil {
		opts = append(opts, oauthflow.WithIdentityFetcher(id))
	}
	return &fixture{
		store: st,
		coord: oauthflow.NewCoordinator(st, client, ebay.NewScopeRegistry(ebay.DefaultScopes), opts...),
		calls: calls,
	}
}

func (f *fixture) placeholder(t *testing.T, scopes ...string) *domain.Account {
	t.Helper()
	a, err := f.store.CreatePlaceholderAccount(context.Background(), &domain.PlaceholderAccount{
		OwnerUserID:        "user-1",
		Label:              "Main Store",
		UserSelectedScopes: scopes,
	})
	require.NoError(t, err)
	return a
}

func TestBegin_BuildsAuthorizationAndCookie(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, nil)
	a := f.placeholder(t, "sell_inventory")

	auth, err := f.coord.Begin(context.Background(), a.ID, []string{"sell_fulfillment"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(auth.State, a.ID+"_"))
	assert.Len(t, strings.TrimPrefix(auth.State, a.ID+"_"), 32)

	u, err := url.Parse(auth.URL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "app-id", q.Get("client_id"))
	assert.Equal(t, "Ru-Name", q.Get("redirect_uri"))
	assert.Equal(t, auth.State, q.Get("state"))
	assert.Equal(t,
		"https://api.ebay.com/oauth/api_scope https://api.ebay.com/oauth/api_scope/sell.fulfillment",
		q.Get("scope"),
	)

	c := auth.Cookie
	assert.Equal(t, "ebay_oauth_state", c.Name)
	assert.Equal(t, auth.State, c.Value)
	assert.Equal(t, "/oauth", c.Path)
	assert.Equal(t, 600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	got, err := f.store.GetAccount(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got, "begin must not modify the account")
}

func TestBegin_StatesAreUnique(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, nil)
	a := f.placeholder(t)

	first, err := f.coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)
	second, err := f.coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.State, second.State)
}

func TestBegin_FallsBackToSelectedScopes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, nil)
	a := f.placeholder(t, "sell_inventory", "sell_account")

	auth, err := f.coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)

	u, err := url.Parse(auth.URL)
	require.NoError(t, err)
	assert.Equal(t,
		"https://api.ebay.com/oauth/api_scope https://api.ebay.com/oauth/api_scope/sell.inventory "+
			"https://api.ebay.com/oauth/api_scope/sell.account",
		u.Query().Get("scope"),
	)
}

func TestBegin_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, nil)
	a := f.placeholder(t)

	_, err := f.coord.Begin(context.Background(), a.ID, []string{"sell_everything"})
	assert.ErrorIs(t, err, ebay.ErrUnknownScope)

	_, err = f.coord.Begin(context.Background(), "11111111-2222-3333-4444-555555555555", nil)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestComplete_RoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, &fakeIdentity{
		id: &ebay.Identity{UserID: "ebay-user-42", Username: "best_seller"},
	})
	a := f.placeholder(t, "sell_inventory")

	auth, err := f.coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)

	summary, err := f.coord.Complete(context.Background(), "the-code", auth.State, auth.Cookie.Value)
	require.NoError(t, err)

	assert.Equal(t, a.ID, summary.ID)
	assert.Equal(t, domain.StatusActive, summary.Status)
	assert.True(t, summary.HasRefreshToken)
	require.NotNil(t, summary.ExternalAccountID)
	assert.Equal(t, "ebay-user-42", *summary.ExternalAccountID)
	require.NotNil(t, summary.ExternalUsername)
	assert.Equal(t, "best_seller", *summary.ExternalUsername)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), summary.ExpiresAt, 10*time.Second)

	got, err := f.store.GetAccount(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A1", got.AccessToken)
	assert.Equal(t, "R1", got.RefreshToken)

	events, err := f.store.ListAuthEvents(context.Background(), a.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAuthorized, events[0].Type)
}

func TestComplete_PreservesSelectedScopes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, nil)
	a := f.placeholder(t, "sell_inventory")

	auth, err := f.coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)

	summary, err := f.coord.Complete(context.Background(), "the-code", auth.State, auth.State)
	require.NoError(t, err)

	assert.Equal(t, []string{"sell_inventory"}, summary.UserSelectedScopes)
	assert.Equal(t, []string{"api_scope", "sell_inventory"}, summary.GrantedScopes)
}

func flipLast(s string) string {
	last := "0"
	if strings.HasSuffix(s, "0") {
		last = "1"
	}
	return s[:len(s)-1] + last
}

func TestComplete_StateFailuresDoNotMutate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		state   func(valid string) string
		cookie  func(valid string) string
		wantErr error
	}{
		{
			name:    "tampered state",
			state:   flipLast,
			cookie:  func(v string) string { return v },
			wantErr: oauthflow.ErrInvalidState,
		},
		{
			name:    "missing cookie",
			state:   func(v string) string { return v },
			cookie:  func(string) string { return "" },
			wantErr: oauthflow.ErrInvalidState,
		},
		{
			name:    "state and cookie forged together",
			state:   func(string) string { return "not-a-state" },
			cookie:  func(string) string { return "not-a-state" },
			wantErr: oauthflow.ErrInvalidState,
		},
		{
			name:    "missing state",
			state:   func(string) string { return "" },
			cookie:  func(v string) string { return v },
			wantErr: oauthflow.ErrMissingState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, http.StatusOK, grantBody, nil)
			a := f.placeholder(t)

			auth, err := f.coord.Begin(context.Background(), a.ID, nil)
			require.NoError(t, err)
			_, err = f.coord.Complete(context.Background(), "the-code",
				tt.state(auth.State), tt.cookie(auth.State))
			require.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, int32(0), f.calls.Load())
			got, err := f.store.GetAccount(context.Background(), a.ID)
			require.NoError(t, err)
			assert.Equal(t, a, got)
		})
	}
}

func TestComplete_MissingCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, nil)
	a := f.placeholder(t)
	auth, err := f.coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)

	_, err = f.coord.Complete(context.Background(), "", auth.State, auth.State)
	assert.ErrorIs(t, err, oauthflow.ErrMissingCode)
}

func TestComplete_ExchangeFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusBadRequest,
		`{"error":"invalid_grant","error_description":"the provided authorization grant code is invalid"}`, nil)
	a := f.placeholder(t)
	auth, err := f.coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)

	_, err = f.coord.Complete(context.Background(), "bad-code", auth.State, auth.State)
	require.Error(t, err)

	var xerr *oauthflow.TokenExchangeError
	require.ErrorAs(t, err, &xerr)
	assert.False(t, xerr.Retryable())
	assert.Equal(t, ebay.KindAuthorization, xerr.Cause.Kind)

	got, err := f.store.GetAccount(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Empty(t, got.AccessToken)
}

func TestComplete_IdentityFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, &fakeIdentity{err: errors.New("identity down")})
	a := f.placeholder(t)
	auth, err := f.coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)

	summary, err := f.coord.Complete(context.Background(), "the-code", auth.State, auth.State)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, summary.Status)
	assert.Nil(t, summary.ExternalUsername)
	require.NotNil(t, summary.ExternalAccountID)
	assert.True(t, domain.IsPlaceholderExternalID(*summary.ExternalAccountID))
}

func TestComplete_ExternalAccountAlreadyConnected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, &fakeIdentity{
		id: &ebay.Identity{UserID: "ebay-user-42", Username: "best_seller"},
	})
	first := f.placeholder(t)
	second := f.placeholder(t)

	auth, err := f.coord.Begin(context.Background(), first.ID, nil)
	require.NoError(t, err)
	_, err = f.coord.Complete(context.Background(), "code-1", auth.State, auth.State)
	require.NoError(t, err)

	auth, err = f.coord.Begin(context.Background(), second.ID, nil)
	require.NoError(t, err)
	_, err = f.coord.Complete(context.Background(), "code-2", auth.State, auth.State)
	require.ErrorIs(t, err, store.ErrExternalAccountTaken)

	got, err := f.store.GetAccount(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestDecline(t *testing.T) {
	t.Parallel()

	f := newFixture(t, http.StatusOK, grantBody, nil)
	a := f.placeholder(t)
	auth, err := f.coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)

	err = f.coord.Decline(context.Background(), "access_denied", "user declined", auth.State, auth.State)
	require.NoError(t, err)

	events, err := f.store.ListAuthEvents(context.Background(), a.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDeclined, events[0].Type)
	assert.Equal(t, "access_denied: user declined", events[0].Detail)

	got, err := f.store.GetAccount(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, int32(0), f.calls.Load())

	err = f.coord.Decline(context.Background(), "access_denied", "", auth.State, "")
	assert.ErrorIs(t, err, oauthflow.ErrInvalidState)
}

func TestClearCookie(t *testing.T) {
	t.Parallel()

	coord := oauthflow.NewCoordinator(store.NewMemoryStore(), nil, ebay.NewScopeRegistry(ebay.DefaultScopes),
		oauthflow.WithCookie(oauthflow.CookieConfig{Name: "st", Path: "/cb", Secure: true}))

	c := coord.ClearCookie()
	assert.Equal(t, "st", c.Name)
	assert.Equal(t, "/cb", c.Path)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "st", coord.CookieName())
}

func TestComplete_RecordsExchangeLatency(t *testing.T) {
	t.Parallel()

	calls := &atomic.Int32{}
	srv := exchangeServer(t, calls, http.StatusOK, grantBody)
	client := ebay.NewOAuthClient("app-id", "cert-id", "Ru-Name", ebay.Endpoints{
		AuthURL:  "https://auth.example.test/oauth2/authorize",
		TokenURL: srv.URL,
	})

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	st := store.NewMemoryStore()
	coord := oauthflow.NewCoordinator(st, client, ebay.NewScopeRegistry(ebay.DefaultScopes),
		oauthflow.WithMeter(mp.Meter("test")),
	)

	a, err := st.CreatePlaceholderAccount(context.Background(), &domain.PlaceholderAccount{OwnerUserID: "user-1"})
	require.NoError(t, err)
	auth, err := coord.Begin(context.Background(), a.ID, nil)
	require.NoError(t, err)
	_, err = coord.Complete(context.Background(), "the-code", auth.State, auth.Cookie.Value)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	m := rm.ScopeMetrics[0].Metrics[0]
	assert.Equal(t, "oauthflow.exchange.duration", m.Name)
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}
