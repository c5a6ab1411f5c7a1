package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-seller-connect/internal/api/handlers"
	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
	"github.com/donaldgifford/ebay-seller-connect/internal/tokens"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

type fakeResource struct {
	gotToken  string
	gotLimit  int
	gotOffset int
	gotSKU    string
	gotCall   string
	gotBody   string
	err       error
}

func (f *fakeResource) Identity(context.Context, string) (*ebay.Identity, error) {
	return &ebay.Identity{}, f.err
}

func (f *fakeResource) ListInventoryItems(_ context.Context, token string, limit, offset int) (json.RawMessage, error) {
	f.gotToken, f.gotLimit, f.gotOffset = token, limit, offset
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"total":1,"inventoryItems":[{"sku":"SKU-1"}]}`), nil
}

func (f *fakeResource) GetInventoryItem(_ context.Context, token, sku string) (json.RawMessage, error) {
	f.gotToken, f.gotSKU = token, sku
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"sku":"` + sku + `"}`), nil
}

func (f *fakeResource) Trading(_ context.Context, token, call string, body []byte) ([]byte, error) {
	f.gotToken, f.gotCall, f.gotBody = token, call, string(body)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`<?xml version="1.0"?><GeteBayOfficialTimeResponse><Ack>Success</Ack></GeteBayOfficialTimeResponse>`), nil
}

func newProxyAPI(t *testing.T, ts handlers.TokenService, res ebay.ResourceAPI) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	handlers.RegisterProxyRoutes(api, handlers.NewProxyHandler(ts, res, nil))
	return api
}

func validTokens() *fakeTokenService {
	return &fakeTokenService{tok: &domain.ValidToken{AccessToken: "A1", ExpiresAt: time.Now().Add(time.Hour)}}
}

func TestProxyHandler_Inventory(t *testing.T) {
	t.Parallel()

	res := &fakeResource{}
	api := newProxyAPI(t, validTokens(), res)

	resp := api.Get("/api/v1/accounts/acct-1/inventory/items?limit=10&offset=20")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"sku":"SKU-1"`)
	assert.Equal(t, "A1", res.gotToken)
	assert.Equal(t, 10, res.gotLimit)
	assert.Equal(t, 20, res.gotOffset)

	resp = api.Get("/api/v1/accounts/acct-1/inventory/items/SKU-9")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "SKU-9", res.gotSKU)
}

func TestProxyHandler_Trading(t *testing.T) {
	t.Parallel()

	res := &fakeResource{}
	api := newProxyAPI(t, validTokens(), res)

	req := `<?xml version="1.0"?><GeteBayOfficialTimeRequest xmlns="urn:ebay:apis:eBLBaseComponents"/>`
	resp := api.Post("/api/v1/accounts/acct-1/trading/GeteBayOfficialTime",
		"Content-Type: text/xml", strings.NewReader(req))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/xml")
	assert.Contains(t, resp.Body.String(), "<Ack>Success</Ack>")
	assert.Equal(t, "GeteBayOfficialTime", res.gotCall)
	assert.Equal(t, req, res.gotBody)
}

func TestProxyHandler_UpstreamErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		err             error
		wantStatus      int
		wantKind        string
		wantInvalidated int32
	}{
		{
			name:            "revoked token is invalidated",
			err:             ebay.ClassifyResponse("calling inventory API", 401, []byte(`{"errors":[{"errorId":1001,"category":"REQUEST","message":"Invalid access token"}]}`)),
			wantStatus:      http.StatusUnauthorized,
			wantKind:        "authorization",
			wantInvalidated: 1,
		},
		{
			name:       "not found passes through",
			err:        ebay.ClassifyResponse("calling inventory API", 404, []byte(`{"errors":[{"errorId":25702,"category":"REQUEST","message":"SKU not found"}]}`)),
			wantStatus: http.StatusNotFound,
			wantKind:   "resource-not-found",
		},
		{
			name:       "rate limited",
			err:        ebay.ClassifyResponse("calling inventory API", 429, nil),
			wantStatus: http.StatusTooManyRequests,
			wantKind:   "rate-limit",
		},
		{
			name:       "upstream 5xx is service unavailable",
			err:        ebay.ClassifyResponse("calling inventory API", 500, []byte(`oops`)),
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   "service-unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts := validTokens()
			api := newProxyAPI(t, ts, &fakeResource{err: tt.err})

			resp := api.Get("/api/v1/accounts/acct-1/inventory/items/SKU-1")
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Contains(t, resp.Body.String(), `"kind":"`+tt.wantKind+`"`)
			assert.Equal(t, tt.wantInvalidated, ts.invalidated.Load())
		})
	}
}

func TestProxyHandler_TokenUnavailable(t *testing.T) {
	t.Parallel()

	res := &fakeResource{}
	ts := &fakeTokenService{err: &tokens.ReauthRequiredError{AccountID: "acct-1", Status: domain.StatusRequiresReauth}}
	api := newProxyAPI(t, ts, res)

	resp := api.Get("/api/v1/accounts/acct-1/inventory/items")
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), `"reauth_required":true`)
	assert.Empty(t, res.gotToken, "resource API not called without a token")
}
