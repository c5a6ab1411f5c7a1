package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
)

// ProxyHandler calls seller-scoped eBay APIs on behalf of connected accounts.
type ProxyHandler struct {
	tokens   TokenService
	resource ebay.ResourceAPI
	log      *slog.Logger
}

// NewProxyHandler creates a new ProxyHandler. A nil logger discards output.
func NewProxyHandler(ts TokenService, resource ebay.ResourceAPI, log *slog.Logger) *ProxyHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ProxyHandler{tokens: ts, resource: resource, log: log}
}

// ListInventoryInput pages through an account's inventory.
type ListInventoryInput struct {
	ID     string `path:"id"      doc:"Account ID"`
	Limit  int    `query:"limit"  doc:"Page size (default 25)" minimum:"0" maximum:"200"`
	Offset int    `query:"offset" doc:"Pagination offset"      minimum:"0"`
}

// GetInventoryItemInput selects one inventory item.
type GetInventoryItemInput struct {
	ID  string `path:"id"  doc:"Account ID"`
	SKU string `path:"sku" doc:"Seller SKU"`
}

// RawJSONOutput passes an eBay JSON document through unchanged.
type RawJSONOutput struct {
	Body json.RawMessage
}

// TradingInput is a raw Trading API XML request.
type TradingInput struct {
	ID      string `path:"id"   doc:"Account ID"`
	Call    string `path:"call" doc:"Trading API call name, e.g. GetMyeBaySelling"`
	RawBody []byte `contentType:"text/xml"`
}

// TradingOutput is the raw Trading API XML response.
type TradingOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// ListInventory returns one page of the account's inventory items.
func (h *ProxyHandler) ListInventory(ctx context.Context, input *ListInventoryInput) (*RawJSONOutput, error) {
	body, err := withToken(ctx, h, input.ID, func(token string) (json.RawMessage, error) {
		return h.resource.ListInventoryItems(ctx, token, input.Limit, input.Offset)
	})
	if err != nil {
		return nil, err
	}
	return &RawJSONOutput{Body: body}, nil
}

// GetInventoryItem returns one inventory item.
func (h *ProxyHandler) GetInventoryItem(ctx context.Context, input *GetInventoryItemInput) (*RawJSONOutput, error) {
	body, err := withToken(ctx, h, input.ID, func(token string) (json.RawMessage, error) {
		return h.resource.GetInventoryItem(ctx, token, input.SKU)
	})
	if err != nil {
		return nil, err
	}
	return &RawJSONOutput{Body: body}, nil
}

// Trading forwards a raw XML request to the Trading API.
func (h *ProxyHandler) Trading(ctx context.Context, input *TradingInput) (*TradingOutput, error) {
	body, err := withToken(ctx, h, input.ID, func(token string) ([]byte, error) {
		return h.resource.Trading(ctx, token, input.Call, input.RawBody)
	})
	if err != nil {
		return nil, err
	}
	return &TradingOutput{ContentType: "text/xml; charset=utf-8", Body: body}, nil
}

// withToken runs call with a valid access token. An authorization failure
// from the resource API means eBay revoked the token early, so it is
// invalidated and the next request refreshes it.
func withToken[T any](ctx context.Context, h *ProxyHandler, accountID string, call func(token string) (T, error)) (T, error) {
	var zero T

	tok, err := h.tokens.EnsureValidToken(ctx, accountID)
	if err != nil {
		return zero, toAPIError(err)
	}

	out, err := call(tok.AccessToken)
	if err == nil {
		return out, nil
	}

	var nerr *ebay.Error
	if errors.As(err, &nerr) && nerr.Kind == ebay.KindAuthorization {
		if ierr := h.tokens.Invalidate(ctx, accountID); ierr != nil {
			h.log.Warn("invalidating rejected token", "account_id", accountID, "error", ierr)
		}
	}
	if nerr != nil {
		h.log.Info("upstream call failed",
			"account_id", accountID,
			"op", nerr.Op,
			"kind", nerr.Kind,
			"upstream_code", nerr.UpstreamCode,
		)
	}
	return zero, toAPIError(err)
}

// RegisterProxyRoutes registers the resource proxy endpoints with the Huma API.
func RegisterProxyRoutes(api huma.API, h *ProxyHandler) {
	upstreamErrors := []int{
		http.StatusNotFound, http.StatusConflict, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout,
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-inventory-items",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts/{id}/inventory/items",
		Summary:     "List inventory items",
		Description: "Proxies the Sell Inventory API with a valid token for the account.",
		Tags:        []string{"proxy"},
		Errors:      upstreamErrors,
	}, h.ListInventory)

	huma.Register(api, huma.Operation{
		OperationID: "get-inventory-item",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts/{id}/inventory/items/{sku}",
		Summary:     "Get an inventory item",
		Tags:        []string{"proxy"},
		Errors:      upstreamErrors,
	}, h.GetInventoryItem)

	huma.Register(api, huma.Operation{
		OperationID: "call-trading-api",
		Method:      http.MethodPost,
		Path:        "/api/v1/accounts/{id}/trading/{call}",
		Summary:     "Call the Trading API",
		Description: "Forwards a raw XML request. Responses with Ack=Failure are returned as classified errors.",
		Tags:        []string{"proxy"},
		Errors:      upstreamErrors,
	}, h.Trading)
}
