package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

// TokenService issues valid user access tokens.
type TokenService interface {
	EnsureValidToken(ctx context.Context, accountID string) (*domain.ValidToken, error)
	Invalidate(ctx context.Context, accountID string) error
}

// AppTokenService issues the shared application token.
type AppTokenService interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// TokensHandler exposes user and application tokens to internal callers.
type TokensHandler struct {
	tokens TokenService
	app    AppTokenService
}

// NewTokensHandler creates a new TokensHandler.
func NewTokensHandler(ts TokenService, app AppTokenService) *TokensHandler {
	return &TokensHandler{tokens: ts, app: app}
}

// TokenOutput is a usable user access token.
type TokenOutput struct {
	Body struct {
		AccessToken string    `json:"access_token"`
		ExpiresAt   time.Time `json:"expires_at"   example:"2026-01-02T15:04:05Z"`
	}
}

// AppTokenOutput is the application token.
type AppTokenOutput struct {
	Body struct {
		AccessToken string `json:"access_token"`
	}
}

// IssueToken returns a user access token valid for at least the refresh
// margin, refreshing it first when needed.
func (h *TokensHandler) IssueToken(ctx context.Context, input *AccountIDInput) (*TokenOutput, error) {
	tok, err := h.tokens.EnsureValidToken(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := &TokenOutput{}
	resp.Body.AccessToken = tok.AccessToken
	resp.Body.ExpiresAt = tok.ExpiresAt
	return resp, nil
}

// InvalidateToken marks the account's access token expired so the next
// request refreshes it.
func (h *TokensHandler) InvalidateToken(ctx context.Context, input *AccountIDInput) (*struct{}, error) {
	if err := h.tokens.Invalidate(ctx, input.ID); err != nil {
		return nil, toAPIError(err)
	}
	return nil, nil
}

// AppToken returns the cached application token, fetching one when needed.
func (h *TokensHandler) AppToken(ctx context.Context, _ *struct{}) (*AppTokenOutput, error) {
	tok, err := h.app.Token(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	resp := &AppTokenOutput{}
	resp.Body.AccessToken = tok
	return resp, nil
}

// InvalidateAppToken empties the application token slot.
func (h *TokensHandler) InvalidateAppToken(ctx context.Context, _ *struct{}) (*struct{}, error) {
	if err := h.app.Invalidate(ctx); err != nil {
		return nil, huma.Error500InternalServerError("invalidating application token failed: " + err.Error())
	}
	return nil, nil
}

// RegisterTokenRoutes registers token endpoints with the Huma API.
func RegisterTokenRoutes(api huma.API, h *TokensHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "issue-account-token",
		Method:      http.MethodPost,
		Path:        "/api/v1/accounts/{id}/token",
		Summary:     "Get a valid user access token",
		Description: "Returns an access token valid for at least the refresh margin. Concurrent requests for one account share a single refresh.",
		Tags:        []string{"tokens"},
		Errors: []int{
			http.StatusNotFound, http.StatusConflict, http.StatusTooManyRequests,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout,
		},
	}, h.IssueToken)

	huma.Register(api, huma.Operation{
		OperationID:   "invalidate-account-token",
		Method:        http.MethodDelete,
		Path:          "/api/v1/accounts/{id}/token",
		Summary:       "Invalidate a user access token",
		Tags:          []string{"tokens"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.InvalidateToken)

	huma.Register(api, huma.Operation{
		OperationID: "get-app-token",
		Method:      http.MethodGet,
		Path:        "/api/v1/app-token",
		Summary:     "Get the application token",
		Tags:        []string{"tokens"},
		Errors:      []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable},
	}, h.AppToken)

	huma.Register(api, huma.Operation{
		OperationID:   "invalidate-app-token",
		Method:        http.MethodDelete,
		Path:          "/api/v1/app-token",
		Summary:       "Invalidate the application token",
		Tags:          []string{"tokens"},
		DefaultStatus: http.StatusNoContent,
	}, h.InvalidateAppToken)
}
