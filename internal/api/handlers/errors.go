package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
	"github.com/donaldgifford/ebay-seller-connect/internal/oauthflow"
	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	"github.com/donaldgifford/ebay-seller-connect/internal/tokens"
)

// APIError is the problem body returned for every failed operation. Upstream
// failures carry their normalized kind so clients can branch without parsing
// messages.
type APIError struct {
	Status         int    `json:"status"                  example:"409"`
	Title          string `json:"title"                   example:"Conflict"`
	Detail         string `json:"detail"                  example:"The eBay authorization is no longer valid. Reconnect the account."`
	Kind           string `json:"kind,omitempty"          example:"authorization"`
	Retryable      bool   `json:"retryable"`
	ReauthRequired bool   `json:"reauth_required,omitempty"`
	UpstreamCode   int    `json:"upstream_code,omitempty" example:"1001"`
}

// Error implements error.
func (e *APIError) Error() string { return e.Detail }

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int { return e.Status }

func newAPIError(status int, detail string) *APIError {
	return &APIError{Status: status, Title: http.StatusText(status), Detail: detail}
}

// toAPIError maps a domain or upstream failure onto the HTTP surface.
func toAPIError(err error) error {
	var (
		reauth   *tokens.ReauthRequiredError
		refresh  *tokens.RefreshError
		exchange *oauthflow.TokenExchangeError
		upstream *ebay.Error
	)

	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		return newAPIError(http.StatusNotFound, "account not found")
	case errors.Is(err, store.ErrExternalAccountTaken):
		return newAPIError(http.StatusConflict, err.Error())
	case errors.Is(err, tokens.ErrAccountPending), errors.Is(err, tokens.ErrAccountInactive):
		return newAPIError(http.StatusConflict, err.Error())
	case errors.Is(err, ebay.ErrUnknownScope):
		return newAPIError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, oauthflow.ErrMissingState),
		errors.Is(err, oauthflow.ErrMissingCode),
		errors.Is(err, oauthflow.ErrInvalidState):
		return newAPIError(http.StatusBadRequest, err.Error())
	case errors.As(err, &reauth):
		e := newAPIError(http.StatusConflict, ebay.KindAuthorization.UserMessage())
		e.Kind = string(ebay.KindAuthorization)
		e.ReauthRequired = true
		if reauth.Cause != nil {
			e.UpstreamCode = reauth.Cause.UpstreamCode
		}
		return e
	case errors.As(err, &refresh):
		e := fromUpstream(refresh.Cause)
		e.Retryable = true
		return e
	case errors.As(err, &exchange):
		e := fromUpstream(exchange.Cause)
		e.Retryable = false
		return e
	case errors.As(err, &upstream):
		return fromUpstream(upstream)
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}

func fromUpstream(u *ebay.Error) *APIError {
	e := newAPIError(upstreamStatus(u), u.UserMessage())
	e.Kind = string(u.Kind)
	e.Retryable = u.Retryable
	e.UpstreamCode = u.UpstreamCode
	return e
}

// upstreamStatus keeps client-side statuses and reports eBay's own server
// failures as a bad gateway.
func upstreamStatus(u *ebay.Error) int {
	switch u.Kind {
	case ebay.KindRateLimit:
		return http.StatusTooManyRequests
	case ebay.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case ebay.KindConnection:
		return http.StatusGatewayTimeout
	case ebay.KindServer:
		return http.StatusBadGateway
	}
	if u.HTTPStatus >= 400 && u.HTTPStatus < 500 {
		return u.HTTPStatus
	}
	return http.StatusBadGateway
}
