package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/ebay-seller-connect/internal/api/views"
	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
	"github.com/donaldgifford/ebay-seller-connect/internal/oauthflow"
	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

// FlowService runs the OAuth authorization-code flow.
type FlowService interface {
	Begin(ctx context.Context, accountID string, scopeIDs []string) (*oauthflow.Authorization, error)
	Complete(ctx context.Context, code, state, cookieValue string) (*domain.AccountSummary, error)
	Decline(ctx context.Context, errCode, description, state, cookieValue string) error
	CookieName() string
	ClearCookie() *http.Cookie
}

// OAuthHandler serves the connect redirect and the provider callback.
type OAuthHandler struct {
	flow            FlowService
	log             *slog.Logger
	successRedirect string
	failureRedirect string
}

// OAuthOption configures the OAuthHandler.
type OAuthOption func(*OAuthHandler)

// WithRedirects replaces the built-in result page with redirects. Empty
// values keep the page for that outcome.
func WithRedirects(success, failure string) OAuthOption {
	return func(h *OAuthHandler) {
		h.successRedirect = success
		h.failureRedirect = failure
	}
}

// WithOAuthLogger sets the logger.
func WithOAuthLogger(l *slog.Logger) OAuthOption {
	return func(h *OAuthHandler) {
		h.log = l
	}
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(flow FlowService, opts ...OAuthOption) *OAuthHandler {
	h := &OAuthHandler{
		flow: flow,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ConnectInput starts authorization for an account.
type ConnectInput struct {
	ID     string   `path:"id"      doc:"Account ID"`
	Scopes []string `query:"scopes" doc:"Scope ids to request; defaults to the account's selection"`
}

// ConnectOutput redirects the browser to eBay with the state cookie set.
type ConnectOutput struct {
	Location  string      `header:"Location"`
	SetCookie http.Cookie `header:"Set-Cookie"`
}

// Connect redirects to the eBay consent page.
func (h *OAuthHandler) Connect(ctx context.Context, input *ConnectInput) (*ConnectOutput, error) {
	auth, err := h.flow.Begin(ctx, input.ID, input.Scopes)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &ConnectOutput{Location: auth.URL, SetCookie: *auth.Cookie}, nil
}

// RegisterOAuthRoutes registers the connect operation with the Huma API.
func RegisterOAuthRoutes(api huma.API, h *OAuthHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "connect-account",
		Method:        http.MethodGet,
		Path:          "/api/v1/accounts/{id}/connect",
		Summary:       "Connect an account through eBay",
		Description:   "Redirects the browser to eBay's consent page and sets the state cookie checked by the callback.",
		Tags:          []string{"oauth"},
		DefaultStatus: http.StatusFound,
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.Connect)
}

// RegisterCallbackRoute mounts the provider callback on e. It renders HTML,
// so it stays outside the JSON API.
func RegisterCallbackRoute(e *echo.Echo, h *OAuthHandler) {
	e.GET("/oauth/callback", h.Callback)
}

// Callback completes or declines the authorization started by Connect. The
// state cookie is cleared on every outcome.
func (h *OAuthHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()
	state := c.QueryParam("state")

	var cookieValue string
	if ck, err := c.Cookie(h.flow.CookieName()); err == nil {
		cookieValue = ck.Value
	}
	c.SetCookie(h.flow.ClearCookie())

	if errCode := c.QueryParam("error"); errCode != "" {
		err := h.flow.Decline(ctx, errCode, c.QueryParam("error_description"), state, cookieValue)
		if err != nil {
			return h.failed(c, err)
		}
		return h.finish(c, http.StatusOK, views.Result{
			Outcome:   views.OutcomeDeclined,
			Message:   "Authorization was declined on eBay. No changes were made to the account.",
			Retryable: true,
		})
	}

	summary, err := h.flow.Complete(ctx, c.QueryParam("code"), state, cookieValue)
	if err != nil {
		return h.failed(c, err)
	}

	r := views.Result{Outcome: views.OutcomeConnected, Label: summary.Label}
	if summary.ExternalUsername != nil {
		r.Username = *summary.ExternalUsername
	}
	return h.finish(c, http.StatusOK, r)
}

func (h *OAuthHandler) failed(c echo.Context, err error) error {
	status := http.StatusBadRequest
	r := views.Result{Outcome: views.OutcomeFailed, Retryable: true}

	var xerr *oauthflow.TokenExchangeError
	switch {
	case errors.Is(err, oauthflow.ErrMissingState), errors.Is(err, oauthflow.ErrInvalidState):
		r.Message = "The authorization request expired or did not come from this browser."
	case errors.Is(err, oauthflow.ErrMissingCode):
		r.Message = "eBay did not return an authorization code."
	case errors.As(err, &xerr):
		status = http.StatusBadGateway
		r.Message = xerr.Cause.UserMessage()
		r.Retryable = xerr.Cause.Kind != ebay.KindPermission
	case errors.Is(err, store.ErrExternalAccountTaken):
		status = http.StatusConflict
		r.Message = "This eBay user is already connected to another account."
		r.Retryable = false
		h.log.Info("oauth callback rejected", "reason", "external account taken")
	case errors.Is(err, store.ErrAccountNotFound):
		status = http.StatusNotFound
		r.Message = "The account being connected no longer exists."
		r.Retryable = false
		h.log.Info("oauth callback rejected", "reason", "account not found")
	default:
		status = http.StatusInternalServerError
		r.Message = "The account could not be connected."
		h.log.Error("oauth callback failed", "error", err)
	}
	return h.finish(c, status, r)
}

func (h *OAuthHandler) finish(c echo.Context, status int, r views.Result) error {
	target := h.failureRedirect
	if r.Outcome == views.OutcomeConnected {
		target = h.successRedirect
	}
	if target != "" {
		return c.Redirect(http.StatusFound, withOutcome(target, r.Outcome))
	}
	return render(c, status, views.ResultPage(r))
}

func withOutcome(target string, o views.Outcome) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("outcome", string(o))
	u.RawQuery = q.Encode()
	return u.String()
}

func render(c echo.Context, status int, comp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return comp.Render(c.Request().Context(), c.Response())
}
