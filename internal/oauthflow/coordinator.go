// Package oauthflow drives the eBay authorization-code flow for seller
// accounts: it issues the authorization redirect bound to a state cookie and
// completes or declines the provider callback.
package oauthflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
	"github.com/donaldgifford/ebay-seller-connect/internal/metrics"
	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

const instrumentationName = "github.com/donaldgifford/ebay-seller-connect/internal/oauthflow"

const (
	stageBegin    = "begin"
	stageComplete = "complete"
	stageDecline  = "decline"

	defaultIdentityTimeout = 10 * time.Second
)

// Exchanger builds authorization URLs and redeems authorization codes.
// *ebay.OAuthClient implements it.
type Exchanger interface {
	AuthCodeURL(state string, scopeURLs []string) string
	Exchange(ctx context.Context, code string) (*ebay.TokenGrant, error)
}

// IdentityFetcher looks up the eBay user behind an access token.
type IdentityFetcher interface {
	Identity(ctx context.Context, accessToken string) (*ebay.Identity, error)
}

// Authorization is the outcome of Begin.
type Authorization struct {
	URL    string
	State  string
	Cookie *http.Cookie
}

// Coordinator runs the authorization-code flow.
type Coordinator struct {
	store     store.Store
	exchanger Exchanger
	identity  IdentityFetcher
	scopes    *ebay.ScopeRegistry
	cookie    CookieConfig
	log       *slog.Logger
	tracer    trace.Tracer
	meter     metric.Meter

	exchangeLatency metric.Float64Histogram
	identityTimeout time.Duration
	nowFunc         func() time.Time
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// WithCookie sets the state cookie name, path and Secure flag.
func WithCookie(cfg CookieConfig) Option {
	return func(c *Coordinator) {
		c.cookie = cfg
	}
}

// WithIdentityFetcher enables the identity lookup after a code exchange.
func WithIdentityFetcher(f IdentityFetcher) Option {
	return func(c *Coordinator) {
		c.identity = f
	}
}

// WithIdentityTimeout bounds the identity lookup.
func WithIdentityTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.identityTimeout = d
	}
}

// WithTracer sets the tracer used for flow spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		c.tracer = t
	}
}

// WithMeter sets the meter used for the exchange latency histogram.
func WithMeter(m metric.Meter) Option {
	return func(c *Coordinator) {
		c.meter = m
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(c *Coordinator) {
		c.nowFunc = f
	}
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(s store.Store, ex Exchanger, scopes *ebay.ScopeRegistry, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:           s,
		exchanger:       ex,
		scopes:          scopes,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:          otel.Tracer(instrumentationName),
		meter:           otel.Meter(instrumentationName),
		identityTimeout: defaultIdentityTimeout,
		nowFunc:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cookie = c.cookie.withDefaults()

	h, err := c.meter.Float64Histogram("oauthflow.exchange.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of authorization code exchanges."),
	)
	if err != nil {
		h = noop.Float64Histogram{}
	}
	c.exchangeLatency = h
	return c
}

// CookieName returns the name of the state cookie.
func (c *Coordinator) CookieName() string {
	return c.cookie.Name
}

// ClearCookie returns a cookie that deletes the state cookie. Callback
// handlers set it on every outcome.
func (c *Coordinator) ClearCookie() *http.Cookie {
	return c.cookie.cookie("", -1)
}

// Begin starts authorization for an existing account. scopeIDs are short
// registry ids; when empty, the account's recorded selection is requested.
// The baseline scope is always included. The account is not modified.
func (c *Coordinator) Begin(ctx context.Context, accountID string, scopeIDs []string) (*Authorization, error) {
	ctx, span := c.tracer.Start(ctx, "oauthflow.Begin",
		trace.WithAttributes(attribute.String("account.id", accountID)))
	defer span.End()

	a, err := c.store.GetAccount(ctx, accountID)
	if err != nil {
		c.outcome(stageBegin, "error")
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}

	ids := scopeIDs
	if len(ids) == 0 {
		ids = a.UserSelectedScopes
	}
	urls, err := c.scopes.Resolve(ids)
	if err != nil {
		c.outcome(stageBegin, "invalid_scope")
		return nil, err
	}

	state, err := newState(a.ID)
	if err != nil {
		c.outcome(stageBegin, "error")
		return nil, err
	}

	c.outcome(stageBegin, "success")
	c.log.Info("authorization started", "account_id", a.ID, "scopes", len(urls))

	return &Authorization{
		URL:    c.exchanger.AuthCodeURL(state, urls),
		State:  state,
		Cookie: c.cookie.cookie(state, StateMaxAge),
	}, nil
}

// Complete handles a successful provider callback. The state must match the
// cookie set by Begin. The code is exchanged, the eBay identity is looked up
// best-effort, and the token bundle is stored on the account bound to the
// state. The account's user-selected scopes are never changed here; granted
// scopes are replaced only when the provider reports them.
func (c *Coordinator) Complete(ctx context.Context, code, state, cookieValue string) (*domain.AccountSummary, error) {
	ctx, span := c.tracer.Start(ctx, "oauthflow.Complete")
	defer span.End()

	accountID, err := verifyState(state, cookieValue)
	if err != nil {
		c.fail(span, stageComplete, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("account.id", accountID))

	if code == "" {
		c.fail(span, stageComplete, ErrMissingCode)
		return nil, ErrMissingCode
	}

	a, err := c.store.GetAccount(ctx, accountID)
	if err != nil {
		c.fail(span, stageComplete, err)
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}

	start := time.Now()
	grant, err := c.exchanger.Exchange(ctx, code)
	c.exchangeLatency.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.Bool("success", err == nil)))
	if err != nil {
		nerr := ebay.Classify("exchange", err)
		metrics.UpstreamErrorsTotal.WithLabelValues(string(nerr.Kind)).Inc()
		xerr := &TokenExchangeError{AccountID: a.ID, Cause: nerr}
		c.fail(span, stageComplete, xerr)
		c.log.Warn("authorization code exchange failed",
			"account_id", a.ID,
			"kind", nerr.Kind,
			"upstream_code", nerr.UpstreamCode,
			"error", nerr.Message,
		)
		return nil, xerr
	}

	now := c.nowFunc()
	status := domain.StatusActive
	u := &store.AccountUpdate{
		AccessToken:   &grant.AccessToken,
		ExpiresAt:     &grant.ExpiresAt,
		GrantedScopes: grant.Scopes,
		Status:        &status,
		LastUsedAt:    &now,
	}
	if grant.RefreshToken != "" {
		u.RefreshToken = &grant.RefreshToken
	}
	if id := c.fetchIdentity(ctx, a.ID, grant.AccessToken); id != nil {
		if id.UserID != "" {
			u.ExternalAccountID = &id.UserID
		}
		if id.Username != "" {
			u.ExternalUsername = &id.Username
		}
	}

	updated, err := c.store.UpdateAccount(ctx, a.ID, u)
	if err != nil {
		c.fail(span, stageComplete, err)
		return nil, fmt.Errorf("storing tokens for account %s: %w", a.ID, err)
	}

	c.recordEvent(ctx, a.ID, domain.EventAuthorized, "")
	c.outcome(stageComplete, "success")
	c.log.Info("account authorized",
		"account_id", a.ID,
		"previous_status", a.Status,
		"expires_at", updated.ExpiresAt,
	)

	summary := updated.Summary()
	return &summary, nil
}

// Decline handles a callback where the user refused consent or the provider
// reported an error. It records the decline and leaves tokens untouched.
func (c *Coordinator) Decline(ctx context.Context, errCode, description, state, cookieValue string) error {
	ctx, span := c.tracer.Start(ctx, "oauthflow.Decline")
	defer span.End()

	accountID, err := verifyState(state, cookieValue)
	if err != nil {
		c.fail(span, stageDecline, err)
		return err
	}

	detail := errCode
	if description != "" {
		detail += ": " + description
	}
	if err := c.store.RecordAuthEvent(ctx, &domain.AuthEvent{
		AccountID: accountID,
		Type:      domain.EventDeclined,
		Detail:    detail,
	}); err != nil {
		c.fail(span, stageDecline, err)
		return fmt.Errorf("recording decline for account %s: %w", accountID, err)
	}

	c.outcome(stageDecline, "success")
	c.log.Info("authorization declined", "account_id", accountID, "error_code", errCode)
	return nil
}

// fetchIdentity returns nil on any failure; a missing identity only leaves
// the external username unset.
func (c *Coordinator) fetchIdentity(ctx context.Context, accountID, accessToken string) *ebay.Identity {
	if c.identity == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.identityTimeout)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "oauthflow.identity")
	defer span.End()

	id, err := c.identity.Identity(ctx, accessToken)
	if err != nil {
		span.RecordError(err)
		c.log.Warn("identity lookup failed", "account_id", accountID, "error", err)
		return nil
	}
	return id
}

func (c *Coordinator) recordEvent(ctx context.Context, accountID string, typ domain.AuthEventType, detail string) {
	ev := &domain.AuthEvent{AccountID: accountID, Type: typ, Detail: detail}
	if err := c.store.RecordAuthEvent(ctx, ev); err != nil {
		c.log.Error("recording auth event", "account_id", accountID, "type", typ, "error", err)
	}
}

func (c *Coordinator) fail(span trace.Span, stage string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.outcome(stage, resultFor(err))
}

func (*Coordinator) outcome(stage, result string) {
	metrics.OAuthFlowTotal.WithLabelValues(stage, result).Inc()
}

func resultFor(err error) string {
	var xerr *TokenExchangeError
	switch {
	case errors.Is(err, ErrMissingState):
		return "missing_state"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrMissingCode):
		return "missing_code"
	case errors.As(err, &xerr):
		return "exchange_failed"
	case errors.Is(err, store.ErrExternalAccountTaken):
		return "external_account_taken"
	default:
		return "error"
	}
}
