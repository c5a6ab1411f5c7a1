// Package tokens keeps per-account eBay user tokens usable. The Engine is the
// single entry point for "give me a valid access token for this account"; the
// Sweeper refreshes tokens ahead of expiry on a schedule.
package tokens

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
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
	"github.com/donaldgifford/ebay-seller-connect/internal/metrics"
	"github.com/donaldgifford/ebay-seller-connect/internal/notify"
	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	"github.com/donaldgifford/ebay-seller-connect/pkg/logger"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

const (
	defaultRefreshMargin  = 5 * time.Minute
	defaultRefreshTimeout = 20 * time.Second
	persistTimeout        = 5 * time.Second

	opRefresh = "refresh"
)

// Refresher exchanges a refresh token for a new access token.
// *ebay.OAuthClient implements it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*ebay.TokenGrant, error)
}

// Engine hands out valid access tokens per account, refreshing them when
// they are within the refresh margin of expiry. Refreshes for one account
// are collapsed into a single upstream exchange; different accounts refresh
// independently.
type Engine struct {
	store     store.Store
	refresher Refresher
	notifier  notify.Notifier
	log       *slog.Logger
	tracer    trace.Tracer

	flights        singleflight.Group
	refreshMargin  time.Duration
	refreshTimeout time.Duration
	connectURL     func(accountID string) string
	nowFunc        func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithNotifier sets the notifier told about requires_reauth transitions.
func WithNotifier(n notify.Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithRefreshMargin sets how long before expiry a token is refreshed.
func WithRefreshMargin(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.refreshMargin = d
	}
}

// WithRefreshTimeout bounds each refresh exchange. Saving its result is
// bounded separately.
func WithRefreshTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.refreshTimeout = d
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowFunc = f
	}
}

// WithTracer sets the tracer used for refresh spans.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithConnectURLFunc sets the function that builds the reconnect link placed
// in reauth notifications.
func WithConnectURLFunc(f func(accountID string) string) EngineOption {
	return func(e *Engine) {
		e.connectURL = f
	}
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(s store.Store, r Refresher, opts ...EngineOption) *Engine {
	e := &Engine{
		store:          s,
		refresher:      r,
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:         otel.Tracer("github.com/donaldgifford/ebay-seller-connect/internal/tokens"),
		refreshMargin:  defaultRefreshMargin,
		refreshTimeout: defaultRefreshTimeout,
		nowFunc:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notifier == nil {
		e.notifier = notify.NewNoOpNotifier(e.log)
	}
	return e
}

// RefreshMargin returns the configured refresh margin.
func (e *Engine) RefreshMargin() time.Duration {
	return e.refreshMargin
}

// EnsureValidToken returns an access token for the account that stays valid
// for at least the refresh margin. A token already fresh enough is returned
// without any upstream call. Otherwise one refresh exchange runs for the
// account and every concurrent caller shares its result.
//
// Failures are *ReauthRequiredError (non-retryable, account demoted),
// *RefreshError (retryable, account untouched), ErrAccountPending,
// ErrAccountInactive or a wrapped store error.
func (e *Engine) EnsureValidToken(ctx context.Context, accountID string) (*domain.ValidToken, error) {
	ctx, span := e.tracer.Start(ctx, "tokens.EnsureValidToken",
		trace.WithAttributes(attribute.String("account.id", accountID)))
	defer span.End()

	a, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	if err := checkUsable(a); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := e.nowFunc()
	if a.FreshFor(now, e.refreshMargin) {
		metrics.TokenFastPathTotal.Inc()
		span.SetAttributes(attribute.Bool("token.refreshed", false))
		e.touch(ctx, a.ID, now)
		return &domain.ValidToken{AccessToken: a.AccessToken, ExpiresAt: a.ExpiresAt}, nil
	}

	span.SetAttributes(attribute.Bool("token.refreshed", true))

	// The flight outlives any single caller: a caller that gives up must not
	// abort the exchange others are waiting on, or leave a consumed refresh
	// token unpersisted.
	flightCtx := context.WithoutCancel(ctx)
	ch := e.flights.DoChan(accountID, func() (any, error) {
		return e.refresh(flightCtx, accountID)
	})

	select {
	case <-ctx.Done():
		err := &RefreshError{AccountID: accountID, Cause: ebay.Classify(opRefresh, ctx.Err())}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	case res := <-ch:
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
			return nil, res.Err
		}
		tok, _ := res.Val.(*domain.ValidToken)
		return &domain.ValidToken{AccessToken: tok.AccessToken, ExpiresAt: tok.ExpiresAt}, nil
	}
}

// Invalidate marks the account's access token as expired so the next
// EnsureValidToken refreshes it. It is used when eBay rejects a token that
// had not reached its recorded expiry.
func (e *Engine) Invalidate(ctx context.Context, accountID string) error {
	now := e.nowFunc()
	if _, err := e.store.UpdateAccount(ctx, accountID, &store.AccountUpdate{ExpiresAt: &now}); err != nil {
		return fmt.Errorf("invalidating token for account %s: %w", accountID, err)
	}
	e.log.Info("access token invalidated", "account_id", accountID)
	return nil
}

func checkUsable(a *domain.Account) error {
	switch {
	case a.Status == domain.StatusPending:
		return ErrAccountPending
	case a.Status == domain.StatusInactive:
		return ErrAccountInactive
	case a.Status.NeedsReauth():
		return &ReauthRequiredError{AccountID: a.ID, Status: a.Status}
	default:
		return nil
	}
}

// persistCtx bounds a store write or notification made inside a flight.
// It never inherits the exchange deadline: once eBay has issued new tokens
// they must be saved even if the exchange used up its whole budget.
func persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

// refresh runs inside the account's flight. It re-reads the account so a
// flight that starts right after another one finished reuses its result.
// Only the exchange itself is bounded by the refresh timeout.
func (e *Engine) refresh(ctx context.Context, accountID string) (*domain.ValidToken, error) {
	ctx, span := e.tracer.Start(ctx, "tokens.refresh",
		trace.WithAttributes(attribute.String("account.id", accountID)))
	defer span.End()

	a, err := e.load(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	if err := checkUsable(a); err != nil {
		return nil, err
	}

	now := e.nowFunc()
	if a.FreshFor(now, e.refreshMargin) {
		return &domain.ValidToken{AccessToken: a.AccessToken, ExpiresAt: a.ExpiresAt}, nil
	}

	if a.RefreshToken == "" {
		return nil, e.fail(ctx, a, &ebay.Error{
			Kind:       ebay.KindAuthorization,
			HTTPStatus: http.StatusUnauthorized,
			Message:    "account holds no refresh token",
			Op:         opRefresh,
		})
	}

	start := time.Now()
	rctx, cancel := context.WithTimeout(ctx, e.refreshTimeout)
	grant, err := e.refresher.Refresh(rctx, a.RefreshToken)
	cancel()
	metrics.TokenRefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		nerr := ebay.Classify(opRefresh, err)
		span.RecordError(nerr)
		return nil, e.fail(ctx, a, nerr)
	}
	if !grant.ExpiresAt.After(a.ExpiresAt) {
		return nil, e.fail(ctx, a, ebay.Classify(opRefresh, fmt.Errorf(
			"provider returned expiry %s not after current %s",
			grant.ExpiresAt.Format(time.RFC3339), a.ExpiresAt.Format(time.RFC3339),
		)))
	}

	u := &store.AccountUpdate{
		AccessToken:   &grant.AccessToken,
		ExpiresAt:     &grant.ExpiresAt,
		GrantedScopes: grant.Scopes,
		LastUsedAt:    &now,
	}
	if grant.RefreshToken != "" && grant.RefreshToken != a.RefreshToken {
		u.RefreshToken = &grant.RefreshToken
	}

	pctx, cancel := persistCtx(ctx)
	defer cancel()
	updated, err := e.store.UpdateAccount(pctx, a.ID, u)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("persisting refreshed token for account %s: %w", a.ID, err)
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	e.recordEvent(ctx, a.ID, domain.EventRefreshed, "expires "+updated.ExpiresAt.UTC().Format(time.RFC3339))
	e.log.Info("access token refreshed",
		"account_id", a.ID,
		"expires_at", updated.ExpiresAt,
		"token", logger.MaskToken(updated.AccessToken),
		"rotated", u.RefreshToken != nil,
	)

	return &domain.ValidToken{AccessToken: updated.AccessToken, ExpiresAt: updated.ExpiresAt}, nil
}

// fail applies the outcome of a classified refresh failure. Authorization
// failures demote the account; every other kind leaves it untouched.
func (e *Engine) fail(ctx context.Context, a *domain.Account, nerr *ebay.Error) error {
	metrics.UpstreamErrorsTotal.WithLabelValues(string(nerr.Kind)).Inc()

	if nerr.Kind != ebay.KindAuthorization {
		metrics.TokenRefreshTotal.WithLabelValues("failed").Inc()
		e.recordEvent(ctx, a.ID, domain.EventRefreshFailed, nerr.Error())
		e.log.Warn("token refresh failed",
			"account_id", a.ID,
			"kind", nerr.Kind,
			"retryable", nerr.Retryable,
			"upstream_code", nerr.UpstreamCode,
			"error", nerr.Message,
		)
		return &RefreshError{AccountID: a.ID, Cause: nerr}
	}

	reauth := &ReauthRequiredError{
		AccountID: a.ID,
		Status:    domain.StatusRequiresReauth,
		Cause:     nerr,
	}

	pctx, cancel := persistCtx(ctx)
	defer cancel()

	status := domain.StatusRequiresReauth
	if _, err := e.store.UpdateAccount(pctx, a.ID, &store.AccountUpdate{Status: &status}); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("store_error").Inc()
		return errors.Join(reauth, fmt.Errorf("marking account %s requires_reauth: %w", a.ID, err))
	}

	metrics.TokenRefreshTotal.WithLabelValues("reauth_required").Inc()
	metrics.ReauthTransitionsTotal.Inc()
	e.recordEvent(ctx, a.ID, domain.EventReauthRequired, nerr.Error())
	e.log.Warn("account requires reauthorization",
		"account_id", a.ID,
		"upstream_code", nerr.UpstreamCode,
		"error", nerr.Message,
	)
	e.notifyReauth(pctx, a, nerr)

	return reauth
}

func (e *Engine) notifyReauth(ctx context.Context, a *domain.Account, nerr *ebay.Error) {
	p := &notify.ReauthPayload{
		AccountID:    a.ID,
		Label:        a.Label,
		OwnerUserID:  a.OwnerUserID,
		Reason:       nerr.UserMessage(),
		UpstreamCode: nerr.UpstreamCode,
		OccurredAt:   e.nowFunc(),
	}
	if a.ExternalUsername != nil {
		p.ExternalUsername = *a.ExternalUsername
	}
	if e.connectURL != nil {
		p.ConnectURL = e.connectURL(a.ID)
	}
	if err := e.notifier.SendReauthRequired(ctx, p); err != nil {
		e.log.Error("sending reauth notification", "account_id", a.ID, "error", err)
	}
}

func (e *Engine) load(ctx context.Context, accountID string) (*domain.Account, error) {
	pctx, cancel := persistCtx(ctx)
	defer cancel()
	return e.store.GetAccount(pctx, accountID)
}

func (e *Engine) recordEvent(ctx context.Context, accountID string, typ domain.AuthEventType, detail string) {
	pctx, cancel := persistCtx(ctx)
	defer cancel()
	ev := &domain.AuthEvent{AccountID: accountID, Type: typ, Detail: detail}
	if err := e.store.RecordAuthEvent(pctx, ev); err != nil {
		e.log.Error("recording auth event", "account_id", accountID, "type", typ, "error", err)
	}
}

// touch records the use of a cached token. It is advisory only.
func (e *Engine) touch(ctx context.Context, accountID string, now time.Time) {
	if _, err := e.store.UpdateAccount(ctx, accountID, &store.AccountUpdate{LastUsedAt: &now}); err != nil {
		e.log.Warn("updating last_used_at", "account_id", accountID, "error", err)
	}
}
