package ebay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/donaldgifford/ebay-seller-connect/internal/metrics"
)

const (
	defaultTokenURL     = "https://api.ebay.com/identity/v1/oauth2/token" //nolint:gosec // not a credential
	defaultExpiryBuffer = 60 * time.Second
)

// AppToken is the cached application (client-credentials) token.
type AppToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenSlot holds at most one AppToken. Load returns (nil, nil) when empty.
type TokenSlot interface {
	Load(ctx context.Context) (*AppToken, error)
	Store(ctx context.Context, t *AppToken) error
	Clear(ctx context.Context) error
}

// MemorySlot is a process-local TokenSlot backed by an atomic pointer.
type MemorySlot struct {
	p atomic.Pointer[AppToken]
}

// Load returns the stored token or nil.
func (m *MemorySlot) Load(context.Context) (*AppToken, error) {
	return m.p.Load(), nil
}

// Store replaces the slot wholesale.
func (m *MemorySlot) Store(_ context.Context, t *AppToken) error {
	m.p.Store(t)
	return nil
}

// Clear empties the slot.
func (m *MemorySlot) Clear(context.Context) error {
	m.p.Store(nil)
	return nil
}

// AppTokenCache is the single shared application token. It is created empty,
// filled on first use through the eBay client-credentials grant, and emptied
// by Invalidate.
//
// Concurrent callers that all find the slot empty each perform their own
// exchange and the last store wins. Client-credentials exchanges are
// idempotent, so the only cost is the extra call; there is no locking beyond
// the slot's atomic replace.
type AppTokenCache struct {
	appID    string
	certID   string
	tokenURL string
	scopes   []string
	client   *http.Client
	slot     TokenSlot
	buffer   time.Duration
	log      *slog.Logger
	nowFunc  func() time.Time // for testing
}

// AppTokenOption configures the AppTokenCache.
type AppTokenOption func(*AppTokenCache)

// WithTokenURL overrides the default eBay token endpoint.
func WithTokenURL(u string) AppTokenOption {
	return func(c *AppTokenCache) {
		c.tokenURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) AppTokenOption {
	return func(c *AppTokenCache) {
		c.client = hc
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) AppTokenOption {
	return func(c *AppTokenCache) {
		c.nowFunc = f
	}
}

// WithSlot replaces the in-memory slot, e.g. with a RedisSlot shared by
// several processes.
func WithSlot(s TokenSlot) AppTokenOption {
	return func(c *AppTokenCache) {
		c.slot = s
	}
}

// WithExpiryBuffer sets how long before expiry a cached token stops being
// served. Zero serves the token until the instant it expires.
func WithExpiryBuffer(d time.Duration) AppTokenOption {
	return func(c *AppTokenCache) {
		c.buffer = d
	}
}

// WithAppScopes overrides the client-credentials scopes.
func WithAppScopes(scopes ...string) AppTokenOption {
	return func(c *AppTokenCache) {
		c.scopes = scopes
	}
}

// WithAppLogger sets the logger.
func WithAppLogger(l *slog.Logger) AppTokenOption {
	return func(c *AppTokenCache) {
		c.log = l
	}
}

// NewAppTokenCache creates an empty application token cache.
func NewAppTokenCache(appID, certID string, opts ...AppTokenOption) *AppTokenCache {
	c := &AppTokenCache{
		appID:    appID,
		certID:   certID,
		tokenURL: defaultTokenURL,
		scopes:   []string{scopeBase},
		client:   &http.Client{Timeout: 10 * time.Second},
		slot:     &MemorySlot{},
		buffer:   defaultExpiryBuffer,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns a valid application token, exchanging client credentials when
// the slot is empty or expired.
func (c *AppTokenCache) Token(ctx context.Context) (string, error) {
	cached, err := c.slot.Load(ctx)
	if err != nil {
		c.log.Warn("app token slot unreadable, fetching fresh token", "error", err)
	}
	if cached != nil && c.nowFunc().Add(c.buffer).Before(cached.ExpiresAt) {
		return cached.Token, nil
	}

	t, err := c.fetch(ctx)
	if err != nil {
		metrics.AppTokenFetchesTotal.WithLabelValues("error").Inc()
		return "", Classify("fetching application token", err)
	}
	metrics.AppTokenFetchesTotal.WithLabelValues("success").Inc()

	if err := c.slot.Store(ctx, t); err != nil {
		c.log.Warn("storing app token failed", "error", err)
	}
	return t.Token, nil
}

// Invalidate clears the slot so the next Token call performs a fresh exchange.
func (c *AppTokenCache) Invalidate(ctx context.Context) error {
	if err := c.slot.Clear(ctx); err != nil {
		return fmt.Errorf("clearing app token slot: %w", err)
	}
	return nil
}

func (c *AppTokenCache) fetch(ctx context.Context) (*AppToken, error) {
	cc := &clientcredentials.Config{
		ClientID:     c.appID,
		ClientSecret: c.certID,
		TokenURL:     c.tokenURL,
		Scopes:       c.scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	start := c.nowFunc()
	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.client))
	if err != nil {
		return nil, fmt.Errorf("client credentials grant: %w", err)
	}

	// The provider TTL is measured from our clock rather than trusting
	// oauth2's wall-clock Expiry, so tests can drive time.
	ttl := time.Until(tok.Expiry)
	if tok.Expiry.IsZero() || ttl <= 0 {
		return nil, fmt.Errorf("client credentials grant: token response missing expires_in")
	}

	return &AppToken{
		Token:     tok.AccessToken,
		ExpiresAt: start.Add(ttl).Truncate(time.Second),
	}, nil
}
