package ebay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

// Endpoints groups the eBay URLs for one environment.
type Endpoints struct {
	AuthURL     string
	TokenURL    string
	APIURL      string
	IdentityURL string
	TradingURL  string
}

// ProductionEndpoints are the live eBay endpoints.
var ProductionEndpoints = Endpoints{
	AuthURL:     "https://auth.ebay.com/oauth2/authorize",
	TokenURL:    defaultTokenURL,
	APIURL:      "https://api.ebay.com",
	IdentityURL: "https://apiz.ebay.com",
	TradingURL:  "https://api.ebay.com/ws/api.dll",
}

// SandboxEndpoints are the eBay sandbox endpoints.
var SandboxEndpoints = Endpoints{
	AuthURL:     "https://auth.sandbox.ebay.com/oauth2/authorize",
	TokenURL:    "https://api.sandbox.ebay.com/identity/v1/oauth2/token", //nolint:gosec // not a credential
	APIURL:      "https://api.sandbox.ebay.com",
	IdentityURL: "https://apiz.sandbox.ebay.com",
	TradingURL:  "https://api.sandbox.ebay.com/ws/api.dll",
}

// EndpointsFor returns the endpoint set for "production" or "sandbox".
func EndpointsFor(environment string) Endpoints {
	if environment == "sandbox" {
		return SandboxEndpoints
	}
	return ProductionEndpoints
}

// TokenGrant is the result of a successful authorization-code or
// refresh-token exchange.
type TokenGrant struct {
	AccessToken string
	// RefreshToken is the rotated refresh token, or the one presented when the
	// provider did not issue a new one.
	RefreshToken string
	ExpiresAt    time.Time
	TokenType    string
	// Scopes are the scopes the provider reports as granted; nil when the
	// response omitted them.
	Scopes []string
}

// OAuthClient performs user-token grants against the eBay token endpoint.
type OAuthClient struct {
	config *oauth2.Config
	client *http.Client
	prompt string
}

// OAuthClientOption configures the OAuthClient.
type OAuthClientOption func(*OAuthClient)

// WithOAuthHTTPClient overrides the HTTP client used for token calls.
func WithOAuthHTTPClient(hc *http.Client) OAuthClientOption {
	return func(c *OAuthClient) {
		c.client = hc
	}
}

// WithPrompt sets the authorization prompt parameter (eBay accepts "login").
func WithPrompt(p string) OAuthClientOption {
	return func(c *OAuthClient) {
		c.prompt = p
	}
}

// NewOAuthClient creates an OAuthClient. ruName is eBay's redirect URL name
// and is sent as redirect_uri.
func NewOAuthClient(
	appID, certID, ruName string,
	endpoints Endpoints,
	opts ...OAuthClientOption,
) *OAuthClient {
	c := &OAuthClient{
		config: &oauth2.Config{
			ClientID:     appID,
			ClientSecret: certID,
			RedirectURL:  ruName,
			Endpoint: oauth2.Endpoint{
				AuthURL:   endpoints.AuthURL,
				TokenURL:  endpoints.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthCodeURL returns the provider authorization URL carrying client_id,
// redirect_uri, scope and state.
func (c *OAuthClient) AuthCodeURL(state string, scopeURLs []string) string {
	cfg := *c.config
	cfg.Scopes = scopeURLs

	var opts []oauth2.AuthCodeOption
	if c.prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", c.prompt))
	}
	return cfg.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for a token bundle.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*TokenGrant, error) {
	tok, err := c.config.Exchange(c.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return grantFromToken(tok)
}

// Refresh trades a refresh token for a new access token.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	if refreshToken == "" {
		return nil, errors.New("refreshing token: no refresh token")
	}

	src := c.config.TokenSource(c.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	return grantFromToken(tok)
}

func (c *OAuthClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.client)
}

func grantFromToken(tok *oauth2.Token) (*TokenGrant, error) {
	if tok.Expiry.IsZero() {
		return nil, errors.New("token response missing expires_in")
	}

	g := &TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		TokenType:    tok.TokenType,
	}
	if s, ok := tok.Extra("scope").(string); ok {
		g.Scopes = domain.ParseScopes(s)
	}
	return g, nil
}
