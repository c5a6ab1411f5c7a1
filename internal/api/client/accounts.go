package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

// CreateAccountRequest contains the fields accepted when creating an account.
type CreateAccountRequest struct {
	OwnerUserID        string   `json:"owner_user_id"`
	Label              string   `json:"label,omitempty"`
	UserSelectedScopes []string `json:"user_selected_scopes,omitempty"`
}

// ListAccountsOptions filters ListAccounts.
type ListAccountsOptions struct {
	Owner    string
	Statuses []string
	Limit    int
	Offset   int
}

// AccountList is one page of accounts.
type AccountList struct {
	Accounts []domain.AccountSummary `json:"accounts"`
	Total    int                     `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
}

// Scope is a scope registry entry.
type Scope struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Mandatory   bool   `json:"mandatory"`
}

// Token is a user access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Quota is the daily quota of one eBay API family.
type Quota struct {
	API        string    `json:"api"`
	DailyLimit int64     `json:"daily_limit"`
	DailyUsed  int64     `json:"daily_used"`
	Remaining  int64     `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
}

func accountPath(id string, parts ...string) string {
	p := "/api/v1/accounts/" + url.PathEscape(id)
	for _, s := range parts {
		p += "/" + s
	}
	return p
}

// CreateAccount registers a placeholder account.
func (c *Client) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*domain.AccountSummary, error) {
	var a domain.AccountSummary
	if err := c.do(ctx, "POST", "/api/v1/accounts", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAccounts returns one page of accounts.
func (c *Client) ListAccounts(ctx context.Context, opts ListAccountsOptions) (*AccountList, error) {
	q := url.Values{}
	if opts.Owner != "" {
		q.Set("owner", opts.Owner)
	}
	if len(opts.Statuses) > 0 {
		q.Set("status", strings.Join(opts.Statuses, ","))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/v1/accounts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list AccountList
	if err := c.do(ctx, "GET", path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetAccount returns a single account.
func (c *Client) GetAccount(ctx context.Context, id string) (*domain.AccountSummary, error) {
	var a domain.AccountSummary
	if err := c.do(ctx, "GET", accountPath(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetScopes replaces the scopes requested on the next connect.
func (c *Client) SetScopes(ctx context.Context, id string, scopes []string) (*domain.AccountSummary, error) {
	if scopes == nil {
		scopes = []string{}
	}
	var a domain.AccountSummary
	body := map[string][]string{"scopes": scopes}
	if err := c.do(ctx, "PUT", accountPath(id, "scopes"), body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetEnabled enables or disables an account.
func (c *Client) SetEnabled(ctx context.Context, id string, enabled bool) (*domain.AccountSummary, error) {
	var a domain.AccountSummary
	body := map[string]bool{"enabled": enabled}
	if err := c.do(ctx, "PUT", accountPath(id, "enabled"), body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAccount removes an account.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", accountPath(id), nil, nil)
}

// ListEvents returns the account's auth events, newest first.
func (c *Client) ListEvents(ctx context.Context, id string, limit int) ([]domain.AuthEvent, error) {
	path := accountPath(id, "events")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Events []domain.AuthEvent `json:"events"`
	}
	if err := c.do(ctx, "GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// ListScopes returns the scope registry.
func (c *Client) ListScopes(ctx context.Context) ([]Scope, error) {
	var resp struct {
		Scopes []Scope `json:"scopes"`
	}
	if err := c.do(ctx, "GET", "/api/v1/scopes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Scopes, nil
}

// ConnectURL returns the browser URL that starts authorization for id. It
// performs no request: the state cookie must be set in the seller's browser.
func (c *Client) ConnectURL(id string, scopes []string) string {
	u := c.baseURL + accountPath(id, "connect")
	if len(scopes) > 0 {
		u += "?" + url.Values{"scopes": {strings.Join(scopes, ",")}}.Encode()
	}
	return u
}

// IssueToken returns a valid access token for the account.
func (c *Client) IssueToken(ctx context.Context, id string) (*Token, error) {
	var tok Token
	if err := c.do(ctx, "POST", accountPath(id, "token"), nil, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// InvalidateToken forces the next IssueToken to refresh.
func (c *Client) InvalidateToken(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", accountPath(id, "token"), nil, nil)
}

// AppToken returns the application token.
func (c *Client) AppToken(ctx context.Context) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, "GET", "/api/v1/app-token", nil, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// InvalidateAppToken empties the application token slot.
func (c *Client) InvalidateAppToken(ctx context.Context) error {
	return c.do(ctx, "DELETE", "/api/v1/app-token", nil, nil)
}

// Quota returns per-API quota usage.
func (c *Client) Quota(ctx context.Context) ([]Quota, error) {
	var resp struct {
		Quotas []Quota `json:"quotas"`
	}
	if err := c.do(ctx, "GET", "/api/v1/quota", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Quotas, nil
}
