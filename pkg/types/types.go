// Package domain defines the core business types for connected eBay seller accounts.
package domain

import (
	"slices"
	"strings"
	"time"
)

// AccountStatus represents where an account sits in its token lifecycle.
type AccountStatus string

// Account status constants.
const (
	// StatusPending marks a placeholder that has never completed authorization.
	StatusPending AccountStatus = "pending"
	// StatusActive marks an account holding usable tokens.
	StatusActive AccountStatus = "active"
	// StatusInactive marks an account disabled by an operator.
	StatusInactive AccountStatus = "inactive"
	// StatusExpired marks an account whose refresh token lapsed.
	StatusExpired AccountStatus = "expired"
	// StatusRequiresReauth marks an account whose refresh failed irrecoverably.
	StatusRequiresReauth AccountStatus = "requires_reauth"
)

// Valid reports whether s is a known status.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusExpired, StatusRequiresReauth:
		return true
	default:
		return false
	}
}

// NeedsReauth reports whether the operator must run the OAuth flow again.
func (s AccountStatus) NeedsReauth() bool {
	return s == StatusExpired || s == StatusRequiresReauth
}

const placeholderPrefix = "pending:"

// PlaceholderExternalID returns the sentinel external id stored on a
// placeholder account until the provider assigns a real one.
func PlaceholderExternalID(accountID string) string {
	return placeholderPrefix + accountID
}

// IsPlaceholderExternalID reports whether id is a placeholder sentinel.
func IsPlaceholderExternalID(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}

// Account is a connected seller account and its OAuth token state.
type Account struct {
	ID                 string        `json:"id"                           db:"id"`
	OwnerUserID        string        `json:"owner_user_id"                db:"owner_user_id"`
	Label              string        `json:"label,omitempty"              db:"label"`
	ExternalAccountID  *string       `json:"external_account_id"          db:"external_account_id"`
	ExternalUsername   *string       `json:"external_username"            db:"external_username"`
	AccessToken        string        `json:"-"                            db:"access_token"`
	RefreshToken       string        `json:"-"                            db:"refresh_token"`
	ExpiresAt          time.Time     `json:"expires_at"                   db:"expires_at"`
	GrantedScopes      []string      `json:"granted_scopes"               db:"granted_scopes"`
	UserSelectedScopes []string      `json:"user_selected_scopes"         db:"user_selected_scopes"`
	Status             AccountStatus `json:"status"                       db:"status"`
	LastUsedAt         *time.Time    `json:"last_used_at,omitempty"       db:"last_used_at"`
	CreatedAt          time.Time     `json:"created_at"                   db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"                   db:"updated_at"`
}

// IsPlaceholder reports whether the account has never been authorized.
func (a *Account) IsPlaceholder() bool {
	return a.Status == StatusPending
}

// HasTokens reports whether the account holds at least one credential.
func (a *Account) HasTokens() bool {
	return a.AccessToken != "" || a.RefreshToken != ""
}

// FreshFor reports whether the access token stays valid for at least margin
// past now.
func (a *Account) FreshFor(now time.Time, margin time.Duration) bool {
	return a.AccessToken != "" && now.Add(margin).Before(a.ExpiresAt)
}

// Summary returns the secret-free view of the account.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:                 a.ID,
		OwnerUserID:        a.OwnerUserID,
		Label:              a.Label,
		ExternalAccountID:  a.ExternalAccountID,
		ExternalUsername:   a.ExternalUsername,
		ExpiresAt:          a.ExpiresAt,
		GrantedScopes:      slices.Clone(a.GrantedScopes),
		UserSelectedScopes: slices.Clone(a.UserSelectedScopes),
		Status:             a.Status,
		LastUsedAt:         a.LastUsedAt,
		HasRefreshToken:    a.RefreshToken != "",
	}
}

// AccountSummary is the externally visible projection of an Account. It never
// carries token material.
type AccountSummary struct {
	ID                 string        `json:"id"`
	OwnerUserID        string        `json:"owner_user_id"`
	Label              string        `json:"label,omitempty"`
	ExternalAccountID  *string       `json:"external_account_id"`
	ExternalUsername   *string       `json:"external_username"`
	ExpiresAt          time.Time     `json:"expires_at"`
	GrantedScopes      []string      `json:"granted_scopes"`
	UserSelectedScopes []string      `json:"user_selected_scopes"`
	Status             AccountStatus `json:"status"`
	LastUsedAt         *time.Time    `json:"last_used_at,omitempty"`
	HasRefreshToken    bool          `json:"has_refresh_token"`
}

// PlaceholderAccount holds the operator-supplied fields for a new account
// that has not been authorized yet.
type PlaceholderAccount struct {
	OwnerUserID        string
	Label              string
	UserSelectedScopes []string
}

// AuthEventType classifies an entry in an account's auth audit trail.
type AuthEventType string

// Auth event types.
const (
	EventAuthorized     AuthEventType = "authorized"
	EventDeclined       AuthEventType = "declined"
	EventRefreshed      AuthEventType = "refreshed"
	EventRefreshFailed  AuthEventType = "refresh_failed"
	EventReauthRequired AuthEventType = "reauth_required"
)

// AuthEvent records one OAuth lifecycle event for an account.
type AuthEvent struct {
	ID        string        `json:"id"                db:"id"`
	AccountID string        `json:"account_id"        db:"account_id"`
	Type      AuthEventType `json:"type"              db:"event_type"`
	Detail    string        `json:"detail,omitempty"  db:"detail"`
	CreatedAt time.Time     `json:"created_at"        db:"created_at"`
}

// ValidToken is an access token guaranteed usable at the time it was issued.
type ValidToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ParseScopes splits a provider scope string on whitespace.
func ParseScopes(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
