// Package store defines the datastore abstraction for connected seller
// accounts. Token lifecycle logic depends on the Store interface, never on
// concrete implementations, so it can be tested with mocks or the in-memory
// store without a running database.
package store

import (
	"context"
	"errors"
	"slices"
	"time"

	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

var (
	// ErrAccountNotFound is returned when no account has the requested id.
	ErrAccountNotFound = errors.New("account not found")
	// ErrExternalAccountTaken is returned when an update would bind an eBay
	// user id that another account already holds.
	ErrExternalAccountTaken = errors.New("external account already connected to another account")
)

// AccountUpdate is a partial update applied atomically to one account row.
// Nil pointers and nil slices leave the column untouched; a non-nil empty
// slice clears it.
type AccountUpdate struct {
	Label              *string
	ExternalAccountID  *string
	ExternalUsername   *string
	AccessToken        *string
	RefreshToken       *string
	ExpiresAt          *time.Time
	GrantedScopes      []string
	UserSelectedScopes []string
	Status             *domain.AccountStatus
	LastUsedAt         *time.Time
}

// Apply copies the set fields of u onto a. It is the reference semantics
// shared by every Store implementation.
func (u *AccountUpdate) Apply(a *domain.Account) {
	if u.Label != nil {
		a.Label = *u.Label
	}
	if u.ExternalAccountID != nil {
		a.ExternalAccountID = new(string)
		*a.ExternalAccountID = *u.ExternalAccountID
	}
	if u.ExternalUsername != nil {
		a.ExternalUsername = new(string)
		*a.ExternalUsername = *u.ExternalUsername
	}
	if u.AccessToken != nil {
		a.AccessToken = *u.AccessToken
	}
	if u.RefreshToken != nil {
		a.RefreshToken = *u.RefreshToken
	}
	if u.ExpiresAt != nil {
		a.ExpiresAt = *u.ExpiresAt
	}
	if u.GrantedScopes != nil {
		a.GrantedScopes = slices.Clone(u.GrantedScopes)
	}
	if u.UserSelectedScopes != nil {
		a.UserSelectedScopes = slices.Clone(u.UserSelectedScopes)
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.LastUsedAt != nil {
		t := *u.LastUsedAt
		a.LastUsedAt = &t
	}
}

// Store defines all data access operations for ebay-seller-connect.
type Store interface {
	// Accounts
	CreatePlaceholderAccount(ctx context.Context, p *domain.PlaceholderAccount) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, q *AccountQuery) ([]domain.Account, int, error)
	UpdateAccount(ctx context.Context, id string, u *AccountUpdate) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	ListExpiringAccounts(ctx context.Context, before time.Time, limit int) ([]domain.Account, error)

	// Auth events
	RecordAuthEvent(ctx context.Context, e *domain.AuthEvent) error
	ListAuthEvents(ctx context.Context, accountID string, limit int) ([]domain.AuthEvent, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
