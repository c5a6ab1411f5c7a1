package oauthflow

import (
	"errors"
	"fmt"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
)

var (
	// ErrInvalidState is returned when the state cookie is absent or does not
	// match the state echoed by the provider.
	ErrInvalidState = errors.New("invalid oauth state")
	// ErrMissingState is returned when the provider callback carries no state
	// parameter at all.
	ErrMissingState = errors.New("oauth callback missing state")
	// ErrMissingCode is returned when a successful callback carries no code.
	ErrMissingCode = errors.New("oauth callback missing authorization code")
)

// TokenExchangeError reports that the authorization code could not be
// exchanged for tokens. The code is single-use, so it is never retryable.
type TokenExchangeError struct {
	AccountID string
	Cause     *ebay.Error
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange for account %s failed: %v", e.AccountID, e.Cause)
}

func (e *TokenExchangeError) Unwrap() error { return e.Cause }

// Retryable always reports false.
func (*TokenExchangeError) Retryable() bool { return false }
