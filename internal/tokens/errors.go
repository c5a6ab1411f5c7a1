package tokens

import (
	"errors"
	"fmt"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

var (
	// ErrAccountPending is returned for placeholder accounts that never
	// completed authorization. They hold no tokens and cannot be proxied.
	ErrAccountPending = errors.New("account has not completed authorization")
	// ErrAccountInactive is returned for accounts disabled by an operator.
	ErrAccountInactive = errors.New("account is disabled")
)

// ReauthRequiredError reports that the account can no longer obtain tokens
// without the operator running the OAuth flow again. It is never retryable.
type ReauthRequiredError struct {
	AccountID string
	Status    domain.AccountStatus
	// Cause is the classified refresh failure that caused the transition; nil
	// when the account was already demoted before the call.
	Cause *ebay.Error
}

func (e *ReauthRequiredError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("account %s requires reauthorization (status %s)", e.AccountID, e.Status)
	}
	return fmt.Sprintf("account %s requires reauthorization: %v", e.AccountID, e.Cause)
}

func (e *ReauthRequiredError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Retryable always reports false.
func (*ReauthRequiredError) Retryable() bool { return false }

// RefreshError reports a refresh that failed for a reason other than a
// rejected credential. The account is left untouched so the whole operation
// can be attempted again later.
type RefreshError struct {
	AccountID string
	Cause     *ebay.Error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refreshing token for account %s: %v", e.AccountID, e.Cause)
}

func (e *RefreshError) Unwrap() error { return e.Cause }

// Retryable always reports true.
func (*RefreshError) Retryable() bool { return true }

// IsReauthRequired reports whether err is, or wraps, a ReauthRequiredError.
func IsReauthRequired(err error) bool {
	var re *ReauthRequiredError
	return errors.As(err, &re)
}
