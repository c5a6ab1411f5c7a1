package oauthflow

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

const (
	stateSuffixBytes = 16
	stateSeparator   = "_"

	// StateMaxAge is the lifetime of the state cookie in seconds.
	StateMaxAge = 600

	defaultCookieName = "ebay_oauth_state"
	defaultCookiePath = "/oauth"
)

// newState returns "{accountID}_{suffix}" with 128 random bits of suffix.
func newState(accountID string) (string, error) {
	b := make([]byte, stateSuffixBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return accountID + stateSeparator + hex.EncodeToString(b), nil
}

// parseState returns the account id bound to state. Account ids never
// contain the separator, so the last one splits id from suffix.
func parseState(state string) (string, bool) {
	i := strings.LastIndex(state, stateSeparator)
	if i <= 0 {
		return "", false
	}
	suffix := state[i+1:]
	if len(suffix) != 2*stateSuffixBytes {
		return "", false
	}
	if _, err := hex.DecodeString(suffix); err != nil {
		return "", false
	}
	return state[:i], true
}

// verifyState checks the callback state against the cookie and returns the
// account id it is bound to.
func verifyState(state, cookieValue string) (string, error) {
	if state == "" {
		return "", ErrMissingState
	}
	if cookieValue == "" {
		return "", fmt.Errorf("%w: no state cookie", ErrInvalidState)
	}
	if subtle.ConstantTimeCompare([]byte(state), []byte(cookieValue)) != 1 {
		return "", fmt.Errorf("%w: state does not match cookie", ErrInvalidState)
	}
	id, ok := parseState(state)
	if !ok {
		return "", fmt.Errorf("%w: malformed state", ErrInvalidState)
	}
	return id, nil
}

// CookieConfig controls the state cookie.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
}

func (c CookieConfig) withDefaults() CookieConfig {
	if c.Name == "" {
		c.Name = defaultCookieName
	}
	if c.Path == "" {
		c.Path = defaultCookiePath
	}
	return c
}

func (c CookieConfig) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     c.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
