// Package ebay wraps the eBay OAuth, Identity, Inventory and Trading APIs
// behind small interfaces, and normalizes every upstream failure into *Error.
package ebay

import (
	"context"
	"encoding/json"
)

// TokenProvider yields the application token.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Identity is the seller identity reported by the Commerce Identity API.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// ResourceAPI is the set of seller-scoped resource calls proxied on behalf of
// connected accounts.
type ResourceAPI interface {
	Identity(ctx context.Context, accessToken string) (*Identity, error)
	ListInventoryItems(ctx context.Context, accessToken string, limit, offset int) (json.RawMessage, error)
	GetInventoryItem(ctx context.Context, accessToken, sku string) (json.RawMessage, error)
	Trading(ctx context.Context, accessToken, callName string, body []byte) ([]byte, error)
}
