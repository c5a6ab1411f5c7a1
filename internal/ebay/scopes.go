package ebay

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

const scopeBase = "https://api.ebay.com/oauth/api_scope"

// BaselineScopeID is always requested, whatever the operator selected.
const BaselineScopeID = "api_scope"

// ErrUnknownScope is returned when a scope id is not in the registry.
var ErrUnknownScope = errors.New("unknown scope id")

// Scope is one entry of the scope registry.
type Scope struct {
	ID          string `json:"id"          example:"sell_inventory"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Mandatory   bool   `json:"mandatory"`
}

// ScopeRegistry maps short scope ids to provider scope URLs.
type ScopeRegistry struct {
	byID      map[string]Scope
	mandatory []string
}

// DefaultScopes is the static scope table for eBay seller accounts. Sandbox
// and production share the same scope URLs.
var DefaultScopes = []Scope{
	{ID: BaselineScopeID, URL: scopeBase, Description: "View public data from eBay", Mandatory: true},
	{ID: "sell_inventory", URL: scopeBase + "/sell.inventory", Description: "View and manage your inventory and offers"},
	{ID: "sell_inventory_readonly", URL: scopeBase + "/sell.inventory.readonly", Description: "View your inventory and offers"},
	{ID: "sell_account", URL: scopeBase + "/sell.account", Description: "View and manage your account settings"},
	{ID: "sell_account_readonly", URL: scopeBase + "/sell.account.readonly", Description: "View your account settings"},
	{ID: "sell_fulfillment", URL: scopeBase + "/sell.fulfillment", Description: "View and manage your order fulfillments"},
	{ID: "sell_fulfillment_readonly", URL: scopeBase + "/sell.fulfillment.readonly", Description: "View your order fulfillments"},
	{ID: "sell_marketing", URL: scopeBase + "/sell.marketing", Description: "View and manage your eBay marketing activities"},
	{ID: "sell_marketing_readonly", URL: scopeBase + "/sell.marketing.readonly", Description: "View your eBay marketing activities"},
	{ID: "sell_analytics_readonly", URL: scopeBase + "/sell.analytics.readonly", Description: "View your selling analytics data"},
	{ID: "sell_finances", URL: scopeBase + "/sell.finances", Description: "View and manage your payment and order information"},
	{ID: "commerce_identity_readonly", URL: scopeBase + "/commerce.identity.readonly", Description: "View a user's basic information"},
}

// NewScopeRegistry builds a registry from scopes. Entries flagged Mandatory are
// included in every resolution.
func NewScopeRegistry(scopes []Scope) *ScopeRegistry {
	r := &ScopeRegistry{byID: make(map[string]Scope, len(scopes))}
	for _, s := range scopes {
		r.byID[s.ID] = s
		if s.Mandatory {
			r.mandatory = append(r.mandatory, s.ID)
		}
	}
	return r
}

// Validate returns ErrUnknownScope for the first id not in the registry.
func (r *ScopeRegistry) Validate(ids []string) error {
	for _, id := range ids {
		if _, ok := r.byID[id]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownScope, id)
		}
	}
	return nil
}

// Resolve returns the provider scope URLs for ids, mandatory scopes first,
// without duplicates.
func (r *ScopeRegistry) Resolve(ids []string) ([]string, error) {
	if err := r.Validate(ids); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(r.mandatory)+len(ids))
	for _, id := range r.mandatory {
		urls = append(urls, r.byID[id].URL)
	}
	for _, id := range ids {
		u := r.byID[id].URL
		if !slices.Contains(urls, u) {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// List returns all registry entries sorted by id, mandatory first.
func (r *ScopeRegistry) List() []Scope {
	out := make([]Scope, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mandatory != out[j].Mandatory {
			return out[i].Mandatory
		}
		return out[i].ID < out[j].ID
	})
	return out
}
