package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

// AccountsHandler handles seller account administration.
type AccountsHandler struct {
	store  store.Store
	scopes *ebay.ScopeRegistry
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(s store.Store, scopes *ebay.ScopeRegistry) *AccountsHandler {
	return &AccountsHandler{store: s, scopes: scopes}
}

// --- Input/Output types ---

// AccountIDInput identifies one account by path.
type AccountIDInput struct {
	ID string `path:"id" doc:"Account ID"`
}

// CreateAccountInput is the body for creating a placeholder account.
type CreateAccountInput struct {
	Body struct {
		OwnerUserID        string   `json:"owner_user_id"                  doc:"Operator-side owner of the account" minLength:"1"`
		Label              string   `json:"label,omitempty"                doc:"Display label"`
		UserSelectedScopes []string `json:"user_selected_scopes,omitempty" doc:"Scope ids to request when connecting"`
	}
}

// AccountOutput wraps a single account summary.
type AccountOutput struct {
	Body domain.AccountSummary
}

// ListAccountsInput filters the account listing.
type ListAccountsInput struct {
	Owner   string   `query:"owner"    doc:"Filter by owner user id"`
	Status  []string `query:"status"   doc:"Filter by status" enum:"pending,active,inactive,expired,requires_reauth"`
	Label   string   `query:"label"    doc:"Case-insensitive label substring"`
	Limit   int      `query:"limit"    doc:"Number of results (default 50)" minimum:"0" maximum:"500"`
	Offset  int      `query:"offset"   doc:"Pagination offset"              minimum:"0"`
	OrderBy string   `query:"order_by" doc:"Sort field"                     enum:"created_at,expires_at,label,"`
}

// ListAccountsOutput is the response for listing accounts.
type ListAccountsOutput struct {
	Body struct {
		Accounts []domain.AccountSummary `json:"accounts"`
		Total    int                     `json:"total"`
		Limit    int                     `json:"limit"`
		Offset   int                     `json:"offset"`
	}
}

// SetScopesInput replaces the operator-selected scopes.
type SetScopesInput struct {
	ID   string `path:"id" doc:"Account ID"`
	Body struct {
		Scopes []string `json:"scopes" doc:"Scope ids; an empty list clears the selection"`
	}
}

// SetEnabledInput toggles an account between active and inactive.
type SetEnabledInput struct {
	ID   string `path:"id" doc:"Account ID"`
	Body struct {
		Enabled bool `json:"enabled"`
	}
}

// ListEventsInput selects an account's auth events.
type ListEventsInput struct {
	ID    string `path:"id"    doc:"Account ID"`
	Limit int    `query:"limit" doc:"Number of events (default 50)" minimum:"0" maximum:"500"`
}

// ListEventsOutput is the auth audit trail of an account, newest first.
type ListEventsOutput struct {
	Body struct {
		Events []domain.AuthEvent `json:"events"`
	}
}

// ListScopesOutput is the scope registry listing.
type ListScopesOutput struct {
	Body struct {
		Scopes []ebay.Scope `json:"scopes"`
	}
}

// --- Handlers ---

// Create registers a placeholder account. The account stays pending until the
// OAuth flow completes.
func (h *AccountsHandler) Create(ctx context.Context, input *CreateAccountInput) (*AccountOutput, error) {
	if err := h.scopes.Validate(input.Body.UserSelectedScopes); err != nil {
		return nil, toAPIError(err)
	}

	a, err := h.store.CreatePlaceholderAccount(ctx, &domain.PlaceholderAccount{
		OwnerUserID:        input.Body.OwnerUserID,
		Label:              input.Body.Label,
		UserSelectedScopes: input.Body.UserSelectedScopes,
	})
	if err != nil {
		return nil, toAPIError(err)
	}
	return &AccountOutput{Body: a.Summary()}, nil
}

// List returns account summaries. Token material is never included.
func (h *AccountsHandler) List(ctx context.Context, input *ListAccountsInput) (*ListAccountsOutput, error) {
	q := &store.AccountQuery{
		Limit:   input.Limit,
		Offset:  input.Offset,
		OrderBy: input.OrderBy,
	}
	if input.Owner != "" {
		q.OwnerUserID = &input.Owner
	}
	if input.Label != "" {
		q.Label = &input.Label
	}
	for _, s := range input.Status {
		q.Statuses = append(q.Statuses, domain.AccountStatus(s))
	}

	accounts, total, err := h.store.ListAccounts(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing accounts failed: " + err.Error())
	}

	resp := &ListAccountsOutput{}
	resp.Body.Accounts = make([]domain.AccountSummary, 0, len(accounts))
	for i := range accounts {
		resp.Body.Accounts = append(resp.Body.Accounts, accounts[i].Summary())
	}
	resp.Body.Total = total
	resp.Body.Limit = q.EffectiveLimit()
	resp.Body.Offset = q.Offset
	return resp, nil
}

// Get returns one account summary.
func (h *AccountsHandler) Get(ctx context.Context, input *AccountIDInput) (*AccountOutput, error) {
	a, err := h.store.GetAccount(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &AccountOutput{Body: a.Summary()}, nil
}

// SetScopes replaces the scopes requested on the next connect. Granted scopes
// only change when eBay issues new tokens.
func (h *AccountsHandler) SetScopes(ctx context.Context, input *SetScopesInput) (*AccountOutput, error) {
	if err := h.scopes.Validate(input.Body.Scopes); err != nil {
		return nil, toAPIError(err)
	}
	scopes := input.Body.Scopes
	if scopes == nil {
		scopes = []string{}
	}

	a, err := h.store.UpdateAccount(ctx, input.ID, &store.AccountUpdate{UserSelectedScopes: scopes})
	if err != nil {
		return nil, toAPIError(err)
	}
	return &AccountOutput{Body: a.Summary()}, nil
}

// SetEnabled moves an account between active and inactive. Accounts that never
// connected or that need reauthorization cannot be toggled.
func (h *AccountsHandler) SetEnabled(ctx context.Context, input *SetEnabledInput) (*AccountOutput, error) {
	a, err := h.store.GetAccount(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}

	target := domain.StatusInactive
	if input.Body.Enabled {
		target = domain.StatusActive
	}
	if a.Status == target {
		return &AccountOutput{Body: a.Summary()}, nil
	}

	switch {
	case a.Status == domain.StatusPending || !a.HasTokens():
		return nil, newAPIError(http.StatusConflict, "account has not completed authorization")
	case a.Status.NeedsReauth():
		return nil, newAPIError(http.StatusConflict, "account requires reauthorization; connect it again")
	}

	a, err = h.store.UpdateAccount(ctx, input.ID, &store.AccountUpdate{Status: &target})
	if err != nil {
		return nil, toAPIError(err)
	}
	return &AccountOutput{Body: a.Summary()}, nil
}

// Delete removes an account and its auth events.
func (h *AccountsHandler) Delete(ctx context.Context, input *AccountIDInput) (*struct{}, error) {
	if err := h.store.DeleteAccount(ctx, input.ID); err != nil {
		return nil, toAPIError(err)
	}
	return nil, nil
}

// ListEvents returns the account's auth audit trail.
func (h *AccountsHandler) ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	if _, err := h.store.GetAccount(ctx, input.ID); err != nil {
		return nil, toAPIError(err)
	}

	events, err := h.store.ListAuthEvents(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing auth events failed: " + err.Error())
	}

	resp := &ListEventsOutput{}
	resp.Body.Events = events
	if resp.Body.Events == nil {
		resp.Body.Events = []domain.AuthEvent{}
	}
	return resp, nil
}

// ListScopes returns the scope registry.
func (h *AccountsHandler) ListScopes(_ context.Context, _ *struct{}) (*ListScopesOutput, error) {
	resp := &ListScopesOutput{}
	resp.Body.Scopes = h.scopes.List()
	return resp, nil
}

// RegisterAccountRoutes registers account endpoints with the Huma API.
func RegisterAccountRoutes(api huma.API, h *AccountsHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-account",
		Method:        http.MethodPost,
		Path:          "/api/v1/accounts",
		Summary:       "Create a placeholder account",
		Description:   "Registers a seller account that stays pending until it is connected through eBay.",
		Tags:          []string{"accounts"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusUnprocessableEntity},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts",
		Summary:     "List accounts",
		Tags:        []string{"accounts"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts/{id}",
		Summary:     "Get an account",
		Tags:        []string{"accounts"},
		Errors:      []int{http.StatusNotFound},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "set-account-scopes",
		Method:      http.MethodPut,
		Path:        "/api/v1/accounts/{id}/scopes",
		Summary:     "Replace the scopes requested on connect",
		Tags:        []string{"accounts"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.SetScopes)

	huma.Register(api, huma.Operation{
		OperationID: "set-account-enabled",
		Method:      http.MethodPut,
		Path:        "/api/v1/accounts/{id}/enabled",
		Summary:     "Enable or disable an account",
		Tags:        []string{"accounts"},
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, h.SetEnabled)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-account",
		Method:        http.MethodDelete,
		Path:          "/api/v1/accounts/{id}",
		Summary:       "Delete an account",
		Tags:          []string{"accounts"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "list-account-events",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts/{id}/events",
		Summary:     "List auth events",
		Description: "Returns the account's authorization audit trail, newest first.",
		Tags:        []string{"accounts"},
		Errors:      []int{http.StatusNotFound},
	}, h.ListEvents)

	huma.Register(api, huma.Operation{
		OperationID: "list-scopes",
		Method:      http.MethodGet,
		Path:        "/api/v1/scopes",
		Summary:     "List known OAuth scopes",
		Tags:        []string{"accounts"},
	}, h.ListScopes)
}
