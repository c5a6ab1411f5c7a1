package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

// seedAccount creates an account and moves it to status, holding the given
// tokens when any are supplied.
func seedAccount(
	t *testing.T,
	st *store.MemoryStore,
	status domain.AccountStatus,
	access, refresh string,
	expiresAt time.Time,
) *domain.Account {
	t.Helper()
	ctx := context.Background()

	a, err := st.CreatePlaceholderAccount(ctx, &domain.PlaceholderAccount{
		OwnerUserID:        "user-1",
		Label:              "Main Store",
		UserSelectedScopes: []string{"sell_inventory"},
	})
	require.NoError(t, err)
	if status == domain.StatusPending {
		return a
	}

	u := &store.AccountUpdate{Status: &status}
	if access != "" || refresh != "" {
		u.AccessToken = &access
		u.RefreshToken = &refresh
		u.ExpiresAt = &expiresAt
		u.GrantedScopes = []string{"api_scope", "sell_inventory"}
	}
	a, err = st.UpdateAccount(ctx, a.ID, u)
	require.NoError(t, err)
	return a
}
