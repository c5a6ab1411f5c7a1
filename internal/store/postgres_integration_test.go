//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/ebay-seller-connect/internal/store"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("seller_connect_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_MigrateIdempotent(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx))

	pending, err := s.PendingMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPostgresStore_AccountLifecycle(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	a, err := s.CreatePlaceholderAccount(ctx, &domain.PlaceholderAccount{
		OwnerUserID:        "user-1",
		Label:              "Main",
		UserSelectedScopes: []string{"sell_inventory"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, a.Status)
	require.NotNil(t, a.ExternalAccountID)
	assert.True(t, domain.IsPlaceholderExternalID(*a.ExternalAccountID))
	assert.Empty(t, a.GrantedScopes)

	exp := time.Now().Add(2 * time.Hour).Truncate(time.Microsecond)
	updated, err := s.UpdateAccount(ctx, a.ID, &store.AccountUpdate{
		ExternalAccountID: ptr("ebay-user-1"),
		ExternalUsername:  ptr("best_seller"),
		AccessToken:       ptr("A1"),
		RefreshToken:      ptr("R1"),
		ExpiresAt:         &exp,
		GrantedScopes:     []string{"https://api.ebay.com/oauth/api_scope"},
		Status:            ptr(domain.StatusActive),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, updated.Status)
	assert.Equal(t, "best_seller", *updated.ExternalUsername)
	assert.Equal(t, []string{"sell_inventory"}, updated.UserSelectedScopes)
	assert.True(t, exp.Equal(updated.ExpiresAt))

	// A partial update leaves every other column untouched.
	partial, err := s.UpdateAccount(ctx, a.ID, &store.AccountUpdate{AccessToken: ptr("A2")})
	require.NoError(t, err)
	assert.Equal(t, "A2", partial.AccessToken)
	assert.Equal(t, "R1", partial.RefreshToken)
	assert.Equal(t, []string{"https://api.ebay.com/oauth/api_scope"}, partial.GrantedScopes)

	list, total, err := s.ListAccounts(ctx, &store.AccountQuery{OwnerUserID: ptr("user-1")})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	expiring, err := s.ListExpiringAccounts(ctx, exp.Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, expiring, 1)

	require.NoError(t, s.RecordAuthEvent(ctx, &domain.AuthEvent{
		AccountID: a.ID, Type: domain.EventAuthorized, Detail: "scopes=1",
	}))
	events, err := s.ListAuthEvents(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAuthorized, events[0].Type)

	require.NoError(t, s.DeleteAccount(ctx, a.ID))
	_, err = s.GetAccount(ctx, a.ID)
	require.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestPostgresStore_NotFound(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.GetAccount(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, store.ErrAccountNotFound)

	_, err = s.GetAccount(ctx, "not-a-uuid")
	require.ErrorIs(t, err, store.ErrAccountNotFound)

	_, err = s.UpdateAccount(ctx, "00000000-0000-0000-0000-000000000000", &store.AccountUpdate{Label: ptr("x")})
	require.ErrorIs(t, err, store.ErrAccountNotFound)

	err = s.RecordAuthEvent(ctx, &domain.AuthEvent{
		AccountID: "00000000-0000-0000-0000-000000000000", Type: domain.EventDeclined,
	})
	require.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestPostgresStore_ExternalAccountTaken(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	a, err := s.CreatePlaceholderAccount(ctx, &domain.PlaceholderAccount{OwnerUserID: "u"})
	require.NoError(t, err)
	b, err := s.CreatePlaceholderAccount(ctx, &domain.PlaceholderAccount{OwnerUserID: "u"})
	require.NoError(t, err)

	_, err = s.UpdateAccount(ctx, a.ID, &store.AccountUpdate{ExternalAccountID: ptr("ebay-1")})
	require.NoError(t, err)

	_, err = s.UpdateAccount(ctx, b.ID, &store.AccountUpdate{ExternalAccountID: ptr("ebay-1")})
	require.ErrorIs(t, err, store.ErrExternalAccountTaken)
}
