package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func TestAccountQuery_ToSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		query         AccountQuery
		wantCountSQL  string
		wantArgs      []any
		wantDataHas   []string
		wantDataNotIn []string
	}{
		{
			name:  "empty query uses defaults",
			query: AccountQuery{},
			wantDataHas: []string{
				"FROM seller_accounts",
				"ORDER BY created_at DESC",
				"LIMIT 50",
				"OFFSET 0",
			},
			wantDataNotIn: []string{"WHERE"},
			wantCountSQL:  "SELECT COUNT(*) FROM seller_accounts",
		},
		{
			name:         "owner filter",
			query:        AccountQuery{OwnerUserID: ptr("user-1")},
			wantDataHas:  []string{"WHERE owner_user_id = $1"},
			wantCountSQL: "SELECT COUNT(*) FROM seller_accounts WHERE owner_user_id = $1",
			wantArgs:     []any{"user-1"},
		},
		{
			name: "status filter",
			query: AccountQuery{
				Statuses: []domain.AccountStatus{domain.StatusActive, domain.StatusRequiresReauth},
			},
			wantDataHas:  []string{"WHERE status IN ($1, $2)"},
			wantCountSQL: "SELECT COUNT(*) FROM seller_accounts WHERE status IN ($1, $2)",
			wantArgs:     []any{"active", "requires_reauth"},
		},
		{
			name: "all filters combined",
			query: AccountQuery{
				OwnerUserID: ptr("user-1"),
				Statuses:    []domain.AccountStatus{domain.StatusActive},
				Label:       ptr("main"),
			},
			wantDataHas: []string{
				"owner_user_id = $1 AND status IN ($2) AND label ILIKE '%' || $3 || '%'",
			},
			wantCountSQL: "SELECT COUNT(*) FROM seller_accounts WHERE owner_user_id = $1 AND status IN ($2) AND label ILIKE '%' || $3 || '%'",
			wantArgs:     []any{"user-1", "active", "main"},
		},
		{
			name:         "order by expiry",
			query:        AccountQuery{OrderBy: "expires_at"},
			wantDataHas:  []string{"ORDER BY expires_at ASC"},
			wantCountSQL: "SELECT COUNT(*) FROM seller_accounts",
		},
		{
			name:         "invalid order by falls back to default",
			query:        AccountQuery{OrderBy: "access_token; DROP TABLE seller_accounts"},
			wantDataHas:  []string{"ORDER BY created_at DESC"},
			wantCountSQL: "SELECT COUNT(*) FROM seller_accounts",
		},
		{
			name:         "limit clamped to max",
			query:        AccountQuery{Limit: 10000, Offset: -5},
			wantDataHas:  []string{"LIMIT 500", "OFFSET 0"},
			wantCountSQL: "SELECT COUNT(*) FROM seller_accounts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dataSQL, countSQL, args := tt.query.ToSQL()

			for _, s := range tt.wantDataHas {
				assert.Contains(t, dataSQL, s)
			}
			for _, s := range tt.wantDataNotIn {
				assert.NotContains(t, dataSQL, s)
			}
			assert.Equal(t, tt.wantCountSQL, countSQL)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestAccountQuery_Matches(t *testing.T) {
	t.Parallel()

	a := &domain.Account{
		OwnerUserID: "user-1",
		Label:       "Main Store",
		Status:      domain.StatusActive,
		CreatedAt:   time.Now(),
	}

	tests := []struct {
		name  string
		query AccountQuery
		want  bool
	}{
		{name: "empty matches", query: AccountQuery{}, want: true},
		{name: "owner match", query: AccountQuery{OwnerUserID: ptr("user-1")}, want: true},
		{name: "owner mismatch", query: AccountQuery{OwnerUserID: ptr("user-2")}, want: false},
		{
			name:  "status mismatch",
			query: AccountQuery{Statuses: []domain.AccountStatus{domain.StatusPending}},
			want:  false,
		},
		{name: "label case insensitive", query: AccountQuery{Label: ptr("main")}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.query.Matches(a))
		})
	}
}

func TestAccountUpdate_Apply(t *testing.T) {
	t.Parallel()

	a := &domain.Account{
		AccessToken:        "A1",
		RefreshToken:       "R1",
		GrantedScopes:      []string{"x"},
		UserSelectedScopes: []string{"sell_inventory"},
		Status:             domain.StatusActive,
	}

	exp := time.Now().Add(time.Hour)
	(&AccountUpdate{
		AccessToken:   ptr("A2"),
		ExpiresAt:     &exp,
		GrantedScopes: []string{},
	}).Apply(a)

	assert.Equal(t, "A2", a.AccessToken)
	assert.Equal(t, "R1", a.RefreshToken)
	assert.Equal(t, exp, a.ExpiresAt)
	assert.Empty(t, a.GrantedScopes)
	assert.Equal(t, []string{"sell_inventory"}, a.UserSelectedScopes)
	assert.Equal(t, domain.StatusActive, a.Status)
}
