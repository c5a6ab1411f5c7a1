package ebay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
)

func TestScopeRegistry_Resolve(t *testing.T) {
	t.Parallel()

	reg := ebay.NewScopeRegistry(ebay.DefaultScopes)

	tests := []struct {
		name    string
		ids     []string
		want    []string
		wantErr bool
	}{
		{
			name: "empty selection yields baseline only",
			want: []string{"https://api.ebay.com/oauth/api_scope"},
		},
		{
			name: "baseline first then selection order",
			ids:  []string{"sell_inventory", "sell_account_readonly"},
			want: []string{
				"https://api.ebay.com/oauth/api_scope",
				"https://api.ebay.com/oauth/api_scope/sell.inventory",
				"https://api.ebay.com/oauth/api_scope/sell.account.readonly",
			},
		},
		{
			name: "duplicates and explicit baseline collapse",
			ids:  []string{"api_scope", "sell_inventory", "sell_inventory"},
			want: []string{
				"https://api.ebay.com/oauth/api_scope",
				"https://api.ebay.com/oauth/api_scope/sell.inventory",
			},
		},
		{
			name:    "unknown id",
			ids:     []string{"sell_everything"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := reg.Resolve(tt.ids)
			if tt.wantErr {
				require.ErrorIs(t, err, ebay.ErrUnknownScope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScopeRegistry_List(t *testing.T) {
	t.Parallel()

	list := ebay.NewScopeRegistry(ebay.DefaultScopes).List()
	require.Len(t, list, len(ebay.DefaultScopes))
	assert.Equal(t, ebay.BaselineScopeID, list[0].ID)
	assert.True(t, list[0].Mandatory)

	for i := 2; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}
