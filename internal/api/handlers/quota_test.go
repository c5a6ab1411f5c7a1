package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-seller-connect/internal/api/handlers"
	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
)

func TestGetQuota(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		limiters   []*ebay.RateLimiter
		preCalls   int
		wantQuotas []handlers.APIQuota
	}{
		{
			name:       "no limiters returns empty list",
			wantQuotas: []handlers.APIQuota{},
		},
		{
			name:     "nil limiters are skipped",
			limiters: []*ebay.RateLimiter{nil, ebay.NewRateLimiter("inventory", 100, 10, 5000)},
			wantQuotas: []handlers.APIQuota{
				{API: "inventory", DailyLimit: 5000, Remaining: 5000},
			},
		},
		{
			name: "usage is reported per api",
			limiters: []*ebay.RateLimiter{
				ebay.NewRateLimiter("inventory", 100, 10, 100),
				ebay.NewRateLimiter("trading", 100, 10, 50),
			},
			preCalls: 3,
			wantQuotas: []handlers.APIQuota{
				{API: "inventory", DailyLimit: 100, DailyUsed: 3, Remaining: 97},
				{API: "trading", DailyLimit: 50, DailyUsed: 3, Remaining: 47},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, rl := range tt.limiters {
				if rl == nil {
					continue
				}
				for range tt.preCalls {
					require.NoError(t, rl.Wait(t.Context()))
				}
			}

			_, api := humatest.New(t)
			handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(tt.limiters...))

			resp := api.Get("/api/v1/quota")
			require.Equal(t, http.StatusOK, resp.Code)

			var body struct {
				Quotas []handlers.APIQuota `json:"quotas"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			require.Len(t, body.Quotas, len(tt.wantQuotas))
			for i, want := range tt.wantQuotas {
				got := body.Quotas[i]
				assert.Equal(t, want.API, got.API)
				assert.Equal(t, want.DailyLimit, got.DailyLimit)
				assert.Equal(t, want.DailyUsed, got.DailyUsed)
				assert.Equal(t, want.Remaining, got.Remaining)
			}
		})
	}
}

func TestGetQuota_ResetAtValue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	rl := ebay.NewRateLimiter(
		"inventory", 5, 10, 5000,
		ebay.WithRateLimiterNowFunc(func() time.Time { return now }),
	)

	_, api := humatest.New(t)
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(rl))

	resp := api.Get("/api/v1/quota")
	require.Equal(t, http.StatusOK, resp.Code)

	// ResetAt should be 24 hours from now.
	assert.Contains(t, resp.Body.String(), "2025-06-16T14:30:00Z")
}
