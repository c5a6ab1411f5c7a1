package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
)

// QuotaHandler reports eBay API call quotas, one entry per API family.
type QuotaHandler struct {
	limiters []*ebay.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler. Nil limiters are ignored.
func NewQuotaHandler(limiters ...*ebay.RateLimiter) *QuotaHandler {
	h := &QuotaHandler{}
	for _, rl := range limiters {
		if rl != nil {
			h.limiters = append(h.limiters, rl)
		}
	}
	return h
}

// APIQuota is the quota status of one API family.
type APIQuota struct {
	API        string    `json:"api"         example:"inventory"            doc:"API family the limit applies to"`
	DailyLimit int64     `json:"daily_limit" example:"5000"                 doc:"Configured daily API call limit"`
	DailyUsed  int64     `json:"daily_used"  example:"142"                  doc:"API calls used in the current 24-hour window"`
	Remaining  int64     `json:"remaining"   example:"4858"                 doc:"API calls remaining in the current window"`
	ResetAt    time.Time `json:"reset_at"    example:"2025-06-16T14:30:00Z" doc:"When the current 24-hour window expires"`
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		Quotas []APIQuota `json:"quotas"`
	}
}

// GetQuota returns the current eBay API quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	resp.Body.Quotas = make([]APIQuota, 0, len(h.limiters))
	for _, rl := range h.limiters {
		q := rl.Snapshot()
		resp.Body.Quotas = append(resp.Body.Quotas, APIQuota{
			API:        q.API,
			DailyLimit: q.DailyLimit,
			DailyUsed:  q.DailyUsed,
			Remaining:  q.Remaining,
			ResetAt:    q.ResetAt,
		})
	}
	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get eBay API quota status",
		Description: "Returns daily call usage, remaining quota and window reset time for each proxied eBay API.",
		Tags:        []string{"ebay"},
	}, h.GetQuota)
}
