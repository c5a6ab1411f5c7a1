// Package handlers implements the HTTP surface of the seller-connect server:
// huma operations under /api/v1 and plain echo handlers for probes and the
// OAuth callback page.
package handlers

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
