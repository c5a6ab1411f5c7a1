// Package notify defines the notification interface and implementations
// for telling operators that a seller account needs to be reconnected.
package notify

import (
	"context"
	"time"
)

// ReauthPayload contains the data needed to announce that an account moved
// to requires_reauth.
type ReauthPayload struct {
	AccountID        string
	Label            string
	OwnerUserID      string
	ExternalUsername string
	// Reason is the stable user-facing message of the classified failure.
	Reason string
	// UpstreamCode is the eBay error id, 0 when none was reported.
	UpstreamCode int
	// ConnectURL starts a new authorization for the account, when known.
	ConnectURL string
	OccurredAt time.Time
}

// Notifier defines the interface for sending reauthorization notices.
type Notifier interface {
	SendReauthRequired(ctx context.Context, p *ReauthPayload) error
}
