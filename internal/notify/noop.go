package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded notices. It is used
// when Discord (or another notification backend) is not configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards notices with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendReauthRequired logs and discards a notice.
func (n *NoOpNotifier) SendReauthRequired(_ context.Context, p *ReauthPayload) error {
	n.log.Debug("notification discarded (no backend configured)",
		"account_id", p.AccountID,
		"label", p.Label,
		"reason", p.Reason,
	)
	return nil
}
