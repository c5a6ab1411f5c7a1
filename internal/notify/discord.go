package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/donaldgifford/ebay-seller-connect/internal/metrics"
)

const colorRed = 0xE74C3C

// DiscordNotifier posts reauthorization notices to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *resty.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     resty.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sends webhooks through c.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = resty.NewWithClient(c)
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendReauthRequired sends one notice as a Discord embed.
func (d *DiscordNotifier) SendReauthRequired(ctx context.Context, p *ReauthPayload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	payload := discordWebhookPayload{Embeds: []discordEmbed{buildEmbed(p)}}
	if err := d.post(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return err
	}
	metrics.NotificationsSentTotal.Inc()
	return nil
}

func buildEmbed(p *ReauthPayload) discordEmbed {
	name := p.Label
	if name == "" {
		name = p.AccountID
	}

	fields := []discordEmbedField{
		{Name: "Account", Value: p.AccountID, Inline: true},
		{Name: "Owner", Value: orDash(p.OwnerUserID), Inline: true},
		{Name: "eBay User", Value: orDash(p.ExternalUsername), Inline: true},
	}
	if p.UpstreamCode != 0 {
		fields = append(fields, discordEmbedField{
			Name: "eBay Error", Value: strconv.Itoa(p.UpstreamCode), Inline: true,
		})
	}

	embed := discordEmbed{
		Title:       fmt.Sprintf("Reconnect required: %s", name),
		URL:         p.ConnectURL,
		Color:       colorRed,
		Description: p.Reason,
		Fields:      fields,
	}
	if !p.OccurredAt.IsZero() {
		embed.Timestamp = p.OccurredAt.UTC().Format(time.RFC3339)
	}
	return embed
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// WebhookError is a non-2xx reply from the webhook. RetryAfter is set when
// Discord rate limited the request.
type WebhookError struct {
	StatusCode int
	RetryAfter string
	Body       string
}

func (e *WebhookError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return fmt.Sprintf("discord rate limited (retry after %ss)", orDash(e.RetryAfter))
	}
	return fmt.Sprintf("discord returned %d: %s", e.StatusCode, e.Body)
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(d.webhookURL)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &WebhookError{
			StatusCode: resp.StatusCode(),
			RetryAfter: resp.Header().Get("Retry-After"),
			Body:       strings.TrimSpace(resp.String()),
		}
	}
	return nil
}
