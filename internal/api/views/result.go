// Package views renders the HTML pages shown to a seller's browser at the end
// of the OAuth flow. Pages are written in templ; run `templ generate` after
// editing a .templ file.
package views

// Outcome is how an authorization attempt ended.
type Outcome string

// Authorization outcomes.
const (
	OutcomeConnected Outcome = "connected"
	OutcomeDeclined  Outcome = "declined"
	OutcomeFailed    Outcome = "failed"
)

// Result is the content of the callback result page.
type Result struct {
	Outcome Outcome
	// Label and Username identify the account when known.
	Label    string
	Username string
	// Message is a stable, user-facing explanation. Upstream text never
	// reaches the page.
	Message   string
	Retryable bool
}

func (r Result) title() string {
	switch r.Outcome {
	case OutcomeConnected:
		return "eBay account connected"
	case OutcomeDeclined:
		return "Authorization declined"
	default:
		return "Connection failed"
	}
}

func accountName(r Result) string {
	switch {
	case r.Label != "" && r.Username != "":
		return r.Label + " (" + r.Username + ")"
	case r.Label != "":
		return r.Label
	default:
		return r.Username
	}
}
