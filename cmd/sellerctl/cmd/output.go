package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	apiclient "github.com/donaldgifford/ebay-seller-connect/internal/api/client"
	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printAccountTable(accounts []domain.AccountSummary) error {
	tw := newTabWriter(stdout)
	tw.writef("ID\tLABEL\tOWNER\tEBAY USER\tSTATUS\tEXPIRES\n")
	for i := range accounts {
		a := &accounts[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID,
			truncate(a.Label, 30),
			a.OwnerUserID,
			deref(a.ExternalUsername),
			a.Status,
			formatTime(a.ExpiresAt),
		)
	}
	return tw.finish()
}

func printAccountDetail(a *domain.AccountSummary) error {
	tw := newTabWriter(stdout)
	tw.writef("ID:\t%s\n", a.ID)
	tw.writef("Label:\t%s\n", a.Label)
	tw.writef("Owner:\t%s\n", a.OwnerUserID)
	tw.writef("Status:\t%s\n", a.Status)
	tw.writef("eBay User:\t%s\n", deref(a.ExternalUsername))
	tw.writef("eBay ID:\t%s\n", deref(a.ExternalAccountID))
	tw.writef("Expires:\t%s\n", formatTime(a.ExpiresAt))
	tw.writef("Refresh Token:\t%v\n", a.HasRefreshToken)
	tw.writef("Granted Scopes:\t%s\n", strings.Join(a.GrantedScopes, ", "))
	tw.writef("Selected Scopes:\t%s\n", strings.Join(a.UserSelectedScopes, ", "))
	if a.LastUsedAt != nil {
		tw.writef("Last Used:\t%s\n", formatTime(*a.LastUsedAt))
	}
	return tw.finish()
}

func printEventsTable(events []domain.AuthEvent) error {
	tw := newTabWriter(stdout)
	tw.writef("TIME\tTYPE\tDETAIL\n")
	for i := range events {
		tw.writef("%s\t%s\t%s\n",
			formatTime(events[i].CreatedAt),
			events[i].Type,
			truncate(events[i].Detail, 60),
		)
	}
	return tw.finish()
}

func printScopesTable(scopes []apiclient.Scope) error {
	tw := newTabWriter(stdout)
	tw.writef("ID\tMANDATORY\tDESCRIPTION\n")
	for _, s := range scopes {
		tw.writef("%s\t%v\t%s\n", s.ID, s.Mandatory, s.Description)
	}
	return tw.finish()
}

func printQuotaTable(quotas []apiclient.Quota) error {
	tw := newTabWriter(stdout)
	tw.writef("API\tUSED\tLIMIT\tREMAINING\tRESETS\n")
	for _, q := range quotas {
		tw.writef("%s\t%d\t%d\t%d\t%s\n", q.API, q.DailyUsed, q.DailyLimit, q.Remaining, formatTime(q.ResetAt))
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
