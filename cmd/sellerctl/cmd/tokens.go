package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/ebay-seller-connect/internal/api/client"
)

func connectCmd() *cobra.Command {
	var scopes []string

	cmd := &cobra.Command{
		Use:   "connect <id>",
		Short: "Print the URL that connects an account through eBay",
		Long: "Print the connect URL for an account. Open it in the seller's browser;\n" +
			"the server sets a state cookie there and redirects to eBay.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, newClient().ConnectURL(args[0], scopes))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "override the account's selected scopes (repeatable)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var invalidate bool

	cmd := &cobra.Command{
		Use:   "token <id>",
		Short: "Issue a valid user access token",
		Long: "Print a user access token for the account, refreshing it first if it\n" +
			"is close to expiry. With --invalidate the stored token is marked expired\n" +
			"instead, forcing a refresh on the next request.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if invalidate {
				if err := c.InvalidateToken(context.Background(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Invalidated token for %s\n", args[0])
				return nil
			}

			tok, err := c.IssueToken(context.Background(), args[0])
			if err != nil {
				return reauthHint(c, args[0], err)
			}
			if jsonOutput() {
				return outputJSON(tok)
			}
			fmt.Fprintln(stdout, tok.AccessToken)
			return nil
		},
	}
	cmd.Flags().BoolVar(&invalidate, "invalidate", false, "mark the stored token expired")
	return cmd
}

// reauthHint appends the connect URL when the account must be reconnected.
func reauthHint(c *apiclient.Client, id string, err error) error {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.ReauthRequired {
		return fmt.Errorf("%w\nreconnect at: %s", err, c.ConnectURL(id, nil))
	}
	return err
}

func appTokenCmd() *cobra.Command {
	var invalidate bool

	cmd := &cobra.Command{
		Use:   "app-token",
		Short: "Print the application token",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			if invalidate {
				if err := c.InvalidateAppToken(context.Background()); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "Invalidated application token")
				return nil
			}
			tok, err := c.AppToken(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(map[string]string{"access_token": tok})
			}
			fmt.Fprintln(stdout, tok)
			return nil
		},
	}
	cmd.Flags().BoolVar(&invalidate, "invalidate", false, "empty the cached application token")
	return cmd
}

func eventsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Show an account's auth events",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			events, err := newClient().ListEvents(context.Background(), args[0], limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(events)
			}
			if len(events) == 0 {
				fmt.Fprintln(stdout, "No events found.")
				return nil
			}
			return printEventsTable(events)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of events")
	return cmd
}

func scopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scopes",
		Short: "List known OAuth scopes",
		RunE: func(_ *cobra.Command, _ []string) error {
			scopes, err := newClient().ListScopes(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(scopes)
			}
			return printScopesTable(scopes)
		},
	}
}

func quotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show daily eBay API quota usage",
		RunE: func(_ *cobra.Command, _ []string) error {
			quotas, err := newClient().Quota(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(quotas)
			}
			return printQuotaTable(quotas)
		},
	}
}
