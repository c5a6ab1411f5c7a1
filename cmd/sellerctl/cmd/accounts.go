package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/ebay-seller-connect/internal/api/client"
)

func accountsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage seller accounts",
		Long: "Manage eBay seller accounts. An account is created as a pending\n" +
			"placeholder and becomes active once the seller completes the\n" +
			"consent flow opened by 'sellerctl connect'.",
	}

	root.AddCommand(
		accountsListCmd(),
		accountsGetCmd(),
		accountsCreateCmd(),
		accountsScopesCmd(),
		accountsEnableCmd(true),
		accountsEnableCmd(false),
		accountsDeleteCmd(),
	)
	return root
}

func accountsListCmd() *cobra.Command {
	var (
		owner    string
		statuses []string
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Example: `  sellerctl accounts list
  sellerctl accounts list --owner user-42 --status requires_reauth
  sellerctl accounts list --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			list, err := newClient().ListAccounts(context.Background(), apiclient.ListAccountsOptions{
				Owner:    owner,
				Statuses: statuses,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(list)
			}
			if len(list.Accounts) == 0 {
				fmt.Fprintln(stdout, "No accounts found.")
				return nil
			}
			if err := printAccountTable(list.Accounts); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "\nShowing %d of %d\n", len(list.Accounts), list.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "filter by owner user id")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by status (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	return cmd
}

func accountsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show account details",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := newClient().GetAccount(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			return printAccountDetail(a)
		},
	}
}

func accountsCreateCmd() *cobra.Command {
	var (
		owner  string
		label  string
		scopes []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a placeholder account",
		Long: "Create a pending account for an owner. The printed connect URL must be\n" +
			"opened in the seller's browser to authorize it on eBay.",
		Example: `  sellerctl accounts create --owner user-42 --label "Main Store" \
    --scope sell_inventory --scope sell_fulfillment`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			c := newClient()
			a, err := c.CreateAccount(context.Background(), &apiclient.CreateAccountRequest{
				OwnerUserID:        owner,
				Label:              label,
				UserSelectedScopes: scopes,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			fmt.Fprintf(stdout, "Created account %s\n", a.ID)
			fmt.Fprintf(stdout, "Connect: %s\n", c.ConnectURL(a.ID, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner user id (required)")
	cmd.Flags().StringVar(&label, "label", "", "display label")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "scope id to request on connect (repeatable)")
	return cmd
}

func accountsScopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scopes <id> [scope...]",
		Short: "Replace the scopes requested on the next connect",
		Long: "Replace the account's selected scopes. Granted scopes change only\n" +
			"after the seller reconnects. Pass no scopes to clear the selection.",
		Example: `  sellerctl accounts scopes abc123 sell_inventory sell_account`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := newClient().SetScopes(context.Background(), args[0], args[1:])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			fmt.Fprintf(stdout, "Selected scopes: %s\n", strings.Join(a.UserSelectedScopes, ", "))
			return nil
		},
	}
}

func accountsEnableCmd(enabled bool) *cobra.Command {
	use, short := "disable <id>", "Disable an account"
	if enabled {
		use, short = "enable <id>", "Enable an account"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a, err := newClient().SetEnabled(context.Background(), args[0], enabled)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			fmt.Fprintf(stdout, "Account %s is %s\n", a.ID, a.Status)
			return nil
		},
	}
}

func accountsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account and its auth events",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := newClient().DeleteAccount(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Deleted account %s\n", args[0])
			return nil
		},
	}
}
