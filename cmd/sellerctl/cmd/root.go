// Package cmd implements the sellerctl CLI commands.
package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/ebay-seller-connect/internal/api/client"
)

const (
	outputTable      = "table"
	outputFormatJSON = "json"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "sellerctl",
		Short: "Manage eBay seller connections",
		Long: "sellerctl talks to a seller-connect server. Use it to register seller\n" +
			"accounts, hand out connect links, fetch tokens for scripts, and check\n" +
			"eBay quota usage.",
		SilenceUsage:      true,
		PersistentPreRunE: validateOutput,
	}
)

// Root returns the root command; docgen walks it.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.sellerctl.yaml)")
	flags.String("server", "http://localhost:8080", "seller-connect server URL")
	flags.String("output", outputTable, "output format (table, json)")
	flags.Duration("timeout", 30*time.Second, "request timeout")

	for _, name := range []string{"server", "output", "timeout"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(
		accountsCmd(),
		connectCmd(),
		tokenCmd(),
		appTokenCmd(),
		eventsCmd(),
		scopesCmd(),
		quotaCmd(),
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sellerctl")
	}

	// SELLERCTL_SERVER, SELLERCTL_OUTPUT, SELLERCTL_TIMEOUT
	viper.SetEnvPrefix("SELLERCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func validateOutput(_ *cobra.Command, _ []string) error {
	switch o := viper.GetString("output"); o {
	case outputTable, outputFormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", o)
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"),
		apiclient.WithHTTPClient(&http.Client{Timeout: viper.GetDuration("timeout")}))
}

func jsonOutput() bool {
	return viper.GetString("output") == outputFormatJSON
}

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout
