// Package cmd implements the CLI commands for seller-connect.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "seller-connect",
	Short: "Connect eBay seller accounts and keep their tokens valid",
	Long: "A service that runs the eBay OAuth consent flow for seller accounts, " +
		"stores and refreshes their user tokens, caches the application token, " +
		"and proxies seller-scoped eBay APIs with normalized errors.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(serveCommand(), migrateCommand(), versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
