// Package main is the entry point for the seller-connect server.
package main

import (
	"os"

	"github.com/donaldgifford/ebay-seller-connect/cmd/seller-connect/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
