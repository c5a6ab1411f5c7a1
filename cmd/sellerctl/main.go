// Package main is the entry point for the sellerctl CLI client.
package main

import (
	"github.com/donaldgifford/ebay-seller-connect/cmd/sellerctl/cmd"
)

func main() {
	cmd.Execute()
}
