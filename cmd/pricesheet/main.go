// Package main provides the entry point for the pricesheet CLI.
package main

import "supplier-pricing-backend/cmd/pricesheet/cmd"

func main() {
	cmd.Execute()
}
