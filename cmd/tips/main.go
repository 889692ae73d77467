package main

import (
	"os"

	"github.com/RylynnLai/trading-tips/cmd/tips/commands"
)

// main is the entry point for the trading-tips CLI
// ⭐ unified CLI entry point: go run ./cmd/tips [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
