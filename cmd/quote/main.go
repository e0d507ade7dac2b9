package main

import (
	"os"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/cmd/quote/commands"
)

// main is the entry point for the quote CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
