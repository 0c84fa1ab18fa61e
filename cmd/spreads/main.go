package main

import (
	"os"

	"github.com/rustyeddy/spreads/cmd/spreads/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
