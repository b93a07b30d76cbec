package main

import (
	"os"

	"github.com/hydroguard/hydroguard/cmd/hydroguard/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
