package main

import (
	"os"

	"github.com/sqlexpr/sqlexpr/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
