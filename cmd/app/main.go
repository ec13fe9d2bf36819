package main

import (
	"os"

	"capacity/cmd/app/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
