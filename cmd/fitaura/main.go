package main

import (
	"os"

	"github.com/moolen/fitaura/cmd/fitaura/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
