package main

import (
	"os"

	"github.com/DrSkyle/chainpath/cmd/chainpath/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
