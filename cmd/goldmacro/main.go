package main

import (
	"os"

	"github.com/rustyeddy/goldmacro/cmd/goldmacro/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
