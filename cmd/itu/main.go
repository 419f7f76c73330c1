package main

import (
	"os"

	"github.com/itu-lang/itu/cmd/itu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
