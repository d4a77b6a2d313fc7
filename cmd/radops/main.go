// Package main is the entry point for the radops operator console.
package main

import (
	"os"

	"github.com/openradius/radops/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
