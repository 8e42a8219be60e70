// Package main provides the karmatoken CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/karmatoken/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
