package main

import (
	"os"

	"github.com/drip-labs/drip/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
