package main

import (
	"os"

	"github.com/sangkips/billdesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
