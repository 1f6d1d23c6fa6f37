package main

import (
	"os"

	"github.com/terraincognita07/cyclecore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
