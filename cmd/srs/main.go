// Package main implements the srs command-line entry point: scheduling
// previews, review application, history simulation, statistics, and weight
// optimization over JSON card collections.
package main

import (
	"os"

	"github.com/rmadrazo97/studek-app-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
