// Package main provides the entry point for the qmd CLI.
package main

import (
	"os"

	"github.com/qmd-engine/qmd/cmd/qmd/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
