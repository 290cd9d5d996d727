// Package main is the entry point for the aihub CLI binary.
package main

import (
	"os"

	"aihub/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
