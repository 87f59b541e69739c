// Command tickets is the operator CLI for the file-backed ticket store.
package main

import (
	"os"

	"github.com/recursivesquircle/ticket-mcp/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args))
}
