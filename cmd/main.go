package main

import (
	"context"
	"os"

	"github.com/asynkron/patchview/internal/cli"
)

// main bootstraps patchview and forwards the process arguments to the CLI
// driver, which decides between the headless modes and the interactive shell.
func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
