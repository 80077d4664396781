// Command kanban is the administration CLI for the Kanban factory simulation store.
package main

import (
	"context"
	"os"

	"github.com/andrescamacho/kanban-go/internal/adapters/cli"
)

func main() {
	os.Exit(cli.RunKanban(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
