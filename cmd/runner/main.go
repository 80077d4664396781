// Command runner replenishes station part bins on the reference interval until interrupted.
package main

import (
	"context"
	"os"

	"github.com/andrescamacho/kanban-go/internal/adapters/cli"
)

func main() {
	os.Exit(cli.RunRunner(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
