// Command workstation runs one production worker: it leases a station, builds units and reports them until interrupted.
package main

import (
	"context"
	"os"

	"github.com/andrescamacho/kanban-go/internal/adapters/cli"
)

func main() {
	os.Exit(cli.RunWorkstation(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
