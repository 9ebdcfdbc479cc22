// Command harmonia is the thin CLI front-end over the core contracts: it
// composes the state provider (§4.5) and the supervisor (§4.6) behind
// list/compile/run/inspect verbs. Grounded on the teacher's
// cmd/streamy/{main,root,list,apply}.go wiring shape.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/grochmal/harmonia/internal/infrastructure/applog"
)

func main() {
	logger, err := applog.New(applog.Options{Component: "cli"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}

	correlationID := applog.GenerateCorrelationID()
	ctx := applog.WithCorrelationID(context.Background(), correlationID)

	root := newRootCmd(logger)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
