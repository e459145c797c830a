// Package main is the entry point for the vidra application.
package main

import (
	"github.com/samber/lo"

	"github.com/vidra-cli/vidra/cmd"
	"github.com/vidra-cli/vidra/config"
	"github.com/vidra-cli/vidra/internal/cache"
	"github.com/vidra-cli/vidra/internal/sync"
	"github.com/vidra-cli/vidra/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Initialize asynchronous background processes for cache maintenance and
	// playstate report reconciliation.
	go cache.CollectGarbage()
	go sync.ReconcileFailures()

	cmd.Execute()
}
