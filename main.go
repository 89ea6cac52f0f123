// Package main is the entry point of the burstline CLI.
package main

import (
	"github.com/huangsam/burstline/cmd"
	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
	}()

	cmd.SetCacheManager(iocache.Manager)
	if err := cmd.Execute(); err != nil {
		iocache.CloseCaching()
		contract.LogFatal("Command failed", err)
	}
}
