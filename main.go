// Package main is the entrypoint of the commitpulse CLI.
package main

import (
	"os"
	_ "time/tzdata" // --timezone must resolve on hosts without zoneinfo

	"github.com/huangsam/commitpulse/cmd"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/iocache"
)

func main() {
	defer iocache.CloseStores()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	if err != nil {
		contract.LogWarn("Command failed", err)
		iocache.CloseStores()
		os.Exit(1)
	}
}
