// main is the entry point for the meterflow CLI.
package main

import (
	"os"

	"github.com/meterflow/meterflow/cmd"
	"github.com/meterflow/meterflow/internal/contract"
)

func main() {
	err := cmd.Execute()
	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Cannot stop profiling", profErr)
	}
	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
