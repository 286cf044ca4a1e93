// atengine serves, exercises and inspects AT command tables.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/atengine/internal/cli"
	"github.com/roach88/atengine/internal/ir"
)

// Set via -ldflags "-X main.Version=...".
var Version = ir.EngineVersion

func main() {
	root := cli.NewRootCommand()
	root.Version = Version

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
