// Command laneracer runs lane racing simulations.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/laneracer/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
