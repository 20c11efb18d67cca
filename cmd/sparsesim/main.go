// Command sparsesim simulates quantum circuits on a sparse state store.
package main

import (
	"os"

	"github.com/roach88/sparsesim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
