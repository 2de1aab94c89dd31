// lawglot is the entry point binary: serve runs the translation API server,
// collect builds the local terminology snapshot, translate resolves one text
// from the command line.
package main

import (
	"os"

	"github.com/lawglot/lawglot/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
