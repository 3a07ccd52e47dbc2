// Command reefrag indexes course study material and retrieves context
// for questions over a local vector store.
package main

import (
	"os"

	"github.com/reef-labs/reefrag/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
