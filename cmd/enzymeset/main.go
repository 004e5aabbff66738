// Command enzymeset is the dataset pipeline CLI: split assignment, dataset
// construction, and per-item sampling over enzyme-reaction corpora.
package main

import (
	"fmt"
	"os"

	"github.com/biocatlab/enzymeset/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
