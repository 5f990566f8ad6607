// Command eventgraph runs and inspects event graph definitions.
package main

import (
	"fmt"
	"os"

	"github.com/randalmurphal/eventgraph/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
