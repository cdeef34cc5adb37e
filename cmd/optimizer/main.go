// optimizer is the terminal client for the token-optimizer relay.
package main

import (
	"os"

	"github.com/dannysarco/llm-token-optimizer/internal/cli"
)

// Version is stamped at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := cli.Execute(Version); err != nil {
		os.Exit(1)
	}
}
