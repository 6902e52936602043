// Command shell is the corvus shell entrypoint: load configuration,
// build the REPL, and run it until EOF or "exit".
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/corvus-sh/shell/internal/config"
	"github.com/corvus-sh/shell/internal/shell"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "corvus: error loading config: %v\n", err)
		os.Exit(1)
	}

	sh, err := shell.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "corvus: failed to start shell: %v\n", err)
		os.Exit(1)
	}

	sh.Run(context.Background())
}
