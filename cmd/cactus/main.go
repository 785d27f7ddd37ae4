// Command cactus runs CactUScript programs and provides an interactive REPL.
package main

import (
	"fmt"
	"os"

	"github.com/cactus-lang/cactus/cmd/cactus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
