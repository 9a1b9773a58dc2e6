// Command renderctl renders data documents with the renderer chain configured
// for a project.
package main

import (
	"fmt"
	"os"
)

// Build information injected via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "renderctl:", err)
		os.Exit(1)
	}
}
