// SPDX-License-Identifier: EPL-2.0

// Command audioloader runs the audio loading stage over a YAML batch
// manifest.
//
// Usage:
//
//	audioloader [--config file] load <manifest.yaml> [--export-dir dir]
//	audioloader formats
package main

import (
	"fmt"
	"os"

	"github.com/ik5/audioloader/cmd/audioloader/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
