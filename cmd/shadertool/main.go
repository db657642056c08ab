// Command shadertool prints the shared record layouts and checks WGSL sources
// against a contract revision.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
