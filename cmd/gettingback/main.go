// Command gettingback renders the test scene, or a YAML scene, through the lit
// pipeline in a glfw window.
package main

import (
	"os"
	"runtime"
)

func init() {
	// glfw and the surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
