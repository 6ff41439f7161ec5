// Command ld3320 drives an LD3320 speech recognition and MP3 module
// wired to the SPI bus of a Linux board.
package main

import (
	"fmt"
	"os"
)

// Version is set by the Go linker with -ldflags='-X main.Version=...'.
var Version string

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ld3320: %v\n", err)
		os.Exit(2)
	}
}
