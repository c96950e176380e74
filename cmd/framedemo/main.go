// Command framedemo renders pages through the frame lifecycle, classifies
// images for dark mode, and shows a live page in a window.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
