// Package main provides the entry point for the dupsweep duplicate file finder.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
