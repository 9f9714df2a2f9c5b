// Command nsd generates a synthetic record and estimates its noise spectral
// density.
//
// Usage:
//
//	nsd [global flags] linear|stacked|log [flags]
//
// The record is white Gaussian noise with an optional power-law component
// and tone, configured by a YAML file (-c) and overridden by flags.
//
// Examples:
//
//	nsd linear --width 16384
//	nsd stacked --max-width 65536 --min-width 512 --window hft90d
//	nsd -c nsd.yaml log --freq-min 0.5 --ppd 40
//	nsd --log-level debug --power-law-density 1e-6 log
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
