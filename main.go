// Package main provides the entry point for cachesim.
// cachesim is a trace-driven L1 cache simulator with PIPT and VIPT modes.
//
// For the full CLI, use: go run ./cmd/cachesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("cachesim - single-level cache and address translation simulator")
	fmt.Println("")
	fmt.Println("Usage: cachesim [options] < trace")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -c, -b, -s   log2 of cache size, block size and associativity")
	fmt.Println("  -v           VIPT mode, with -p, -t, -m for page, TLB and memory sizes")
	fmt.Println("  --trace      Trace file to read instead of standard input")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/cachesim' for the full CLI,")
	fmt.Println("or 'go run ./cmd/sweep' to compare configurations.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/cachesim' instead.")
	}
}
