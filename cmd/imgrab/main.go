// Package main provides the entry point for the imgrab CLI.
//
// imgrab downloads every image referenced by a single web page into a
// per-domain folder, skipping byte-identical duplicates.
//
// Usage:
//
//	imgrab fetch <url>
//	imgrab history
//
// See --help for all available options.
package main

// main is the entry point for imgrab.
func main() {
	Execute()
}
