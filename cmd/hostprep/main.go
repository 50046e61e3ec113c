// Package main provides the entry point for the hostprep CLI.
package main

import "os"

func main() {
	os.Exit(Execute())
}
