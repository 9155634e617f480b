// Package main is the entry point for the pymute CLI.
package main

import "pymute.dev/pkg/pymute/cmd"

func main() {
	cmd.Execute()
}
