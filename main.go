// Package main is the entry point for the showinsights CLI tool, which
// fetches MLB The Show game histories and computes play-by-play insights.
package main

import "github.com/goldenbearlabs/showinsights/cmd"

func main() {
	cmd.Execute()
}
