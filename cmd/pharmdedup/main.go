// Package main provides the entry point for the pharmdedup CLI tool.
package main

import "github.com/bfat-ux/nigeria-pharmacy-registry-sub000/cmd/pharmdedup/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
