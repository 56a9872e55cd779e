// Package main provides the newsclip command that clips keyword news into an HTML report.
package main

import "newsclip/internal/cli"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
