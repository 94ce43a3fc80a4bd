// Package cliutil holds small CLI presentation helpers shared by Nayru's
// subcommands, carried over from the teacher's internal/cli/scheme/colours
// package.
package cliutil

import "github.com/fatih/color"

// Color scheme for CLI output.
var (
	Title   = color.New(color.FgCyan, color.Bold)
	Prompt  = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Success = color.New(color.FgGreen)
	Info    = color.New(color.FgBlue)
	Warning = color.New(color.FgYellow)
)
