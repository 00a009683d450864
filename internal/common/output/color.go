package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	// Report colors
	Outdated = color.New(color.FgYellow)
	Version  = color.New(color.FgGreen)
	Date     = color.New(color.FgCyan)
	Title    = color.New(color.Bold)
	Link     = color.New(color.Faint)

	// Message colors
	Success = color.New(color.FgGreen)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header = color.New(color.FgWhite, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// ForceColor enables color output even when not a TTY
func ForceColor() {
	color.NoColor = false
}

// IsTerminal returns true if stdout is a terminal
func IsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// FormatUpdate formats an outdated package with its repository version,
// padding the name to width display columns
func FormatUpdate(name, version string, width int) string {
	return Outdated.Sprint(runewidth.FillRight(name, width)) + "  " + Version.Sprint(version)
}
