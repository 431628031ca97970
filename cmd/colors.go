package cmd

import "github.com/fatih/color"

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

// formatNewHostFlag renders the discovery flag for terminal output, with
// newly discovered hosts highlighted.
func formatNewHostFlag(newHost bool) string {
	if newHost {
		return colorSuccess("yes")
	}
	return "no"
}
