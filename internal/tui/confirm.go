// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// ConfirmOptions configures a yes/no prompt.
type ConfirmOptions struct {
	Title   string
	Default bool

	// In and Out default to stdin/stderr. The prompt goes to stderr so it
	// never pollutes a piped stdout.
	In  io.Reader
	Out io.Writer
}

// Confirm asks a yes/no question and returns the user's choice. An empty
// answer takes the default; EOF counts as a decline.
func Confirm(opts ConfirmOptions) (bool, error) {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	hint := "[y/N]"
	if opts.Default {
		hint = "[Y/n]"
	}
	fmt.Fprintf(out, "%s %s ", promptStyle.Render(opts.Title), hintStyle.Render(hint))

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	case "":
		return opts.Default, nil
	default:
		return false, nil
	}
}
