// SPDX-License-Identifier: MPL-2.0

package npm

import (
	"runtime"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// QuoteArg escapes a single argument for the current platform's shell
// quoting rules: POSIX quoting via the sh grammar everywhere except
// Windows, where cmd.exe-style double quoting applies.
func QuoteArg(arg string) string {
	if runtime.GOOS == "windows" {
		return quoteWindows(arg)
	}
	quoted, err := syntax.Quote(arg, syntax.LangPOSIX)
	if err != nil {
		// Quote only fails on non-printable input; single quotes are a
		// safe last resort for anything else.
		return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return quoted
}

// RenderCommand renders an argv as a single shell-safe command line.
// Used for verbose echoes and for composing call-mode command strings.
func RenderCommand(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = QuoteArg(arg)
	}
	return strings.Join(quoted, " ")
}

func quoteWindows(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\"") {
		return arg
	}
	return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
}
