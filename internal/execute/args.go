// SPDX-License-Identifier: MPL-2.0

package execute

import "strings"

// SplitNodeArgs normalizes interpreter flags: the caller may supply them
// as separate values or packed into one string, so each element is split
// on runs of whitespace before concatenation. "--inspect --harmony" and
// ["--inspect", "--harmony"] compose to the same argument vector.
func SplitNodeArgs(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}
