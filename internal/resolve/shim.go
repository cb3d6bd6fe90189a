// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"regexp"
	"strings"

	"runx-cli/pkg/fspath"
	"runx-cli/pkg/types"
)

// Windows installs don't write shebang scripts; the installer generates a
// wrapper next to the real script that re-invokes node. Two templates
// exist: a .cmd batch redirect and a POSIX-style sh redirect (for Cygwin
// and Git Bash). Both reference the target script relative to the shim's
// own directory.
var (
	cmdShimRef = regexp.MustCompile(`"%~dp0\\([^"]+)"`)
	shShimRef  = regexp.MustCompile(`"\$basedir/([^"]+)"`)
)

// ParseShim extracts the script a generated wrapper redirects to, returning
// the path relative to the shim's directory. The first referenced file is
// the node binary itself and is skipped; the script is the next reference.
// Returns ok=false when the content matches neither wrapper template.
func ParseShim(content string) (string, bool) {
	for _, re := range []*regexp.Regexp{cmdShimRef, shShimRef} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			ref := strings.ReplaceAll(m[1], `\`, "/")
			if isNodeBinaryRef(ref) {
				continue
			}
			return ref, true
		}
	}
	return "", false
}

func isNodeBinaryRef(ref string) bool {
	base := ref
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.ToLower(base)
	return base == "node" || base == "node.exe"
}

// resolveShim classifies a Windows wrapper file: it reads the leading
// bytes, matches them against the known templates, and resolves the
// referenced script relative to the shim's directory.
func resolveShim(path types.FilesystemPath) (types.FilesystemPath, bool, error) {
	head, err := readLeadingBytes(path, sniffLen)
	if err != nil {
		return "", false, err
	}
	ref, ok := ParseShim(string(head))
	if !ok {
		return "", false, nil
	}
	parts := strings.Split(ref, "/")
	return fspath.JoinStr(fspath.Dir(path), parts...), true, nil
}
