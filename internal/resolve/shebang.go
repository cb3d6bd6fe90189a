// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"io"
	"os"
	"strings"

	"runx-cli/pkg/types"
)

// sniffLen is how many leading bytes are read when classifying a file.
// Shebang lines and installer shims both announce themselves well within
// this window.
const sniffLen = 400

// acceptedInterpreters are the interpreter directive targets that mark a
// file as a node script. Matching is case-insensitive.
var acceptedInterpreters = []string{
	"/usr/bin/env node",
	"/usr/local/bin/node",
	"/usr/bin/node",
}

// HasInterpreterDirective reports whether the file at path starts with one
// of the accepted node shebang lines. Surrounding whitespace on the
// directive and a trailing carriage return are both tolerated. A read
// failure is reported as-is; a file without a recognized directive is
// simply (false, nil), letting the caller fall back to treating it as an
// opaque binary.
func HasInterpreterDirective(path types.FilesystemPath) (bool, error) {
	head, err := readLeadingBytes(path, sniffLen)
	if err != nil {
		return false, err
	}
	return matchInterpreterDirective(string(head)), nil
}

func matchInterpreterDirective(content string) bool {
	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimSuffix(line, "\r")

	if !strings.HasPrefix(line, "#!") {
		return false
	}
	directive := strings.TrimSpace(line[2:])

	for _, accepted := range acceptedInterpreters {
		if strings.EqualFold(directive, accepted) {
			return true
		}
	}
	return false
}

func readLeadingBytes(path types.FilesystemPath, n int) ([]byte, error) {
	f, err := os.Open(path.String())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	// An empty file returns io.EOF with zero bytes; classify it as
	// not-a-script rather than failing resolution.
	return buf[:read], nil
}
