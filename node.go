package cryptomator

import (
	"path"
	"strings"
)

// Logical paths are slash separated and relative to the overlay root; the
// root itself is the empty string. Physical paths never appear in this
// file: the mapping between the two worlds happens in dirid.go.

// cleanLogicalPath normalizes a caller-supplied path. Leading and trailing
// separators are dropped and "."/".." segments resolved, so a path can
// never escape the overlay root.
func cleanLogicalPath(p string) string {
	p = path.Clean("/" + p)
	if p == "/" {
		return ""
	}
	return strings.TrimPrefix(p, "/")
}

// logicalParent returns the parent path and false when p is the root.
func logicalParent(p string) (string, bool) {
	if p == "" {
		return "", false
	}
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return "", true
	}
	return dir, true
}

// logicalName returns the last path segment, "" for the root.
func logicalName(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(p)
}
