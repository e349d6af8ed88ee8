// Package env reads the JAVA_HOME configured for the system
package env

import (
	"path/filepath"
	"runtime"
	"strings"
)

// JavaHomeKey is the conventional variable pointing at the active installation
const JavaHomeKey = "JAVA_HOME"

// goos is a variable so tests can exercise other platforms' path rules
var goos = runtime.GOOS

// PathKey normalizes a path for comparison. Only Windows folds case; macOS
// volumes can be formatted case-sensitive, so Darwin compares like Linux.
func PathKey(path string) string {
	path = filepath.Clean(path)
	if goos == "windows" {
		return strings.ToLower(path)
	}
	return path
}

// SamePath reports whether two installation paths refer to the same directory,
// ignoring trailing separators
func SamePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return PathKey(a) == PathKey(b)
}
