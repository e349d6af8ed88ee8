//go:build !windows

package env

import (
	"errors"
	"os"
)

// SystemJavaHome returns JAVA_HOME from the process environment
func SystemJavaHome() (string, error) {
	if v := os.Getenv(JavaHomeKey); v != "" {
		return v, nil
	}
	return "", errors.New("JAVA_HOME is not set")
}
