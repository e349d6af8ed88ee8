//go:build windows

package env

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows/registry"
)

const systemEnvRegPath = `System\CurrentControlSet\Control\Session Manager\Environment`

// SystemJavaHome returns JAVA_HOME from the machine environment in the registry,
// falling back to the process environment when the registry has no value
func SystemJavaHome() (string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, systemEnvRegPath, registry.QUERY_VALUE)
	if err != nil {
		return processJavaHome(fmt.Errorf("failed to open registry key: %w", err))
	}
	defer key.Close()

	value, _, err := key.GetStringValue(JavaHomeKey)
	if err != nil || value == "" {
		return processJavaHome(fmt.Errorf("JAVA_HOME not set system-wide: %w", err))
	}

	return registry.ExpandString(value)
}

func processJavaHome(cause error) (string, error) {
	if v := os.Getenv(JavaHomeKey); v != "" {
		return v, nil
	}
	return "", cause
}
