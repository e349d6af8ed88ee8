package java

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ReleaseFile is the packaging metadata file shipped at the root of JDK/JRE images
const ReleaseFile = "release"

// ReadRelease parses a release file of KEY="value" lines
func ReadRelease(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// releaseVersion returns JAVA_VERSION from the release file of home, or of its
// parent for a JRE nested inside a JDK (Java 8 layout).
func releaseVersion(home string) string {
	if home == "" {
		return ""
	}
	for _, dir := range []string{home, filepath.Dir(home)} {
		values, err := ReadRelease(filepath.Join(dir, ReleaseFile))
		if err != nil {
			continue
		}
		if v := values["JAVA_VERSION"]; v != "" {
			return v
		}
	}
	return ""
}
