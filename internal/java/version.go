package java

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version represents a Java installation
type Version struct {
	Version  string // Version string (e.g., "17.0.1", "1.8.0_322")
	Path     string // Full path to Java installation
	IsCustom bool   // Whether this is from custom paths or auto-detected
	IsJDK    bool   // Whether bin/javac is present
}

// Spec returns the specification version implemented by this installation
func (v Version) Spec() string {
	return SpecVersion(v.Version)
}

var versionOutputRe = regexp.MustCompile(`(?:openjdk|java)?\s*version\s+"([^"]+)"`)

// parseVersionOutput parses the output of 'java -version'
func parseVersionOutput(output string) string {
	// Look for version patterns like: openjdk version "17.0.1"
	matches := versionOutputRe.FindStringSubmatch(output)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// SpecVersion reduces a full runtime version to the specification version it implements:
// "1.8.0_292" -> "1.8", "17.0.2" -> "17", "9-ea" -> "9".
// Returns "" when the string carries no leading number.
func SpecVersion(version string) string {
	version = strings.Trim(strings.TrimSpace(version), `"`)

	if rest, ok := strings.CutPrefix(version, "1."); ok {
		minor := leadingDigits(rest)
		if minor == "" {
			return ""
		}
		return "1." + minor
	}

	return leadingDigits(version)
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// parseSemver is a tolerant parse for Java version strings; the "_NNN" update suffix
// of legacy versions becomes build metadata. Returns nil when nothing parses.
func parseSemver(version string) *semver.Version {
	v, err := semver.NewVersion(strings.Replace(version, "_", "+", 1))
	if err != nil {
		return nil
	}
	return v
}

// SortVersions orders installations newest first. Unparseable versions go last,
// ordered by path so the result is stable.
func SortVersions(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		a, b := parseSemver(versions[i].Version), parseSemver(versions[j].Version)
		switch {
		case a != nil && b != nil:
			if !a.Equal(b) {
				return a.GreaterThan(b)
			}
		case a != nil:
			return true
		case b != nil:
			return false
		}
		return versions[i].Path < versions[j].Path
	})
}
