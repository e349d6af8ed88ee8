package java

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"jhome/internal/config"
	"jhome/internal/env"
)

// Detector finds Java installations on the system
type Detector struct {
	standardPaths []string
	searchPaths   []string
	customPaths   []string
	run           Runner
	timeout       time.Duration
}

// NewDetector creates a detector over the platform's standard locations plus
// the search and custom paths from cfg (which may be nil)
func NewDetector(cfg *config.Config) *Detector {
	d := &Detector{
		standardPaths: standardPaths(goos),
		run:           ExecRunner,
		timeout:       config.DefaultProbeTimeout,
	}
	if cfg != nil {
		d.searchPaths = cfg.SearchPaths
		d.customPaths = cfg.CustomPaths
		d.timeout = cfg.Timeout()
	}
	return d
}

func standardPaths(platform string) []string {
	switch platform {
	case "windows":
		return []string{
			"C:\\Program Files\\Java",
			"C:\\Program Files (x86)\\Java",
			"C:\\Program Files\\Eclipse Adoptium",
			"C:\\Program Files\\Eclipse Foundation",
			"C:\\Program Files\\Zulu",
			"C:\\Program Files\\Amazon Corretto",
			"C:\\Program Files\\Microsoft",
		}
	case "darwin":
		return []string{
			"/Library/Java/JavaVirtualMachines",
			"/opt/homebrew/opt",
		}
	default:
		return []string{
			"/usr/lib/jvm",
			"/usr/java",
			"/opt/java",
			"/opt/jdk",
		}
	}
}

// StandardPaths returns the built-in locations for this platform
func (d *Detector) StandardPaths() []string {
	return d.standardPaths
}

// SearchPaths returns the standard locations followed by configured ones
func (d *Detector) SearchPaths() []string {
	paths := make([]string, 0, len(d.standardPaths)+len(d.searchPaths))
	paths = append(paths, d.standardPaths...)
	return append(paths, d.searchPaths...)
}

// FindAll finds all Java installations (auto-detected + custom), newest first.
// Missing search directories are skipped; other read failures are joined into
// the error while the installations found elsewhere are still returned.
func (d *Detector) FindAll() ([]Version, error) {
	// Deduplicate by path, case-insensitively only where the filesystem is
	seen := make(map[string]Version)
	var errs []error

	for _, basePath := range d.SearchPaths() {
		entries, err := os.ReadDir(basePath)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", basePath, err))
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			javaPath := installationRoot(filepath.Join(basePath, entry.Name()))
			if d.IsValidJavaPath(javaPath) {
				seen[env.PathKey(javaPath)] = d.describe(javaPath, false)
			}
		}
	}

	for _, customPath := range d.customPaths {
		if d.IsValidJavaPath(customPath) {
			// If already seen as auto, upgrade to custom
			seen[env.PathKey(customPath)] = d.describe(customPath, true)
		}
	}

	versions := make([]Version, 0, len(seen))
	for _, v := range seen {
		versions = append(versions, v)
	}
	SortVersions(versions)

	return versions, errors.Join(errs...)
}

// installationRoot handles macOS bundles where the home lives in Contents/Home
func installationRoot(path string) string {
	bundleHome := filepath.Join(path, "Contents", "Home")
	if info, err := os.Stat(bundleHome); err == nil && info.IsDir() {
		return bundleHome
	}
	return path
}

func (d *Detector) describe(path string, custom bool) Version {
	path = filepath.Clean(path)
	return Version{
		Version:  d.GetVersion(path),
		Path:     path,
		IsCustom: custom,
		IsJDK:    fileExists(filepath.Join(path, "bin", exe("javac"))),
	}
}

// IsValidJavaPath checks if a path is a valid Java installation
func (d *Detector) IsValidJavaPath(path string) bool {
	return fileExists(filepath.Join(path, "bin", exe("java")))
}

// IsValidSearchPath checks if a path is a valid directory to search for Java installations
func (d *Detector) IsValidSearchPath(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// GetVersion extracts the version of a Java installation: release file first,
// then `java -version`, then the directory name
func (d *Detector) GetVersion(javaPath string) string {
	if v := releaseVersion(javaPath); v != "" {
		return v
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	output, err := d.run(ctx, filepath.Join(javaPath, "bin", exe("java")), "-version")
	if err == nil {
		if version := parseVersionOutput(string(output)); version != "" {
			return version
		}
	}

	// Fallback: extract from directory name
	dirName := filepath.Base(javaPath)
	if dirName == "Home" {
		dirName = filepath.Base(filepath.Dir(filepath.Dir(javaPath)))
	}
	return parseVersionFromDirName(dirName)
}

var dirNamePatterns = []*regexp.Regexp{
	// jdk-17, jdk-17.0.1, jdk1.8.0_322
	regexp.MustCompile(`jdk-?(\d+(?:\.\d+)*(?:_\d+)?)`),
	// java-17-openjdk-amd64, java-1.8.0-openjdk
	regexp.MustCompile(`java-?(\d+(?:\.\d+)*)`),
	// temurin-21.jdk, zulu-17.jdk, openjdk@17
	regexp.MustCompile(`[a-z]+[-@](\d+(?:\.\d+)*)`),
}

// parseVersionFromDirName extracts a version from directory names like "jdk-17" or "jdk1.8.0_322"
func parseVersionFromDirName(dirName string) string {
	dirName = strings.ToLower(dirName)

	for _, re := range dirNamePatterns {
		if matches := re.FindStringSubmatch(dirName); len(matches) > 1 {
			return matches[1]
		}
	}

	// Return dir name as-is if no pattern matches
	return dirName
}
