package java

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Environment keys used to hand the detected JDK down to child processes
const (
	JDKEnvKey        = "__JHOME_JDK__"
	JavaTargetEnvKey = "__JHOME_JAVA_TARGET__"

	// Lower-case keys a user can export to override the compiler levels
	JavaTargetOverrideKey = "java_target"
	JavaSourceOverrideKey = "java_source"
)

var (
	ErrNoJDK   = errors.New("no JDK found")
	ErrJREOnly = errors.New("no JDK found, but found JRE")
)

// goos is a variable so tests can exercise other platforms' command lines
var goos = runtime.GOOS

func exe(name string) string {
	if goos == "windows" {
		return name + ".exe"
	}
	return name
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ResolveJDKHome returns the JDK that owns home. A java.home reported by a
// Java 8 runtime points at the nested jre/ directory, so the parent is
// accepted when it holds javac.
func ResolveJDKHome(home string) (string, error) {
	home = filepath.Clean(home)

	if fileExists(filepath.Join(home, "bin", exe("javac"))) {
		return home, nil
	}

	parent := filepath.Dir(home)
	if fileExists(filepath.Join(parent, "bin", exe("javac"))) {
		return parent, nil
	}

	if fileExists(filepath.Join(home, "bin", exe("java"))) {
		return "", fmt.Errorf("%w: %s", ErrJREOnly, home)
	}
	return "", fmt.Errorf("%w at %s", ErrNoJDK, home)
}

// Overrides carries configured compiler levels; empty fields defer to the environment
type Overrides struct {
	Target string
	Source string
}

// JDK is a resolved development kit plus the language levels to compile for
type JDK struct {
	Home   string
	Target string
	Source string
}

// Detect resolves the JDK. A previous detection exported through JDKEnvKey and
// JavaTargetEnvKey is reused; otherwise the probe runs and its result is exported.
// Target and Source then take overrides first, then the java_target/java_source
// environment, then fall back to the probed specification version.
func Detect(ctx context.Context, probe *Probe, overrides Overrides) (*JDK, error) {
	home := os.Getenv(JDKEnvKey)
	target := os.Getenv(JavaTargetEnvKey)

	if home == "" && target == "" {
		info, err := probe.Query(ctx)
		if err != nil {
			return nil, err
		}

		home, err = ResolveJDKHome(info.Home)
		if err != nil {
			return nil, err
		}
		target = info.SpecVersion

		if err := os.Setenv(JDKEnvKey, home); err != nil {
			return nil, fmt.Errorf("export %s: %w", JDKEnvKey, err)
		}
		if err := os.Setenv(JavaTargetEnvKey, target); err != nil {
			return nil, fmt.Errorf("export %s: %w", JavaTargetEnvKey, err)
		}
		probe.logger().Debug("detected JDK", "home", home, "target", target)
	}

	target = firstNonEmpty(overrides.Target, os.Getenv(JavaTargetOverrideKey), target)
	source := firstNonEmpty(overrides.Source, os.Getenv(JavaSourceOverrideKey), target)

	return &JDK{Home: home, Target: target, Source: source}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Env returns the variables tools expect when running against this JDK
func (j *JDK) Env() map[string]string {
	return map[string]string{
		"JAVA_HOME": j.Home,
		"JAVAC":     j.Bin("javac"),
	}
}

// Bin returns the path of a tool in the JDK's bin directory
func (j *JDK) Bin(tool string) string {
	return filepath.Join(j.Home, "bin", exe(tool))
}

// CmdOptions tweak generated command lines
type CmdOptions struct {
	MaxMem string // Heap limit, e.g. "512m"
	Source string // javac -source; defaults to the JDK's Source
	Target string // javac -target; defaults to the JDK's Target

	Classpath []string // Entries joined into -cp
}

// JavaCmd builds the argv for running the JDK's java launcher
func (j *JDK) JavaCmd(opts CmdOptions) []string {
	cmd := []string{j.Bin("java")}
	if opts.MaxMem != "" {
		cmd = append(cmd, "-Xmx"+opts.MaxMem)
	}

	// Non-mac runtimes default to headless=false, mac to true; keep them aligned
	if goos == "darwin" {
		cmd = append(cmd, "-Djava.awt.headless=false")
	}
	if goos == "windows" {
		cmd = append(cmd, "-Dfile.encoding=UTF8")
	}
	if cp := Classpath(opts.Classpath...); cp != "" {
		cmd = append(cmd, "-cp", cp)
	}
	return cmd
}

// JavacCmd builds the argv for compiling with the JDK's javac
func (j *JDK) JavacCmd(opts CmdOptions) []string {
	target := firstNonEmpty(opts.Target, j.Target)
	source := firstNonEmpty(opts.Source, j.Source, target)

	cmd := []string{j.Bin("javac")}
	if opts.MaxMem != "" {
		cmd = append(cmd, "-J-Xmx"+opts.MaxMem)
	}
	if target != "" {
		cmd = append(cmd, "-target", target)
	}
	if source != "" {
		cmd = append(cmd, "-source", source)
	}
	if goos != "linux" {
		cmd = append(cmd, "-encoding", "UTF8")
	}
	if cp := Classpath(opts.Classpath...); cp != "" {
		cmd = append(cmd, "-cp", cp)
	}
	return cmd
}

// Command prepares argv to run with the JDK environment layered over the current one
func (j *JDK) Command(ctx context.Context, argv []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	env := j.Env()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.Env = os.Environ()
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+env[k])
	}
	return cmd
}

// Classpath joins classpath entries with the platform list separator, skipping empty ones
func Classpath(entries ...string) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, string(os.PathListSeparator))
}
