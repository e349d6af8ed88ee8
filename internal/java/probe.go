package java

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrJavaNotFound is returned when no java launcher can be located
	ErrJavaNotFound = errors.New("java launcher not found")

	// ErrNoJavaHome is returned when the runtime reports no installation path
	// and none can be derived from the launcher location
	ErrNoJavaHome = errors.New("could not determine java.home")

	// ErrNoSpecVersion is returned when neither the specification version property
	// nor any packaging metadata yields a version
	ErrNoSpecVersion = errors.New("could not determine java.specification.version")
)

// Runner executes a command and returns its combined stdout and stderr
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Info describes the active Java runtime
type Info struct {
	Home        string // java.home
	SpecVersion string // java.specification.version, or the packaging metadata fallback
}

// Write prints the two probe lines. Labeled output prefixes each value with
// its property name and a colon.
func (i Info) Write(w io.Writer, labeled bool) error {
	var err error
	if labeled {
		_, err = fmt.Fprintf(w, "%s:%s\n%s:%s\n", HomeProperty, i.Home, SpecVersionProperty, i.SpecVersion)
	} else {
		_, err = fmt.Fprintf(w, "%s\n%s\n", i.Home, i.SpecVersion)
	}
	return err
}

// Probe queries a Java launcher for its installation path and specification version
type Probe struct {
	Java    string        // Launcher path; empty means "java" on PATH
	Timeout time.Duration // Per-invocation limit; zero means no limit
	Run     Runner
	Logger  *log.Logger

	lookPath func(string) (string, error)
}

// NewProbe creates a probe for the java launcher found on PATH
func NewProbe(logger *log.Logger) *Probe {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Probe{
		Run:      ExecRunner,
		Logger:   logger,
		lookPath: exec.LookPath,
	}
}

// Launcher resolves the java executable the probe will run
func (p *Probe) Launcher() (string, error) {
	lookPath := p.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	name := p.Java
	if name == "" {
		name = exe("java")
	}

	path, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrJavaNotFound, name, err)
	}
	return path, nil
}

// Query runs the launcher once with -XshowSettings:properties and resolves both values
func (p *Probe) Query(ctx context.Context) (Info, error) {
	launcher, err := p.Launcher()
	if err != nil {
		return Info{}, err
	}
	p.logger().Debug("probing java runtime", "launcher", launcher)

	out, runErr := p.run(ctx, launcher, "-XshowSettings:properties", "-version")
	if runErr != nil && ctx.Err() != nil {
		return Info{}, fmt.Errorf("probe %s: %w", launcher, ctx.Err())
	}
	if runErr != nil && len(out) == 0 {
		return Info{}, fmt.Errorf("probe %s: %w", launcher, runErr)
	}

	props := ParseProperties(string(out))
	if len(props) == 0 {
		if runErr != nil && !rejectsShowSettings(string(out)) {
			return Info{}, fmt.Errorf("probe %s: %w: %s", launcher, runErr, firstLine(string(out)))
		}
		p.logger().Debug("launcher printed no property settings", "launcher", launcher, "err", runErr)
	}

	home := props.Get(HomeProperty)
	if home == "" {
		home, err = homeFromLauncher(launcher)
		if err != nil {
			return Info{}, err
		}
		p.logger().Debug("derived java.home from launcher path", "home", home)
	}

	spec := props.Get(SpecVersionProperty)
	if spec == "" {
		spec, err = p.fallbackSpecVersion(ctx, launcher, home, props, string(out))
		if err != nil {
			return Info{}, err
		}
	}

	p.logger().Debug("probe complete", HomeProperty, home, SpecVersionProperty, spec)
	return Info{Home: home, SpecVersion: spec}, nil
}

// fallbackSpecVersion derives the specification version from packaging metadata:
// the image's release file, then java.version, then the -version banner.
func (p *Probe) fallbackSpecVersion(ctx context.Context, launcher, home string, props Properties, out string) (string, error) {
	candidates := []struct {
		source  string
		version func() string
	}{
		{"release file", func() string { return releaseVersion(home) }},
		{VersionProperty, func() string { return props.Get(VersionProperty) }},
		{"version banner", func() string { return parseVersionOutput(out) }},
		{"java -version", func() string {
			banner, err := p.run(ctx, launcher, "-version")
			if err != nil {
				p.logger().Debug("java -version failed", "err", err)
				return ""
			}
			return parseVersionOutput(string(banner))
		}},
	}

	for _, c := range candidates {
		if spec := SpecVersion(c.version()); spec != "" {
			p.logger().Debug("specification version from fallback", "source", c.source, "spec", spec)
			return spec, nil
		}
	}

	return "", fmt.Errorf("%w for %s", ErrNoSpecVersion, launcher)
}

func (p *Probe) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	run := p.Run
	if run == nil {
		run = ExecRunner
	}
	return run(ctx, name, args...)
}

func (p *Probe) logger() *log.Logger {
	if p.Logger == nil {
		p.Logger = log.New(io.Discard)
	}
	return p.Logger
}

// rejectsShowSettings recognizes launchers that predate -XshowSettings
func rejectsShowSettings(out string) bool {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Unrecognized option") && strings.Contains(line, "-XshowSettings") {
			return true
		}
	}
	return false
}

func firstLine(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(line)
}

// homeFromLauncher maps <home>/bin/java back to <home>, following symlinks
// such as /usr/bin/java -> /etc/alternatives/java -> /usr/lib/jvm/.../bin/java
func homeFromLauncher(launcher string) (string, error) {
	resolved, err := filepath.EvalSymlinks(launcher)
	if err != nil {
		resolved = launcher
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoJavaHome, err)
	}

	bin := filepath.Dir(resolved)
	if filepath.Base(bin) != "bin" {
		return "", fmt.Errorf("%w: %s is not inside a bin directory", ErrNoJavaHome, resolved)
	}
	return filepath.Dir(bin), nil
}
