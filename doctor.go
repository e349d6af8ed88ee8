package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"jhome/internal/env"
	"jhome/internal/java"
	"jhome/internal/theme"

	"github.com/spf13/cobra"
)

// diagnosis collects findings while the checks print their progress
type diagnosis struct {
	issues   []string
	warnings []string
}

func (d *diagnosis) issue(format string, args ...any) {
	d.issues = append(d.issues, fmt.Sprintf(format, args...))
}

func (d *diagnosis) warn(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics on the Java environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDoctor(cmd.Context())
		},
	}
}

func (a *app) runDoctor(ctx context.Context) error {
	fmt.Fprintln(a.out, theme.Title.Render("jhome - System Diagnostics"))
	fmt.Fprintln(a.out)

	var d diagnosis
	probe := a.newProbe()

	// 1. Launcher
	fmt.Fprintln(a.out, theme.LabelStyle.Render("Checking java launcher..."))
	launcher, err := probe.Launcher()
	if err != nil {
		fmt.Fprintln(a.out, "  "+theme.ErrorMessage(err.Error()))
		d.issue("No java launcher found; install a JDK or pass --java")
		return a.summarize(d)
	}
	fmt.Fprintf(a.out, "  %s %s\n", theme.SuccessMessage("Found"), theme.PathStyle.Render(launcher))
	fmt.Fprintln(a.out)

	// 2. Runtime properties
	fmt.Fprintln(a.out, theme.LabelStyle.Render("Probing runtime..."))
	info, err := probe.Query(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "  "+theme.ErrorMessage(err.Error()))
		d.issue("Runtime probe failed: %v", err)
		return a.summarize(d)
	}
	fmt.Fprintf(a.out, "  %s %s\n", theme.LabelStyle.Render(java.HomeProperty+":"), theme.PathStyle.Render(info.Home))
	fmt.Fprintf(a.out, "  %s %s\n", theme.LabelStyle.Render(java.SpecVersionProperty+":"), theme.CurrentStyle.Render(info.SpecVersion))
	fmt.Fprintln(a.out)

	// 3. JDK or JRE
	fmt.Fprintln(a.out, theme.LabelStyle.Render("Checking for a JDK..."))
	jdkHome, err := java.ResolveJDKHome(info.Home)
	switch {
	case errors.Is(err, java.ErrJREOnly):
		fmt.Fprintln(a.out, "  "+theme.WarningMessage(err.Error()))
		d.warn("The active runtime is a JRE; compiling requires a JDK")
	case err != nil:
		fmt.Fprintln(a.out, "  "+theme.ErrorMessage(err.Error()))
		d.issue("No JDK found for %s", info.Home)
	default:
		fmt.Fprintf(a.out, "  %s %s\n", theme.SuccessMessage("JDK at"), theme.PathStyle.Render(jdkHome))
		a.checkJavac(ctx, &java.JDK{Home: jdkHome}, &d)
	}
	fmt.Fprintln(a.out)

	// 4. JAVA_HOME consistency
	fmt.Fprintln(a.out, theme.LabelStyle.Render("Checking JAVA_HOME..."))
	current, err := env.SystemJavaHome()
	switch {
	case err != nil || current == "":
		fmt.Fprintln(a.out, "  "+theme.WarningMessage("JAVA_HOME is not set"))
		d.warn("JAVA_HOME is not set; tools that rely on it will not find Java")
	case env.SamePath(current, info.Home) || env.SamePath(current, jdkHome):
		fmt.Fprintf(a.out, "  %s %s\n", theme.SuccessMessage("JAVA_HOME matches the runtime:"), theme.PathStyle.Render(current))
	default:
		fmt.Fprintf(a.out, "  %s %s\n", theme.WarningMessage("JAVA_HOME points elsewhere:"), theme.PathStyle.Render(current))
		d.warn("JAVA_HOME (%s) differs from the java on PATH (%s)", current, info.Home)
	}
	fmt.Fprintln(a.out)

	// 5. Configuration
	fmt.Fprintln(a.out, theme.LabelStyle.Render("Checking configuration..."))
	if a.cfgErr != nil {
		fmt.Fprintln(a.out, "  "+theme.ErrorMessage("Configuration unreadable, using defaults: "+a.cfgErr.Error()))
		d.issue("Fix or remove %s", a.cfg.File())
	} else if _, err := os.Stat(a.cfg.File()); os.IsNotExist(err) {
		fmt.Fprintln(a.out, "  "+theme.InfoMessage("No configuration file (will be created when needed)"))
	} else {
		fmt.Fprintf(a.out, "  %s %s\n", theme.SuccessMessage("Configuration loaded from"), theme.PathStyle.Render(a.cfg.File()))
	}
	detector := a.newDetector(a.cfg)
	for _, p := range a.cfg.CustomPaths {
		if !detector.IsValidJavaPath(p) {
			fmt.Fprintf(a.out, "  %s %s\n", theme.WarningMessage("Custom path has no bin/java:"), theme.PathStyle.Render(p))
			d.warn("Custom path %s is no longer a Java installation; run 'jhome remove %s'", p, p)
		}
	}

	return a.summarize(d)
}

// checkJavac makes sure the JDK's compiler actually starts
func (a *app) checkJavac(ctx context.Context, jdk *java.JDK, d *diagnosis) {
	cmd := jdk.Command(ctx, []string{jdk.Bin("javac"), "-version"})
	out, err := cmd.CombinedOutput()
	if err != nil {
		fmt.Fprintln(a.out, "  "+theme.ErrorMessage("javac failed to start: "+err.Error()))
		d.issue("javac in %s does not run: %v", jdk.Home, err)
		return
	}
	fmt.Fprintf(a.out, "  %s %s\n", theme.SuccessMessage("javac runs:"), theme.Faint.Render(strings.TrimSpace(string(out))))
}

// summarize prints the findings box; issues make the command fail
func (a *app) summarize(d diagnosis) error {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, theme.Title.Render("Diagnostics Summary"))
	fmt.Fprintln(a.out)

	if len(d.issues) == 0 && len(d.warnings) == 0 {
		fmt.Fprintln(a.out, theme.SuccessBox.Render(theme.SuccessMessage("All checks passed!")+"\n\nYour Java environment is properly configured."))
		return nil
	}

	var b strings.Builder
	if len(d.issues) > 0 {
		b.WriteString(theme.ErrorStyle.Render(fmt.Sprintf("Issues Found: %d", len(d.issues))) + "\n\n")
		for _, issue := range d.issues {
			b.WriteString(theme.ErrorMessage(issue) + "\n")
		}
	}
	if len(d.warnings) > 0 {
		if len(d.issues) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(theme.WarningStyle.Render(fmt.Sprintf("Warnings: %d", len(d.warnings))) + "\n\n")
		for _, warning := range d.warnings {
			b.WriteString(theme.WarningMessage(warning) + "\n")
		}
	}
	fmt.Fprintln(a.out, theme.Box.Render(strings.TrimRight(b.String(), "\n")))

	if len(d.issues) > 0 {
		return fmt.Errorf("%d issue(s) found", len(d.issues))
	}
	return nil
}
