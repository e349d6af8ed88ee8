package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"jhome/internal/env"
	"jhome/internal/java"
	"jhome/internal/theme"
	"jhome/internal/updater"

	"github.com/spf13/cobra"
)

func newJDKCmd(a *app) *cobra.Command {
	var overrides java.Overrides

	cmd := &cobra.Command{
		Use:   "jdk",
		Short: "Resolve the JDK behind the active runtime and the language levels to compile for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jdk, err := a.detectJDK(cmd.Context(), overrides)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "jdk.home:%s\njava.target:%s\njava.source:%s\n", jdk.Home, jdk.Target, jdk.Source)
			return err
		},
	}

	cmd.Flags().StringVar(&overrides.Target, "target", "", "bytecode target (overrides java_target)")
	cmd.Flags().StringVar(&overrides.Source, "source", "", "source level (overrides java_source)")
	return cmd
}

// detectJDK merges flag overrides over the configured ones
func (a *app) detectJDK(ctx context.Context, flags java.Overrides) (*java.JDK, error) {
	overrides := java.Overrides{Target: a.cfg.JavaTarget, Source: a.cfg.JavaSource}
	if flags.Target != "" {
		overrides.Target = flags.Target
	}
	if flags.Source != "" {
		overrides.Source = flags.Source
	}
	return java.Detect(ctx, a.newProbe(), overrides)
}

func newEnvCmd(a *app) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print JAVA_HOME and JAVAC for the detected JDK",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jdk, err := a.detectJDK(cmd.Context(), java.Overrides{})
			if err != nil {
				return err
			}

			vars := jdk.Env()
			keys := make([]string, 0, len(vars))
			for k := range vars {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			prefix := ""
			if export {
				prefix = "export "
			}
			for _, k := range keys {
				if _, err := fmt.Fprintf(a.out, "%s%s=%s\n", prefix, k, vars[k]); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&export, "export", false, "prefix each line with 'export' for POSIX shells")
	return cmd
}

func newCmdlineCmd(a *app) *cobra.Command {
	var opts java.CmdOptions

	cmd := &cobra.Command{
		Use:       "cmdline {java|javac}",
		Short:     "Print the command line for running java or javac from the detected JDK",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"java", "javac"},
		RunE: func(cmd *cobra.Command, args []string) error {
			jdk, err := a.detectJDK(cmd.Context(), java.Overrides{})
			if err != nil {
				return err
			}

			var argv []string
			switch args[0] {
			case "java":
				argv = jdk.JavaCmd(opts)
			case "javac":
				argv = jdk.JavacCmd(opts)
			default:
				return fmt.Errorf("unknown tool %q (expected java or javac)", args[0])
			}

			_, err = fmt.Fprintln(a.out, strings.Join(argv, " "))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.MaxMem, "max-mem", "", "heap limit, e.g. 512m")
	cmd.Flags().StringVar(&opts.Target, "target", "", "javac -target")
	cmd.Flags().StringVar(&opts.Source, "source", "", "javac -source")
	cmd.Flags().StringSliceVar(&opts.Classpath, "cp", nil, "classpath entry (repeatable or comma-separated)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List Java installations found on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			versions, err := a.scan()
			if err != nil {
				if len(versions) == 0 {
					return fmt.Errorf("error finding Java installations: %w", err)
				}
				a.logger.Warn("some search paths could not be read", "err", err)
			}

			if len(versions) == 0 {
				fmt.Fprintln(a.out, theme.WarningMessage("No Java installations found."))
				fmt.Fprintln(a.out, theme.Faint.Render("Use 'jhome add <path>' to register one."))
				return nil
			}

			current, _ := env.SystemJavaHome()
			fmt.Fprintln(a.out, theme.Title.Render("Available Java Installations:"))
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, renderVersionTable(versions, current))

			if current == "" {
				fmt.Fprintln(a.out)
				fmt.Fprintln(a.out, theme.WarningMessage("JAVA_HOME is not set"))
			}
			return nil
		},
	}
}

// scan runs the detector, behind a spinner when attached to a terminal
func (a *app) scan() ([]java.Version, error) {
	detector := a.newDetector(a.cfg)

	var versions []java.Version
	find := func() error {
		var err error
		versions, err = detector.FindAll()
		return err
	}

	if !a.interactive {
		return versions, find()
	}
	err := java.WithScanner("Scanning for Java installations...", find)
	return versions, err
}

func newAddCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:         "add <path>",
		Short:       "Register a Java installation outside the standard locations",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{writesConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			detector := a.newDetector(a.cfg)

			if !detector.IsValidJavaPath(path) {
				return fmt.Errorf("invalid Java installation path: %s (expected bin/java inside it)", path)
			}
			if a.cfg.HasCustomPath(path) {
				fmt.Fprintln(a.out, theme.WarningMessage("This path is already in the custom paths list."))
				return nil
			}

			version := detector.GetVersion(path)
			if a.interactive && !yes {
				confirmed, err := confirmAction(fmt.Sprintf("Add Java %s?", version), "Path: "+path)
				if err != nil || !confirmed {
					fmt.Fprintln(a.out, theme.WarningStyle.Render("Operation cancelled."))
					return nil
				}
			}

			a.cfg.AddCustomPath(path)
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintln(a.out, theme.SuccessMessage(fmt.Sprintf("Added Java %s to custom paths.", version)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:         "remove [path]",
		Short:       "Forget a registered Java installation",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{writesConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch {
			case len(args) == 1:
				path = args[0]
			case len(a.cfg.CustomPaths) == 0:
				fmt.Fprintln(a.out, theme.InfoMessage("No custom Java installations to remove"))
				return nil
			case !a.interactive:
				return errors.New("no path given; usage: jhome remove <path>")
			default:
				selected, err := selectCustomPath(a.newDetector(a.cfg), a.cfg.CustomPaths)
				if err != nil {
					fmt.Fprintln(a.out, theme.WarningStyle.Render(fmt.Sprintf("Selection cancelled: %v", err)))
					return nil
				}
				path = selected
			}

			if !a.cfg.HasCustomPath(path) {
				fmt.Fprintln(a.out, theme.WarningMessage("This path is not in the custom paths list."))
				return nil
			}

			if a.interactive && !yes {
				confirmed, err := confirmAction("Remove this installation?", "Path: "+path)
				if err != nil || !confirmed {
					fmt.Fprintln(a.out, theme.WarningStyle.Render("Operation cancelled."))
					return nil
				}
			}

			a.cfg.RemoveCustomPath(path)
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintln(a.out, theme.SuccessMessage("Removed from custom paths."))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "update",
		Short:       "Check for and install a newer jhome release",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{writesConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.UpdateConfig.Enabled {
				fmt.Fprintln(a.out, theme.WarningStyle.Render("Updates are disabled in configuration."))
				fmt.Fprintln(a.out, theme.Faint.Render("Set update_config.enabled to true in "+a.cfg.File()))
				return nil
			}

			upd, err := a.newUpdater(a.cfg)
			if err != nil {
				return fmt.Errorf("error initializing updater: %w", err)
			}

			updater.ShowCheckingForUpdates(a.out)

			ctx, cancel := context.WithTimeout(cmd.Context(), updater.UpdateTimeout)
			defer cancel()

			release, err := upd.CheckForUpdate(ctx)
			if err != nil {
				return fmt.Errorf("update check failed: %w", err)
			}
			if release == nil {
				updater.ShowAlreadyUpToDate(a.out, Version)
				return nil
			}

			if !a.interactive {
				fmt.Fprintln(a.out, theme.InfoMessage(fmt.Sprintf("Update available: %s → %s", upd.CurrentVersion(), release.Version())))
				return nil
			}

			action, err := upd.PromptForUpdate(release)
			if err != nil {
				fmt.Fprintln(a.out, theme.WarningStyle.Render("Update cancelled."))
				return nil
			}

			switch action {
			case updater.ActionSkip:
				fmt.Fprintln(a.out, theme.InfoMessage(fmt.Sprintf("Skipped version %s", release.Version())))
				return nil
			case updater.ActionLater:
				fmt.Fprintln(a.out, theme.InfoMessage("Update postponed"))
				return nil
			}

			updater.ShowDownloadingUpdate(a.out, release.Version())
			if err := upd.PerformUpdate(ctx, release); err != nil {
				return err
			}

			updater.ShowUpdateSuccess(a.out, release.Version())
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.out, "%s %s %s\n",
				theme.Subtitle.Render("jhome"),
				theme.Faint.Render("version"),
				theme.HighlightText(Version))
			if err != nil {
				return err
			}

			upd, err := a.newUpdater(a.cfg)
			if err != nil {
				a.logger.Debug("update check unavailable", "err", err)
				return nil
			}
			upd.NotifyIfDue(cmd.Context(), a.out)
			return nil
		},
	}
}
