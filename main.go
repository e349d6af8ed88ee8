package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"jhome/internal/config"
	"jhome/internal/java"
	"jhome/internal/theme"
	"jhome/internal/updater"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is set during build time via ldflags
var Version = "dev"

// app carries what every command needs; tests build one around buffers
type app struct {
	out         io.Writer
	errOut      io.Writer
	logger      *log.Logger
	cfg         *config.Config
	cfgErr      error // set when the config file was unreadable and defaults are in use
	interactive bool

	// Flags shared by several commands
	verbose  bool
	cfgFile  string
	javaPath string

	newProbe    func() *java.Probe
	newDetector func(cfg *config.Config) *java.Detector
	newUpdater  func(cfg *config.Config) (*updater.Updater, error)
}

// writesConfig marks commands that persist the config; they refuse to run
// over an unreadable file instead of replacing it with defaults
const writesConfig = "jhome/writes-config"

func newApp(out, errOut io.Writer) *app {
	a := &app{
		out:    out,
		errOut: errOut,
		logger: log.NewWithOptions(errOut, log.Options{
			Prefix: "jhome",
			Level:  log.WarnLevel,
		}),
		newDetector: java.NewDetector,
	}
	a.newProbe = a.defaultProbe
	a.newUpdater = func(cfg *config.Config) (*updater.Updater, error) {
		return updater.New(cfg, Version, a.logger)
	}
	return a
}

func (a *app) defaultProbe() *java.Probe {
	p := java.NewProbe(a.logger)
	p.Java = a.javaPath
	if a.cfg != nil {
		p.Timeout = a.cfg.Timeout()
	}
	return p
}

func newRootCmd(a *app) *cobra.Command {
	var raw bool

	root := &cobra.Command{
		Use:   "jhome",
		Short: "Print the active Java runtime's home and specification version",
		Long: theme.Title.Render("jhome") + theme.Subtitle.Render(" - Java runtime probe") + `

Without a command, jhome asks the java launcher on PATH for its installation
directory and the Java specification version it implements:

  java.home:/usr/lib/jvm/java-17-openjdk-amd64
  java.specification.version:17

Use --raw to print the bare values, one per line.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runProbe(cmd.Context(), !raw)
		},
	}

	root.Flags().BoolVar(&raw, "raw", false, "print values without property labels")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging on stderr")
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/jhome/jhome.json)")
	root.PersistentFlags().StringVar(&a.javaPath, "java", "", "java launcher to probe (default is java on PATH)")

	root.AddCommand(
		newJDKCmd(a),
		newEnvCmd(a),
		newCmdlineCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newAddPathCmd(a),
		newRemovePathCmd(a),
		newListPathsCmd(a),
		newDoctorCmd(a),
		newUpdateCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the config and applies the log level before any command runs.
// An unreadable config file only stops commands that write it; the rest fall
// back to defaults.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	config.SetPathOverride(a.cfgFile)

	cfg, err := config.Load()
	if err != nil {
		if _, ok := cmd.Annotations[writesConfig]; ok {
			return fmt.Errorf("error loading config: %w", err)
		}
		a.cfgErr = err
		cfg = config.Default()
	}
	a.cfg = cfg

	level := log.WarnLevel
	if cfg.LogLevel != "" {
		parsed, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
		if err != nil {
			a.logger.Warn("ignoring invalid log_level", "value", cfg.LogLevel)
		} else {
			level = parsed
		}
	}
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger.SetLevel(level)

	switch {
	case a.cfgErr == nil:
		a.logger.Debug("config loaded", "path", cfg.File(), "command", cmd.Name())
	case cmd == cmd.Root():
		// stderr stays quiet for the probe itself
		a.logger.Debug("using default config", "err", a.cfgErr)
	default:
		a.logger.Warn("using default config", "err", a.cfgErr)
	}

	return nil
}

// runProbe prints java.home and java.specification.version. Nothing reaches
// stdout unless both values resolved.
func (a *app) runProbe(ctx context.Context, labeled bool) error {
	info, err := a.newProbe().Query(ctx)
	if err != nil {
		return err
	}
	return info.Write(a.out, labeled)
}

func main() {
	a := newApp(os.Stdout, os.Stderr)
	a.interactive = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, theme.ErrorMessage(err.Error()))
		os.Exit(1)
	}
}
