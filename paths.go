package main

import (
	"errors"
	"fmt"

	"jhome/internal/java"
	"jhome/internal/theme"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newAddPathCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:         "add-path <directory>",
		Short:       "Add a directory the scanner searches for Java installations",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{writesConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if !a.newDetector(a.cfg).IsValidSearchPath(path) {
				return fmt.Errorf("invalid directory path: %s (make sure it exists and is a directory)", path)
			}
			if a.cfg.HasSearchPath(path) {
				fmt.Fprintln(a.out, theme.WarningMessage("This search path is already configured."))
				return nil
			}

			if a.interactive && !yes {
				confirmed, err := confirmAction(
					"Add search path?",
					fmt.Sprintf("Path: %s\n\nThe scanner will look for Java installations in this directory.", path),
				)
				if err != nil || !confirmed {
					fmt.Fprintln(a.out, theme.WarningStyle.Render("Operation cancelled."))
					return nil
				}
			}

			a.cfg.AddSearchPath(path)
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintln(a.out, theme.SuccessMessage("Added search path:"))
			fmt.Fprintln(a.out, "  "+theme.PathStyle.Render(path))
			fmt.Fprintln(a.out, theme.Faint.Render("Run ")+theme.Code.Render("jhome list")+theme.Faint.Render(" to see detected versions"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newRemovePathCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:         "remove-path [directory]",
		Short:       "Stop searching a directory for Java installations",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{writesConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch {
			case len(args) == 1:
				path = args[0]
			case len(a.cfg.SearchPaths) == 0:
				fmt.Fprintln(a.out, theme.InfoMessage("No custom search paths to remove"))
				fmt.Fprintln(a.out, "  "+theme.Faint.Render("Use ")+theme.Code.Render("jhome add-path <directory>")+theme.Faint.Render(" to add one"))
				return nil
			case !a.interactive:
				return errors.New("no directory given; usage: jhome remove-path <directory>")
			default:
				selected, err := selectSearchPath(a.newDetector(a.cfg), a.cfg.SearchPaths)
				if err != nil {
					fmt.Fprintln(a.out, theme.WarningStyle.Render(fmt.Sprintf("Selection cancelled: %v", err)))
					return nil
				}
				path = selected
			}

			if !a.cfg.HasSearchPath(path) {
				fmt.Fprintln(a.out, theme.WarningMessage("This path is not in the search paths list."))
				return nil
			}

			if a.interactive && !yes {
				confirmed, err := confirmAction("Remove search path?", "Path: "+path)
				if err != nil || !confirmed {
					fmt.Fprintln(a.out, theme.WarningStyle.Render("Operation cancelled."))
					return nil
				}
			}

			a.cfg.RemoveSearchPath(path)
			if err := a.cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintln(a.out, theme.SuccessMessage("Removed search path."))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newListPathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-paths",
		Short: "Show the directories scanned for Java installations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			detector := a.newDetector(a.cfg)

			fmt.Fprintln(a.out, theme.Title.Render("Java Search Paths"))
			fmt.Fprintln(a.out)

			fmt.Fprintln(a.out, theme.LabelStyle.Render("Standard Paths (built-in):"))
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, renderPathTable(detector, detector.StandardPaths()))
			fmt.Fprintln(a.out)

			fmt.Fprintln(a.out, theme.LabelStyle.Render("Custom Search Paths:"))
			fmt.Fprintln(a.out)
			if len(a.cfg.SearchPaths) == 0 {
				fmt.Fprintln(a.out, "  "+theme.Faint.Render("None configured. Use ")+theme.Code.Render("jhome add-path <directory>")+theme.Faint.Render(" to add one"))
				return nil
			}
			fmt.Fprintln(a.out, renderPathTable(detector, a.cfg.SearchPaths))
			return nil
		},
	}
}

// renderPathTable lists directories with whether they exist
func renderPathTable(detector *java.Detector, paths []string) string {
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Left,
		theme.TableHeader.Width(50).Render("Path"),
		theme.TableHeader.Render("Status"),
	)}

	for _, p := range paths {
		status := theme.ErrorStyle.Padding(0, 1).Render("Not found")
		if detector.IsValidSearchPath(p) {
			status = theme.SuccessStyle.Padding(0, 1).Render("Exists")
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
			theme.TableCell.Width(50).Render(p),
			status,
		))
	}

	return theme.TableStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// selectSearchPath lets the user pick one of the configured search paths
func selectSearchPath(detector *java.Detector, paths []string) (string, error) {
	maxW := 0
	for _, p := range paths {
		if w := lipgloss.Width(theme.CurrentStyle.Render(p)); w > maxW {
			maxW = w
		}
	}

	options := make([]huh.Option[string], len(paths))
	for i, p := range paths {
		status := theme.Faint.Render("Not found")
		if detector.IsValidSearchPath(p) {
			status = theme.SuccessStyle.Render("Exists")
		}
		label := fmt.Sprintf("%s  %s", padRight(theme.CurrentStyle.Render(p), maxW), status)
		options[i] = huh.NewOption(label, p)
	}

	var selected string
	err := huh.NewSelect[string]().
		Title(theme.Subtitle.Render("Select Search Path to Remove")).
		Description(theme.Faint.Render("Use arrow keys to navigate, Enter to select")).
		Options(options...).
		Value(&selected).
		Run()

	return selected, err
}
