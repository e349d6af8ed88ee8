package main

import (
	"fmt"
	"strings"

	"jhome/internal/env"
	"jhome/internal/java"
	"jhome/internal/theme"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// confirmAction shows a confirmation prompt
func confirmAction(title, description string) (bool, error) {
	var confirmed bool

	err := huh.NewConfirm().
		Title(theme.Subtitle.Render(title)).
		Description(theme.Faint.Render(description)).
		Affirmative(theme.SuccessStyle.Render("Yes")).
		Negative(theme.ErrorStyle.Render("No")).
		Value(&confirmed).
		Run()

	return confirmed, err
}

// selectCustomPath lets the user pick one of the registered installations
func selectCustomPath(detector *java.Detector, paths []string) (string, error) {
	options := make([]huh.Option[string], len(paths))
	for i, p := range paths {
		ver := theme.CurrentStyle.Render(detector.GetVersion(p))
		label := fmt.Sprintf("%s %s %s", padRight(ver, 15), p, theme.Faint.Render("(custom)"))
		options[i] = huh.NewOption(label, p)
	}

	var selected string
	err := huh.NewSelect[string]().
		Title(theme.Subtitle.Render("Select Java Installation to Remove")).
		Description(theme.Faint.Render("Use arrow keys to navigate, Enter to select")).
		Options(options...).
		Value(&selected).
		Run()

	return selected, err
}

// renderVersionTable lays out installations with the current JAVA_HOME marked
func renderVersionTable(versions []java.Version, current string) string {
	header := theme.TableHeader
	cell := theme.TableCell

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Left,
		header.Width(9).Render("Current"),
		header.Width(14).Render("Version"),
		header.Width(6).Render("Spec"),
		header.Width(6).Render("Kind"),
		header.Width(50).Render("Path"),
		header.Render("Source"),
	)}

	for _, v := range versions {
		mark := ""
		version := v.Version
		if env.SamePath(v.Path, current) {
			mark = theme.SuccessMessage("")
			version = theme.CurrentStyle.Render(version)
		}

		kind := "JRE"
		if v.IsJDK {
			kind = "JDK"
		}

		source, sourceStyle := "auto", theme.Faint
		if v.IsCustom {
			source, sourceStyle = "custom", theme.InfoStyle
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
			cell.Width(9).Align(lipgloss.Center).Render(mark),
			cell.Width(14).Render(version),
			cell.Width(6).Render(v.Spec()),
			cell.Width(6).Render(kind),
			cell.Width(50).Render(v.Path),
			sourceStyle.Render(source),
		))
	}

	return theme.TableStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// padRight pads styled text to a visual width
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
