package updater

import (
	"fmt"
	"io"
	"strings"

	"jhome/internal/theme"

	"github.com/charmbracelet/huh"
	"github.com/creativeprojects/go-selfupdate"
)

// Prompt answers
const (
	ActionUpdate = "update"
	ActionSkip   = "skip"
	ActionLater  = "later"
)

// PromptForUpdate asks whether to update now, skip this release or postpone.
// Choosing skip is persisted to the config.
func (u *Updater) PromptForUpdate(release *selfupdate.Release) (string, error) {
	sizeMB := float64(release.AssetByteSize) / 1024 / 1024
	description := fmt.Sprintf(
		"Download size: %.1f MB\n\n%s",
		sizeMB,
		truncateChangelog(release.ReleaseNotes, 400),
	)

	var action string
	err := huh.NewSelect[string]().
		Title(theme.Subtitle.Render(fmt.Sprintf("Update available: %s → %s", u.currentVersion, release.Version()))).
		Description(theme.Faint.Render(description)).
		Options(
			huh.NewOption(theme.SuccessStyle.Render("Update now"), ActionUpdate),
			huh.NewOption(theme.InfoStyle.Render("Skip this version"), ActionSkip),
			huh.NewOption(theme.WarningStyle.Render("Remind me later"), ActionLater),
		).
		Value(&action).
		Run()
	if err != nil {
		return "", err
	}

	if action == ActionSkip {
		if err := u.SkipVersion(release.Version()); err != nil {
			u.logger.Warn("failed to save skip preference", "err", err)
		}
	}

	return action, nil
}

// ShowUpdateNotification displays a subtle notification about an available update
func ShowUpdateNotification(w io.Writer, currentVersion, latestVersion string) {
	fmt.Fprintf(w, "\n%s Update available: %s → %s %s\n",
		theme.InfoStyle.Render("ℹ"),
		theme.Faint.Render(currentVersion),
		theme.CurrentStyle.Render(latestVersion),
		theme.Faint.Render("(run 'jhome update')"))
}

// ShowUpdateSuccess displays the result of a completed update
func ShowUpdateSuccess(w io.Writer, version string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.SuccessBox.Render(theme.SuccessStyle.Padding(0, 2).Render("✓ Update Complete!")))
	fmt.Fprintf(w, "\n%s %s\n\n", theme.LabelStyle.Render("Version:"), theme.CurrentStyle.Render(version))
	fmt.Fprintln(w, theme.Faint.Render("Run jhome again to use the new version."))
}

// ShowAlreadyUpToDate displays message when already on latest version
func ShowAlreadyUpToDate(w io.Writer, version string) {
	fmt.Fprintln(w, theme.SuccessMessage(fmt.Sprintf("You're already running the latest version (%s)", version)))
}

// ShowCheckingForUpdates displays a message while checking for updates
func ShowCheckingForUpdates(w io.Writer) {
	fmt.Fprintln(w, theme.InfoStyle.Render("Checking for updates..."))
}

// ShowDownloadingUpdate displays a message while downloading
func ShowDownloadingUpdate(w io.Writer, version string) {
	fmt.Fprintln(w, theme.InfoStyle.Render(fmt.Sprintf("Downloading jhome %s...", version)))
}

// truncateChangelog shortens release notes, preferring a line or word boundary
func truncateChangelog(changelog string, maxLen int) string {
	changelog = strings.TrimSpace(changelog)
	if changelog == "" {
		return "See release notes on GitHub for details."
	}
	if len(changelog) <= maxLen {
		return changelog
	}

	truncated := changelog[:maxLen]
	if idx := strings.LastIndex(truncated, "\n"); idx > maxLen/2 {
		truncated = truncated[:idx]
	} else if idx := strings.LastIndex(truncated, " "); idx > maxLen/2 {
		truncated = truncated[:idx]
	}

	return truncated + "..."
}
