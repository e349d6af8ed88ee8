package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"jhome/internal/config"

	"github.com/charmbracelet/log"
	"github.com/creativeprojects/go-selfupdate"
)

const (
	// GitHubRepo is the repository for jhome releases
	GitHubRepo = "jhome-dev/jhome"

	// CheckInterval is minimum time between rate-limited update checks
	CheckInterval = 24 * time.Hour

	// UpdateTimeout is maximum time for update operations
	UpdateTimeout = 5 * time.Minute

	// NoticeTimeout bounds the rate-limited check behind NotifyIfDue
	NoticeTimeout = 5 * time.Second
)

// ErrNoReleases is returned when the release source lists nothing for this platform
var ErrNoReleases = errors.New("no releases found")

// Source abstracts the release lookup so it can be faked
type Source interface {
	DetectLatest(ctx context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error)
}

// Updater handles checking and applying updates
type Updater struct {
	config         *config.Config
	currentVersion string
	source         Source
	logger         *log.Logger
	now            func() time.Time
}

// New creates an Updater that validates downloads against SHA256SUMS.txt
func New(cfg *config.Config, version string, logger *log.Logger) (*Updater, error) {
	su, err := selfupdate.NewUpdater(selfupdate.Config{
		Validator: &selfupdate.ChecksumValidator{
			UniqueFilename: "SHA256SUMS.txt",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return NewWithSource(cfg, version, su, logger), nil
}

// NewWithSource creates an Updater that asks source for the latest release
func NewWithSource(cfg *config.Config, version string, source Source, logger *log.Logger) *Updater {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Updater{
		config:         cfg,
		currentVersion: cleanVersion(version),
		source:         source,
		logger:         logger,
		now:            time.Now,
	}
}

// CurrentVersion returns the running version without a "v" prefix
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// ShouldCheckForUpdate reports whether a rate-limited check is due
func (u *Updater) ShouldCheckForUpdate() bool {
	if !u.config.UpdateConfig.Enabled || !u.config.UpdateConfig.AutoCheck {
		return false
	}
	return u.now().Sub(u.config.UpdateConfig.LastCheck) >= CheckInterval
}

// CheckForUpdate queries GitHub for the latest release.
// Returns nil if no update is available or the user skipped that version.
func (u *Updater) CheckForUpdate(ctx context.Context) (*selfupdate.Release, error) {
	latest, found, err := u.source.DetectLatest(ctx, selfupdate.ParseSlug(GitHubRepo))
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}

	u.config.UpdateConfig.LastCheck = u.now()
	if err := u.config.Save(); err != nil {
		u.logger.Warn("failed to save config", "err", err)
	}

	if !found {
		return nil, ErrNoReleases
	}

	if u.currentVersion != "dev" && latest.LessOrEqual(u.currentVersion) {
		return nil, nil
	}
	if u.config.UpdateConfig.SkipVersion == latest.Version() {
		u.logger.Debug("release skipped by user", "version", latest.Version())
		return nil, nil
	}

	return latest, nil
}

// NotifyIfDue runs a rate-limited update check and prints a one-line notice
// to w when a newer release exists. Failures are only logged.
func (u *Updater) NotifyIfDue(ctx context.Context, w io.Writer) {
	if !u.ShouldCheckForUpdate() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, NoticeTimeout)
	defer cancel()

	release, err := u.CheckForUpdate(ctx)
	if err != nil {
		u.logger.Debug("update check failed", "err", err)
		return
	}
	if release == nil {
		return
	}
	ShowUpdateNotification(w, u.currentVersion, release.Version())
}

// PerformUpdate downloads and installs the update.
// A backup of the running binary is restored when the update fails.
func (u *Updater) PerformUpdate(ctx context.Context, release *selfupdate.Release) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to determine executable path: %w", err)
	}

	backup := exe + ".backup"
	if err := copyFile(exe, backup); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, release.AssetURL, release.AssetName, exe); err != nil {
		if rollbackErr := os.Rename(backup, exe); rollbackErr != nil {
			return fmt.Errorf("update failed and rollback failed: update error: %w, rollback error: %v", err, rollbackErr)
		}
		return fmt.Errorf("update failed (rolled back): %w", err)
	}

	if err := os.Remove(backup); err != nil {
		u.logger.Debug("could not remove backup", "path", backup, "err", err)
	}
	return nil
}

// SkipVersion marks a version as skipped by the user
func (u *Updater) SkipVersion(version string) error {
	u.config.UpdateConfig.SkipVersion = version
	return u.config.Save()
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0755)
}

// cleanVersion removes 'v' prefix if present for consistent comparison
func cleanVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}
