package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jhome/internal/env"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is used for the config directory and the env prefix
	AppName = "jhome"

	// DefaultProbeTimeout bounds a single run of the java launcher
	DefaultProbeTimeout = 10 * time.Second
)

// Config holds the application configuration
type Config struct {
	CustomPaths  []string     `json:"custom_paths" mapstructure:"custom_paths"`             // Specific Java installation paths
	SearchPaths  []string     `json:"search_paths" mapstructure:"search_paths"`             // Base directories to scan for Java installations
	JavaTarget   string       `json:"java_target,omitempty" mapstructure:"java_target"`     // Overrides the probed bytecode target
	JavaSource   string       `json:"java_source,omitempty" mapstructure:"java_source"`     // Overrides the source level (defaults to target)
	ProbeTimeout string       `json:"probe_timeout,omitempty" mapstructure:"probe_timeout"` // Duration string, e.g. "10s"
	LogLevel     string       `json:"log_level,omitempty" mapstructure:"log_level"`         // debug, info, warn, error
	UpdateConfig UpdateConfig `json:"update_config" mapstructure:"update_config"`           // Self-update configuration
	configPath   string
}

// UpdateConfig holds settings for the self-update feature
type UpdateConfig struct {
	Enabled     bool      `json:"enabled" mapstructure:"enabled"`           // Master toggle for update functionality
	AutoCheck   bool      `json:"auto_check" mapstructure:"auto_check"`     // Allow rate-limited checks
	LastCheck   time.Time `json:"last_check" mapstructure:"last_check"`     // Last time update check was performed
	SkipVersion string    `json:"skip_version" mapstructure:"skip_version"` // Version user chose to skip
}

var pathOverride string

// SetPathOverride makes Load and Save use the given file instead of the default location.
// An empty string restores the default.
func SetPathOverride(path string) {
	pathOverride = path
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		CustomPaths:  []string{},
		SearchPaths:  []string{},
		ProbeTimeout: DefaultProbeTimeout.String(),
		LogLevel:     "warn",
		UpdateConfig: UpdateConfig{
			Enabled:   true,
			AutoCheck: true,
		},
		configPath: Path(),
	}
}

// Load reads the configuration file (if any) and applies JHOME_* environment overrides
func Load() (*Config, error) {
	configPath := Path()

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the key set AutomaticEnv can resolve
	v.SetDefault("custom_paths", []string{})
	v.SetDefault("search_paths", []string{})
	v.SetDefault("java_target", "")
	v.SetDefault("java_source", "")
	v.SetDefault("probe_timeout", DefaultProbeTimeout.String())
	v.SetDefault("log_level", "warn")
	v.SetDefault("update_config.enabled", true)
	v.SetDefault("update_config.auto_check", true)
	v.SetDefault("update_config.skip_version", "")

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// Remove BOM if present (UTF-8 BOM is EF BB BF)
		data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
		if len(bytes.TrimSpace(data)) > 0 {
			if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
			}
		}
	case os.IsNotExist(err):
		// No file yet, defaults and env only
	default:
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.CustomPaths = cleanPaths(cfg.CustomPaths)
	cfg.SearchPaths = cleanPaths(cfg.SearchPaths)
	cfg.configPath = configPath
	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = Path()
	}

	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0644)
}

// File returns the path the config was loaded from
func (c *Config) File() string {
	return c.configPath
}

// Timeout returns the probe timeout, falling back to DefaultProbeTimeout on bad input
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.ProbeTimeout))
	if err != nil || d <= 0 {
		return DefaultProbeTimeout
	}
	return d
}

// AddCustomPath adds a custom Java installation path
func (c *Config) AddCustomPath(path string) {
	path = filepath.Clean(strings.TrimSpace(path))
	if path == "" || path == "." {
		return
	}
	if c.HasCustomPath(path) {
		return
	}
	c.CustomPaths = append(c.CustomPaths, path)
}

// RemoveCustomPath removes a custom Java installation path
func (c *Config) RemoveCustomPath(path string) {
	path = filepath.Clean(path)

	for i, p := range c.CustomPaths {
		if env.SamePath(p, path) {
			c.CustomPaths = append(c.CustomPaths[:i], c.CustomPaths[i+1:]...)
			return
		}
	}
}

// HasCustomPath checks if a path exists in custom paths
func (c *Config) HasCustomPath(path string) bool {
	path = filepath.Clean(path)

	for _, p := range c.CustomPaths {
		if env.SamePath(p, path) {
			return true
		}
	}
	return false
}

// AddSearchPath adds a search path for auto-detection
func (c *Config) AddSearchPath(path string) {
	path = filepath.Clean(strings.TrimSpace(path))
	if path == "" || path == "." {
		return
	}
	if c.HasSearchPath(path) {
		return
	}
	c.SearchPaths = append(c.SearchPaths, path)
}

// RemoveSearchPath removes a search path
func (c *Config) RemoveSearchPath(path string) {
	path = filepath.Clean(path)

	for i, p := range c.SearchPaths {
		if env.SamePath(p, path) {
			c.SearchPaths = append(c.SearchPaths[:i], c.SearchPaths[i+1:]...)
			return
		}
	}
}

// HasSearchPath checks if a path exists in search paths
func (c *Config) HasSearchPath(path string) bool {
	path = filepath.Clean(path)

	for _, p := range c.SearchPaths {
		if env.SamePath(p, path) {
			return true
		}
	}
	return false
}

// Path returns the path to the configuration file.
// Follows the XDG Base Directory layout.
func Path() string {
	if pathOverride != "" {
		return pathOverride
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, AppName+".json")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return filepath.Join(homeDir, ".config", AppName, AppName+".json")
}

// cleanPaths trims, cleans and de-duplicates a path list
func cleanPaths(paths []string) []string {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if p == "." {
			continue
		}
		dup := false
		for _, seen := range cleaned {
			if env.SamePath(seen, p) {
				dup = true
				break
			}
		}
		if !dup {
			cleaned = append(cleaned, p)
		}
	}
	return cleaned
}
