// Package config provides configuration management for VNC Viewer.
// It handles loading, saving, and managing application settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/yllada/vncviewer/common"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// BookmarksFile is the bookmark document. Empty means ~/.gnome2/vinagre.bookmarks.
	BookmarksFile string `yaml:"bookmarks_file"`
	// ViewerCommand is the external viewer with {host}, {port} and {name} placeholders.
	ViewerCommand string `yaml:"viewer_command"`
	// HistoryLimit is the number of recent connections shown.
	HistoryLimit int `yaml:"history_limit"`
	// RememberPasswords stores passwords in the keyring after a successful launch.
	RememberPasswords bool `yaml:"remember_passwords"`
	// ShowNotifications enables desktop notifications.
	ShowNotifications bool `yaml:"show_notifications"`
	// MinimizeToTray minimizes to system tray instead of closing.
	MinimizeToTray bool `yaml:"minimize_to_tray"`
	// Theme sets the color theme: "light", "dark", or "auto".
	Theme string `yaml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BookmarksFile:     "",
		ViewerCommand:     common.DefaultViewerCommand,
		HistoryLimit:      common.DefaultHistoryLimit,
		RememberPasswords: false,
		ShowNotifications: true,
		MinimizeToTray:    false,
		Theme:             common.ThemeAuto,
	}
}

// Load loads the configuration from the default config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration at path, writing defaults there when the
// file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := cfg.SaveTo(path); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	config := DefaultConfig()
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}

	config.validate()
	return config, nil
}

// validate replaces out-of-range values with defaults.
func (c *Config) validate() {
	validThemes := []string{common.ThemeAuto, common.ThemeLight, common.ThemeDark}
	if !slices.Contains(validThemes, c.Theme) {
		common.LogWarn("Unknown theme %q, using %q", c.Theme, common.ThemeAuto)
		c.Theme = common.ThemeAuto
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = common.DefaultHistoryLimit
	}
	if c.ViewerCommand == "" {
		c.ViewerCommand = common.DefaultViewerCommand
	}
}

// Save saves the configuration to the default file.
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	if err := common.AtomicWrite(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	return nil
}

// BookmarksPath returns the bookmark document location with "~" expanded.
func (c *Config) BookmarksPath() (string, error) {
	if c.BookmarksFile != "" {
		return common.ExpandHome(c.BookmarksFile), nil
	}
	return common.DefaultBookmarksPath()
}

// Path returns the default configuration file location.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", common.ConfigDirName, common.ConfigFileName), nil
}
