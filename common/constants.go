// Package common provides shared constants, types, and utilities
// used across the VNC Viewer application.
package common

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.vncviewer.app"
	// AppName is the display name of the application.
	AppName = "VNC Viewer"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "vncviewer"
)

// File names used by the application.
const (
	// BookmarksDirName is the directory under $HOME holding the bookmark file.
	// The location is shared with older GNOME remote desktop viewers.
	BookmarksDirName    = ".gnome2"
	BookmarksFileName   = "vinagre.bookmarks"
	ConfigFileName      = "config.yaml"
	CredentialsFileName = ".credentials"
	HistoryFileName     = "history.db"
	LogFileName         = "vncviewer.log"
)

// Connection defaults.
const (
	// DefaultScheme is the only URI scheme accepted by the connection parser.
	DefaultScheme = "vnc"
	// DefaultPort is used when a connection URI has no explicit port.
	DefaultPort = 5900
	// ConnectionGroup is the key-file group read from .vnc connection files.
	ConnectionGroup = "connection"
	// DefaultViewerCommand is the external viewer invoked to open a connection.
	DefaultViewerCommand = "vncviewer {host}::{port}"
	// DefaultHistoryLimit is how many recent connections are listed by default.
	DefaultHistoryLimit = 20
)

// UI constants.
const (
	// DefaultWindowWidth is the default main window width.
	DefaultWindowWidth = 560
	// DefaultWindowHeight is the default main window height.
	DefaultWindowHeight = 480
	// DialogMargin is the standard margin for dialog content.
	DialogMargin = 24
	// TrayIconSize is the size of the system tray icon.
	TrayIconSize = 22
	// MaxPort is the upper bound of the port spin buttons.
	MaxPort = 65535
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)
