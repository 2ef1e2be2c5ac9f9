// Package ui provides the graphical user interface for VNC Viewer.
//
// This package implements the GTK4-based user interface including:
//
//   - Main application window with the bookmark list and a quick connect entry
//   - Add, edit and delete bookmark dialogs
//   - System tray indicator with bookmarks and recent connections
//   - Preferences dialog
//   - Desktop notifications over D-Bus
//
// # Architecture
//
// The UI is built on GTK4 and libadwaita using the gotk4 bindings. Key components:
//
//   - Application: GTK application lifecycle, viewer sessions and credentials
//   - MainWindow: Primary window with the header bar, menu and status bar
//   - BookmarkList: Bookmark rows with connect, edit and delete controls
//   - TrayIndicator: System tray integration for background operation
//
// # Dialogs
//
// Bookmark dialogs implement bookmarks.Prompter. A Prompter call blocks until
// the user answers, so the bookmark manager runs in a goroutine while the
// dialog itself is built and shown on the main thread.
//
// # Thread Safety
//
// GTK operations must execute on the main thread. When updating UI
// from background goroutines (like viewer process monitoring), use
// glib.IdleAdd() to schedule updates on the main thread.
//
// Example:
//
//	go func() {
//	    // Background work...
//	    glib.IdleAdd(func() {
//	        // Safe to update UI here
//	        label.SetText("Connected")
//	    })
//	}()
//
// # File Organization
//
//   - app.go: Application lifecycle, connecting and session events
//   - main_window.go: Main window layout, menu, import and export
//   - bookmark_list.go: Bookmark display and controls
//   - dialogs.go: Bookmark and password dialogs
//   - loader.go: GIO-backed reading of connection files
//   - tray.go: System tray indicator
//   - icons.go: Icon generation for tray
//   - styles.go: CSS styling and theme support
//   - notifications.go: Desktop notification integration
//   - preferences.go: Settings dialog
package ui
