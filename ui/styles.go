// Package ui provides the graphical user interface for VNC Viewer.
// This file contains the CSS styles and theming.
package ui

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Theme-aware styles; colors are relative to currentColor where possible.
const appCSS = `
/* Bookmark cards */
.bookmark-card {
    border-radius: 12px;
    margin: 6px 12px;
    padding: 8px;
    border: 1px solid alpha(currentColor, 0.15);
}

.bookmark-card:hover {
    background-color: alpha(currentColor, 0.05);
}

.bookmark-card.running {
    border-left: 4px solid #2ec27e;
    background-color: alpha(#2ec27e, 0.1);
}

.bookmark-card.error {
    border-left: 4px solid #e01b24;
    background-color: alpha(#e01b24, 0.1);
}

.bookmark-name {
    font-weight: 600;
    font-size: 14px;
}

.bookmark-address {
    font-family: monospace;
}

.bookmark-icon {
    color: #3584e4;
    -gtk-icon-style: symbolic;
}

/* Session status */
.status-running {
    color: #2ec27e;
    font-weight: 600;
}

.status-idle {
    opacity: 0.6;
}

.status-starting {
    color: #e5a50a;
    font-weight: 500;
}

.status-error {
    color: #e01b24;
    font-weight: 500;
}

button.circular {
    border-radius: 50%;
    min-width: 36px;
    min-height: 36px;
    padding: 6px;
}

.connect-button {
    background-color: #3584e4;
    color: white;
}

.connect-button:hover {
    background-color: #1c71d8;
}

.connect-button image {
    color: white;
    -gtk-icon-style: symbolic;
}

button.destructive-action {
    background-color: #e01b24;
    color: white;
}

button.destructive-action:hover {
    background-color: #c01c28;
}

/* Quick connect entry in the header */
.connect-entry {
    min-width: 260px;
}

.status-bar {
    border-top: 1px solid alpha(currentColor, 0.15);
    padding: 6px 12px;
    opacity: 0.8;
}

.preferences-card {
    border-radius: 12px;
}

entry {
    border-radius: 6px;
    min-height: 34px;
}

list {
    background-color: transparent;
}

list > row {
    background-color: transparent;
}

list > row:hover {
    background-color: transparent;
}

button.flat {
    background-color: transparent;
}

button.flat:hover {
    background-color: alpha(currentColor, 0.1);
}
`

// LoadStyles loads the custom CSS styles for the application.
// Should be called during application startup.
func LoadStyles() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(appCSS)

	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}

// statusClasses are the CSS classes set by statusClass.
var statusClasses = []string{"status-idle", "status-starting", "status-running", "status-error"}
