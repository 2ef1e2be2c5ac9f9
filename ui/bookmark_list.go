// Package ui provides the graphical user interface for VNC Viewer.
// This file contains the BookmarkList component that displays and manages bookmarks.
package ui

import (
	"fmt"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/vncviewer/bookmarks"
	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
	"github.com/yllada/vncviewer/launcher"
)

// BookmarkList displays the bookmarks with connect, edit and delete controls.
type BookmarkList struct {
	mainWindow *MainWindow
	manager    *bookmarks.Manager
	listBox    *gtk.ListBox
	rows       map[string]*BookmarkRow
}

// BookmarkRow holds the widgets of one bookmark.
type BookmarkRow struct {
	conn        *connection.Connection
	row         *gtk.ListBoxRow
	connectBtn  *gtk.Button
	editBtn     *gtk.Button
	deleteBtn   *gtk.Button
	statusLabel *gtk.Label
	statusIcon  *gtk.Image
	spinner     *gtk.Spinner
}

// NewBookmarkList creates the bookmark list of mainWindow.
func NewBookmarkList(mainWindow *MainWindow) *BookmarkList {
	bl := &BookmarkList{
		mainWindow: mainWindow,
		listBox:    gtk.NewListBox(),
		rows:       make(map[string]*BookmarkRow),
	}

	prompter := &dialogPrompter{parent: func() *gtk.Window { return &mainWindow.window.Window }}
	bl.manager = bookmarks.NewManager(mainWindow.app.store, prompter)
	bl.manager.OnStateChange = func(state bookmarks.DialogState) {
		common.LogDebug("Bookmark dialog state: %s", state)
	}

	bl.listBox.AddCSSClass("boxed-list")
	bl.listBox.SetSelectionMode(gtk.SelectionNone)

	return bl
}

// GetWidget returns the list widget to be added to a container.
func (bl *BookmarkList) GetWidget() gtk.Widgetter {
	return bl.listBox
}

// LoadBookmarks rebuilds the list from the store.
func (bl *BookmarkList) LoadBookmarks() {
	for bl.listBox.FirstChild() != nil {
		bl.listBox.Remove(bl.listBox.FirstChild())
	}
	bl.rows = make(map[string]*BookmarkRow)

	if bl.mainWindow.app.store.Len() == 0 {
		bl.showEmptyState()
		return
	}

	for conn := range bl.mainWindow.app.store.All() {
		bl.addBookmarkRow(conn)
	}

	if tray := bl.mainWindow.app.GetTray(); tray != nil {
		tray.RefreshBookmarks()
	}
}

// showEmptyState tells the user how to add a bookmark.
func (bl *BookmarkList) showEmptyState() {
	centerBox := gtk.NewBox(gtk.OrientationVertical, 24)
	centerBox.SetHAlign(gtk.AlignCenter)
	centerBox.SetVAlign(gtk.AlignCenter)
	centerBox.SetMarginTop(48)
	centerBox.SetMarginBottom(48)
	centerBox.SetMarginStart(24)
	centerBox.SetMarginEnd(24)

	icon := gtk.NewImage()
	icon.SetFromIconName(connection.IconName)
	icon.SetPixelSize(96)
	icon.AddCSSClass("dim-label")
	centerBox.Append(icon)

	titleLabel := gtk.NewLabel("No bookmarks")
	titleLabel.AddCSSClass("title-1")
	centerBox.Append(titleLabel)

	descLabel := gtk.NewLabel("Enter a host above and click the star to bookmark it")
	descLabel.AddCSSClass("dim-label")
	centerBox.Append(descLabel)

	emptyRow := gtk.NewListBoxRow()
	emptyRow.SetChild(centerBox)
	emptyRow.SetSelectable(false)
	emptyRow.SetActivatable(false)

	bl.listBox.Append(emptyRow)
}

func (bl *BookmarkList) addBookmarkRow(conn *connection.Connection) {
	row := gtk.NewListBoxRow()
	row.SetSelectable(false)
	row.AddCSSClass("bookmark-card")

	mainBox := gtk.NewBox(gtk.OrientationHorizontal, 12)
	mainBox.SetMarginTop(12)
	mainBox.SetMarginBottom(12)
	mainBox.SetMarginStart(12)
	mainBox.SetMarginEnd(12)

	icon := gtk.NewImage()
	icon.SetFromIconName(conn.Icon())
	icon.SetPixelSize(32)
	icon.AddCSSClass("bookmark-icon")
	mainBox.Append(icon)

	infoBox := gtk.NewBox(gtk.OrientationVertical, 4)
	infoBox.SetHExpand(true)
	infoBox.SetVAlign(gtk.AlignCenter)

	nameLabel := gtk.NewLabel(conn.BestName())
	nameLabel.SetXAlign(0)
	nameLabel.AddCSSClass("heading")
	nameLabel.AddCSSClass("bookmark-name")
	infoBox.Append(nameLabel)

	addressLabel := gtk.NewLabel(conn.String())
	addressLabel.SetXAlign(0)
	addressLabel.SetSelectable(true)
	addressLabel.AddCSSClass("dim-label")
	addressLabel.AddCSSClass("caption")
	addressLabel.AddCSSClass("bookmark-address")
	infoBox.Append(addressLabel)

	mainBox.Append(infoBox)

	statusBox := gtk.NewBox(gtk.OrientationHorizontal, 6)
	statusBox.SetVAlign(gtk.AlignCenter)

	spinner := gtk.NewSpinner()
	spinner.SetVisible(false)
	statusBox.Append(spinner)

	statusIcon := gtk.NewImage()
	statusIcon.SetFromIconName("network-offline-symbolic")
	statusIcon.SetPixelSize(16)
	statusBox.Append(statusIcon)

	statusLabel := gtk.NewLabel("Not connected")
	statusLabel.AddCSSClass("status-idle")
	statusBox.Append(statusLabel)

	mainBox.Append(statusBox)

	buttonBox := gtk.NewBox(gtk.OrientationHorizontal, 6)
	buttonBox.SetVAlign(gtk.AlignCenter)
	buttonBox.SetMarginStart(12)

	connectBtn := gtk.NewButton()
	connectBtn.SetIconName("media-playback-start-symbolic")
	connectBtn.SetTooltipText("Connect")
	connectBtn.AddCSSClass("circular")
	connectBtn.AddCSSClass("connect-button")
	connectBtn.ConnectClicked(func() {
		bl.onConnectClicked(conn)
	})
	buttonBox.Append(connectBtn)

	editBtn := gtk.NewButton()
	editBtn.SetIconName("document-edit-symbolic")
	editBtn.SetTooltipText("Edit bookmark")
	editBtn.AddCSSClass("circular")
	editBtn.AddCSSClass("flat")
	editBtn.ConnectClicked(func() {
		bl.onEditClicked(conn)
	})
	buttonBox.Append(editBtn)

	deleteBtn := gtk.NewButton()
	deleteBtn.SetIconName("user-trash-symbolic")
	deleteBtn.SetTooltipText("Delete bookmark")
	deleteBtn.AddCSSClass("circular")
	deleteBtn.AddCSSClass("destructive-action")
	deleteBtn.ConnectClicked(func() {
		bl.onDeleteClicked(conn)
	})
	buttonBox.Append(deleteBtn)

	mainBox.Append(buttonBox)

	row.SetChild(mainBox)
	bl.listBox.Append(row)

	bl.rows[conn.Name] = &BookmarkRow{
		conn:        conn,
		row:         row,
		connectBtn:  connectBtn,
		editBtn:     editBtn,
		deleteBtn:   deleteBtn,
		statusLabel: statusLabel,
		statusIcon:  statusIcon,
		spinner:     spinner,
	}

	if session, ok := bl.mainWindow.app.sessions.Get(conn.Address()); ok {
		bl.updateRowStatus(conn.Address(), session.Status())
	}
}

// onConnectClicked starts a viewer, or stops the running one.
func (bl *BookmarkList) onConnectClicked(conn *connection.Connection) {
	if session, ok := bl.mainWindow.app.sessions.Get(conn.Address()); ok {
		if status := session.Status(); status == launcher.StatusStarting || status == launcher.StatusRunning {
			if err := bl.mainWindow.app.sessions.Disconnect(conn.Address()); err != nil {
				bl.mainWindow.showError("Error disconnecting", err.Error())
			}
			return
		}
	}
	bl.mainWindow.app.Connect(conn)
}

// onEditClicked runs the edit dialog off the main thread and reloads the
// list once it is settled.
func (bl *BookmarkList) onEditClicked(conn *connection.Connection) {
	oldName := conn.Name
	edited := conn.Clone()
	go func() {
		ok, err := bl.manager.EditBookmark(bl.mainWindow.app.ctx, edited)
		glib.IdleAdd(func() {
			if err != nil {
				common.LogWarn("Edit dialog failed: %v", err)
				return
			}
			if !ok {
				return
			}
			bl.LoadBookmarks()
			if edited.Name != oldName {
				bl.mainWindow.SetStatus(fmt.Sprintf("Bookmark '%s' renamed to '%s'", oldName, edited.Name))
			} else {
				bl.mainWindow.SetStatus(fmt.Sprintf("Bookmark '%s' updated", edited.Name))
			}
		})
	}()
}

// onDeleteClicked asks for confirmation and removes the bookmark.
func (bl *BookmarkList) onDeleteClicked(conn *connection.Connection) {
	name := conn.BestName()
	go func() {
		ok, err := bl.manager.DeleteBookmark(bl.mainWindow.app.ctx, conn)
		glib.IdleAdd(func() {
			if err != nil {
				common.LogWarn("Delete dialog failed: %v", err)
				return
			}
			if !ok {
				return
			}
			if err := bl.mainWindow.app.credentials.Delete(conn.Address()); err != nil {
				common.LogDebug("Could not forget password for %s: %v", conn.Address(), err)
			}
			bl.LoadBookmarks()
			bl.mainWindow.SetStatus(fmt.Sprintf("Bookmark '%s' deleted", name))
		})
	}()
}

// AddBookmark asks for a name and bookmarks conn.
func (bl *BookmarkList) AddBookmark(conn *connection.Connection) {
	go func() {
		ok, err := bl.manager.AddBookmark(bl.mainWindow.app.ctx, conn)
		glib.IdleAdd(func() {
			if err != nil {
				common.LogWarn("Add dialog failed: %v", err)
				return
			}
			if !ok {
				return
			}
			bl.LoadBookmarks()
			if conn.Name != "" {
				bl.mainWindow.SetStatus(fmt.Sprintf("Bookmark '%s' added", conn.Name))
			} else {
				bl.mainWindow.showError("Bookmark not added", fmt.Sprintf("%s could not be bookmarked.", conn.Address()))
			}
		})
	}()
}

// statusClass returns the CSS class for a session status.
func statusClass(status launcher.Status) string {
	switch status {
	case launcher.StatusStarting:
		return "status-starting"
	case launcher.StatusRunning:
		return "status-running"
	case launcher.StatusError:
		return "status-error"
	default:
		return "status-idle"
	}
}

// updateRowStatus updates every row whose bookmark points at address.
func (bl *BookmarkList) updateRowStatus(address string, status launcher.Status) {
	for _, row := range bl.rows {
		if row.conn.Address() != address {
			continue
		}

		for _, class := range statusClasses {
			row.statusLabel.RemoveCSSClass(class)
		}
		row.row.RemoveCSSClass("running")
		row.row.RemoveCSSClass("error")
		row.statusLabel.AddCSSClass(statusClass(status))
		row.statusLabel.SetText(status.String())

		switch status {
		case launcher.StatusStarting:
			row.spinner.SetVisible(true)
			row.spinner.Start()
			row.statusIcon.SetVisible(false)
			row.connectBtn.SetIconName("process-stop-symbolic")
			row.connectBtn.SetTooltipText("Cancel")
			row.editBtn.SetSensitive(false)
			row.deleteBtn.SetSensitive(false)

		case launcher.StatusRunning:
			row.spinner.Stop()
			row.spinner.SetVisible(false)
			row.statusIcon.SetVisible(true)
			row.statusIcon.SetFromIconName("network-transmit-receive-symbolic")
			row.row.AddCSSClass("running")
			row.connectBtn.SetIconName("media-playback-stop-symbolic")
			row.connectBtn.SetTooltipText("Disconnect")
			row.editBtn.SetSensitive(false)
			row.deleteBtn.SetSensitive(false)

		case launcher.StatusError:
			row.spinner.Stop()
			row.spinner.SetVisible(false)
			row.statusIcon.SetVisible(true)
			row.statusIcon.SetFromIconName("dialog-error-symbolic")
			row.row.AddCSSClass("error")
			row.connectBtn.SetIconName("view-refresh-symbolic")
			row.connectBtn.SetTooltipText("Retry")
			row.editBtn.SetSensitive(true)
			row.deleteBtn.SetSensitive(true)

		default:
			row.spinner.Stop()
			row.spinner.SetVisible(false)
			row.statusIcon.SetVisible(true)
			row.statusIcon.SetFromIconName("network-offline-symbolic")
			row.statusLabel.SetText("Not connected")
			row.connectBtn.SetIconName("media-playback-start-symbolic")
			row.connectBtn.SetTooltipText("Connect")
			row.editBtn.SetSensitive(true)
			row.deleteBtn.SetSensitive(true)
		}
	}
}
