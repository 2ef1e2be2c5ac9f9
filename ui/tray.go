// Package ui provides the graphical user interface for VNC Viewer.
// This file contains the system tray indicator functionality.
package ui

import (
	"fmt"
	"sync"

	"fyne.io/systray"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

// Pre-generated icons for performance.
var (
	iconActive = GenerateActiveIcon()
	iconIdle   = GenerateIdleIcon()
)

// TrayIndicator manages the system tray icon and menu.
// It opens bookmarks and recent connections without the main window.
type TrayIndicator struct {
	app *Application

	mu             sync.Mutex
	ready          bool
	statusItem     *systray.MenuItem
	disconnectItem *systray.MenuItem
	bookmarksMenu  *systray.MenuItem
	bookmarkItems  map[string]*systray.MenuItem
	recentMenu     *systray.MenuItem
	recentItems    []*systray.MenuItem
	recentConns    []*connection.Connection
}

// NewTrayIndicator creates a new system tray indicator.
func NewTrayIndicator(app *Application) *TrayIndicator {
	return &TrayIndicator{
		app:           app,
		bookmarkItems: make(map[string]*systray.MenuItem),
	}
}

// Run starts the system tray indicator.
// This should be called from a goroutine as it blocks.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop removes the tray icon.
func (t *TrayIndicator) Stop() {
	systray.Quit()
}

func (t *TrayIndicator) onReady() {
	systray.SetIcon(iconIdle)
	systray.SetTitle(common.AppName)
	systray.SetTooltip(common.AppName + " - No viewer running")

	t.mu.Lock()
	t.statusItem = systray.AddMenuItem("○  No viewer running", "Viewer status")
	t.statusItem.Disable()

	t.disconnectItem = systray.AddMenuItem("⏹  Close All Viewers", "Stop every running viewer")
	t.disconnectItem.Hide()

	systray.AddSeparator()

	t.bookmarksMenu = systray.AddMenuItem("Bookmarks", "Open a bookmark")
	t.recentMenu = systray.AddMenuItem("Recent Connections", "Open a recent connection")

	systray.AddSeparator()

	showItem := systray.AddMenuItem("Open "+common.AppName, "Show main window")
	quitItem := systray.AddMenuItem("Quit", "Close "+common.AppName)
	t.ready = true
	t.mu.Unlock()

	go func() {
		for range t.disconnectItem.ClickedCh {
			t.app.sessions.DisconnectAll()
		}
	}()
	go func() {
		for range showItem.ClickedCh {
			glib.IdleAdd(t.app.showWindow)
		}
	}()
	go func() {
		for range quitItem.ClickedCh {
			t.app.Quit()
		}
	}()

	t.RefreshBookmarks()
	t.RefreshRecent()
}

func (t *TrayIndicator) onExit() {
	common.LogInfo("Tray indicator cleanup completed")
}

// RefreshBookmarks syncs the bookmark submenu with the store.
func (t *TrayIndicator) RefreshBookmarks() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		return
	}

	present := make(map[string]bool)
	for conn := range t.app.store.All() {
		present[conn.Name] = true
		if item, ok := t.bookmarkItems[conn.Name]; ok {
			item.SetTooltip(conn.String())
			item.Show()
			continue
		}

		item := t.bookmarksMenu.AddSubMenuItem(conn.Name, conn.String())
		t.bookmarkItems[conn.Name] = item
		go t.watchBookmark(conn.Name, item)
	}

	for name, item := range t.bookmarkItems {
		if !present[name] {
			item.Hide()
		}
	}
}

// watchBookmark connects to the bookmark called name on every click.
func (t *TrayIndicator) watchBookmark(name string, item *systray.MenuItem) {
	for range item.ClickedCh {
		conn, err := t.app.store.Get(name)
		if err != nil {
			common.LogWarn("Tray: %v", err)
			continue
		}
		glib.IdleAdd(func() {
			t.app.Connect(conn)
		})
	}
}

// RefreshRecent reloads the recent connections submenu from the history.
func (t *TrayIndicator) RefreshRecent() {
	if t.app.history == nil {
		return
	}

	go func() {
		entries, err := t.app.history.Recent(t.app.ctx, t.app.config.HistoryLimit)
		if err != nil {
			common.LogWarn("Tray: could not load recent connections: %v", err)
			return
		}

		t.mu.Lock()
		defer t.mu.Unlock()
		if !t.ready {
			return
		}

		t.recentConns = t.recentConns[:0]
		for i, entry := range entries {
			conn := entry.Connection()
			t.recentConns = append(t.recentConns, conn)

			title := fmt.Sprintf("%s  (%s)", conn.BestName(), entry.ConnectedAt.Format("Jan 2 15:04"))
			if i < len(t.recentItems) {
				t.recentItems[i].SetTitle(title)
				t.recentItems[i].Show()
				continue
			}
			item := t.recentMenu.AddSubMenuItem(title, conn.String())
			t.recentItems = append(t.recentItems, item)
			go t.watchRecent(i, item)
		}
		for i := len(entries); i < len(t.recentItems); i++ {
			t.recentItems[i].Hide()
		}

		if len(entries) == 0 {
			t.recentMenu.Disable()
		} else {
			t.recentMenu.Enable()
		}
	}()
}

// watchRecent connects to the entry shown in slot i on every click.
func (t *TrayIndicator) watchRecent(i int, item *systray.MenuItem) {
	for range item.ClickedCh {
		t.mu.Lock()
		var conn *connection.Connection
		if i < len(t.recentConns) {
			conn = t.recentConns[i].Clone()
		}
		t.mu.Unlock()

		if conn == nil {
			continue
		}
		glib.IdleAdd(func() {
			t.app.Connect(conn)
		})
	}
}

// SetRunning updates the icon and status line for n running viewers.
func (t *TrayIndicator) SetRunning(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		return
	}

	if n == 0 {
		systray.SetIcon(iconIdle)
		systray.SetTooltip(common.AppName + " - No viewer running")
		t.statusItem.SetTitle("○  No viewer running")
		t.disconnectItem.Hide()
		return
	}

	systray.SetIcon(iconActive)
	systray.SetTooltip(fmt.Sprintf("%s - %d viewer(s) running", common.AppName, n))
	t.statusItem.SetTitle(fmt.Sprintf("●  %d viewer(s) running", n))
	t.disconnectItem.Show()
}
