package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

// MainWindow represents the main application window.
type MainWindow struct {
	app          *Application
	window       *gtk.ApplicationWindow
	headerBar    *gtk.HeaderBar
	connectEntry *gtk.Entry
	bookmarkList *BookmarkList
	statusBar    *gtk.Box
	statusLabel  *gtk.Label
}

// NewMainWindow creates a new main window.
func NewMainWindow(app *Application) *MainWindow {
	mw := &MainWindow{
		app: app,
	}

	mw.window = gtk.NewApplicationWindow(&app.app.Application)
	mw.window.SetTitle(common.AppName)
	mw.window.SetDefaultSize(800, 600)
	mw.window.SetIconName(connection.IconName)

	// Closing hides to the tray when enabled
	mw.window.SetHideOnClose(app.config.MinimizeToTray)

	mw.createLayout()

	return mw
}

// createLayout creates the window layout.
func (mw *MainWindow) createLayout() {
	mw.headerBar = gtk.NewHeaderBar()

	openButton := gtk.NewButton()
	openButton.SetIconName("document-open-symbolic")
	openButton.SetTooltipText("Open connection file")
	openButton.ConnectClicked(mw.onOpenFile)
	mw.headerBar.PackStart(openButton)

	// Quick connect: host, host:port or vnc:// URI
	connectBox := gtk.NewBox(gtk.OrientationHorizontal, 0)
	connectBox.AddCSSClass("linked")

	mw.connectEntry = gtk.NewEntry()
	mw.connectEntry.SetPlaceholderText("host:port or vnc://host")
	mw.connectEntry.AddCSSClass("connect-entry")
	mw.connectEntry.ConnectActivate(mw.onQuickConnect)
	connectBox.Append(mw.connectEntry)

	connectButton := gtk.NewButton()
	connectButton.SetIconName("media-playback-start-symbolic")
	connectButton.SetTooltipText("Connect")
	connectButton.ConnectClicked(mw.onQuickConnect)
	connectBox.Append(connectButton)

	bookmarkButton := gtk.NewButton()
	bookmarkButton.SetIconName("starred-symbolic")
	bookmarkButton.SetTooltipText("Bookmark this host")
	bookmarkButton.ConnectClicked(mw.onBookmarkEntry)
	connectBox.Append(bookmarkButton)

	mw.headerBar.SetTitleWidget(connectBox)

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetTooltipText("Menu")
	menuButton.SetMenuModel(mw.createMenu())
	mw.headerBar.PackEnd(menuButton)

	mw.window.SetTitlebar(mw.headerBar)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 0)

	mw.bookmarkList = NewBookmarkList(mw)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetChild(mw.bookmarkList.GetWidget())
	mainBox.Append(scrolled)

	mw.createStatusBar()
	mainBox.Append(mw.statusBar)

	mw.window.SetChild(mainBox)

	mw.bookmarkList.LoadBookmarks()
}

// createMenu creates the application menu.
func (mw *MainWindow) createMenu() *gio.Menu {
	menu := gio.NewMenu()

	bookmarksSection := gio.NewMenu()
	bookmarksSection.Append("Import Bookmarks...", "app.import")
	bookmarksSection.Append("Export Bookmarks...", "app.export")
	bookmarksSection.Append("Reload Bookmarks", "app.refresh")
	menu.AppendSection("", &bookmarksSection.MenuModel)

	historySection := gio.NewMenu()
	historySection.Append("Clear Recent Connections", "app.clear-history")
	menu.AppendSection("", &historySection.MenuModel)

	settingsSection := gio.NewMenu()
	settingsSection.Append("Preferences", "app.preferences")
	menu.AppendSection("", &settingsSection.MenuModel)

	appSection := gio.NewMenu()
	appSection.Append("About", "app.about")
	appSection.Append("Quit", "app.quit")
	menu.AppendSection("", &appSection.MenuModel)

	mw.setupActions()

	return menu
}

// addAction registers an app action with optional accelerators.
func (mw *MainWindow) addAction(name string, handler func(), accels ...string) {
	action := gio.NewSimpleAction(name, nil)
	action.ConnectActivate(func(_ *glib.Variant) {
		handler()
	})
	mw.app.app.AddAction(action)
	if len(accels) > 0 {
		mw.app.app.SetAccelsForAction("app."+name, accels)
	}
}

// setupActions configures menu actions.
func (mw *MainWindow) setupActions() {
	mw.addAction("preferences", mw.onPreferences, "<Control>comma")
	mw.addAction("about", mw.onAbout)
	mw.addAction("quit", mw.app.app.Quit, "<Control>q")
	mw.addAction("open", mw.onOpenFile, "<Control>o")
	mw.addAction("refresh", func() {
		if err := mw.app.store.Reload(); err != nil {
			mw.showError("Error reloading bookmarks", err.Error())
			return
		}
		mw.bookmarkList.LoadBookmarks()
		mw.SetStatus("Bookmarks reloaded")
	}, "F5")
	mw.addAction("export", mw.onExportBookmarks, "<Control>e")
	mw.addAction("import", mw.onImportBookmarks, "<Control>i")
	mw.addAction("clear-history", mw.onClearHistory)
}

// createStatusBar creates the status bar.
func (mw *MainWindow) createStatusBar() {
	mw.statusBar = gtk.NewBox(gtk.OrientationHorizontal, 12)
	mw.statusBar.AddCSSClass("status-bar")

	mw.statusLabel = gtk.NewLabel("Ready")
	mw.statusLabel.SetXAlign(0)
	mw.statusLabel.SetHExpand(true)
	mw.statusBar.Append(mw.statusLabel)

	statusIcon := gtk.NewImage()
	statusIcon.SetFromIconName("video-display-symbolic")
	statusIcon.SetPixelSize(16)
	mw.statusBar.Append(statusIcon)
}

// Show displays the window.
func (mw *MainWindow) Show() {
	mw.window.Show()
}

// SetStatus updates the status text.
func (mw *MainWindow) SetStatus(text string) {
	if mw.statusLabel != nil {
		mw.statusLabel.SetText(text)
	}
}

// Event handlers

// entryConnection parses the quick connect entry. Errors are shown to the
// user and reported as nil.
func (mw *MainWindow) entryConnection() *connection.Connection {
	text := strings.TrimSpace(mw.connectEntry.Text())
	if text == "" {
		mw.connectEntry.GrabFocus()
		return nil
	}

	conn, err := connection.ParseURI(text, mw.app.store)
	if err != nil {
		if scheme, ok := connection.IsUnsupportedProtocol(err); ok {
			mw.showError("Unsupported protocol", fmt.Sprintf("The protocol %s is not supported.", scheme))
		} else {
			mw.showError("Invalid address", err.Error())
		}
		return nil
	}
	return conn
}

func (mw *MainWindow) onQuickConnect() {
	if conn := mw.entryConnection(); conn != nil {
		mw.app.Connect(conn)
	}
}

func (mw *MainWindow) onBookmarkEntry() {
	conn := mw.entryConnection()
	if conn == nil {
		return
	}
	if conn.Name != "" {
		mw.SetStatus(fmt.Sprintf("%s is already bookmarked as '%s'", conn.Address(), conn.Name))
		return
	}
	mw.bookmarkList.AddBookmark(conn)
}

// onOpenFile opens a .vnc connection file.
func (mw *MainWindow) onOpenFile() {
	dialog := gtk.NewFileChooserNative(
		"Open connection file",
		&mw.window.Window,
		gtk.FileChooserActionOpen,
		"Open",
		"Cancel",
	)

	filter := gtk.NewFileFilter()
	filter.SetName("VNC files (*.vnc)")
	filter.AddPattern("*.vnc")
	filter.AddMIMEType("application/x-vnc")
	dialog.AddFilter(filter)

	dialog.ConnectResponse(func(responseID int) {
		if responseID == int(gtk.ResponseAccept) {
			if file := dialog.File(); file != nil {
				mw.OpenLocation(file.URI())
			}
		}
		dialog.Destroy()
	})

	dialog.Show()
}

// OpenLocation reads a connection file through GIO and connects to it.
func (mw *MainWindow) OpenLocation(location string) {
	mw.SetStatus(fmt.Sprintf("Opening %s...", location))
	go func() {
		conn, err := connection.ParseFile(mw.app.ctx, location, gioLoader{}, mw.app.store)
		glib.IdleAdd(func() {
			if err != nil {
				common.LogWarn("Could not open %s: %v", location, err)
				mw.showError("Error opening file", fmt.Sprintf("The file %s could not be opened: %v", location, err))
				mw.SetStatus("Ready")
				return
			}
			mw.app.Connect(conn)
		})
	}()
}

func (mw *MainWindow) onClearHistory() {
	if mw.app.history == nil {
		return
	}
	if err := mw.app.history.Clear(mw.app.ctx); err != nil {
		mw.showError("Error clearing history", err.Error())
		return
	}
	if tray := mw.app.GetTray(); tray != nil {
		tray.RefreshRecent()
	}
	mw.SetStatus("Recent connections cleared")
}

func (mw *MainWindow) onPreferences() {
	prefsDialog := NewPreferencesDialog(mw)
	prefsDialog.Show()
}

func (mw *MainWindow) onAbout() {
	about := gtk.NewAboutDialog()
	about.SetTransientFor(&mw.window.Window)
	about.SetModal(true)

	about.SetProgramName(common.AppName)
	about.SetLogoIconName(connection.IconName)
	about.SetVersion(mw.app.version)
	about.SetComments("Remote desktop bookmarks for Linux.\nOpen VNC hosts with your favourite viewer.")
	about.SetWebsite("https://github.com/yllada/vncviewer")
	about.SetWebsiteLabel("GitHub Repository")
	about.SetLicenseType(gtk.LicenseMITX11)

	about.Show()
}

// showMessage displays a small modal dialog with an icon, title and text.
func (mw *MainWindow) showMessage(iconName, title, message string) {
	window := gtk.NewWindow()
	window.SetTitle(title)
	window.SetTransientFor(&mw.window.Window)
	window.SetModal(true)
	window.SetDefaultSize(350, 150)
	window.SetResizable(false)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 12)
	mainBox.SetMarginTop(24)
	mainBox.SetMarginBottom(24)
	mainBox.SetMarginStart(24)
	mainBox.SetMarginEnd(24)
	mainBox.SetHAlign(gtk.AlignCenter)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(48)
	mainBox.Append(icon)

	titleLabel := gtk.NewLabel(title)
	titleLabel.AddCSSClass("heading")
	mainBox.Append(titleLabel)

	msgLabel := gtk.NewLabel(message)
	msgLabel.SetWrap(true)
	msgLabel.SetMaxWidthChars(40)
	mainBox.Append(msgLabel)

	okBtn := gtk.NewButtonWithLabel("OK")
	okBtn.SetHAlign(gtk.AlignCenter)
	okBtn.SetMarginTop(12)
	okBtn.ConnectClicked(func() {
		window.Close()
	})
	mainBox.Append(okBtn)

	window.SetChild(mainBox)
	window.Show()
}

// showError displays an error dialog.
func (mw *MainWindow) showError(title, message string) {
	mw.showMessage("dialog-error-symbolic", title, message)
}

// showInfo displays an information dialog.
func (mw *MainWindow) showInfo(title, message string) {
	mw.showMessage("dialog-information-symbolic", title, message)
}

// =============================================================================
// Export/Import Handlers
// =============================================================================

// onExportBookmarks writes the bookmarks to a YAML or TOML file.
func (mw *MainWindow) onExportBookmarks() {
	count := mw.app.store.Len()
	if count == 0 {
		mw.showInfo("Export Bookmarks", "No bookmarks to export.")
		return
	}

	dialog := gtk.NewFileChooserNative(
		"Export Bookmarks",
		&mw.window.Window,
		gtk.FileChooserActionSave,
		"Export",
		"Cancel",
	)
	dialog.SetCurrentName(fmt.Sprintf("vnc-bookmarks-%s.yaml", time.Now().Format("20060102")))
	dialog.AddFilter(transferFilter())

	dialog.ConnectResponse(func(response int) {
		defer dialog.Destroy()
		if response != int(gtk.ResponseAccept) {
			return
		}
		file := dialog.File()
		if file == nil {
			return
		}

		filePath := file.Path()
		if !hasTransferExtension(filePath) {
			filePath += ".yaml"
		}

		if err := mw.app.store.Export(filePath); err != nil {
			mw.showError("Export Failed", fmt.Sprintf("Failed to export bookmarks: %v", err))
			return
		}

		mw.showInfo("Export Complete",
			fmt.Sprintf("Successfully exported %d bookmark(s) to:\n%s", count, filePath))
		mw.SetStatus(fmt.Sprintf("Exported %d bookmarks", count))
	})

	dialog.Show()
}

// onImportBookmarks merges bookmarks from a YAML or TOML file.
func (mw *MainWindow) onImportBookmarks() {
	dialog := gtk.NewFileChooserNative(
		"Import Bookmarks",
		&mw.window.Window,
		gtk.FileChooserActionOpen,
		"Import",
		"Cancel",
	)
	dialog.AddFilter(transferFilter())

	dialog.ConnectResponse(func(response int) {
		defer dialog.Destroy()
		if response != int(gtk.ResponseAccept) {
			return
		}
		file := dialog.File()
		if file == nil {
			return
		}

		count, err := mw.app.store.Import(file.Path())
		if err != nil {
			mw.showError("Import Failed", fmt.Sprintf("Failed to import bookmarks: %v", err))
			return
		}
		if count == 0 {
			mw.showInfo("Import Complete", "No new bookmarks were imported.")
			return
		}

		mw.bookmarkList.LoadBookmarks()
		mw.showInfo("Import Complete", fmt.Sprintf("Successfully imported %d bookmark(s).", count))
		mw.SetStatus(fmt.Sprintf("Imported %d bookmarks", count))
	})

	dialog.Show()
}

func transferFilter() *gtk.FileFilter {
	filter := gtk.NewFileFilter()
	filter.SetName("Bookmark backups (*.yaml, *.yml, *.toml)")
	filter.AddPattern("*.yaml")
	filter.AddPattern("*.yml")
	filter.AddPattern("*.toml")
	return filter
}

// hasTransferExtension checks if a file path has a YAML or TOML extension.
func hasTransferExtension(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".toml")
}
