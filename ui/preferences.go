// Package ui provides the graphical user interface for VNC Viewer.
// This file contains the PreferencesDialog component for application settings.
package ui

import (
	"strings"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/config"
	"github.com/yllada/vncviewer/launcher"
)

// PreferencesDialog represents the preferences dialog.
type PreferencesDialog struct {
	window         *gtk.Window
	mainWindow     *MainWindow
	config         *config.Config
	viewerEntry    *gtk.Entry
	bookmarksEntry *gtk.Entry
	historySpin    *gtk.SpinButton
	rememberSwitch *gtk.Switch
	minimizeSwitch *gtk.Switch
	notifySwitch   *gtk.Switch
	themeDropDown  *gtk.DropDown
	themeIDs       []string
}

// NewPreferencesDialog creates a new preferences dialog.
func NewPreferencesDialog(mainWindow *MainWindow) *PreferencesDialog {
	pd := &PreferencesDialog{
		mainWindow: mainWindow,
		config:     mainWindow.app.config,
	}

	pd.build()
	return pd
}

func (pd *PreferencesDialog) build() {
	pd.window = gtk.NewWindow()
	pd.window.SetTitle("Settings")
	pd.window.SetTransientFor(&pd.mainWindow.window.Window)
	pd.window.SetModal(true)
	pd.window.SetDefaultSize(520, 620)
	pd.window.SetResizable(false)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 20)
	mainBox.SetMarginTop(24)
	mainBox.SetMarginBottom(16)
	mainBox.SetMarginStart(24)
	mainBox.SetMarginEnd(24)

	// Viewer
	viewerSection := pd.createSection("Viewer", "video-display-symbolic")
	viewerCard := pd.createCard()

	pd.viewerEntry = gtk.NewEntry()
	pd.viewerEntry.SetText(pd.config.ViewerCommand)
	pd.viewerEntry.SetPlaceholderText(common.DefaultViewerCommand)
	pd.viewerEntry.SetVAlign(gtk.AlignCenter)
	pd.viewerEntry.SetWidthChars(24)
	viewerCard.Append(pd.createSettingRow(
		"Viewer Command",
		"Program started for a connection. {host}, {port} and {name} are replaced",
		pd.viewerEntry,
	))

	viewerCard.Append(pd.createSeparator())

	pd.rememberSwitch = gtk.NewSwitch()
	pd.rememberSwitch.SetActive(pd.config.RememberPasswords)
	pd.rememberSwitch.SetVAlign(gtk.AlignCenter)
	viewerCard.Append(pd.createSettingRow(
		"Remember Passwords",
		"Ask for a password on first connect and keep it in the keyring",
		pd.rememberSwitch,
	))

	viewerSection.Append(viewerCard)
	mainBox.Append(viewerSection)

	// Bookmarks
	bookmarksSection := pd.createSection("Bookmarks", "starred-symbolic")
	bookmarksCard := pd.createCard()

	pd.bookmarksEntry = gtk.NewEntry()
	pd.bookmarksEntry.SetText(pd.config.BookmarksFile)
	pd.bookmarksEntry.SetPlaceholderText("~/" + common.BookmarksDirName + "/" + common.BookmarksFileName)
	pd.bookmarksEntry.SetVAlign(gtk.AlignCenter)
	pd.bookmarksEntry.SetWidthChars(24)
	bookmarksCard.Append(pd.createSettingRow(
		"Bookmark File",
		"Takes effect after a restart",
		pd.bookmarksEntry,
	))

	bookmarksCard.Append(pd.createSeparator())

	pd.historySpin = gtk.NewSpinButtonWithRange(1, 200, 1)
	pd.historySpin.SetValue(float64(pd.config.HistoryLimit))
	pd.historySpin.SetVAlign(gtk.AlignCenter)
	bookmarksCard.Append(pd.createSettingRow(
		"Recent Connections",
		"Number of recent connections shown in the tray menu",
		pd.historySpin,
	))

	bookmarksSection.Append(bookmarksCard)
	mainBox.Append(bookmarksSection)

	// Behavior
	behaviorSection := pd.createSection("Behavior", "preferences-system-symbolic")
	behaviorCard := pd.createCard()

	pd.minimizeSwitch = gtk.NewSwitch()
	pd.minimizeSwitch.SetActive(pd.config.MinimizeToTray)
	pd.minimizeSwitch.SetVAlign(gtk.AlignCenter)
	behaviorCard.Append(pd.createSettingRow(
		"Minimize to Tray",
		"Keep running in system tray when window is closed",
		pd.minimizeSwitch,
	))

	behaviorCard.Append(pd.createSeparator())

	pd.notifySwitch = gtk.NewSwitch()
	pd.notifySwitch.SetActive(pd.config.ShowNotifications)
	pd.notifySwitch.SetVAlign(gtk.AlignCenter)
	behaviorCard.Append(pd.createSettingRow(
		"Connection Alerts",
		"Show notifications when a viewer starts or closes",
		pd.notifySwitch,
	))

	behaviorSection.Append(behaviorCard)
	mainBox.Append(behaviorSection)

	// Appearance
	appearSection := pd.createSection("Appearance", "preferences-desktop-theme-symbolic")
	appearCard := pd.createCard()

	pd.themeIDs = []string{common.ThemeAuto, common.ThemeLight, common.ThemeDark}
	themeModel := gtk.NewStringList([]string{"System Default", "Light", "Dark"})
	pd.themeDropDown = gtk.NewDropDown(themeModel, nil)
	pd.themeDropDown.SetSelected(pd.findThemeIndex(pd.config.Theme))
	pd.themeDropDown.SetVAlign(gtk.AlignCenter)
	pd.themeDropDown.AddCSSClass("flat")
	appearCard.Append(pd.createSettingRow(
		"Theme",
		"Choose the visual appearance of the application",
		pd.themeDropDown,
	))

	appearSection.Append(appearCard)
	mainBox.Append(appearSection)

	scrolled.SetChild(mainBox)
	rootBox.Append(scrolled)

	buttonBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBar.SetHAlign(gtk.AlignEnd)
	buttonBar.SetMarginTop(16)
	buttonBar.SetMarginBottom(20)
	buttonBar.SetMarginStart(24)
	buttonBar.SetMarginEnd(24)

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.ConnectClicked(func() {
		pd.window.Close()
	})
	buttonBar.Append(cancelBtn)

	saveBtn := gtk.NewButtonWithLabel("Save")
	saveBtn.AddCSSClass("suggested-action")
	saveBtn.ConnectClicked(func() {
		if pd.savePreferences() {
			pd.window.Close()
		}
	})
	buttonBar.Append(saveBtn)

	rootBox.Append(buttonBar)

	pd.window.SetChild(rootBox)
}

// createSection creates a section with icon and title.
func (pd *PreferencesDialog) createSection(title string, iconName string) *gtk.Box {
	section := gtk.NewBox(gtk.OrientationVertical, 8)

	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 8)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(18)
	icon.AddCSSClass("dim-label")
	headerBox.Append(icon)

	label := gtk.NewLabel(title)
	label.SetXAlign(0)
	label.AddCSSClass("heading")
	label.AddCSSClass("dim-label")
	headerBox.Append(label)

	section.Append(headerBox)

	return section
}

// createCard creates a styled card container for settings.
func (pd *PreferencesDialog) createCard() *gtk.Box {
	card := gtk.NewBox(gtk.OrientationVertical, 0)
	card.AddCSSClass("card")
	card.AddCSSClass("preferences-card")
	return card
}

// createSettingRow creates a row with title, description, and widget.
func (pd *PreferencesDialog) createSettingRow(title string, description string, widget gtk.Widgetter) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(14)
	row.SetMarginBottom(14)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)

	textBox := gtk.NewBox(gtk.OrientationVertical, 4)
	textBox.SetHExpand(true)

	titleLabel := gtk.NewLabel(title)
	titleLabel.SetXAlign(0)
	textBox.Append(titleLabel)

	descLabel := gtk.NewLabel(description)
	descLabel.SetXAlign(0)
	descLabel.AddCSSClass("dim-label")
	descLabel.AddCSSClass("caption")
	descLabel.SetWrap(true)
	descLabel.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
	textBox.Append(descLabel)

	row.Append(textBox)
	row.Append(widget)

	return row
}

func (pd *PreferencesDialog) createSeparator() *gtk.Separator {
	sep := gtk.NewSeparator(gtk.OrientationHorizontal)
	sep.SetMarginStart(16)
	sep.SetMarginEnd(16)
	return sep
}

// findThemeIndex returns the index of a theme ID, or 0 if not found.
func (pd *PreferencesDialog) findThemeIndex(themeID string) uint {
	for i, id := range pd.themeIDs {
		if id == themeID {
			return uint(i)
		}
	}
	return 0
}

// savePreferences stores the settings and reports whether the dialog may close.
func (pd *PreferencesDialog) savePreferences() bool {
	viewer := strings.TrimSpace(pd.viewerEntry.Text())
	if viewer == "" {
		viewer = common.DefaultViewerCommand
	}
	if !launcher.Available(viewer) {
		common.LogWarn("Viewer command %q not found in PATH", viewer)
	}

	pd.config.ViewerCommand = viewer
	pd.config.BookmarksFile = strings.TrimSpace(pd.bookmarksEntry.Text())
	pd.config.HistoryLimit = pd.historySpin.ValueAsInt()
	pd.config.RememberPasswords = pd.rememberSwitch.Active()
	pd.config.MinimizeToTray = pd.minimizeSwitch.Active()
	pd.config.ShowNotifications = pd.notifySwitch.Active()

	themeIdx := pd.themeDropDown.Selected()
	if int(themeIdx) < len(pd.themeIDs) {
		pd.config.Theme = pd.themeIDs[themeIdx]
	}

	if err := pd.mainWindow.app.saveConfig(); err != nil {
		pd.mainWindow.showError("Error", "Could not save preferences: "+err.Error())
		return false
	}

	if tray := pd.mainWindow.app.GetTray(); tray != nil {
		tray.RefreshRecent()
	}
	pd.mainWindow.SetStatus("Settings saved")
	return true
}

// Show displays the preferences dialog.
func (pd *PreferencesDialog) Show() {
	pd.window.Show()
}
