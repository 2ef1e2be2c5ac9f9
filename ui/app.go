package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/vncviewer/bookmarks"
	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/config"
	"github.com/yllada/vncviewer/connection"
	"github.com/yllada/vncviewer/history"
	"github.com/yllada/vncviewer/keyring"
	"github.com/yllada/vncviewer/launcher"
)

// Deps holds what the application needs from the command line.
type Deps struct {
	Config      *config.Config
	ConfigPath  string
	Store       *bookmarks.Store
	History     *history.History
	Credentials common.CredentialStore
	Version     string
}

// Application represents the main application
type Application struct {
	app         *adw.Application
	window      *MainWindow
	tray        *TrayIndicator
	notifier    *Notifier
	sessions    *launcher.Manager
	store       *bookmarks.Store
	history     *history.History
	credentials common.CredentialStore
	config      *config.Config
	configPath  string
	version     string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication creates a new application
func NewApplication(appID string, deps Deps) *Application {
	app := adw.NewApplication(appID, gio.ApplicationFlagsNone)

	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	credentials := deps.Credentials
	if credentials == nil {
		credentials = keyring.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	application := &Application{
		app:         app,
		sessions:    launcher.NewManager(cfg.ViewerCommand),
		store:       deps.Store,
		history:     deps.History,
		credentials: credentials,
		config:      cfg,
		configPath:  deps.ConfigPath,
		version:     deps.Version,
		ctx:         ctx,
		cancel:      cancel,
	}
	application.notifier = NewNotifier(func() bool { return application.config.ShowNotifications })

	application.sessions.SetStatusHandler(func(s *launcher.Session) {
		conn, status, lastError := s.Conn, s.Status(), s.LastError()
		glib.IdleAdd(func() {
			application.onSessionStatus(conn, status, lastError)
		})
	})
	application.sessions.SetLogHandler(func(s *launcher.Session, line string) {
		common.LogDebug("[%s] %s", s.Conn.Address(), line)
	})

	app.ConnectActivate(application.onActivate)
	app.ConnectShutdown(application.onShutdown)

	return application
}

// Run runs the application
func (a *Application) Run(args []string) int {
	return a.app.Run(args)
}

// onActivate is called when the application is activated
func (a *Application) onActivate() {
	if a.window != nil {
		a.showWindow()
		return
	}

	a.ApplyTheme(a.config.Theme)
	a.setupAppIcon()
	LoadStyles()

	if !launcher.Available(a.config.ViewerCommand) {
		common.LogWarn("Viewer command %q not found in PATH", a.config.ViewerCommand)
	}

	a.tray = NewTrayIndicator(a)
	go a.tray.Run()

	a.window = NewMainWindow(a)
	a.window.Show()
}

// onShutdown stops running viewers and the tray.
func (a *Application) onShutdown() {
	a.cancel()
	if n := a.sessions.Running(); n > 0 {
		common.LogInfo("Closing %d running viewer(s)", n)
	}
	a.sessions.DisconnectAll()
	if a.tray != nil {
		a.tray.Stop()
	}
}

// setupAppIcon sets up the application icon
func (a *Application) setupAppIcon() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	iconTheme := gtk.IconThemeGetForDisplay(display)
	if iconTheme == nil {
		return
	}

	// GTK4 looks for theme subdirectories (like "hicolor") inside these paths
	if execPath, err := os.Executable(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(filepath.Dir(execPath), "assets", "icons"))
	}
	if cwd, err := os.Getwd(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(cwd, "assets", "icons"))
	}

	gtk.WindowSetDefaultIconName(connection.IconName)
}

// ApplyTheme applies the specified theme to the application.
// Supported values: "auto" (system default), "light", "dark"
func (a *Application) ApplyTheme(theme string) {
	manager := adw.StyleManagerGetDefault()
	switch theme {
	case common.ThemeLight:
		manager.SetColorScheme(adw.ColorSchemeForceLight)
	case common.ThemeDark:
		manager.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		manager.SetColorScheme(adw.ColorSchemeDefault)
	}
}

// GetWindow returns the main window
func (a *Application) GetWindow() *gtk.Window {
	if a.window != nil {
		return &a.window.window.Window
	}
	return nil
}

// GetTray returns the tray indicator
func (a *Application) GetTray() *TrayIndicator {
	return a.tray
}

// showWindow shows the main window
func (a *Application) showWindow() {
	if a.window != nil {
		a.window.window.Present()
	}
}

// Quit closes the application. It is safe to call from any goroutine.
func (a *Application) Quit() {
	glib.IdleAdd(func() {
		a.app.Quit()
	})
}

// Connect opens conn in the viewer, asking for a password first when
// passwords are remembered and none is stored yet. Must run on the main thread.
func (a *Application) Connect(conn *connection.Connection) {
	account := keyring.AccountFor(conn)
	password, err := a.credentials.Get(account)
	if err == nil {
		a.launch(conn, password, false)
		return
	}
	if !errors.Is(err, common.ErrCredentialsNotFound) {
		common.LogWarn("Could not read password for %s: %v", account, err)
	}

	if !a.config.RememberPasswords {
		a.launch(conn, "", false)
		return
	}

	showPasswordDialog(a.GetWindow(), conn, true, func(password string, save, ok bool) {
		if ok {
			a.launch(conn, password, save)
		}
	})
}

func (a *Application) launch(conn *connection.Connection, password string, save bool) {
	a.setStatus(fmt.Sprintf("Connecting to %s...", conn.BestName()))

	_, err := a.sessions.Connect(a.ctx, conn, password)
	if errors.Is(err, common.ErrAlreadyRunning) {
		a.setStatus(fmt.Sprintf("%s is already open", conn.BestName()))
		return
	}
	if err != nil {
		common.LogError("Could not start viewer for %s: %v", conn.Address(), err)
		if a.window != nil {
			a.window.showError("Connection error", err.Error())
		}
		a.setStatus("Ready")
		return
	}

	if save && password != "" {
		if err := a.credentials.Store(keyring.AccountFor(conn), password); err != nil {
			a.setStatus("Warning: Could not save password")
		}
	}

	if a.history != nil {
		go func() {
			if _, err := a.history.Record(a.ctx, conn); err != nil {
				common.LogWarn("Could not record %s in history: %v", conn.Address(), err)
				return
			}
			glib.IdleAdd(func() {
				if a.tray != nil {
					a.tray.RefreshRecent()
				}
			})
		}()
	}
}

// onSessionStatus reflects a viewer status change in the window, the tray and
// notifications. Runs on the main thread.
func (a *Application) onSessionStatus(conn *connection.Connection, status launcher.Status, lastError string) {
	if a.window != nil && a.window.bookmarkList != nil {
		a.window.bookmarkList.updateRowStatus(conn.Address(), status)
	}

	name := conn.BestName()
	switch status {
	case launcher.StatusRunning:
		a.setStatus(fmt.Sprintf("Connected to %s", name))
		a.notifier.NotifyStarted(name)
	case launcher.StatusExited:
		a.setStatus(fmt.Sprintf("Disconnected from %s", name))
		a.notifier.NotifyExited(name)
	case launcher.StatusError:
		a.setStatus(fmt.Sprintf("Viewer for %s failed", name))
		a.notifier.NotifyError(name, lastError)
	}

	if a.tray != nil {
		a.tray.SetRunning(a.sessions.Running())
	}
}

func (a *Application) setStatus(text string) {
	if a.window != nil {
		a.window.SetStatus(text)
	}
}

// saveConfig writes the configuration and applies the settings that take
// effect immediately.
func (a *Application) saveConfig() error {
	var err error
	if a.configPath != "" {
		err = a.config.SaveTo(a.configPath)
	} else {
		err = a.config.Save()
	}
	if err != nil {
		return err
	}

	a.sessions.SetTemplate(a.config.ViewerCommand)
	a.ApplyTheme(a.config.Theme)
	if a.window != nil {
		a.window.window.SetHideOnClose(a.config.MinimizeToTray)
	}
	return nil
}
