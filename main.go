// Package main provides the entry point for VNC Viewer.
// VNC Viewer is a GTK4 remote desktop launcher for Linux that keeps a list of
// bookmarked VNC hosts and opens them with an external viewer.
//
// Features:
//   - Bookmarks shared with the classic GNOME ~/.gnome2/vinagre.bookmarks file
//   - vnc:// URIs and .vnc connection files
//   - Secure password storage using the system keyring
//   - Native GTK4 interface, terminal browser and scriptable CLI
//
// Usage:
//
//	vncviewer [command] [flags]
//
// Environment:
//
//	A VNC viewer such as TigerVNC's vncviewer must be installed. The command
//	is configured in ~/.config/vncviewer/config.yaml.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/yllada/vncviewer/cli"
	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/ui"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

func main() {
	args := os.Args[1:]

	logLevel := common.LevelInfo
	if slices.Contains(args, "--verbose") || slices.Contains(args, "-v") {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}

	// Handle shutdown signals (SIGINT, SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	version := appVersion
	if buildTime != "unknown" {
		version = fmt.Sprintf("%s (build %s, commit %s)", appVersion, buildTime, commitSHA)
	}

	code := cli.Execute(ctx, cli.Options{
		Version: version,
		RunGUI:  runGUI,
	}, args, os.Stdout, os.Stderr)

	stop()
	common.CloseLogger()
	os.Exit(code)
}

// runGUI starts the GTK application with the resources opened by the CLI.
func runGUI(ctx context.Context, deps cli.GUIDeps) error {
	common.LogInfo("Starting %s v%s", common.AppName, appVersion)

	app := ui.NewApplication(common.AppID, ui.Deps{
		Config:      deps.Config,
		ConfigPath:  deps.ConfigPath,
		Store:       deps.Store,
		History:     deps.History,
		Credentials: deps.Credentials,
		Version:     appVersion,
	})

	go func() {
		<-ctx.Done()
		common.LogInfo("Received signal, initiating graceful shutdown...")
		app.Quit()
	}()

	// GTK parses its own arguments; flags were consumed by the command line.
	if code := app.Run([]string{os.Args[0]}); code != 0 {
		return fmt.Errorf("application exited with code %d", code)
	}
	return nil
}
