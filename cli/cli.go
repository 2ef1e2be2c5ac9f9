// Package cli provides the command-line interface of VNC Viewer.
// Bookmarks can be listed, edited and opened from the terminal without
// launching the GUI application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yllada/vncviewer/bookmarks"
	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/config"
	"github.com/yllada/vncviewer/history"
	"github.com/yllada/vncviewer/keyring"
)

// GUIDeps is what the graphical front-end receives when the root command runs
// without arguments.
type GUIDeps struct {
	Config      *config.Config
	ConfigPath  string
	Store       *bookmarks.Store
	History     *history.History
	Credentials common.CredentialStore
	Version     string
}

// Options configures the command tree. Zero values select the defaults.
type Options struct {
	// Version is printed by the version command.
	Version string
	// ConfigPath overrides ~/.config/vncviewer/config.yaml.
	ConfigPath string
	// HistoryPath overrides the history database location.
	HistoryPath string
	// Credentials overrides the system keyring.
	Credentials common.CredentialStore
	// RunGUI starts the graphical interface. Without it the root command
	// prints help.
	RunGUI func(ctx context.Context, deps GUIDeps) error
}

// app holds the resources shared by the subcommands of one invocation.
type app struct {
	opts Options

	verbose       bool
	bookmarksPath string

	configPath string
	cfg        *config.Config
	store      *bookmarks.Store
	history    *history.History
}

func (a *app) setup() error {
	if a.verbose {
		common.GetLogger().SetLevel(common.LevelDebug)
	}
	if a.store != nil {
		return nil
	}

	a.configPath = a.opts.ConfigPath
	if a.configPath == "" {
		path, err := config.Path()
		if err != nil {
			return err
		}
		a.configPath = path
	}

	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		if cfg == nil {
			return err
		}
		common.LogWarn("Could not write default configuration: %v", err)
	}
	a.cfg = cfg

	path := a.bookmarksPath
	if path == "" {
		path, err = cfg.BookmarksPath()
		if err != nil {
			return err
		}
	}

	store, err := bookmarks.Open(path)
	if err != nil {
		return err
	}
	a.store = store
	common.LogDebug("Using bookmarks at %s", store.Path())
	return nil
}

func (a *app) openHistory() (*history.History, error) {
	if a.history != nil {
		return a.history, nil
	}
	path := a.opts.HistoryPath
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	h, err := history.Open(path)
	if err != nil {
		return nil, err
	}
	a.history = h
	return h, nil
}

func (a *app) credentials() common.CredentialStore {
	if a.opts.Credentials != nil {
		return a.opts.Credentials
	}
	return keyring.Default()
}

func (a *app) close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			common.LogWarn("Error closing history: %v", err)
		}
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// NewRootCmd builds the command tree. The returned cleanup releases the
// bookmark store and history opened by the command that ran.
func NewRootCmd(opts Options) (*cobra.Command, func()) {
	a := &app{opts: opts}

	cmd := &cobra.Command{
		Use:   "vncviewer",
		Short: "VNC Viewer - remote desktop bookmarks and launcher",
		Long: `VNC Viewer keeps a list of remote desktops and opens them with an
external VNC viewer. Run without a command to start the graphical interface.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipSetup(cmd) {
				return nil
			}
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.RunGUI == nil {
				return cmd.Help()
			}
			h, err := a.openHistory()
			if err != nil {
				common.LogWarn("History unavailable: %v", err)
			}
			return a.opts.RunGUI(cmd.Context(), GUIDeps{
				Config:      a.cfg,
				ConfigPath:  a.configPath,
				Store:       a.store,
				History:     h,
				Credentials: a.credentials(),
				Version:     a.opts.Version,
			})
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&a.bookmarksPath, "bookmarks", "", "Bookmark file (default ~/.gnome2/vinagre.bookmarks)")

	cmd.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newFindCmd(a),
		newOpenCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newHistoryCmd(a),
		newTUICmd(a),
		newVersionCmd(a),
	)

	return cmd, a.close
}

// Execute runs the command line in args and returns the process exit code.
func Execute(ctx context.Context, opts Options, args []string, stdout, stderr io.Writer) int {
	cmd, cleanup := NewRootCmd(opts)
	defer cleanup()

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			common.LogInfo("Operation cancelled")
		}
		return 1
	}
	return 0
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version := a.opts.Version
			if version == "" {
				version = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", common.AppName, version)
		},
	}
}

// skipSetup reports whether cmd runs without configuration or bookmarks.
func skipSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", cobra.ShellCompRequestCmd, "completion":
			return true
		}
	}
	return false
}

func stdinFd(cmd *cobra.Command) (int, bool) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return 0, false
	}
	return int(f.Fd()), true
}
