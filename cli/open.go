package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
	"github.com/yllada/vncviewer/keyring"
	"github.com/yllada/vncviewer/launcher"
)

// launchOptions are the flags shared by commands that start a viewer.
type launchOptions struct {
	askPassword  bool
	savePassword bool
	detach       bool
}

func (o *launchOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.askPassword, "ask-password", false, "Ask for the password instead of using the keyring")
	cmd.Flags().BoolVar(&o.savePassword, "save-password", false, "Remember the password in the keyring")
	cmd.Flags().BoolVarP(&o.detach, "detach", "d", false, "Do not wait for the viewer to exit")
}

func newOpenCmd(a *app) *cobra.Command {
	var opts launchOptions

	cmd := &cobra.Command{
		Use:   "open TARGET",
		Short: "Open a connection in the VNC viewer",
		Long: `Open TARGET in the configured viewer. TARGET is a bookmark name,
"host", "host:port", "vnc://host[:port]", or a .vnc connection file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			return a.launch(cmd, conn, opts)
		},
	}

	opts.register(cmd)
	return cmd
}

// resolve turns target into a connection, preferring bookmarks.
func (a *app) resolve(cmd *cobra.Command, target string) (*connection.Connection, error) {
	if conn, err := a.store.Get(target); err == nil {
		return conn, nil
	}

	if isConnectionFile(target) {
		conn, err := connection.ParseFile(cmd.Context(), target, nil, a.store)
		if err != nil {
			return nil, fmt.Errorf("the file %s could not be opened: %w", target, err)
		}
		return conn, nil
	}

	return connection.ParseURI(target, a.store)
}

func isConnectionFile(target string) bool {
	if strings.HasPrefix(target, "file://") || strings.HasSuffix(strings.ToLower(target), ".vnc") {
		return true
	}
	info, err := os.Stat(common.ExpandHome(target))
	return err == nil && info.Mode().IsRegular()
}

// launch starts the viewer for conn, records it in the history and, unless
// detached, waits for the viewer to exit.
func (a *app) launch(cmd *cobra.Command, conn *connection.Connection, opts launchOptions) error {
	ctx := cmd.Context()
	creds := a.credentials()
	account := keyring.AccountFor(conn)

	var password string
	if opts.askPassword {
		fd, ok := stdinFd(cmd)
		prompter := newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		secret, err := prompter.promptPassword(ctx, fd, ok && isTerminal(fd), "Password for "+conn.BestName())
		if err != nil {
			return err
		}
		password = secret
	} else if secret, err := creds.Get(account); err == nil {
		password = secret
	} else if !errors.Is(err, common.ErrCredentialsNotFound) {
		common.LogWarn("Could not read password for %s: %v", account, err)
	}

	viewer, err := launcher.Launch(ctx, a.cfg.ViewerCommand, conn, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Opening %s (%s)\n", conn.BestName(), conn.Address())

	if h, err := a.openHistory(); err != nil {
		common.LogWarn("History unavailable: %v", err)
	} else if _, err := h.Record(ctx, conn); err != nil {
		common.LogWarn("Could not record %s in history: %v", conn.Address(), err)
	}

	if password != "" && (opts.savePassword || a.cfg.RememberPasswords) {
		if err := creds.Store(account, password); err != nil {
			common.LogWarn("Could not save password for %s: %v", account, err)
		}
	}

	if opts.detach {
		return viewer.Process.Release()
	}
	if err := viewer.Wait(); err != nil {
		return fmt.Errorf("viewer exited: %w", err)
	}
	return nil
}

func stdoutFd() uintptr {
	return os.Stdout.Fd()
}
