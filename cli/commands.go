package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yllada/vncviewer/bookmarks"
	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
	"github.com/yllada/vncviewer/tui"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bookmarks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.store.Len() == 0 {
				fmt.Fprintln(out, "No bookmarks")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tHOST\tPORT")
			for conn := range a.store.All() {
				fmt.Fprintf(w, "%s\t%s\t%d\n", conn.Name, conn.Host, conn.Port)
			}
			return w.Flush()
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add URI",
		Short: "Bookmark a host",
		Long: `Bookmark a host given as "host", "host:port" or "vnc://host[:port]".
Without --name the bookmark name is asked for; an empty answer uses the host.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connection.ParseURI(args[0], nil)
			if err != nil {
				return err
			}

			prompter := newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if cmd.Flags().Changed("name") {
				prompter.name = &name
			}

			ok, err := bookmarks.NewManager(a.store, prompter).AddBookmark(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			if conn.Name == "" {
				return fmt.Errorf("%w: %s was not added", common.ErrInvalidBookmark, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added bookmark %s (%s)\n", conn.Name, conn.Address())
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Bookmark name (empty uses the host)")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		name string
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit a bookmark",
		Long: `Edit the bookmark called NAME. Values not given as flags are asked for;
an empty answer keeps the current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.store.Get(args[0])
			if err != nil {
				return err
			}

			prompter := newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			flags := cmd.Flags()
			if flags.Changed("name") {
				prompter.name = &name
			}
			if flags.Changed("host") {
				prompter.host = &host
			}
			if flags.Changed("port") {
				if port < 0 || port > common.MaxPort {
					return fmt.Errorf("invalid port %d", port)
				}
				prompter.port = &port
			}

			ok, err := bookmarks.NewManager(a.store, prompter).EditBookmark(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bookmark %s updated (%s)\n", conn.Name, conn.Address())
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New name (empty uses the host)")
	cmd.Flags().StringVar(&host, "host", "", "New host")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "New port")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a bookmark",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.store.Get(args[0])
			if err != nil {
				return err
			}

			prompter := newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			prompter.yes = yes

			mgr := bookmarks.NewManager(a.store, prompter)
			var confirmed bool
			mgr.OnStateChange = func(state bookmarks.DialogState) {
				if state == bookmarks.StateConfirmed {
					confirmed = true
				}
			}

			ok, err := mgr.DeleteBookmark(cmd.Context(), conn)
			if err != nil {
				return err
			}
			switch {
			case ok:
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from bookmarks\n", args[0])
			case confirmed:
				return fmt.Errorf("%w %q", common.ErrGroupRemoval, args[0])
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find HOST PORT",
		Short: "Find the bookmark for a host and port",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := parsePort(args[1])
			if err != nil {
				return err
			}
			conn := a.store.FindByHostPort(args[0], port)
			if conn == nil {
				return fmt.Errorf("%w: %s:%d", common.ErrBookmarkNotFound, args[0], port)
			}
			fmt.Fprintln(cmd.OutOrStdout(), conn.Name)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Export bookmarks to YAML or TOML",
		Long:  "Export bookmarks to FILE. A .toml extension writes TOML, anything else YAML.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Export(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", a.store.Len(), args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import bookmarks from YAML or TOML",
		Long:  "Import bookmarks from FILE. Bookmarks whose name is already taken are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.Import(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks\n", n)
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently opened connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.openHistory()
			if err != nil {
				return err
			}

			if clearAll {
				if err := h.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				return nil
			}

			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.HistoryLimit
			}
			entries, err := h.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent connections")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tADDRESS\tLAST CONNECTED")
			for _, e := range entries {
				conn := e.Connection()
				fmt.Fprintf(w, "%s\t%s\t%s\n", conn.BestName(), conn.Address(), e.ConnectedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", common.DefaultHistoryLimit, "Number of entries to show")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Forget all recent connections")
	return cmd
}

func newTUICmd(a *app) *cobra.Command {
	var opts launchOptions

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit bookmarks in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(int(stdoutFd())) {
				return errors.New("tui requires a terminal")
			}
			conn, err := tui.Run(a.store)
			if err != nil {
				return err
			}
			if conn == nil {
				return nil
			}
			return a.launch(cmd, conn, opts)
		},
	}

	opts.register(cmd)
	return cmd
}
