// Package launcher starts an external VNC viewer for a connection and keeps
// track of the running viewer sessions.
package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

// PasswordEnv is the environment variable carrying the password to the viewer.
const PasswordEnv = "VNC_PASSWORD"

// BuildArgs splits template on whitespace and replaces {host}, {port} and
// {name} in every argument. The first element is the program.
func BuildArgs(template string, conn *connection.Connection) ([]string, error) {
	fields := strings.Fields(template)
	if len(fields) == 0 {
		return nil, common.ErrNoViewer
	}

	r := strings.NewReplacer(
		"{host}", conn.Host,
		"{port}", strconv.Itoa(conn.Port),
		"{name}", conn.BestName(),
	)
	args := make([]string, len(fields))
	for i, field := range fields {
		args[i] = r.Replace(field)
	}
	return args, nil
}

// Command prepares the viewer process for conn without starting it. A
// non-empty password is passed in the environment.
func Command(ctx context.Context, template string, conn *connection.Connection, password string) (*exec.Cmd, error) {
	args, err := BuildArgs(template, conn)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = os.Environ()
	if password != "" {
		cmd.Env = append(cmd.Env, PasswordEnv+"="+password)
	}
	return cmd, nil
}

// Launch starts the viewer for conn and returns the running process.
func Launch(ctx context.Context, template string, conn *connection.Connection, password string) (*exec.Cmd, error) {
	cmd, err := Command(ctx, template, conn, password)
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start viewer: %w", err)
	}
	return cmd, nil
}

// Available reports whether the program named by template is on PATH.
func Available(template string) bool {
	fields := strings.Fields(template)
	if len(fields) == 0 {
		return false
	}
	_, err := exec.LookPath(fields[0])
	return err == nil
}
