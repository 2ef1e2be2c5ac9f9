package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/yllada/vncviewer/bookmarks"
	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

// Stubbed in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// terminalPrompter implements bookmarks.Prompter on a line-oriented terminal.
// End of input cancels the prompt.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer

	// Preset answers from flags. A nil field is asked for.
	name *string
	host *string
	port *int
	yes  bool
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out}
}

var errCancelled = errors.New("cancelled")

// ask prints label and returns the trimmed answer, or def when the answer is
// empty.
func (p *terminalPrompter) ask(ctx context.Context, label, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", errCancelled
		}
		return "", err
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (p *terminalPrompter) PromptAdd(ctx context.Context, conn *connection.Connection) (string, bool, error) {
	if p.name != nil {
		return *p.name, true, nil
	}
	name, err := p.ask(ctx, "Bookmark name", conn.Host)
	if errors.Is(err, errCancelled) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

func (p *terminalPrompter) PromptEdit(ctx context.Context, conn *connection.Connection) (bookmarks.EditRequest, bool, error) {
	req := bookmarks.EditRequest{Name: conn.Name, Host: conn.Host, Port: conn.Port}

	var err error
	if p.name != nil {
		req.Name = *p.name
	} else if req.Name, err = p.ask(ctx, "Name", conn.Name); err != nil {
		return cancelled(err)
	}

	if p.host != nil {
		req.Host = *p.host
	} else if req.Host, err = p.ask(ctx, "Host", conn.Host); err != nil {
		return cancelled(err)
	}

	if p.port != nil {
		req.Port = *p.port
	} else {
		for {
			answer, err := p.ask(ctx, "Port", strconv.Itoa(conn.Port))
			if err != nil {
				return cancelled(err)
			}
			port, convErr := parsePort(answer)
			if convErr == nil {
				req.Port = port
				break
			}
			fmt.Fprintln(p.out, convErr)
		}
	}

	return req, true, nil
}

func cancelled(err error) (bookmarks.EditRequest, bool, error) {
	if errors.Is(err, errCancelled) {
		return bookmarks.EditRequest{}, false, nil
	}
	return bookmarks.EditRequest{}, false, err
}

func (p *terminalPrompter) ConfirmDelete(ctx context.Context, name string) (bool, error) {
	if p.yes {
		return true, nil
	}
	answer, err := p.ask(ctx, fmt.Sprintf("Are you sure you want to exclude %s from bookmarks? [y/N]", name), "")
	if errors.Is(err, errCancelled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// promptPassword reads a password without echo when in is a terminal, or a
// plain line otherwise.
func (p *terminalPrompter) promptPassword(ctx context.Context, fd int, tty bool, label string) (string, error) {
	if !tty {
		answer, err := p.ask(ctx, label, "")
		if errors.Is(err, errCancelled) {
			return "", nil
		}
		return answer, err
	}
	fmt.Fprintf(p.out, "%s: ", label)
	secret, err := readPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 0 || port > common.MaxPort {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}
