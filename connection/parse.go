package connection

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/yllada/vncviewer/common"
)

// Finder looks up a bookmarked connection by host and port.
type Finder interface {
	FindByHostPort(host string, port int) *Connection
}

// Loader reads the contents of a file given a path or a URI.
type Loader interface {
	Load(ctx context.Context, location string) ([]byte, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, location string) ([]byte, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// FileLoader reads local paths and file:// URIs.
type FileLoader struct{}

// Load implements Loader.
func (FileLoader) Load(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := location
	if strings.HasPrefix(location, "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, err
		}
		path = u.Path
	}
	return os.ReadFile(common.ExpandHome(path))
}

// UnsupportedProtocolError is returned by ParseURI for schemes other than vnc.
type UnsupportedProtocolError struct {
	Scheme string
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("the protocol %s is not supported", e.Scheme)
}

// Is reports common.ErrUnsupportedProtocol as a match.
func (e *UnsupportedProtocolError) Is(target error) bool {
	return target == common.ErrUnsupportedProtocol
}

// ParseURI builds a connection from "host", "host:port" or "vnc://host[:port]".
// A missing port means 5900; a port that is not a number yields 0. When finder
// knows a bookmark for the same host and port, that bookmark is returned.
func ParseURI(uri string, finder Finder) (*Connection, error) {
	rest := uri
	if scheme, remainder, found := strings.Cut(uri, "://"); found {
		if scheme != common.DefaultScheme {
			return nil, &UnsupportedProtocolError{Scheme: scheme}
		}
		rest = remainder
	}

	host, portStr, hasPort := strings.Cut(rest, ":")
	port := common.DefaultPort
	if hasPort {
		port = atoi(portStr)
	}

	return lookupOrNew(host, port, finder), nil
}

// ParseFile builds a connection from a key file with a [connection] group
// holding "host" and an optional "port" (0 when absent).
func ParseFile(ctx context.Context, location string, loader Loader, finder Finder) (*Connection, error) {
	if loader == nil {
		loader = FileLoader{}
	}

	data, err := loader.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFileLoad, err)
	}

	file, err := LoadKeyFile(data)
	if err != nil {
		return nil, err
	}

	section, err := file.GetSection(common.ConnectionGroup)
	if err != nil {
		return nil, common.ErrMissingHost
	}
	host, ok := GroupString(section, "host")
	if !ok {
		return nil, common.ErrMissingHost
	}
	port := GroupInt(section, "port")

	return lookupOrNew(host, port, finder), nil
}

func lookupOrNew(host string, port int, finder Finder) *Connection {
	if finder != nil {
		if conn := finder.FindByHostPort(host, port); conn != nil {
			return conn
		}
	}
	conn := New()
	conn.SetHost(host)
	conn.SetPort(port)
	return conn
}

// atoi converts the leading decimal digits of s, ignoring leading blanks and
// accepting one sign. Anything unparsable is 0.
func atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<31-1 {
			return 0
		}
	}
	if neg {
		return -n
	}
	return n
}

// IsUnsupportedProtocol reports whether err came from a rejected scheme and
// returns the scheme.
func IsUnsupportedProtocol(err error) (string, bool) {
	var upe *UnsupportedProtocolError
	if errors.As(err, &upe) {
		return upe.Scheme, true
	}
	return "", false
}
