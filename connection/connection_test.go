package connection

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yllada/vncviewer/common"
)

func TestNew(t *testing.T) {
	conn := New()

	if conn.Port != 0 {
		t.Errorf("Port = %d, want 0", conn.Port)
	}
	if conn.Type != TypeVNC {
		t.Errorf("Type = %v, want %v", conn.Type, TypeVNC)
	}
	if conn.Host != "" || conn.Name != "" || conn.Password != "" || conn.DesktopName != "" {
		t.Errorf("New() should leave optional fields empty, got %+v", conn)
	}
}

func TestType_String(t *testing.T) {
	if got := TypeVNC.String(); got != "vnc" {
		t.Errorf("TypeVNC.String() = %q, want %q", got, "vnc")
	}
	if got := Type(42).String(); got != "unknown" {
		t.Errorf("Type(42).String() = %q, want %q", got, "unknown")
	}
}

func TestBestName(t *testing.T) {
	tests := []struct {
		name     string
		conn     *Connection
		expected string
	}{
		{"name wins", &Connection{Name: "A", DesktopName: "B", Host: "h"}, "A"},
		{"desktop name", &Connection{DesktopName: "B", Host: "h"}, "B"},
		{"host and port", &Connection{Host: "h", Port: 5901}, "h:5901"},
		{"host with zero port", &Connection{Host: "h"}, "h:0"},
		{"nothing set", &Connection{}, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conn.BestName(); got != tt.expected {
				t.Errorf("BestName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestClone(t *testing.T) {
	orig := New()
	orig.SetHost("example.org")
	orig.SetPort(5902)
	orig.SetName("office")
	orig.SetPassword("secret")
	orig.SetDesktopName("desk")

	clone := orig.Clone()
	if *clone != *orig {
		t.Fatalf("Clone() = %+v, want %+v", clone, orig)
	}

	clone.SetHost("other")
	clone.SetName("home")
	if orig.Host != "example.org" || orig.Name != "office" {
		t.Errorf("modifying the clone changed the source: %+v", orig)
	}

	var nilConn *Connection
	if nilConn.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestIconAndString(t *testing.T) {
	conn := &Connection{Host: "h", Port: 5900}
	if got := conn.Icon(); got != IconName {
		t.Errorf("Icon() = %q, want %q", got, IconName)
	}
	if got := (&Connection{Host: "other"}).Icon(); got != IconName {
		t.Errorf("Icon() should not depend on host, got %q", got)
	}
	if got := conn.String(); got != "vnc://h:5900" {
		t.Errorf("String() = %q, want %q", got, "vnc://h:5900")
	}
}

type fakeFinder map[string]*Connection

func (f fakeFinder) FindByHostPort(host string, port int) *Connection {
	return f[(&Connection{Host: host, Port: port}).Address()]
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri      string
		wantHost string
		wantPort int
	}{
		{"vnc://host:2222", "host", 2222},
		{"host", "host", 5900},
		{"vnc://host", "host", 5900},
		{"host:5901", "host", 5901},
		{"host:abc", "host", 0},
		{"host:", "host", 0},
		{"host:12abc", "host", 12},
		{"", "", 5900},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			conn, err := ParseURI(tt.uri, nil)
			if err != nil {
				t.Fatalf("ParseURI(%q) error = %v", tt.uri, err)
			}
			if conn.Host != tt.wantHost || conn.Port != tt.wantPort {
				t.Errorf("ParseURI(%q) = %s:%d, want %s:%d",
					tt.uri, conn.Host, conn.Port, tt.wantHost, tt.wantPort)
			}
			if conn.Name != "" {
				t.Errorf("fresh connection should have no name, got %q", conn.Name)
			}
		})
	}
}

func TestParseURI_UnsupportedProtocol(t *testing.T) {
	conn, err := ParseURI("ftp://host", nil)
	if conn != nil {
		t.Errorf("ParseURI() = %+v, want nil", conn)
	}
	if !errors.Is(err, common.ErrUnsupportedProtocol) {
		t.Fatalf("error = %v, want ErrUnsupportedProtocol", err)
	}
	if !strings.Contains(err.Error(), "ftp") {
		t.Errorf("error %q should mention the scheme", err)
	}
	if scheme, ok := IsUnsupportedProtocol(err); !ok || scheme != "ftp" {
		t.Errorf("IsUnsupportedProtocol() = %q, %v", scheme, ok)
	}
}

func TestParseURI_BookmarkLookup(t *testing.T) {
	bookmarked := &Connection{Name: "office", Host: "office.lan", Port: 5901}
	finder := fakeFinder{"office.lan:5901": bookmarked}

	conn, err := ParseURI("vnc://office.lan:5901", finder)
	if err != nil {
		t.Fatalf("ParseURI() error = %v", err)
	}
	if conn != bookmarked {
		t.Errorf("ParseURI() = %+v, want the bookmarked connection", conn)
	}

	conn, err = ParseURI("office.lan", finder)
	if err != nil {
		t.Fatalf("ParseURI() error = %v", err)
	}
	if conn == bookmarked || conn.Name != "" {
		t.Errorf("different port should not match the bookmark, got %+v", conn)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.vnc")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		content  string
		wantHost string
		wantPort int
	}{
		{"host and port", "[connection]\nhost=desk.lan\nport=5905\n", "desk.lan", 5905},
		{"port defaults to zero", "[connection]\nhost=desk.lan\n", "desk.lan", 0},
		{"invalid port", "[connection]\nhost=desk.lan\nport=abc\n", "desk.lan", 0},
		{"extra groups", "[other]\nhost=x\n\n[connection]\nhost=desk.lan\nport=1\n", "desk.lan", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)
			conn, err := ParseFile(ctx, path, nil, nil)
			if err != nil {
				t.Fatalf("ParseFile() error = %v", err)
			}
			if conn.Host != tt.wantHost || conn.Port != tt.wantPort {
				t.Errorf("ParseFile() = %s:%d, want %s:%d", conn.Host, conn.Port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestParseFile_FileURI(t *testing.T) {
	path := writeFile(t, "[connection]\nhost=desk.lan\nport=5905\n")

	conn, err := ParseFile(context.Background(), "file://"+path, FileLoader{}, nil)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if conn.Host != "desk.lan" || conn.Port != 5905 {
		t.Errorf("ParseFile() = %s:%d", conn.Host, conn.Port)
	}
}

func TestParseFile_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseFile(ctx, filepath.Join(t.TempDir(), "nope.vnc"), nil, nil)
		if !errors.Is(err, common.ErrFileLoad) {
			t.Errorf("error = %v, want ErrFileLoad", err)
		}
	})

	t.Run("loader failure", func(t *testing.T) {
		loader := LoaderFunc(func(context.Context, string) ([]byte, error) {
			return nil, errors.New("permission denied")
		})
		_, err := ParseFile(ctx, "x.vnc", loader, nil)
		if !errors.Is(err, common.ErrFileLoad) || !strings.Contains(err.Error(), "permission denied") {
			t.Errorf("error = %v, want ErrFileLoad with underlying text", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseFile(ctx, writeFile(t, "[connection\nhost=x\n"), nil, nil)
		if !errors.Is(err, common.ErrParse) {
			t.Errorf("error = %v, want ErrParse", err)
		}
	})

	t.Run("missing host", func(t *testing.T) {
		conn, err := ParseFile(ctx, writeFile(t, "[connection]\nport=5900\n"), nil, nil)
		if conn != nil || !errors.Is(err, common.ErrMissingHost) {
			t.Errorf("ParseFile() = %v, %v; want nil, ErrMissingHost", conn, err)
		}
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := ParseFile(ctx, writeFile(t, "[other]\nhost=x\n"), nil, nil)
		if !errors.Is(err, common.ErrMissingHost) {
			t.Errorf("error = %v, want ErrMissingHost", err)
		}
	})
}

func TestParseFile_BookmarkLookup(t *testing.T) {
	bookmarked := &Connection{Name: "desk", Host: "desk.lan", Port: 5905}
	finder := fakeFinder{"desk.lan:5905": bookmarked}

	conn, err := ParseFile(context.Background(), writeFile(t, "[connection]\nhost=desk.lan\nport=5905\n"), nil, finder)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if conn != bookmarked {
		t.Errorf("ParseFile() = %+v, want the bookmarked connection", conn)
	}
}

func TestAtoi(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"5900", 5900},
		{"  42", 42},
		{"+7", 7},
		{"-3", -3},
		{"12abc", 12},
		{"abc", 0},
		{"", 0},
		{"99999999999", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := atoi(tt.in); got != tt.want {
				t.Errorf("atoi(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
