package bookmarks

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "bookmarks"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newConn(host string, port int) *connection.Connection {
	conn := connection.New()
	conn.SetHost(host)
	conn.SetPort(port)
	return conn
}

type triple struct {
	name string
	host string
	port int
}

func triples(store *Store) []triple {
	var out []triple
	for conn := range store.All() {
		out = append(out, triple{conn.Name, conn.Host, conn.Port})
	}
	return out
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	common.GetLogger().SetOutput(&buf)
	t.Cleanup(func() { common.GetLogger().SetOutput(os.Stderr) })
	return &buf
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); !errors.Is(err, common.ErrInvalidBookmark) {
		t.Errorf("Open(\"\") error = %v, want ErrInvalidBookmark", err)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	store := openTestStore(t)
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	if common.FileExists(store.Path()) {
		t.Error("Open() should not create the file")
	}
}

func TestOpen_UnparsableFile(t *testing.T) {
	logs := captureLog(t)
	path := filepath.Join(t.TempDir(), "bookmarks")
	if err := os.WriteFile(path, []byte("[broken\nthis is not a key file\n"), 0600); err != nil {
		t.Fatal(err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v, want success with an empty store", err)
	}
	defer store.Close()

	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
	if !strings.Contains(logs.String(), "Error while initializing bookmarks") {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}

func TestAdd_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	office := newConn("office.lan", 5901)
	if err := store.Add(office, "Office"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if office.Name != "Office" {
		t.Errorf("Name = %q, want %q", office.Name, "Office")
	}

	lab := newConn("10.0.0.7", 5900)
	if err := store.Add(lab, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if lab.Name != "10.0.0.7" {
		t.Errorf("empty name should fall back to host, got %q", lab.Name)
	}

	want := []triple{
		{"Office", "office.lan", 5901},
		{"10.0.0.7", "10.0.0.7", 5900},
	}
	if got := triples(store); !slices.Equal(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}

	reopened, err := Open(store.Path())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reopened.Close()
	if got := triples(reopened); !slices.Equal(got, want) {
		t.Errorf("after reload All() = %v, want %v", got, want)
	}
}

func TestAdd_FileFormat(t *testing.T) {
	store := openTestStore(t)
	if err := store.Add(newConn("office.lan", 5901), "Office"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	want := "[Office]\nhost=office.lan\nport=5901\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %o, want 0600", info.Mode().Perm())
	}
}

func TestAdd_InvalidName(t *testing.T) {
	store := openTestStore(t)

	tests := []struct {
		name string
		conn *connection.Connection
		as   string
	}{
		{"no name and no host", connection.New(), ""},
		{"reserved", newConn("h", 1), "DEFAULT"},
		{"brackets", newConn("h", 1), "a]b"},
		{"newline", newConn("h", 1), "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Add(tt.conn, tt.as); !errors.Is(err, common.ErrInvalidBookmark) {
				t.Errorf("Add() error = %v, want ErrInvalidBookmark", err)
			}
		})
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestAdd_InvalidHost(t *testing.T) {
	store := openTestStore(t)

	tests := []struct {
		name string
		host string
	}{
		{"leading space", " lead"},
		{"trailing tab", "trail\t"},
		{"backtick", "h`6"},
		{"double quote", "\"h5\""},
		{"line break", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Add(newConn(tt.host, 5900), "Name"); !errors.Is(err, common.ErrInvalidBookmark) {
				t.Errorf("Add(%q) error = %v, want ErrInvalidBookmark", tt.host, err)
			}
			conn := newConn("ok.lan", 5900)
			if err := store.Edit(conn, "Name", tt.host, 5900); !errors.Is(err, common.ErrInvalidBookmark) {
				t.Errorf("Edit(%q) error = %v, want ErrInvalidBookmark", tt.host, err)
			}
		})
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestQuotedValuesKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks")
	if err := os.WriteFile(path, []byte("[Quoted]\nhost=\"h5\"\nport=5900\n"), 0600); err != nil {
		t.Fatal(err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	conn, err := store.Get("Quoted")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if conn.Host != `"h5"` {
		t.Errorf("Host = %q, want %q", conn.Host, `"h5"`)
	}
	if store.FindByHostPort("h5", 5900) != nil {
		t.Error("FindByHostPort matched the unquoted host")
	}
}

func TestNilConnection(t *testing.T) {
	store := openTestStore(t)

	if err := store.Add(nil, "Name"); !errors.Is(err, common.ErrInvalidBookmark) {
		t.Errorf("Add(nil) error = %v, want ErrInvalidBookmark", err)
	}
	if err := store.Edit(nil, "Name", "h", 1); !errors.Is(err, common.ErrInvalidBookmark) {
		t.Errorf("Edit(nil) error = %v, want ErrInvalidBookmark", err)
	}

	prompter := &fakePrompter{name: "Name", edit: EditRequest{Name: "Name", Host: "h"}, ok: true}
	m := NewManager(store, prompter)
	if ok, err := m.AddBookmark(context.Background(), nil); ok || !errors.Is(err, common.ErrInvalidBookmark) {
		t.Errorf("AddBookmark(nil) = %v, %v", ok, err)
	}
	if ok, err := m.EditBookmark(context.Background(), nil); ok || !errors.Is(err, common.ErrInvalidBookmark) {
		t.Errorf("EditBookmark(nil) = %v, %v", ok, err)
	}
	if ok, err := m.DeleteBookmark(context.Background(), nil); ok || err != nil {
		t.Errorf("DeleteBookmark(nil) = %v, %v", ok, err)
	}
	if prompter.calls != 0 {
		t.Errorf("prompter called %d times", prompter.calls)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestUnknownKeysPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks")
	content := "[Office]\nhost=office.lan\nport=5901\nfullscreen=true\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Add(newConn("lab", 5900), "Lab"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "fullscreen=true") {
		t.Errorf("unknown key was dropped:\n%s", data)
	}
}

func TestEdit(t *testing.T) {
	tests := []struct {
		name     string
		newName  string
		newHost  string
		newPort  int
		wantName string
	}{
		{"rename", "Work", "work.lan", 5902, "Work"},
		{"same name", "Office", "office2.lan", 5903, "Office"},
		{"empty name falls back to new host", "", "new.lan", 5904, "new.lan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openTestStore(t)
			conn := newConn("office.lan", 5901)
			if err := store.Add(conn, "Office"); err != nil {
				t.Fatal(err)
			}
			if err := store.Add(newConn("other", 5900), "Other"); err != nil {
				t.Fatal(err)
			}

			if err := store.Edit(conn, tt.newName, tt.newHost, tt.newPort); err != nil {
				t.Fatalf("Edit() error = %v", err)
			}

			if conn.Name != tt.wantName || conn.Host != tt.newHost || conn.Port != tt.newPort {
				t.Errorf("conn = %+v", conn)
			}
			if tt.wantName != "Office" && store.Has("Office") {
				t.Error("old group should be removed")
			}
			got, err := store.Get(tt.wantName)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Host != tt.newHost || got.Port != tt.newPort {
				t.Errorf("stored = %s:%d, want %s:%d", got.Host, got.Port, tt.newHost, tt.newPort)
			}
			if store.Len() != 2 {
				t.Errorf("Len() = %d, want 2", store.Len())
			}
		})
	}
}

func TestEdit_UnbookmarkedConnection(t *testing.T) {
	store := openTestStore(t)
	conn := newConn("adhoc", 5900)

	if err := store.Edit(conn, "Adhoc", "adhoc", 5900); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if !store.Has("Adhoc") {
		t.Error("Edit() should create the group")
	}
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)
	if err := store.Add(newConn("a", 1), "A"); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(newConn("b", 2), "B"); err != nil {
		t.Fatal(err)
	}

	if err := store.Remove("A"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got := triples(store); !slices.Equal(got, []triple{{"B", "b", 2}}) {
		t.Errorf("All() = %v", got)
	}
}

func TestRemove_Missing(t *testing.T) {
	store := openTestStore(t)
	if err := store.Add(newConn("a", 1), "A"); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(store.Path())

	err = store.Remove("nope")
	if !errors.Is(err, common.ErrGroupRemoval) || !errors.Is(err, common.ErrBookmarkNotFound) {
		t.Errorf("Remove() error = %v, want ErrGroupRemoval and ErrBookmarkNotFound", err)
	}

	after, _ := os.ReadFile(store.Path())
	if !bytes.Equal(before, after) {
		t.Error("file content changed")
	}
	infoAfter, _ := os.Stat(store.Path())
	if !info.ModTime().Equal(infoAfter.ModTime()) {
		t.Error("file was rewritten")
	}
}

func TestFindByHostPort(t *testing.T) {
	store := openTestStore(t)
	if err := store.Add(newConn("office.lan", 5901), "Office"); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(newConn("lab", 5900), "Lab"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		host     string
		port     int
		wantName string
	}{
		{"match", "office.lan", 5901, "Office"},
		{"second group", "lab", 5900, "Lab"},
		{"port differs", "office.lan", 5900, ""},
		{"host differs", "office", 5901, ""},
		{"case differs", "Office.lan", 5901, ""},
		{"absent", "nowhere", 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.FindByHostPort(tt.host, tt.port)
			if tt.wantName == "" {
				if got != nil {
					t.Errorf("FindByHostPort() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("FindByHostPort() = nil")
			}
			if got.Name != tt.wantName || got.Host != tt.host || got.Port != tt.port {
				t.Errorf("FindByHostPort() = %+v", got)
			}
		})
	}
}

func TestFindByHostPort_FirstMatchWins(t *testing.T) {
	store := openTestStore(t)
	if err := store.Add(newConn("h", 5900), "First"); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(newConn("h", 5900), "Second"); err != nil {
		t.Fatal(err)
	}

	if got := store.FindByHostPort("h", 5900); got == nil || got.Name != "First" {
		t.Errorf("FindByHostPort() = %+v, want First", got)
	}
}

func TestParseURI_UsesStore(t *testing.T) {
	store := openTestStore(t)
	if err := store.Add(newConn("office.lan", 5901), "Office"); err != nil {
		t.Fatal(err)
	}

	conn, err := connection.ParseURI("vnc://office.lan:5901", store)
	if err != nil {
		t.Fatal(err)
	}
	if conn.Name != "Office" {
		t.Errorf("Name = %q, want Office", conn.Name)
	}
}

func TestAll_Idempotent(t *testing.T) {
	store := openTestStore(t)
	for i, host := range []string{"c", "a", "b"} {
		if err := store.Add(newConn(host, 5900+i), ""); err != nil {
			t.Fatal(err)
		}
	}

	first := triples(store)
	second := triples(store)
	if !slices.Equal(first, second) {
		t.Errorf("All() differs between calls: %v vs %v", first, second)
	}
	if first[0].name != "c" || first[2].name != "b" {
		t.Errorf("All() should keep insertion order, got %v", first)
	}
}

func TestAll_EarlyBreak(t *testing.T) {
	store := openTestStore(t)
	for _, host := range []string{"a", "b", "c"} {
		if err := store.Add(newConn(host, 5900), ""); err != nil {
			t.Fatal(err)
		}
	}

	count := 0
	for range store.All() {
		count++
		break
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if len(store.List()) != 3 {
		t.Errorf("List() length = %d, want 3", len(store.List()))
	}
}

func TestReload(t *testing.T) {
	store := openTestStore(t)
	if err := store.Add(newConn("a", 1), "A"); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(store.Path(), []byte("[B]\nhost=b\nport=2\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := triples(store); !slices.Equal(got, []triple{{"B", "b", 2}}) {
		t.Errorf("All() = %v", got)
	}
}

func TestSaveError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatal(err)
	}

	store, err := Open(filepath.Join(blocker, "bookmarks"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	conn := newConn("a", 1)
	if err := store.Add(conn, "A"); !errors.Is(err, common.ErrSave) {
		t.Errorf("Add() error = %v, want ErrSave", err)
	}
	if !store.Has("A") {
		t.Error("in-memory document should keep the change after a failed save")
	}
}

func TestClose(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "bookmarks"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := store.Add(newConn("a", 1), "A"); !errors.Is(err, common.ErrStoreClosed) {
		t.Errorf("Add() error = %v, want ErrStoreClosed", err)
	}
	if _, err := store.Get("A"); !errors.Is(err, common.ErrStoreClosed) {
		t.Errorf("Get() error = %v, want ErrStoreClosed", err)
	}
	if err := store.Close(); !errors.Is(err, common.ErrStoreClosed) {
		t.Errorf("second Close() error = %v, want ErrStoreClosed", err)
	}
	if store.FindByHostPort("a", 1) != nil || store.Len() != 0 {
		t.Error("closed store should be empty")
	}
}
