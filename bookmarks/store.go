// Package bookmarks persists named remote targets in a key-file document and
// exposes the add, edit and delete flows that front-ends drive through a
// Prompter.
package bookmarks

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/ini.v1"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

const (
	hostKey = "host"
	portKey = "port"
)

// Store holds the bookmark document in memory and rewrites the whole file
// after every mutation. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	path   string
	doc    *ini.File
	closed bool
}

// Open loads the bookmark document at path. A missing file yields an empty
// store. A file that cannot be read or parsed is logged and also yields an
// empty store; the next save overwrites it.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty bookmarks path", common.ErrInvalidBookmark)
	}

	s := &Store{path: common.ExpandHome(path)}
	s.doc = s.load()
	return s, nil
}

func (s *Store) load() *ini.File {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			common.LogWarn("Error while initializing bookmarks: %v", err)
		}
		return connection.EmptyKeyFile()
	}

	doc, err := connection.LoadKeyFile(data)
	if err != nil {
		common.LogWarn("Error while initializing bookmarks: %v", err)
		return connection.EmptyKeyFile()
	}
	return doc
}

// Close releases the document. Later calls fail with common.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrStoreClosed
	}
	s.closed = true
	s.doc = nil
	return nil
}

// Path returns the location of the bookmark file.
func (s *Store) Path() string {
	return s.path
}

// Reload discards the in-memory document and reads the file again.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrStoreClosed
	}
	s.doc = s.load()
	return nil
}

// Add stores conn under name, or under conn.Host when name is empty, sets
// conn.Name and saves.
func (s *Store) Add(conn *connection.Connection, name string) error {
	if conn == nil {
		return fmt.Errorf("%w: no connection", common.ErrInvalidBookmark)
	}
	if err := validHost(conn.Host); err != nil {
		return err
	}
	if name == "" {
		name = conn.Host
	}
	if err := validName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrStoreClosed
	}

	s.setGroup(name, conn.Host, conn.Port)
	conn.SetName(name)

	return s.save()
}

// Edit replaces the group named conn.Name with host and port stored under
// name, falling back to the new host when name is empty. conn is updated to
// match and the document is saved.
func (s *Store) Edit(conn *connection.Connection, name, host string, port int) error {
	if conn == nil {
		return fmt.Errorf("%w: no connection", common.ErrInvalidBookmark)
	}
	if err := validHost(host); err != nil {
		return err
	}
	if name == "" {
		name = host
	}
	if err := validName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrStoreClosed
	}

	if conn.Name != "" {
		s.doc.DeleteSection(conn.Name)
	}

	conn.SetHost(host)
	conn.SetPort(port)
	s.setGroup(name, host, port)
	conn.SetName(name)

	return s.save()
}

// Remove deletes the group called name and saves. Removing a group that does
// not exist fails and leaves the file untouched.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrStoreClosed
	}

	if !s.hasGroup(name) {
		return fmt.Errorf("%w %q: %w", common.ErrGroupRemoval, name, common.ErrBookmarkNotFound)
	}
	s.doc.DeleteSection(name)

	return s.save()
}

// Has reports whether a bookmark called name exists.
func (s *Store) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.closed && s.hasGroup(name)
}

// Len returns the number of bookmarks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	return len(connection.Groups(s.doc))
}

// All yields one connection per bookmark in document order. Each call takes a
// fresh snapshot, so iterating does not hold the store lock.
func (s *Store) All() iter.Seq[*connection.Connection] {
	s.mu.Lock()
	snapshot := s.snapshot()
	s.mu.Unlock()

	return func(yield func(*connection.Connection) bool) {
		for _, conn := range snapshot {
			if !yield(conn) {
				return
			}
		}
	}
}

// List returns every bookmark in document order.
func (s *Store) List() []*connection.Connection {
	return slices.Collect(s.All())
}

// Get returns the bookmark called name.
func (s *Store) Get(name string) (*connection.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, common.ErrStoreClosed
	}
	if !s.hasGroup(name) {
		return nil, fmt.Errorf("%w: %q", common.ErrBookmarkNotFound, name)
	}
	return groupConnection(s.doc.Section(name)), nil
}

// FindByHostPort returns the first bookmark whose stored host and port equal
// the arguments, or nil. The returned connection carries the query host and
// port and the bookmark name.
func (s *Store) FindByHostPort(host string, port int) *connection.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	for _, group := range connection.Groups(s.doc) {
		storedHost, _ := connection.GroupString(group, hostKey)
		if storedHost != host || connection.GroupInt(group, portKey) != port {
			continue
		}
		conn := connection.New()
		conn.SetName(group.Name())
		conn.SetHost(host)
		conn.SetPort(port)
		return conn
	}
	return nil
}

func (s *Store) snapshot() []*connection.Connection {
	if s.closed {
		return nil
	}
	groups := connection.Groups(s.doc)
	conns := make([]*connection.Connection, 0, len(groups))
	for _, group := range groups {
		conns = append(conns, groupConnection(group))
	}
	return conns
}

func (s *Store) hasGroup(name string) bool {
	if name == "" || name == ini.DefaultSection {
		return false
	}
	return s.doc.HasSection(name)
}

func (s *Store) setGroup(name, host string, port int) {
	group := s.doc.Section(name)
	group.Key(hostKey).SetValue(host)
	group.Key(portKey).SetValue(strconv.Itoa(port))
}

func (s *Store) save() error {
	var buf bytes.Buffer
	if _, err := s.doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSave, err)
	}
	if err := common.AtomicWrite(s.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSave, err)
	}
	return nil
}

func groupConnection(group *ini.Section) *connection.Connection {
	conn := connection.New()
	conn.SetName(group.Name())
	host, _ := connection.GroupString(group, hostKey)
	conn.SetHost(host)
	conn.SetPort(connection.GroupInt(group, portKey))
	return conn
}

// validName rejects names the key-file format cannot hold as a group.
func validName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", common.ErrInvalidBookmark)
	case name == ini.DefaultSection:
		return fmt.Errorf("%w: %q is reserved", common.ErrInvalidBookmark, name)
	case strings.ContainsAny(name, "[]\r\n"):
		return fmt.Errorf("%w: %q contains brackets or line breaks", common.ErrInvalidBookmark, name)
	}
	return nil
}

// validHost rejects hosts that would not be written as a bare key-file value.
func validHost(host string) error {
	switch {
	case strings.TrimSpace(host) != host:
		return fmt.Errorf("%w: host %q has surrounding spaces", common.ErrInvalidBookmark, host)
	case strings.ContainsAny(host, "\"`\r\n"):
		return fmt.Errorf("%w: host %q contains quotes or line breaks", common.ErrInvalidBookmark, host)
	}
	return nil
}
