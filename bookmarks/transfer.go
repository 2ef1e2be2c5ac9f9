package bookmarks

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/yllada/vncviewer/common"
)

// Entry is the portable form of a bookmark used by Export and Import.
type Entry struct {
	Name string `yaml:"name" toml:"name"`
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

type exportDocument struct {
	Bookmarks []Entry `yaml:"bookmarks" toml:"bookmarks"`
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Export writes every bookmark to path as TOML when the extension is .toml
// and as YAML otherwise.
func (s *Store) Export(path string) error {
	doc := exportDocument{Bookmarks: make([]Entry, 0)}
	for conn := range s.All() {
		doc.Bookmarks = append(doc.Bookmarks, Entry{
			Name: conn.Name,
			Host: conn.Host,
			Port: conn.Port,
		})
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode bookmarks: %w", err)
		}
		data = buf.Bytes()
	} else {
		out, err := yaml.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("failed to encode bookmarks: %w", err)
		}
		data = out
	}

	if err := common.AtomicWrite(common.ExpandHome(path), data, 0600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// Import adds the bookmarks found in path, skipping names already present and
// entries without a host. The document is saved once; the number of imported
// bookmarks is returned.
func (s *Store) Import(path string) (int, error) {
	data, err := os.ReadFile(common.ExpandHome(path))
	if err != nil {
		return 0, fmt.Errorf("failed to read import file: %w", err)
	}

	var doc exportDocument
	if isTOML(path) {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return 0, fmt.Errorf("%w: %v", common.ErrParse, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return 0, fmt.Errorf("%w: %v", common.ErrParse, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, common.ErrStoreClosed
	}

	imported := 0
	for _, entry := range doc.Bookmarks {
		if entry.Host == "" {
			continue
		}
		name := entry.Name
		if name == "" {
			name = entry.Host
		}
		if validName(name) != nil || validHost(entry.Host) != nil || s.hasGroup(name) {
			common.LogDebug("Skipping bookmark %q on import", name)
			continue
		}
		s.setGroup(name, entry.Host, entry.Port)
		imported++
	}

	if imported == 0 {
		return 0, nil
	}
	if err := s.save(); err != nil {
		return imported, err
	}
	return imported, nil
}
