package connection

import (
	"fmt"
	"slices"
	"strconv"

	"gopkg.in/ini.v1"

	"github.com/yllada/vncviewer/common"
)

func init() {
	// host=value, no padding around the delimiter
	ini.PrettyFormat = false
}

// KeyFileOptions returns the ini options for the key-file dialect used by
// bookmark documents and .vnc files: '=' delimited, comments only at the start
// of a line, no line continuation, quotes kept as part of the value.
func KeyFileOptions() ini.LoadOptions {
	return ini.LoadOptions{
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
		KeyValueDelimiters:      "=",
	}
}

// LoadKeyFile parses data as a key file.
func LoadKeyFile(data []byte) (*ini.File, error) {
	file, err := ini.LoadSources(KeyFileOptions(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrParse, err)
	}
	return file, nil
}

// EmptyKeyFile returns a key file with no groups.
func EmptyKeyFile() *ini.File {
	return ini.Empty(KeyFileOptions())
}

// Groups returns the named groups of file in document order.
func Groups(file *ini.File) []*ini.Section {
	sections := file.Sections()
	groups := make([]*ini.Section, 0, len(sections))
	for _, sec := range sections {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		groups = append(groups, sec)
	}
	return groups
}

// GroupString returns the value of key in group. Only keys defined in the
// group itself are considered.
func GroupString(group *ini.Section, key string) (string, bool) {
	if !slices.Contains(group.KeyStrings(), key) {
		return "", false
	}
	return group.Key(key).String(), true
}

// GroupInt returns key as a decimal integer, 0 when absent or malformed.
func GroupInt(group *ini.Section, key string) int {
	value, ok := GroupString(group, key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
