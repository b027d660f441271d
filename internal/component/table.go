package component

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed traceability.yaml
var defaultTableYAML []byte

// Entry maps a canonical component name to its search tags.
type Entry struct {
	Name string   `json:"name" yaml:"name" toml:"name"`
	Tags []string `json:"tags" yaml:"tags" toml:"tags"`
}

// Table is an ordered traceability table. Lookups scan entries in order and
// the first match wins, so order is part of the configuration.
type Table struct {
	Entries []Entry
}

// Names returns the canonical component names in table order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		names = append(names, e.Name)
	}
	return names
}

// Lookup returns the entry with the given name, compared case-insensitively.
func (t *Table) Lookup(name string) (Entry, bool) {
	for _, e := range t.Entries {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// Default returns the built-in traceability table.
func Default() *Table {
	t, err := ParseYAML(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("load traceability.yaml: %v", err))
	}
	return t
}

// LoadFile reads a table from a .yaml, .yml, .toml or .json file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading traceability table: %w", err)
	}

	var t *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		t, err = ParseYAML(data)
	case ".toml":
		t, err = ParseTOML(data)
	case ".json":
		t, err = ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported traceability table format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}

// ParseYAML accepts either a mapping of name to tags, whose key order is
// kept, or a list of {name, tags} entries.
func ParseYAML(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &Table{}, nil
	}
	root := doc.Content[0]

	// Accept an optional top-level "components:" wrapper.
	if root.Kind == yaml.MappingNode && len(root.Content) == 2 && root.Content[0].Value == "components" {
		root = root.Content[1]
	}

	t := &Table{}
	switch root.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			var tags []string
			if err := root.Content[i+1].Decode(&tags); err != nil {
				return nil, fmt.Errorf("component %q: %w", root.Content[i].Value, err)
			}
			t.Entries = append(t.Entries, Entry{Name: root.Content[i].Value, Tags: tags})
		}
	case yaml.SequenceNode:
		if err := root.Decode(&t.Entries); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("traceability table must be a mapping or a list")
	}
	return t, t.validate()
}

// ParseTOML reads [[component]] array tables.
func ParseTOML(data []byte) (*Table, error) {
	var doc struct {
		Component []Entry `toml:"component"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	t := &Table{Entries: doc.Component}
	return t, t.validate()
}

// ParseJSON reads a list of {name, tags} objects.
func ParseJSON(data []byte) (*Table, error) {
	t := &Table{}
	if err := json.Unmarshal(data, &t.Entries); err != nil {
		return nil, err
	}
	return t, t.validate()
}

func (t *Table) validate() error {
	for i, e := range t.Entries {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("entry %d has no name", i)
		}
	}
	return nil
}
