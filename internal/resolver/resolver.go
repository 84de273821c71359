// Package resolver maps mention names to Notion IDs and back.
package resolver

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gerunddev/notionbridge/internal/richtext"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Aliases is a static name table read from YAML:
//
//	pages:
//	  Roadmap: 1f2e3d4c-...
//	users:
//	  Ada: 9a8b7c6d-...
type Aliases struct {
	Pages       map[string]string `yaml:"pages"`
	Databases   map[string]string `yaml:"databases"`
	DataSources map[string]string `yaml:"data_sources"`
	Users       map[string]string `yaml:"users"`

	reverse map[richtext.MentionType]map[string]string
}

// LoadAliases reads an alias file. A missing file yields an empty table.
func LoadAliases(path string) (*Aliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ParseAliases(nil)
		}
		return nil, err
	}
	a, err := ParseAliases(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse aliases %s: %w", path, err)
	}
	return a, nil
}

// ParseAliases decodes an alias table and checks that every value is an ID
func ParseAliases(data []byte) (*Aliases, error) {
	a := &Aliases{}
	if err := yaml.Unmarshal(data, a); err != nil {
		return nil, err
	}

	a.reverse = make(map[richtext.MentionType]map[string]string)
	for kind, names := range a.tables() {
		rev := make(map[string]string, len(names))
		for _, name := range sortedKeys(names) {
			id, ok := NormalizeID(names[name])
			if !ok {
				return nil, fmt.Errorf("%s alias %q: %q is not a Notion ID", kind, name, names[name])
			}
			names[name] = id
			if _, taken := rev[id]; !taken {
				rev[id] = name
			}
		}
		a.reverse[kind] = rev
	}
	return a, nil
}

func (a *Aliases) tables() map[richtext.MentionType]map[string]string {
	tables := make(map[richtext.MentionType]map[string]string)
	add := func(kind richtext.MentionType, m map[string]string) {
		if m != nil {
			tables[kind] = m
		}
	}
	add(richtext.MentionPage, a.Pages)
	add(richtext.MentionDatabase, a.Databases)
	add(richtext.MentionDataSource, a.DataSources)
	add(richtext.MentionUser, a.Users)
	return tables
}

// Len returns the number of aliases across all kinds
func (a *Aliases) Len() int {
	return len(a.Pages) + len(a.Databases) + len(a.DataSources) + len(a.Users)
}

// NameToID looks name up exactly, then case-insensitively
func (a *Aliases) NameToID(kind richtext.MentionType, name string) (string, bool) {
	names := a.tables()[kind]
	if id, ok := names[name]; ok {
		return id, true
	}
	for k, id := range names {
		if strings.EqualFold(k, name) {
			return id, true
		}
	}
	return "", false
}

// IDToName returns the alias for id. When several names share an ID the
// alphabetically first wins.
func (a *Aliases) IDToName(kind richtext.MentionType, id string) (string, bool) {
	norm, ok := NormalizeID(id)
	if !ok {
		return "", false
	}
	name, ok := a.reverse[kind][norm]
	return name, ok
}

// NormalizeID returns the dashed lowercase form of a Notion ID
func NormalizeID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !IsID(s) {
		return "", false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// IsID reports whether s is a Notion ID, dashed or in the 32-hex form
func IsID(s string) bool {
	return richtext.IsID(s)
}

// Chain tries each resolver in order and returns the first hit
type Chain []richtext.Resolver

func (c Chain) NameToID(kind richtext.MentionType, name string) (string, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if id, ok := r.NameToID(kind, name); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

func (c Chain) IDToName(kind richtext.MentionType, id string) (string, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if name, ok := r.IDToName(kind, id); ok && name != "" {
			return name, true
		}
	}
	return "", false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
