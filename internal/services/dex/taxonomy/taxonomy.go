// Package taxonomy holds the fixed, ordered set of creature types.
package taxonomy

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultColour is used for entities without a known primary type.
const DefaultColour = 0x979C9F

//go:embed types.yaml
var embeddedTypes []byte

// Type is one taxonomy entry.
type Type struct {
	Name   string `yaml:"name"`
	Colour int    `yaml:"colour"`
}

// Taxonomy is the validated, ordered type list. It is immutable once loaded.
type Taxonomy struct {
	types    []Type
	position map[string]int
}

type document struct {
	Types []Type `yaml:"types"`
}

// Load parses and validates the embedded taxonomy.
func Load() (*Taxonomy, error) {
	return Parse(embeddedTypes)
}

// Parse builds a taxonomy from YAML. Names must be unique (case-insensitive)
// and colours must fit in 24 bits.
func Parse(data []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if len(doc.Types) == 0 {
		return nil, fmt.Errorf("taxonomy has no types")
	}

	t := &Taxonomy{
		types:    make([]Type, 0, len(doc.Types)),
		position: make(map[string]int, len(doc.Types)),
	}
	for i, typ := range doc.Types {
		typ.Name = strings.TrimSpace(typ.Name)
		if typ.Name == "" {
			return nil, fmt.Errorf("taxonomy type %d: name is required", i)
		}
		key := strings.ToLower(typ.Name)
		if _, dup := t.position[key]; dup {
			return nil, fmt.Errorf("taxonomy type %q: duplicate name", typ.Name)
		}
		if typ.Colour < 0 || typ.Colour > 0xFFFFFF {
			return nil, fmt.Errorf("taxonomy type %q: colour %d out of range", typ.Name, typ.Colour)
		}
		t.position[key] = i
		t.types = append(t.types, typ)
	}
	return t, nil
}

// Len returns the number of types.
func (t *Taxonomy) Len() int {
	return len(t.types)
}

// Types returns the types in canonical order.
func (t *Taxonomy) Types() []Type {
	out := make([]Type, len(t.types))
	copy(out, t.types)
	return out
}

// Names returns the type names in canonical order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.types))
	for i, typ := range t.types {
		names[i] = typ.Name
	}
	return names
}

// Position returns the canonical index of name.
func (t *Taxonomy) Position(name string) (int, bool) {
	i, ok := t.position[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// Colour returns the embed colour for name, or DefaultColour.
func (t *Taxonomy) Colour(name string) int {
	if i, ok := t.Position(name); ok {
		return t.types[i].Colour
	}
	return DefaultColour
}

// LongestName returns the rune length of the longest type name.
func (t *Taxonomy) LongestName() int {
	longest := 0
	for _, typ := range t.types {
		longest = max(longest, len([]rune(typ.Name)))
	}
	return longest
}
