// Package sheet holds the character and dice appearance data the checks read.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a sheet file, talent or attribute is missing.
var ErrNotFound = errors.New("not found")

// DefaultAttributeValue is the value of every attribute on a new character.
const DefaultAttributeValue = 8

// Attributes lists the eight attribute abbreviations in sheet order.
var Attributes = []string{"MU", "KL", "IN", "CH", "FF", "GE", "KO", "KK"}

// Talent is a skill tested against three attributes.
type Talent struct {
	Name       string    `yaml:"name" json:"name"`
	Value      int       `yaml:"value" json:"value"`
	Attributes [3]string `yaml:"attributes" json:"attributes"`
}

// Character is a player character sheet.
type Character struct {
	Name       string              `yaml:"name" json:"name"`
	Species    string              `yaml:"species,omitempty" json:"species,omitempty"`
	Culture    string              `yaml:"culture,omitempty" json:"culture,omitempty"`
	Profession string              `yaml:"profession,omitempty" json:"profession,omitempty"`
	Attributes map[string]int      `yaml:"attributes" json:"attributes"`
	Talents    map[string][]Talent `yaml:"talents" json:"talents"`
}

// NewCharacter returns a character with default attributes and the standard
// talent list at value 0.
func NewCharacter(name string) *Character {
	c := &Character{
		Name:       name,
		Attributes: make(map[string]int, len(Attributes)),
		Talents:    make(map[string][]Talent, len(defaultTalents)),
	}
	for _, a := range Attributes {
		c.Attributes[a] = DefaultAttributeValue
	}
	for cat, ts := range defaultTalents {
		c.Talents[cat] = slices.Clone(ts)
	}
	return c
}

// Attribute returns the value of an attribute.
func (c *Character) Attribute(name string) (int, bool) {
	if c == nil {
		return 0, false
	}
	v, ok := c.Attributes[name]
	return v, ok
}

// Talent finds a talent by name across all categories.
func (c *Character) Talent(name string) (Talent, bool) {
	if c == nil {
		return Talent{}, false
	}
	for _, cat := range c.Categories() {
		for _, t := range c.Talents[cat] {
			if t.Name == name {
				return t, true
			}
		}
	}
	return Talent{}, false
}

// Categories returns the talent category names in sorted order.
func (c *Character) Categories() []string {
	cats := make([]string, 0, len(c.Talents))
	for cat := range c.Talents {
		cats = append(cats, cat)
	}
	slices.Sort(cats)
	return cats
}

// SetAttribute updates an existing attribute.
func (c *Character) SetAttribute(name string, value int) error {
	if _, ok := c.Attributes[name]; !ok {
		return fmt.Errorf("attribute %q: %w", name, ErrNotFound)
	}
	c.Attributes[name] = value
	return nil
}

// SetTalent updates the value of an existing talent.
func (c *Character) SetTalent(name string, value int) error {
	for cat, ts := range c.Talents {
		for i := range ts {
			if ts[i].Name == name {
				c.Talents[cat][i].Value = value
				return nil
			}
		}
	}
	return fmt.Errorf("talent %q: %w", name, ErrNotFound)
}

// fill adds any attribute the file left out.
func (c *Character) fill() {
	if c.Attributes == nil {
		c.Attributes = make(map[string]int, len(Attributes))
	}
	for _, a := range Attributes {
		if _, ok := c.Attributes[a]; !ok {
			c.Attributes[a] = DefaultAttributeValue
		}
	}
	if c.Talents == nil {
		c.Talents = make(map[string][]Talent)
	}
}

// LoadCharacter reads a character from a YAML or JSON file.
func LoadCharacter(path string) (*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("character %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read character: %w", err)
	}
	var c Character
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse character: %w", err)
	}
	c.fill()
	return &c, nil
}

// LoadCharacterOrDefault loads path, falling back to a new character when the
// file does not exist.
func LoadCharacterOrDefault(path string) (*Character, error) {
	c, err := LoadCharacter(path)
	if errors.Is(err, ErrNotFound) {
		return NewCharacter(""), nil
	}
	return c, err
}

// Save writes the character as YAML.
func (c *Character) Save(path string) error {
	return writeYAML(path, c)
}

func writeYAML(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
