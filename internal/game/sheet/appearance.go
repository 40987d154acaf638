package sheet

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/dicebowl/internal/engine/geometry"
)

// DefaultAttributeColors maps each attribute to its d20 color.
var DefaultAttributeColors = map[string]string{
	"MU": "#ff0000",
	"KL": "#00ff00",
	"IN": "#0000ff",
	"CH": "#ffff00",
	"FF": "#ff00ff",
	"GE": "#00ffff",
	"KO": "#ff8800",
	"KK": "#88ff00",
}

// Appearances stores the look of dice per check.
type Appearances struct {
	// Attribute is the fallback for attributes without an entry.
	Attribute    geometry.Appearance            `yaml:"attribute" json:"attribute"`
	Talent       geometry.Appearance            `yaml:"talent" json:"talent"`
	PerAttribute map[string]geometry.Appearance `yaml:"per_attribute" json:"per_attribute"`
	// UseTalentColors colors all three talent dice with Talent; otherwise
	// each die takes the color of the attribute it is tested against.
	UseTalentColors bool `yaml:"use_talent_colors" json:"use_talent_colors"`
}

// DefaultAppearances returns the stock colors.
func DefaultAppearances() *Appearances {
	a := &Appearances{
		Attribute:       geometry.DefaultAppearance(),
		Talent:          geometry.DefaultAppearance(),
		PerAttribute:    make(map[string]geometry.Appearance, len(DefaultAttributeColors)),
		UseTalentColors: true,
	}
	for name, color := range DefaultAttributeColors {
		look := geometry.DefaultAppearance()
		look.Color = color
		a.PerAttribute[name] = look
	}
	return a
}

// ForAttribute returns the look of a die rolled against an attribute.
func (a *Appearances) ForAttribute(name string) geometry.Appearance {
	if look, ok := a.PerAttribute[name]; ok {
		return look
	}
	if color, ok := DefaultAttributeColors[name]; ok {
		look := geometry.DefaultAppearance()
		look.Color = color
		return look
	}
	return a.Attribute
}

// ForTalent returns the looks of the three dice of a talent check.
func (a *Appearances) ForTalent(t Talent) [3]geometry.Appearance {
	var out [3]geometry.Appearance
	for i, attr := range t.Attributes {
		if a.UseTalentColors {
			out[i] = a.Talent
		} else {
			out[i] = a.ForAttribute(attr)
		}
	}
	return out
}

// Reset restores the stock colors, keeping the talent color preference.
func (a *Appearances) Reset() {
	keep := a.UseTalentColors
	*a = *DefaultAppearances()
	a.UseTalentColors = keep
}

// LoadAppearances reads appearances from YAML or JSON, falling back to
// defaults when the file does not exist.
func LoadAppearances(path string) (*Appearances, error) {
	a := DefaultAppearances()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return a, nil
		}
		return nil, fmt.Errorf("read appearances: %w", err)
	}
	if err := yaml.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("parse appearances: %w", err)
	}
	for name, look := range a.PerAttribute {
		if _, err := look.Material(); err != nil {
			return nil, fmt.Errorf("appearance %s: %w", name, err)
		}
	}
	return a, nil
}

// Save writes the appearances as YAML.
func (a *Appearances) Save(path string) error {
	return writeYAML(path, a)
}
