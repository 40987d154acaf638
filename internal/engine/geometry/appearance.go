package geometry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadColor is returned for color strings that are not #rgb or #rrggbb.
var ErrBadColor = errors.New("invalid color")

// Default appearance values.
const (
	DefaultColor     = "#ff0000"
	DefaultOpacity   = 1.0
	DefaultShininess = 30.0
)

// Appearance is the user-facing look of a die.
type Appearance struct {
	Color     string  `yaml:"color" json:"color"`
	Opacity   float64 `yaml:"opacity" json:"opacity"`
	Shininess float64 `yaml:"shininess" json:"shininess"`
}

// DefaultAppearance returns the appearance used when none is given.
func DefaultAppearance() Appearance {
	return Appearance{Color: DefaultColor, Opacity: DefaultOpacity, Shininess: DefaultShininess}
}

// Color is an RGB color with float components (0.0 to 1.0).
type Color struct {
	R, G, B float32
}

// Material is the render-ready form of an Appearance.
type Material struct {
	Diffuse     Color
	Opacity     float32
	Shininess   float32
	Transparent bool
}

// Material converts the appearance, filling zero fields with defaults.
func (a Appearance) Material() (Material, error) {
	if a.Color == "" {
		a.Color = DefaultColor
	}
	c, err := ParseColor(a.Color)
	if err != nil {
		return Material{}, err
	}
	opacity := a.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = DefaultOpacity
	}
	shininess := a.Shininess
	if shininess <= 0 {
		shininess = DefaultShininess
	}
	return Material{
		Diffuse:     c,
		Opacity:     float32(opacity),
		Shininess:   float32(shininess),
		Transparent: opacity < 1,
	}, nil
}

// ParseColor parses "#rrggbb" or "#rgb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// RGB creates a color from 8-bit values.
func RGB(r, g, b uint8) Color {
	return Color{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
	}
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	to8 := func(f float32) uint8 {
		if f <= 0 {
			return 0
		}
		if f >= 1 {
			return 255
		}
		return uint8(f*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}

// Contrast returns black or white, whichever reads better on c.
func (c Color) Contrast() Color {
	luma := 0.299*c.R + 0.587*c.G + 0.114*c.B
	if luma > 0.5 {
		return Color{}
	}
	return Color{1, 1, 1}
}
