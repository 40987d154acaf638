// Package dice defines the polyhedral die types used throughout the bowl.
package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedType is returned when a die type name or value is not one of
// the known polyhedral dice.
var ErrUnsupportedType = errors.New("unsupported die type")

// Type identifies a die by its number of sides.
type Type uint8

// Known die types. The zero value is invalid.
const (
	D4 Type = iota + 1
	D6
	D8
	D10
	D12
	D20
	D100
)

var sides = [...]int{
	D4:   4,
	D6:   6,
	D8:   8,
	D10:  10,
	D12:  12,
	D20:  20,
	D100: 100,
}

// Types returns all supported die types in ascending order.
func Types() []Type {
	return []Type{D4, D6, D8, D10, D12, D20, D100}
}

// Valid reports whether t is a known die type.
func (t Type) Valid() bool {
	return t >= D4 && t <= D100
}

// Sides returns the number of distinct results the die can produce.
// A percentile die reports 100 even though its body has ten faces.
func (t Type) Sides() int {
	if !t.Valid() {
		return 0
	}
	return sides[t]
}

// String returns the conventional name, e.g. "d20".
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("dice.Type(%d)", uint8(t))
	}
	return "d" + strconv.Itoa(sides[t])
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedType, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Parse converts "d20", "D20" or "20" into a Type.
func Parse(name string) (Type, error) {
	s := strings.TrimSpace(strings.ToLower(name))
	s = strings.TrimPrefix(s, "d")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}
	for _, t := range Types() {
		if sides[t] == n {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// Contains reports whether value is a face value the die can show.
func (t Type) Contains(value int) bool {
	switch t {
	case D100:
		return value >= 0 && value <= 90 && value%10 == 0
	default:
		n := t.Sides()
		return value >= 1 && value <= n
	}
}
