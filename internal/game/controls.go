package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Faultbox/dicebowl/internal/game/check"
	"github.com/Faultbox/dicebowl/internal/game/sheet"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

// Limits of the keyboard controls.
const (
	MaxDice     = 10
	MaxModifier = 10
	MinSpeed    = 0.125
	MaxSpeed    = 4
)

// Controls is the selection state changed by the keyboard.
type Controls struct {
	types []dietype.Type
	typ   int
	Count int

	attributes []string
	attribute  int
	talents    []string
	talent     int
	Modifier   int
}

// NewControls starts on one d20 and the first attribute and talent of c.
func NewControls(c *sheet.Character) *Controls {
	ctl := &Controls{
		types:      dietype.Types(),
		Count:      1,
		attributes: slices.Clone(sheet.Attributes),
	}
	ctl.typ = max(slices.Index(ctl.types, dietype.D20), 0)
	if c != nil {
		for _, cat := range c.Categories() {
			for _, t := range c.Talents[cat] {
				ctl.talents = append(ctl.talents, t.Name)
			}
		}
	}
	return ctl
}

// Type returns the selected die type.
func (c *Controls) Type() dietype.Type { return c.types[c.typ] }

// CycleType moves the die type selection by step, wrapping around.
func (c *Controls) CycleType(step int) {
	c.typ = wrap(c.typ+step, len(c.types))
}

// AddDice changes the number of dice thrown, within 1..MaxDice.
func (c *Controls) AddDice(n int) {
	c.Count = min(max(c.Count+n, 1), MaxDice)
}

// Attribute returns the selected attribute.
func (c *Controls) Attribute() string { return c.attributes[c.attribute] }

// NextAttribute selects the following attribute.
func (c *Controls) NextAttribute() {
	c.attribute = wrap(c.attribute+1, len(c.attributes))
}

// Talent returns the selected talent, or "" when the sheet has none.
func (c *Controls) Talent() string {
	if len(c.talents) == 0 {
		return ""
	}
	return c.talents[c.talent]
}

// NextTalent selects the following talent.
func (c *Controls) NextTalent() {
	if len(c.talents) > 0 {
		c.talent = wrap(c.talent+1, len(c.talents))
	}
}

// AddModifier changes the check modifier within ±MaxModifier.
func (c *Controls) AddModifier(n int) {
	c.Modifier = min(max(c.Modifier+n, -MaxModifier), MaxModifier)
}

// Title summarizes the selection and the latest result for the window title.
func (c *Controls) Title(speed float64, muted bool, last string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "dicebowl | %d×%s | %s / %s %+d | speed %.2g", c.Count, c.Type(), c.Attribute(), c.Talent(), c.Modifier, speed)
	if muted {
		b.WriteString(" | muted")
	}
	if last != "" {
		b.WriteString(" | ")
		b.WriteString(last)
	}
	return b.String()
}

// Describe renders a check result in one line.
func Describe(r check.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %v", r.Name(), r.Rolls())
	if r.Success() {
		fmt.Fprintf(&b, " success QS %d", r.QualityLevel())
	} else {
		b.WriteString(" failed")
	}
	if label := r.CriticalLabel(); label != "" {
		fmt.Fprintf(&b, " (%s)", label)
	}
	return b.String()
}

// DescribeThrow renders the faces of a free throw.
func DescribeThrow(t dietype.Type, values []int) string {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return fmt.Sprintf("%s %v = %d", t, values, sum)
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}
