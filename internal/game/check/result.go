package check

import (
	"fmt"
	"time"
)

// Kind tags a Result.
type Kind string

const (
	KindAttribute Kind = "attribute"
	KindTalent    Kind = "talent"
)

// Critical classifies natural 1s and 20s on a talent check.
type Critical uint8

const (
	CriticalNone Critical = iota
	CriticalSuccess
	CriticalSpectacularSuccess
	CriticalFumble
	CriticalSpectacularFumble
)

var criticalNames = [...]string{
	CriticalNone:               "",
	CriticalSuccess:            "critical success",
	CriticalSpectacularSuccess: "spectacular success",
	CriticalFumble:             "fumble",
	CriticalSpectacularFumble:  "spectacular fumble",
}

func (c Critical) String() string {
	if int(c) < len(criticalNames) {
		return criticalNames[c]
	}
	return fmt.Sprintf("critical(%d)", c)
}

// Succeeded reports whether c decides the check in the roller's favor.
func (c Critical) Succeeded() bool {
	return c == CriticalSuccess || c == CriticalSpectacularSuccess
}

// Failed reports whether c decides the check against the roller.
func (c Critical) Failed() bool {
	return c == CriticalFumble || c == CriticalSpectacularFumble
}

// MarshalText implements encoding.TextMarshaler.
func (c Critical) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Critical) UnmarshalText(text []byte) error {
	for i, name := range criticalNames {
		if name == string(text) {
			*c = Critical(i)
			return nil
		}
	}
	return fmt.Errorf("unknown critical %q", text)
}

// AttributeResult is the outcome of a single d20 against an attribute.
type AttributeResult struct {
	Attribute       string `json:"attribute"`
	Roll            int    `json:"roll"`
	Target          int    `json:"target"`
	Success         bool   `json:"success"`
	RemainingPoints int    `json:"remaining_points"`
	QualityLevel    int    `json:"quality_level"`
	CriticalSuccess bool   `json:"critical_success"`
	CriticalFailure bool   `json:"critical_failure"`
	Modifier        int    `json:"modifier"`
}

// RollDetail is one of the three dice of a talent check.
type RollDetail struct {
	Attribute string `json:"attribute"`
	Value     int    `json:"value"`
	Roll      int    `json:"roll"`
}

// TalentResult is the outcome of three d20s against a talent.
type TalentResult struct {
	Talent          string        `json:"talent"`
	Rolls           [3]RollDetail `json:"rolls"`
	Success         bool          `json:"success"`
	PointsNeeded    int           `json:"points_needed"`
	RemainingPoints int           `json:"remaining_points"`
	QualityLevel    int           `json:"quality_level"`
	Critical        Critical      `json:"critical"`
	Modifier        int           `json:"modifier"`
}

// Result is a finished check. Exactly one of Attribute and Talent is set,
// matching Type.
type Result struct {
	Type      Kind             `json:"type"`
	At        time.Time        `json:"at"`
	Attribute *AttributeResult `json:"attribute_check,omitempty"`
	Talent    *TalentResult    `json:"talent_check,omitempty"`
}

// Name returns the attribute or talent checked.
func (r Result) Name() string {
	switch {
	case r.Attribute != nil:
		return r.Attribute.Attribute
	case r.Talent != nil:
		return r.Talent.Talent
	}
	return ""
}

// Success reports whether the check passed.
func (r Result) Success() bool {
	switch {
	case r.Attribute != nil:
		return r.Attribute.Success
	case r.Talent != nil:
		return r.Talent.Success
	}
	return false
}

// QualityLevel returns the quality level, 0 on failure.
func (r Result) QualityLevel() int {
	switch {
	case r.Attribute != nil:
		return r.Attribute.QualityLevel
	case r.Talent != nil:
		return r.Talent.QualityLevel
	}
	return 0
}

// Rolls returns the raw die values.
func (r Result) Rolls() []int {
	switch {
	case r.Attribute != nil:
		return []int{r.Attribute.Roll}
	case r.Talent != nil:
		out := make([]int, len(r.Talent.Rolls))
		for i, d := range r.Talent.Rolls {
			out[i] = d.Roll
		}
		return out
	}
	return nil
}

// CriticalLabel describes any natural 1 or 20, or returns "".
func (r Result) CriticalLabel() string {
	switch {
	case r.Attribute != nil && r.Attribute.CriticalSuccess:
		return CriticalSuccess.String()
	case r.Attribute != nil && r.Attribute.CriticalFailure:
		return CriticalFumble.String()
	case r.Talent != nil:
		return r.Talent.Critical.String()
	}
	return ""
}
