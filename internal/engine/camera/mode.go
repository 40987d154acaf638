// Package camera drives the three viewport cameras that watch a throw.
//
// Each slot runs a small state machine. Overview and rotating orbit the last
// known target, following orbits the live die without snapping, and topdown
// hovers above a settled die for a fixed display time before handing back to
// rotating. A slot shows topdown at most once until Reset.
package camera

import "fmt"

// Slots is the number of viewport cameras.
const Slots = 3

// Mode is the behavior of one camera slot.
type Mode uint8

const (
	ModeOverview Mode = iota
	ModeRotating
	ModeFollowing
	ModeTopdown
)

func (m Mode) String() string {
	switch m {
	case ModeOverview:
		return "overview"
	case ModeRotating:
		return "rotating"
	case ModeFollowing:
		return "following"
	case ModeTopdown:
		return "topdown"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	for m := ModeOverview; m <= ModeTopdown; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown camera mode %q", s)
}
