package camera

import (
	gomath "math"
	"math/rand/v2"
	"time"

	"github.com/Faultbox/dicebowl/pkg/math"
)

// frameTime is the frame length the per-frame factors below were tuned at.
const frameTime = time.Second / 60

// Settings tunes camera motion.
type Settings struct {
	// SettleDuration is how long topdown shows a settled die.
	SettleDuration time.Duration
	// Radius and Height place orbiting cameras relative to the target.
	Radius float32
	Height float32
	// RotationSpeed is the shared orbit phase advance in radians per millisecond.
	RotationSpeed float64
	// MinSpin and MaxSpin bound each slot's extra phase per 60 Hz frame.
	MinSpin float64
	MaxSpin float64
	// OrbitLerp and FollowLerp are the per-frame approach factors.
	OrbitLerp  float32
	FollowLerp float32
	// FOV is the vertical field of view in degrees.
	FOV float32
}

// DefaultSettings returns the tuning used by the desktop client.
func DefaultSettings() Settings {
	return Settings{
		SettleDuration: 5 * time.Second,
		Radius:         8,
		Height:         5,
		RotationSpeed:  0.003,
		MinSpin:        0.001,
		MaxSpin:        0.002,
		OrbitLerp:      0.02,
		FollowLerp:     0.1,
		FOV:            45,
	}
}

// defaultPositions are the snap positions used by Reset.
var defaultPositions = [Slots]math.Vec3{
	{X: 0, Y: 8, Z: 12},
	{X: -8, Y: 8, Z: 8},
	{X: 8, Y: 8, Z: 8},
}

var (
	worldUp  = math.Vec3{X: 0, Y: 1, Z: 0}
	northUp  = math.Vec3{X: 0, Y: 0, Z: -1}
	straight = math.Vec3{X: 0, Y: -1, Z: 0}
)

// State is a read-only view of one slot.
type State struct {
	Mode      Mode
	Position  math.Vec3
	LookAt    math.Vec3
	Up        math.Vec3
	Phase     float64
	SettledAt time.Time
	// Completed is set once the slot has finished a topdown cycle.
	Completed bool
	// Target is the cached target position; valid only when HasTarget.
	Target    math.Vec3
	HasTarget bool
}

type slot struct {
	mode      Mode
	position  math.Vec3
	lookAt    math.Vec3
	up        math.Vec3
	phase     float64
	spin      float64
	settledAt time.Time
	settled   bool
	completed bool
	target    math.Vec3
	hasTarget bool
}

// Rig owns the camera slots. It is driven from the render loop only.
type Rig struct {
	settings Settings
	slots    [Slots]slot
	phase    float64
}

// NewRig creates a rig with every slot in overview at its default position.
// rng seeds the per-slot spin; nil uses the global source.
func NewRig(settings Settings, rng *rand.Rand) *Rig {
	r := &Rig{settings: settings}
	for i := range r.slots {
		f := rand.Float64()
		if rng != nil {
			f = rng.Float64()
		}
		r.slots[i].spin = settings.MinSpin + f*(settings.MaxSpin-settings.MinSpin)
	}
	r.Reset()
	return r
}

// Settings returns the rig tuning.
func (r *Rig) Settings() Settings { return r.settings }

// Reset returns every slot to overview, snapping to the default positions and
// clearing topdown completion, phases and cached targets.
func (r *Rig) Reset() {
	r.phase = 0
	for i := range r.slots {
		s := &r.slots[i]
		s.mode = ModeOverview
		s.position = defaultPositions[i]
		s.lookAt = math.Vec3{}
		s.up = worldUp
		s.phase = 0
		s.settled = false
		s.settledAt = time.Time{}
		s.completed = false
		s.hasTarget = false
		s.target = math.Vec3{}
	}
}

// Rearm prepares the slots for a new throw: completion marks and settle
// stamps are cleared and every slot follows its die. Positions are kept.
func (r *Rig) Rearm() {
	for i := range r.slots {
		s := &r.slots[i]
		s.mode = ModeFollowing
		s.settled = false
		s.settledAt = time.Time{}
		s.completed = false
	}
}

// State returns a copy of slot i. Out of range indices are clamped.
func (r *Rig) State(i int) State {
	s := &r.slots[clampSlot(i)]
	return State{
		Mode:      s.mode,
		Position:  s.position,
		LookAt:    s.lookAt,
		Up:        s.up,
		Phase:     r.phase + s.phase,
		SettledAt: s.settledAt,
		Completed: s.completed,
		Target:    s.target,
		HasTarget: s.hasTarget,
	}
}

// Mode returns the mode of slot i.
func (r *Rig) Mode(i int) Mode { return r.slots[clampSlot(i)].mode }

// SetMode requests a mode change for slot i at time now and reports whether
// the slot's mode changed. Requests are ignored while topdown is showing
// unless force is set, and a completed slot never re-enters topdown unless
// force is set.
func (r *Rig) SetMode(i int, m Mode, now time.Time, force bool) bool {
	s := &r.slots[clampSlot(i)]

	if m == ModeTopdown && s.completed && !force {
		return false
	}
	if r.expire(s, now) {
		return true
	}
	if s.mode == ModeTopdown && !force {
		return false
	}
	if s.mode == m {
		return false
	}
	if m == ModeTopdown {
		s.settledAt = now
		s.settled = true
	}
	s.mode = m
	return true
}

// expire ends a topdown display that has run past SettleDuration.
func (r *Rig) expire(s *slot, now time.Time) bool {
	if s.mode != ModeTopdown || !s.settled {
		return false
	}
	if now.Sub(s.settledAt) <= r.settings.SettleDuration {
		return false
	}
	s.mode = ModeRotating
	s.completed = true
	return true
}

// Update advances every slot by dt. targets[i] is the live die watched by
// slot i; slots beyond len(targets) have no live die.
func (r *Rig) Update(now time.Time, dt time.Duration, targets []math.Vec3) {
	if dt < 0 {
		dt = 0
	}
	frames := float64(dt) / float64(frameTime)
	r.phase += r.settings.RotationSpeed * float64(dt) / float64(time.Millisecond)

	for i := range r.slots {
		s := &r.slots[i]
		r.expire(s, now)

		var target math.Vec3
		live := i < len(targets)
		if live {
			target = targets[i]
		}

		switch s.mode {
		case ModeOverview, ModeRotating:
			r.orbit(s, frames)
		case ModeFollowing:
			if live {
				r.follow(s, target, frames)
			} else {
				r.orbit(s, frames)
			}
		case ModeTopdown:
			if live {
				r.hover(s, target, frames)
			}
		}
	}
}

// orbit circles the cached target using the shared and per-slot phase.
func (r *Rig) orbit(s *slot, frames float64) {
	s.phase += s.spin * frames
	angle := r.phase + s.phase

	center := math.Vec3{}
	if s.hasTarget {
		center = s.target
	}
	want := orbitPoint(center, angle, r.settings.Radius, r.settings.Height)
	s.position = s.position.Lerp(want, approach(r.settings.OrbitLerp, frames))
	s.lookAt = center
	s.up = worldUp
}

// follow keeps the camera's current bearing to the die so it never snaps.
func (r *Rig) follow(s *slot, die math.Vec3, frames float64) {
	angle := gomath.Atan2(float64(s.position.Z-die.Z), float64(s.position.X-die.X))
	want := orbitPoint(die, angle, r.settings.Radius, r.settings.Height)
	s.position = s.position.Lerp(want, approach(r.settings.FollowLerp, frames))
	s.lookAt = die
	s.up = worldUp
}

// hover looks straight down on the die and caches it for the next orbit.
func (r *Rig) hover(s *slot, die math.Vec3, frames float64) {
	s.target = die
	s.hasTarget = true
	want := die.Add(math.Vec3{Y: r.settings.Height})
	s.position = s.position.Lerp(want, approach(r.settings.FollowLerp, frames))
	s.lookAt = s.position.Add(straight)
	s.up = northUp
}

// View returns the view matrix of slot i.
func (r *Rig) View(i int) math.Mat4 {
	s := &r.slots[clampSlot(i)]
	return math.LookAt(s.position, s.lookAt, s.up)
}

// Projection returns the perspective matrix for a viewport aspect ratio.
func (r *Rig) Projection(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	fov := r.settings.FOV * gomath.Pi / 180
	return math.Perspective(fov, aspect, 0.1, 1000)
}

func orbitPoint(center math.Vec3, angle float64, radius, height float32) math.Vec3 {
	return math.Vec3{
		X: center.X + float32(gomath.Cos(angle))*radius,
		Y: center.Y + height,
		Z: center.Z + float32(gomath.Sin(angle))*radius,
	}
}

// approach converts a per-frame lerp factor into one for the given number
// of 60 Hz frames.
func approach(factor float32, frames float64) float32 {
	if frames <= 0 {
		return 0
	}
	f := 1 - gomath.Pow(1-float64(factor), frames)
	return float32(gomath.Min(gomath.Max(f, 0), 1))
}

func clampSlot(i int) int {
	if i < 0 {
		return 0
	}
	if i >= Slots {
		return Slots - 1
	}
	return i
}
