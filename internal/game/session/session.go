// Package session runs one dice bowl: it owns the simulation world, the dice,
// the cameras and the collision audio bridge, and advances all of them once
// per rendered frame.
//
// A Session has a single writer. Frame, Throw, Clear, Reset and Close must be
// called from the render loop; other goroutines talk to it through Commands.
package session

import (
	"errors"
	"fmt"
	gomath "math"
	"math/rand/v2"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/engine/camera"
	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	"github.com/Faultbox/dicebowl/internal/engine/physics"
	"github.com/Faultbox/dicebowl/internal/game/dice"
	"github.com/Faultbox/dicebowl/internal/game/impact"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
	"github.com/Faultbox/dicebowl/pkg/math"
)

var (
	ErrClosed    = errors.New("session closed")
	ErrCancelled = errors.New("throw cancelled")
	ErrBusy      = errors.New("session command queue full")
)

// Renderer draws a finished frame.
type Renderer interface {
	Render(f Frame)
}

// Frame is what the renderer needs to draw one frame.
type Frame struct {
	Time     time.Time
	Cameras  *camera.Rig
	Dice     []*dice.Die
	Bowl     physics.Bowl
	Fraction float64
	Steps    int
	// Views is the number of viewports worth showing: one per live die,
	// at least one and at most camera.Slots.
	Views int
}

// Command runs inside Frame on the render loop.
type Command func(s *Session)

// Outcome is the result of a throw once every die has settled.
type Outcome struct {
	Type   dietype.Type
	IDs    []dice.ID
	Values []int
	Err    error
}

type pending struct {
	t    dietype.Type
	ids  []dice.ID
	done chan<- Outcome
}

type dieState struct {
	settled bool
	value   int
	read    bool
}

// Session is one running dice bowl.
type Session struct {
	opts Options
	log  *zap.Logger
	rng  *rand.Rand

	world    *physics.World
	driver   *physics.Driver
	interp   *physics.Interpolator
	dice     *dice.Manager
	cameras  *camera.Rig
	bridge   *impact.Bridge
	renderer Renderer

	states  map[dice.ID]*dieState
	pending []*pending
	cmds    chan Command

	last       time.Time
	started    bool
	surfaceOK  bool
	closed     bool
	recoveries uint64
	faults     uint64
}

// New creates a session. player, scene and renderer may be nil.
func New(opts Options, player impact.Player, scene dice.Scene, renderer Renderer, rng *rand.Rand, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.SettleThreshold <= 0 {
		opts.SettleThreshold = physics.DefaultSettleThreshold
	}
	if opts.MaxFrameDelta <= 0 {
		opts.MaxFrameDelta = DefaultMaxFrameDelta
	}
	if opts.CommandQueue < 1 {
		opts.CommandQueue = DefaultCommandQueue
	}

	s := &Session{
		opts:      opts,
		log:       log,
		rng:       rng,
		interp:    physics.NewInterpolator(),
		dice:      dice.NewManager(opts.Dice, scene, log.Named("dice")),
		cameras:   camera.NewRig(opts.Camera, rng),
		bridge:    impact.New(opts.Impact, player, log.Named("impact")),
		renderer:  renderer,
		states:    make(map[dice.ID]*dieState),
		cmds:      make(chan Command, opts.CommandQueue),
		surfaceOK: true,
	}
	s.world = physics.NewWorld(opts.Physics, log.Named("physics"))
	s.driver = physics.NewDriver(opts.FixedStep, opts.MaxSubsteps)
	if opts.Speed > 0 {
		s.driver.SetSpeed(opts.Speed)
	}
	s.driver.BeforeStep = func(physics.Simulation) {
		s.interp.SnapshotPrevious(s.world.Dice())
	}
	s.driver.AfterStep = func(sim physics.Simulation) {
		s.guard("impact", func() { s.bridge.Hook()(sim) }, func() { sim.DrainCollisionEvents(nil) })
	}
	return s
}

// World returns the simulation world.
func (s *Session) World() *physics.World { return s.world }

// Cameras returns the camera rig.
func (s *Session) Cameras() *camera.Rig { return s.cameras }

// Dice returns the dice manager.
func (s *Session) Dice() *dice.Manager { return s.dice }

// Bridge returns the collision audio bridge.
func (s *Session) Bridge() *impact.Bridge { return s.bridge }

// Driver returns the fixed step driver.
func (s *Session) Driver() *physics.Driver { return s.driver }

// Recoveries returns how many dice were thrown back into the bowl.
func (s *Session) Recoveries() uint64 { return s.recoveries }

// Faults returns how many subsystem panics were recovered.
func (s *Session) Faults() uint64 { return s.faults }

// Commands returns the channel other goroutines use to run work on the
// render loop.
func (s *Session) Commands() chan<- Command { return s.cmds }

// Submit queues cmd without blocking.
func (s *Session) Submit(cmd Command) error {
	select {
	case s.cmds <- cmd:
		return nil
	default:
		return ErrBusy
	}
}

// SetAnimationSpeed changes the simulation speed multiplier.
func (s *Session) SetAnimationSpeed(speed float64) {
	s.driver.SetSpeed(speed)
	s.log.Debug("animation speed", zap.Float64("speed", s.driver.Speed()))
}

// SurfaceLost pauses rendering until SurfaceRestored. Simulation continues.
func (s *Session) SurfaceLost() {
	if s.surfaceOK {
		s.log.Warn("render surface lost")
	}
	s.surfaceOK = false
}

// SurfaceRestored resumes rendering.
func (s *Session) SurfaceRestored() {
	if !s.surfaceOK {
		s.log.Info("render surface restored")
	}
	s.surfaceOK = true
}

// Throw clears the bowl and throws count dice of type t. looks colors the
// dice in order; missing entries use the default appearance.
func (s *Session) Throw(t dietype.Type, count int, looks ...geometry.Appearance) ([]dice.ID, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if !t.Valid() {
		return nil, fmt.Errorf("throw: %w: %d", dietype.ErrUnsupportedType, t)
	}
	if count < 1 {
		return nil, fmt.Errorf("throw: count must be positive, got %d", count)
	}

	s.Clear()
	ids := make([]dice.ID, 0, count)
	for i, l := range ThrowPlan(s.opts.Throw, count, s.rng) {
		spec := dice.SpawnSpec{
			Type:            t,
			Position:        l.Position,
			Rotation:        l.Rotation,
			LinearVelocity:  l.LinearVelocity,
			AngularVelocity: l.AngularVelocity,
		}
		if i < len(looks) {
			spec.Appearance = &looks[i]
		}
		d, err := s.dice.Spawn(s.world, spec)
		if err != nil {
			s.Clear()
			return nil, fmt.Errorf("throw %s: %w", t, err)
		}
		s.states[d.ID] = &dieState{}
		ids = append(ids, d.ID)
	}
	s.cameras.Rearm()
	s.log.Debug("dice thrown", zap.Stringer("type", t), zap.Int("count", count))
	return ids, nil
}

// Await delivers the outcome of a throw to done once all of ids settled.
// done must have room for one value.
func (s *Session) Await(t dietype.Type, ids []dice.ID, done chan<- Outcome) {
	if s.closed {
		done <- Outcome{Type: t, IDs: ids, Err: ErrClosed}
		return
	}
	s.pending = append(s.pending, &pending{t: t, ids: ids, done: done})
}

// Clear removes every die and cancels throws waiting on them.
func (s *Session) Clear() {
	for _, d := range s.dice.Live() {
		s.interp.Forget(d.Handle)
	}
	s.dice.DespawnAll()
	clear(s.states)
	s.cancelPending(ErrCancelled)
}

// Reset recreates the world, snaps the cameras home and clears all dice.
func (s *Session) Reset() {
	s.cancelPending(ErrCancelled)
	s.dice.Forget()
	clear(s.states)
	s.interp.Clear()
	s.world = physics.NewWorld(s.opts.Physics, s.log.Named("physics"))
	s.driver.Reset()
	s.cameras.Reset()
	s.started = false
	s.log.Info("session reset")
}

// Close releases the session. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	var err error
	err = multierr.Append(err, s.drainCommands())
	s.cancelPending(ErrClosed)
	s.dice.DespawnAll()
	s.interp.Clear()
	s.world.Reset()
	if c, ok := s.renderer.(interface{ Close() error }); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func (s *Session) drainCommands() error {
	var err error
	for {
		select {
		case cmd := <-s.cmds:
			if cmd == nil {
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						err = multierr.Append(err, fmt.Errorf("command panicked: %v", r))
					}
				}()
				cmd(s)
			}()
		default:
			return err
		}
	}
}

func (s *Session) cancelPending(reason error) {
	for _, p := range s.pending {
		p.done <- Outcome{Type: p.t, IDs: p.ids, Err: reason}
	}
	s.pending = nil
}

// Frame advances everything by the real time since the previous frame and
// renders. The first frame only records the start time.
func (s *Session) Frame(now time.Time) {
	if s.closed {
		return
	}
	s.guard("commands", func() { s.runCommands() }, nil)
	if s.closed {
		return
	}

	var elapsed time.Duration
	if s.started {
		elapsed = min(max(now.Sub(s.last), 0), s.opts.MaxFrameDelta)
	}
	s.last, s.started = now, true

	fraction := s.driver.Advance(s.world, elapsed.Seconds())
	s.interp.SnapshotCurrent(s.world.Dice())
	s.guard("interpolate", func() { s.interp.Blend(s.dice.Visuals(), float32(fraction)) }, nil)
	s.guard("settle", func() { s.settle(now) }, nil)
	s.guard("camera", func() { s.cameras.Update(now, elapsed, s.targets()) }, nil)

	if s.renderer != nil && s.surfaceOK {
		live := s.dice.Live()
		f := Frame{
			Time:     now,
			Cameras:  s.cameras,
			Dice:     live,
			Bowl:     s.opts.Physics.Bowl,
			Fraction: fraction,
			Steps:    s.driver.LastSteps(),
			Views:    min(camera.Slots, max(1, len(live))),
		}
		s.guard("render", func() { s.renderer.Render(f) }, nil)
	}
}

func (s *Session) runCommands() {
	for {
		select {
		case cmd := <-s.cmds:
			if cmd != nil {
				cmd(s)
			}
		default:
			return
		}
	}
}

// guard runs fn and turns a panic into a logged fault. fallback runs after a
// panic to leave the subsystem in a safe state.
func (s *Session) guard(name string, fn, fallback func()) {
	defer func() {
		if r := recover(); r != nil {
			s.faults++
			s.log.Error("subsystem panicked", zap.String("subsystem", name), zap.Any("panic", r))
			if fallback != nil {
				fallback()
			}
		}
	}()
	fn()
}

// settle recovers dice that left the bowl, reads dice that came to rest,
// points the cameras and completes pending throws.
func (s *Session) settle(now time.Time) {
	live := s.dice.Live()
	if len(live) == 0 {
		for i := 0; i < camera.Slots; i++ {
			s.cameras.SetMode(i, camera.ModeOverview, now, false)
		}
		return
	}

	for i, d := range live {
		st := s.states[d.ID]
		if st == nil {
			st = &dieState{}
			s.states[d.ID] = st
		}
		body, ok := s.world.Body(d.Handle)
		if !ok {
			continue
		}

		if st.settled {
			if i < camera.Slots {
				s.cameras.SetMode(i, camera.ModeTopdown, now, false)
			}
			continue
		}

		if s.outOfBowl(body) {
			s.recover(body, i, len(live))
			continue
		}

		if physics.SettledBelow(body, s.opts.SettleThreshold) {
			st.settled = true
			st.value, st.read = s.dice.ReadTopFace(d.ID)
			s.log.Debug("die settled", zap.Uint64("id", uint64(d.ID)), zap.Int("value", st.value))
			if i < camera.Slots {
				s.cameras.SetMode(i, camera.ModeTopdown, now, false)
			}
		}
	}
	s.completePending()
}

func (s *Session) outOfBowl(b *physics.Body) bool {
	p := b.Position()
	if p.Y() < s.opts.RecoverBelow || gomath.IsNaN(p.Y()) || gomath.IsInf(p.Y(), 0) {
		return true
	}
	return b.Asleep() && !s.world.Inside(p)
}

func (s *Session) recover(b *physics.Body, i, n int) {
	l := Recovery(s.opts.Throw, i, n, s.rng)
	b.Teleport(l.Position, l.Rotation)
	b.SetVelocity(l.LinearVelocity, l.AngularVelocity)
	s.interp.Forget(b.Handle())
	s.recoveries++
	s.log.Debug("die recovered", zap.Int("handle", int(b.Handle())))
}

func (s *Session) completePending() {
	kept := s.pending[:0]
	for _, p := range s.pending {
		values, ok, err := s.results(p.ids)
		switch {
		case err != nil:
			p.done <- Outcome{Type: p.t, IDs: p.ids, Err: err}
		case ok:
			p.done <- Outcome{Type: p.t, IDs: p.ids, Values: values}
		default:
			kept = append(kept, p)
		}
	}
	clear(s.pending[len(kept):])
	s.pending = kept
}

// results returns the values of ids once all of them settled.
func (s *Session) results(ids []dice.ID) ([]int, bool, error) {
	values := make([]int, len(ids))
	for i, id := range ids {
		st, ok := s.states[id]
		if !ok {
			return nil, false, fmt.Errorf("die %d: %w", id, dice.ErrNotFound)
		}
		if !st.settled {
			return nil, false, nil
		}
		if !st.read {
			return nil, false, fmt.Errorf("die %d: face unreadable", id)
		}
		values[i] = st.value
	}
	return values, true, nil
}

// Settled reports whether a die has come to rest and its value.
func (s *Session) Settled(id dice.ID) (int, bool) {
	st, ok := s.states[id]
	if !ok || !st.settled || !st.read {
		return 0, false
	}
	return st.value, true
}

// AllSettled reports whether every live die has come to rest.
func (s *Session) AllSettled() bool {
	for _, d := range s.dice.Live() {
		if st := s.states[d.ID]; st == nil || !st.settled {
			return false
		}
	}
	return true
}

// targets returns the interpolated positions of the dice watched by each
// camera slot.
func (s *Session) targets() []math.Vec3 {
	live := s.dice.Live()
	n := min(len(live), camera.Slots)
	out := make([]math.Vec3, n)
	for i := 0; i < n; i++ {
		out[i] = live[i].Visual.Position
	}
	return out
}
