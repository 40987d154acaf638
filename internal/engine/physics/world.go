package physics

import (
	"errors"
	"math"
	"sort"

	"github.com/akmonengine/feather"
	"github.com/akmonengine/feather/actor"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/engine/geometry"
)

// Broad phase grid, sized for dice about one unit across.
const (
	gridCellSize = 2.0
	gridCells    = 1024
)

// ErrNoWorld is returned by operations that need a simulation world.
var ErrNoWorld = errors.New("physics world not initialized")

// CollisionEvent reports that two bodies started or stopped touching.
type CollisionEvent struct {
	A, B    Handle
	Started bool
}

// DieSpec describes a die body to add to the world.
type DieSpec struct {
	Hull            geometry.Hull
	Box             bool // collide as a box (cubes)
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

type pairKey [2]Handle

func makePair(a, b Handle) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// World owns the bowl and every die body of a session and steps them
// through the rigid-body solver. It is not safe for concurrent use; one
// goroutine steps and mutates it.
type World struct {
	settings Settings
	log      *zap.Logger
	sim      *feather.World

	bodies map[Handle]*Body
	order  []Handle
	next   Handle

	stepEvents []CollisionEvent
	events     []CollisionEvent
	steps      uint64
}

// NewWorld creates a world containing the bowl floor and walls.
func NewWorld(settings Settings, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	if settings.Substeps < 1 {
		settings.Substeps = 1
	}
	w := &World{
		settings: settings,
		log:      log,
		sim: &feather.World{
			Gravity:     mgl64.Vec3{0, settings.Gravity, 0},
			Substeps:    settings.Substeps,
			SpatialGrid: feather.NewSpatialGrid(gridCellSize, gridCells),
			Workers:     1,
			Events:      feather.NewEvents(),
		},
		bodies: make(map[Handle]*Body),
		next:   1,
	}
	w.subscribe()
	w.buildBowl()
	return w
}

func (w *World) subscribe() {
	w.sim.Events.Subscribe(feather.COLLISION_ENTER, func(ev feather.Event) {
		if e, ok := ev.(feather.CollisionEnterEvent); ok {
			w.record(e.BodyA, e.BodyB, true)
		}
	})
	w.sim.Events.Subscribe(feather.COLLISION_EXIT, func(ev feather.Event) {
		if e, ok := ev.(feather.CollisionExitEvent); ok {
			w.record(e.BodyA, e.BodyB, false)
		}
	})
	w.sim.Events.Subscribe(feather.ON_SLEEP, func(ev feather.Event) {
		if e, ok := ev.(feather.SleepEvent); ok {
			if h, ok := handleOf(e.Body); ok {
				w.log.Debug("body asleep", zap.Int("handle", int(h)), zap.Uint64("step", w.steps))
			}
		}
	})
}

// Settings returns the parameters the world was created with.
func (w *World) Settings() Settings { return w.settings }

// Steps returns how many fixed steps have been simulated.
func (w *World) Steps() uint64 {
	if w == nil {
		return 0
	}
	return w.steps
}

// AddDie inserts a dynamic die body and returns its handle.
func (w *World) AddDie(spec DieSpec) Handle {
	var shape actor.ShapeInterface
	if spec.Box {
		shape = &actor.Box{HalfExtents: spec.Hull.Bounds()}
	} else {
		shape = newHullShape(spec.Hull)
	}

	rb := actor.NewRigidBody(actor.NewTransform(), shape, actor.BodyTypeDynamic, w.settings.Density)
	place(rb, spec.Position, spec.Rotation)
	rb.Material.Restitution = w.settings.Restitution
	rb.Material.StaticFriction = w.settings.Friction
	rb.Material.DynamicFriction = w.settings.Friction
	rb.Material.LinearDamping = w.settings.LinearDamping
	rb.Material.AngularDamping = w.settings.AngularDamping
	rb.Velocity = spec.LinearVelocity
	rb.AngularVelocity = spec.AngularVelocity

	return w.insert(&Body{kind: KindDie, rb: rb})
}

// Remove deletes a body and any contact state that refers to it.
func (w *World) Remove(h Handle) bool {
	if w == nil {
		return false
	}
	b, ok := w.bodies[h]
	if !ok {
		return false
	}
	w.sim.RemoveBody(b.rb)
	delete(w.bodies, h)
	for i, oh := range w.order {
		if oh == h {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// Body resolves a handle.
func (w *World) Body(h Handle) (*Body, bool) {
	if w == nil {
		return nil, false
	}
	b, ok := w.bodies[h]
	return b, ok
}

// Bodies returns every body in insertion order.
func (w *World) Bodies() []*Body {
	if w == nil {
		return nil
	}
	out := make([]*Body, 0, len(w.order))
	for _, h := range w.order {
		out = append(out, w.bodies[h])
	}
	return out
}

// Dice returns the dynamic bodies in insertion order.
func (w *World) Dice() []*Body {
	if w == nil {
		return nil
	}
	var out []*Body
	for _, h := range w.order {
		if b := w.bodies[h]; b.kind == KindDie {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the number of bodies, bowl included.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return len(w.bodies)
}

// Reset removes every die and pending event, keeping the bowl.
func (w *World) Reset() {
	if w == nil {
		return
	}
	for _, b := range w.Dice() {
		w.Remove(b.handle)
	}
	w.stepEvents = nil
	w.events = nil
	w.steps = 0
}

// Step advances the simulation by dt seconds. Collision begin and end
// events of the step are queued in pair order, begins first.
func (w *World) Step(dt float64) {
	if w == nil || dt <= 0 {
		return
	}
	w.sim.Step(dt)

	sort.Slice(w.stepEvents, func(i, j int) bool {
		a, b := w.stepEvents[i], w.stepEvents[j]
		if a.Started != b.Started {
			return a.Started
		}
		if a.A != b.A {
			return a.A < b.A
		}
		return a.B < b.B
	})
	w.events = append(w.events, w.stepEvents...)
	w.stepEvents = w.stepEvents[:0]

	for _, b := range w.Dice() {
		if !finite(b.rb.Velocity) || !finite(b.rb.AngularVelocity) {
			w.log.Warn("non-finite velocity reset", zap.Int("handle", int(b.handle)))
			b.rb.Velocity = mgl64.Vec3{}
			b.rb.AngularVelocity = mgl64.Vec3{}
		}
	}
	w.steps++
}

// DrainCollisionEvents passes pending events to fn in order and clears them.
// A nil fn discards them.
func (w *World) DrainCollisionEvents(fn func(CollisionEvent)) {
	if w == nil {
		return
	}
	events := w.events
	w.events = nil
	if fn == nil {
		return
	}
	for _, ev := range events {
		fn(ev)
	}
}

// PendingEvents returns how many collision events wait to be drained.
func (w *World) PendingEvents() int {
	if w == nil {
		return 0
	}
	return len(w.events)
}

func (w *World) insert(b *Body) Handle {
	b.handle = w.next
	w.next++
	b.rb.Id = b.handle
	w.bodies[b.handle] = b
	w.order = append(w.order, b.handle)
	w.sim.AddBody(b.rb)
	return b.handle
}

// record queues an event for a pair of bodies this world still owns.
func (w *World) record(a, b *actor.RigidBody, started bool) {
	ha, okA := handleOf(a)
	hb, okB := handleOf(b)
	if !okA || !okB {
		return
	}
	if _, ok := w.bodies[ha]; !ok {
		return
	}
	if _, ok := w.bodies[hb]; !ok {
		return
	}
	k := makePair(ha, hb)
	w.stepEvents = append(w.stepEvents, CollisionEvent{A: k[0], B: k[1], Started: started})
}

func handleOf(rb *actor.RigidBody) (Handle, bool) {
	if rb == nil {
		return 0, false
	}
	h, ok := rb.Id.(Handle)
	return h, ok
}

func finite(v mgl64.Vec3) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
