// Package dice manages the lifetime of dice in the simulation and the scene.
//
// Every live die owns exactly one physics body and one visual. Spawning
// creates both, despawning removes both before the die's record is dropped.
package dice

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	"github.com/Faultbox/dicebowl/internal/engine/physics"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

// DefaultPoolSize bounds the idle factories kept per die type.
const DefaultPoolSize = 8

// ID identifies a live die.
type ID uint64

// Die is a live die instance.
type Die struct {
	ID         ID
	Type       dietype.Type
	Handle     physics.Handle
	Appearance geometry.Appearance
	Visual     *Visual
}

// SpawnSpec describes where and how a die enters the world.
type SpawnSpec struct {
	Type            dietype.Type
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	// Appearance overrides the default look when non-nil.
	Appearance *geometry.Appearance
}

// Options configures a Manager.
type Options struct {
	PoolSize   int
	Wireframes bool
}

type entry struct {
	die     *Die
	factory *Factory
	world   *physics.World
}

// Manager tracks live dice and pools their factories. It is used from the
// render loop only.
type Manager struct {
	log        *zap.Logger
	scene      Scene
	wireframes bool
	poolSize   int

	atlas *geometry.LabelAtlas
	pools map[dietype.Type]*pool
	live  map[ID]*entry
	order []ID
	next  ID
	built int
}

// NewManager creates a manager. scene may be nil for headless use.
func NewManager(opts Options, scene Scene, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PoolSize < 0 {
		opts.PoolSize = 0
	}
	shapes := make([]*geometry.Shape, 0, len(dietype.Types()))
	for _, t := range dietype.Types() {
		shapes = append(shapes, geometry.MustBuild(t))
	}
	return &Manager{
		log:        log,
		scene:      scene,
		wireframes: opts.Wireframes,
		poolSize:   opts.PoolSize,
		atlas:      geometry.NewLabelAtlas(shapes...),
		pools:      make(map[dietype.Type]*pool),
		live:       make(map[ID]*entry),
		next:       1,
	}
}

// Atlas returns the label atlas shared by every factory.
func (m *Manager) Atlas() *geometry.LabelAtlas { return m.atlas }

// Spawn creates a die body in w and its visual.
func (m *Manager) Spawn(w *physics.World, spec SpawnSpec) (*Die, error) {
	if w == nil {
		return nil, physics.ErrNoWorld
	}
	if !spec.Type.Valid() {
		return nil, fmt.Errorf("spawn: %w: %d", dietype.ErrUnsupportedType, spec.Type)
	}

	look := geometry.DefaultAppearance()
	if spec.Appearance != nil {
		look = *spec.Appearance
	}
	mat, err := look.Material()
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", spec.Type, err)
	}

	f, err := m.acquire(spec.Type)
	if err != nil {
		return nil, err
	}

	h := w.AddDie(physics.DieSpec{
		Hull:            f.Hull,
		Box:             spec.Type == dietype.D6,
		Position:        spec.Position,
		Rotation:        spec.Rotation,
		LinearVelocity:  spec.LinearVelocity,
		AngularVelocity: spec.AngularVelocity,
	})
	body, _ := w.Body(h)

	v := &Visual{Material: mat, Factory: f}
	if body != nil {
		pose := body.Pose()
		v.Position, v.Rotation = pose.Position, pose.Rotation
	}
	if m.wireframes {
		v.Wireframe = f.Wireframe
	}

	d := &Die{ID: m.next, Type: spec.Type, Handle: h, Appearance: look, Visual: v}
	m.next++
	m.live[d.ID] = &entry{die: d, factory: f, world: w}
	m.order = append(m.order, d.ID)
	if m.scene != nil {
		m.scene.Attach(v)
	}

	m.log.Debug("die spawned", zap.Uint64("id", uint64(d.ID)), zap.Stringer("type", d.Type), zap.Int("handle", int(h)))
	return d, nil
}

func (m *Manager) acquire(t dietype.Type) (*Factory, error) {
	if p, ok := m.pools[t]; ok {
		if f, ok := p.get(); ok {
			return f, nil
		}
	}
	f, err := newFactory(t, m.atlas)
	if err != nil {
		return nil, err
	}
	m.built++
	return f, nil
}

func (m *Manager) release(f *Factory) {
	p, ok := m.pools[f.Type]
	if !ok {
		p = &pool{limit: m.poolSize}
		m.pools[f.Type] = p
	}
	if !p.put(f) {
		m.log.Debug("factory discarded", zap.Stringer("type", f.Type))
	}
}

// Despawn removes the die's body from its world, detaches its wireframe and
// visual, and pools its factory. It reports whether the die was live.
func (m *Manager) Despawn(id ID) bool {
	e, ok := m.live[id]
	if !ok {
		return false
	}

	e.world.Remove(e.die.Handle)
	v := e.die.Visual
	v.Wireframe = nil
	if m.scene != nil {
		m.scene.Detach(v)
	}
	m.release(e.factory)
	v.Factory = nil

	delete(m.live, id)
	if i := slices.Index(m.order, id); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	return true
}

// DespawnAll removes every live die and returns how many were removed.
func (m *Manager) DespawnAll() int {
	ids := slices.Clone(m.order)
	n := 0
	for _, id := range ids {
		if m.Despawn(id) {
			n++
		}
	}
	return n
}

// Forget drops every record without touching worlds, for use after the
// world itself was discarded. Factories still return to their pools.
func (m *Manager) Forget() {
	for _, id := range m.order {
		e := m.live[id]
		if m.scene != nil {
			m.scene.Detach(e.die.Visual)
		}
		m.release(e.factory)
	}
	clear(m.live)
	m.order = m.order[:0]
}

// Get resolves a live die.
func (m *Manager) Get(id ID) (*Die, bool) {
	e, ok := m.live[id]
	if !ok {
		return nil, false
	}
	return e.die, true
}

// ByHandle resolves a live die from its body handle.
func (m *Manager) ByHandle(h physics.Handle) (*Die, bool) {
	for _, id := range m.order {
		if d := m.live[id].die; d.Handle == h {
			return d, true
		}
	}
	return nil, false
}

// Live returns the live dice in spawn order.
func (m *Manager) Live() []*Die {
	out := make([]*Die, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.live[id].die)
	}
	return out
}

// Len returns the number of live dice.
func (m *Manager) Len() int { return len(m.live) }

// Visuals maps body handles to visuals for interpolation.
func (m *Manager) Visuals() map[physics.Handle]physics.Visual {
	out := make(map[physics.Handle]physics.Visual, len(m.live))
	for _, e := range m.live {
		out[e.die.Handle] = e.die.Visual
	}
	return out
}

// ReadTopFace returns the value shown by a live die, or false when the die
// or its body cannot be found.
func (m *Manager) ReadTopFace(id ID) (int, bool) {
	e, ok := m.live[id]
	if !ok || e.factory == nil || e.factory.Shape == nil {
		return 0, false
	}
	body, ok := e.world.Body(e.die.Handle)
	if !ok {
		return 0, false
	}
	return e.factory.Shape.TopFace(body.Rotation())
}

// Body returns the physics body of a live die.
func (m *Manager) Body(id ID) (*physics.Body, bool) {
	e, ok := m.live[id]
	if !ok {
		return nil, false
	}
	return e.world.Body(e.die.Handle)
}

// SetAppearance changes the look of a live die.
func (m *Manager) SetAppearance(id ID, a geometry.Appearance) error {
	e, ok := m.live[id]
	if !ok {
		return ErrNotFound
	}
	mat, err := a.Material()
	if err != nil {
		return fmt.Errorf("set appearance: %w", err)
	}
	e.die.Appearance = a
	e.die.Visual.Material = mat
	return nil
}

// SetWireframes toggles debug outlines on current and future dice.
func (m *Manager) SetWireframes(on bool) {
	m.wireframes = on
	for _, e := range m.live {
		if on {
			e.die.Visual.Wireframe = e.factory.Wireframe
		} else {
			e.die.Visual.Wireframe = nil
		}
	}
}

// Idle returns the number of pooled factories for t.
func (m *Manager) Idle(t dietype.Type) int {
	if p, ok := m.pools[t]; ok {
		return len(p.idle)
	}
	return 0
}

// PoolSize returns the per-type pool bound.
func (m *Manager) PoolSize() int { return m.poolSize }

// Built returns how many factories have been constructed.
func (m *Manager) Built() int { return m.built }

// ErrNotFound is returned when an id does not name a live die.
var ErrNotFound = errors.New("die not found")
