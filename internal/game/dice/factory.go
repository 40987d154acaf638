package dice

import (
	"fmt"

	"github.com/Faultbox/dicebowl/internal/engine/debug"
	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

// Factory holds everything needed to put one die of a type into a scene:
// its shape, collision hull and render meshes. Factories are pooled and
// reused across throws.
type Factory struct {
	Type      dietype.Type
	Shape     *geometry.Shape
	Hull      geometry.Hull
	Body      *geometry.Mesh
	Labels    *geometry.Mesh
	Wireframe []float32
}

func newFactory(t dietype.Type, atlas *geometry.LabelAtlas) (*Factory, error) {
	shape, err := geometry.Build(t)
	if err != nil {
		return nil, fmt.Errorf("new factory: %w", err)
	}
	return &Factory{
		Type:      t,
		Shape:     shape,
		Hull:      shape.Hull(),
		Body:      shape.BodyMesh(),
		Labels:    shape.LabelMesh(atlas),
		Wireframe: debug.HullLines(shape),
	}, nil
}

// pool is a bounded free list of factories of one type.
type pool struct {
	idle  []*Factory
	limit int
}

func (p *pool) get() (*Factory, bool) {
	n := len(p.idle)
	if n == 0 {
		return nil, false
	}
	f := p.idle[n-1]
	p.idle[n-1] = nil
	p.idle = p.idle[:n-1]
	return f, true
}

// put returns f to the pool, discarding it when the pool is full.
func (p *pool) put(f *Factory) bool {
	if len(p.idle) >= p.limit {
		return false
	}
	p.idle = append(p.idle, f)
	return true
}
