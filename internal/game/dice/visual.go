package dice

import (
	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	"github.com/Faultbox/dicebowl/pkg/math"
)

// Visual is the render-side counterpart of a die body. The interpolator
// writes its pose every frame.
type Visual struct {
	Position math.Vec3
	Rotation math.Quat
	Material geometry.Material
	Factory  *Factory

	// Wireframe is the debug outline attached to this visual, or nil.
	Wireframe []float32
}

// SetPosition implements physics.Visual.
func (v *Visual) SetPosition(p math.Vec3) { v.Position = p }

// SetRotation implements physics.Visual.
func (v *Visual) SetRotation(q math.Quat) { v.Rotation = q }

// Model returns the model matrix for drawing.
func (v *Visual) Model() math.Mat4 {
	return math.Model(v.Position, v.Rotation, 1)
}

// Scene receives visuals as dice appear and disappear.
type Scene interface {
	Attach(v *Visual)
	Detach(v *Visual)
}
