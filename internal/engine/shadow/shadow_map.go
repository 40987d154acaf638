// Package shadow renders the sun's depth map and holds the parameters the
// lit shader needs to sample it.
package shadow

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/dicebowl/internal/engine/framebuffer"
	"github.com/Faultbox/dicebowl/pkg/math"
)

// DefaultResolution is the side of the square depth map.
const DefaultResolution = 1024

// Settings tune shadow quality.
type Settings struct {
	Resolution int32
	// Bias is subtracted from the receiver depth in light space.
	Bias float32
	// NormalBias pushes the lookup along the surface normal, in world units.
	NormalBias float32
	// Softness is the PCF kernel radius in texels.
	Softness float32
}

// DefaultSettings matches a 1024 map with soft 3x3 filtering.
func DefaultSettings() Settings {
	return Settings{
		Resolution: DefaultResolution,
		Bias:       0.001,
		NormalBias: 0.02,
		Softness:   1.5,
	}
}

// TexelSize is the PCF sample step in texture coordinates.
func (s Settings) TexelSize() float32 {
	if s.Resolution <= 0 {
		return 1.0 / DefaultResolution
	}
	return s.Softness / float32(s.Resolution)
}

// Map is the sun's depth target.
type Map struct {
	Settings
	target *framebuffer.Framebuffer
	// Light is the view-projection of the last Begin.
	Light math.Mat4
}

// NewMap allocates the depth texture.
func NewMap(s Settings) (*Map, error) {
	if s.Resolution <= 0 {
		s.Resolution = DefaultResolution
	}
	fb, err := framebuffer.New(framebuffer.Depth, s.Resolution, s.Resolution)
	if err != nil {
		return nil, fmt.Errorf("shadow map: %w", err)
	}
	return &Map{Settings: s, target: fb, Light: math.Identity()}, nil
}

// Begin binds the depth target for the light pass and records the light
// matrix. The returned func restores the previous target.
func (m *Map) Begin(light math.Mat4) (end func()) {
	m.Light = light
	restore := m.target.Bind()
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(1.1, 4)
	return func() {
		gl.Disable(gl.POLYGON_OFFSET_FILL)
		restore()
	}
}

// BindTexture exposes the depth map to a sampler2DShadow on unit.
func (m *Map) BindTexture(unit uint32) {
	m.target.BindTexture(unit)
}

// Destroy releases the depth target.
func (m *Map) Destroy() {
	if m == nil || m.target == nil {
		return
	}
	m.target.Destroy()
	m.target = nil
}
