package shadow

import (
	gomath "math"

	"github.com/Faultbox/dicebowl/internal/engine/lighting"
	"github.com/Faultbox/dicebowl/pkg/math"
)

// Bounds is the world-space box that has to fall inside the shadow map.
type Bounds struct {
	Min, Max math.Vec3
}

// BowlBounds covers a bowl of the given rim radius plus the space above it
// where dice are thrown.
func BowlBounds(rim, height float32) Bounds {
	return Bounds{
		Min: math.Vec3{X: -rim, Y: 0, Z: -rim},
		Max: math.Vec3{X: rim, Y: height, Z: rim},
	}
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius is the half diagonal.
func (b Bounds) Radius() float32 {
	return b.Max.Sub(b.Min).Length() / 2
}

// Corners lists the eight box vertices.
func (b Bounds) Corners() [8]math.Vec3 {
	var out [8]math.Vec3
	for i := range out {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		out[i] = c
	}
	return out
}

// SunMatrix returns the light view-projection of a directional sun. The
// orthographic volume is the bounding sphere of b, padded by a tenth, so
// the map stays fixed while dice move inside the bowl.
func SunMatrix(sun lighting.Sun, b Bounds) math.Mat4 {
	dir := math.Vec3{X: sun.Direction[0], Y: sun.Direction[1], Z: sun.Direction[2]}.Normalize()
	center := b.Center()
	radius := b.Radius()
	distance := radius * 2

	eye := center.Add(dir.Scale(distance))
	up := math.Vec3{Y: 1}
	if gomath.Abs(float64(dir.Y)) > 0.99 {
		up = math.Vec3{Z: 1}
	}

	half := radius * 1.1
	near := float32(0.1)
	far := distance + half
	return math.Ortho(-half, half, -half, half, near, far).Mul(math.LookAt(eye, center, up))
}
