package math

import "github.com/go-gl/mathgl/mgl64"

// FromVec64 narrows a simulation vector to render precision.
func FromVec64(v mgl64.Vec3) Vec3 {
	return Vec3{X: float32(v.X()), Y: float32(v.Y()), Z: float32(v.Z())}
}

// FromQuat64 narrows a simulation rotation to render precision.
func FromQuat64(q mgl64.Quat) Quat {
	return Quat{X: float32(q.V.X()), Y: float32(q.V.Y()), Z: float32(q.V.Z()), W: float32(q.W)}
}
