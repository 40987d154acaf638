package physics

import (
	"math"

	"github.com/akmonengine/feather/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// hexSides is the number of bowl walls.
const hexSides = 6

// buildBowl adds the floor and six walls that flare outward from the floor
// hexagon to the rim hexagon.
func (w *World) buildBowl() {
	bowl := w.settings.Bowl
	w.addPlane(KindFloor, mgl64.Vec3{0, 1, 0}, 0, bowl.GroundRestitution, bowl.GroundFriction)

	apothem := math.Cos(math.Pi / hexSides)
	bottom := bowl.Radius * apothem
	top := bowl.TopRadius * apothem
	for i := 0; i < hexSides; i++ {
		n, offset := wallPlane(i, bottom, top, bowl.WallHeight)
		w.addPlane(KindWall, n, offset, bowl.WallRestitution, bowl.WallFriction)
	}
}

// wallPlane returns the inward normal and offset of wall i, so that points
// inside the bowl satisfy n·x >= offset.
func wallPlane(i int, bottom, top, height float64) (mgl64.Vec3, float64) {
	phi := (float64(i) + 0.5) * 2 * math.Pi / hexSides
	dir := mgl64.Vec3{math.Cos(phi), 0, math.Sin(phi)}
	n := mgl64.Vec3{-dir.X() * height, top - bottom, -dir.Z() * height}.Normalize()
	return n, n.Dot(dir.Mul(bottom))
}

func (w *World) addPlane(kind Kind, n mgl64.Vec3, offset, restitution, friction float64) Handle {
	// the solver's planes satisfy n·x + Distance = 0
	rb := actor.NewRigidBody(actor.NewTransform(), &actor.Plane{Normal: n, Distance: -offset}, actor.BodyTypeStatic, 0)
	rb.Material.Restitution = restitution
	rb.Material.StaticFriction = friction
	rb.Material.DynamicFriction = friction
	return w.insert(&Body{kind: kind, rb: rb})
}

// Inside reports whether p lies within the bowl volume, up to the rim.
func (w *World) Inside(p mgl64.Vec3) bool {
	if w == nil {
		return false
	}
	if p.Y() < 0 || p.Y() > w.settings.Bowl.WallHeight {
		return false
	}
	for _, b := range w.Bodies() {
		if b.kind != KindWall {
			continue
		}
		if pl, ok := b.plane(); ok && pl.Normal.Dot(p)+pl.Distance < 0 {
			return false
		}
	}
	return true
}
