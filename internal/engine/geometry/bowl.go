package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BowlSides is the number of walls of the hexagonal bowl.
const BowlSides = 6

// BowlRing returns the hexagon corners at height y. Wall i spans corners i
// and i+1.
func BowlRing(radius, y float64) [BowlSides]mgl64.Vec3 {
	var out [BowlSides]mgl64.Vec3
	for i := range out {
		phi := float64(i) * 2 * math.Pi / BowlSides
		out[i] = mgl64.Vec3{radius * math.Cos(phi), y, radius * math.Sin(phi)}
	}
	return out
}

// BowlMesh builds the floor hexagon and the inner faces of the flared walls.
// UVs run 0..1 across the floor and from floor (v=0) to rim (v=1) on walls.
func BowlMesh(radius, topRadius, height float64) *Mesh {
	m := &Mesh{}
	floor := BowlRing(radius, 0)
	rim := BowlRing(topRadius, height)

	up := mgl64.Vec3{0, 1, 0}
	center := m.push(mgl64.Vec3{}, up, 0.5, 0.5)
	for i := 0; i < BowlSides; i++ {
		j := (i + 1) % BowlSides
		a := m.push(floor[i], up, float32(0.5+floor[i].X()/(2*radius)), float32(0.5+floor[i].Z()/(2*radius)))
		b := m.push(floor[j], up, float32(0.5+floor[j].X()/(2*radius)), float32(0.5+floor[j].Z()/(2*radius)))
		m.Indices = append(m.Indices, center, b, a)
	}

	for i := 0; i < BowlSides; i++ {
		j := (i + 1) % BowlSides
		// inward normal: towards the bowl axis and up the flare
		n := rim[j].Sub(floor[i]).Cross(floor[j].Sub(floor[i])).Normalize()
		if n.Dot(floor[i].Add(floor[j]).Mul(-0.5)) < 0 {
			n = n.Mul(-1)
		}
		a := m.push(floor[i], n, 0, 0)
		b := m.push(floor[j], n, 1, 0)
		c := m.push(rim[j], n, 1, 1)
		d := m.push(rim[i], n, 0, 1)
		m.Indices = append(m.Indices, a, c, b, a, d, c)
	}
	return m
}
