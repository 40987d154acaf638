// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	"github.com/Faultbox/dicebowl/internal/engine/physics"
)

// BowlSides is the number of bowl walls drawn by BowlLines.
const BowlSides = geometry.BowlSides

// HullLines returns every polygon edge of a die shape once, in die-local
// space, as [x, y, z] pairs.
func HullLines(s *geometry.Shape) []float32 {
	if s == nil {
		return nil
	}
	type edge [2]int
	seen := make(map[edge]struct{})
	var out []float32
	for _, f := range s.Faces {
		n := len(f.Vertices)
		for i := 0; i < n; i++ {
			a, b := f.Vertices[i], f.Vertices[(i+1)%n]
			if a > b {
				a, b = b, a
			}
			if _, ok := seen[edge{a, b}]; ok {
				continue
			}
			seen[edge{a, b}] = struct{}{}
			out = appendVec(out, s.Vertices[a])
			out = appendVec(out, s.Vertices[b])
		}
	}
	return out
}

// BowlLines outlines the floor hexagon, the rim hexagon and the wall seams.
func BowlLines(b physics.Bowl) []float32 {
	floor := geometry.BowlRing(b.Radius, 0)
	rim := geometry.BowlRing(b.TopRadius, b.WallHeight)

	out := make([]float32, 0, BowlSides*3*2*3)
	for i := 0; i < BowlSides; i++ {
		j := (i + 1) % BowlSides
		out = appendVec(out, floor[i])
		out = appendVec(out, floor[j])
		out = appendVec(out, rim[i])
		out = appendVec(out, rim[j])
		out = appendVec(out, floor[i])
		out = appendVec(out, rim[i])
	}
	return out
}

func appendVec(dst []float32, v mgl64.Vec3) []float32 {
	return append(dst, float32(v.X()), float32(v.Y()), float32(v.Z()))
}
