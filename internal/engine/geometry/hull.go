package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Hull is a convex collision shape derived from mesh vertex data. Hulls
// built from bare points have no faces.
type Hull struct {
	Points  []mgl64.Vec3
	Faces   [][]int      // indices into Points, counter-clockwise from outside
	Normals []mgl64.Vec3 // outward, one per face
	Radius  float64      // bounding sphere radius around the origin
}

// NewHull deduplicates points closer than eps and computes the bounding radius.
func NewHull(points []mgl64.Vec3, eps float64) Hull {
	h, _ := dedupe(points, eps)
	return h
}

// dedupe also returns where each input point ended up in h.Points.
func dedupe(points []mgl64.Vec3, eps float64) (Hull, []int) {
	h := Hull{Points: make([]mgl64.Vec3, 0, len(points))}
	index := make([]int, len(points))
outer:
	for i, p := range points {
		for j, q := range h.Points {
			if p.Sub(q).Len() < eps {
				index[i] = j
				continue outer
			}
		}
		index[i] = len(h.Points)
		h.Points = append(h.Points, p)
		h.Radius = math.Max(h.Radius, p.Len())
	}
	return h, index
}

// Hull returns the collision hull of the shape, faces included.
func (s *Shape) Hull() Hull {
	h, index := dedupe(s.Vertices, 1e-9)
	for _, f := range s.Faces {
		poly := make([]int, len(f.Vertices))
		for i, v := range f.Vertices {
			poly[i] = index[v]
		}
		h.Faces = append(h.Faces, poly)
		h.Normals = append(h.Normals, f.Normal)
	}
	return h
}

// Bounds returns the axis-aligned half extents of the hull.
func (h Hull) Bounds() mgl64.Vec3 {
	var ext mgl64.Vec3
	for _, p := range h.Points {
		ext = mgl64.Vec3{
			math.Max(ext.X(), math.Abs(p.X())),
			math.Max(ext.Y(), math.Abs(p.Y())),
			math.Max(ext.Z(), math.Abs(p.Z())),
		}
	}
	return ext
}

// Support returns the hull point furthest along dir.
func (h Hull) Support(dir mgl64.Vec3) mgl64.Vec3 {
	best := math.Inf(-1)
	var out mgl64.Vec3
	for _, p := range h.Points {
		if d := p.Dot(dir); d > best {
			best = d
			out = p
		}
	}
	return out
}
