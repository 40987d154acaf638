package physics

import (
	"math"

	"github.com/akmonengine/feather/actor"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/dicebowl/internal/engine/geometry"
)

// maxPlanePoints bounds the contacts a hull reports against one plane.
const maxPlanePoints = 4

// tetraCovariance is the second moment of the unit tetrahedron
// (0, e1, e2, e3) with unit density.
var tetraCovariance = mgl64.Mat3{
	2, 1, 1,
	1, 2, 1,
	1, 1, 2,
}.Mul(1.0 / 120)

// hullShape is a convex polyhedron in the solver's collision pipeline.
// Faces drive the contact features; the mass model integrates the solid.
type hullShape struct {
	points  []mgl64.Vec3
	faces   [][]int
	normals []mgl64.Vec3
	radius  float64

	volume  float64
	inertia mgl64.Mat3 // per unit mass about the center of mass
	aabb    actor.AABB
}

var _ actor.ShapeInterface = (*hullShape)(nil)

func newHullShape(h geometry.Hull) *hullShape {
	s := &hullShape{
		points:  h.Points,
		faces:   h.Faces,
		normals: h.Normals,
		radius:  h.Radius,
	}
	s.integrate()
	if !(s.volume > 0) {
		// no usable faces; treat it as a ball
		s.volume = 4.0 / 3 * math.Pi * s.radius * s.radius * s.radius
		s.inertia = mgl64.Ident3().Mul(0.4 * s.radius * s.radius)
	}
	return s
}

// integrate computes the volume and unit-mass inertia by splitting every
// face into tetrahedra with the origin.
func (s *hullShape) integrate() {
	var centroid mgl64.Vec3
	for _, p := range s.points {
		centroid = centroid.Add(p)
	}
	if len(s.points) > 0 {
		centroid = centroid.Mul(1 / float64(len(s.points)))
	}

	var volume float64
	var com mgl64.Vec3
	var cov mgl64.Mat3
	for _, f := range s.faces {
		for i := 1; i+1 < len(f); i++ {
			a, b, c := s.points[f[0]], s.points[f[i]], s.points[f[i+1]]
			if b.Sub(a).Cross(c.Sub(a)).Dot(a.Sub(centroid)) < 0 {
				b, c = c, b
			}
			m := mgl64.Mat3FromCols(a, b, c)
			det := m.Det()
			volume += det / 6
			com = com.Add(a.Add(b).Add(c).Mul(det / 24))
			cov = cov.Add(m.Mul3(tetraCovariance).Mul3(m.Transpose()).Mul(det))
		}
	}
	if volume <= 0 {
		return
	}
	com = com.Mul(1 / volume)
	cov = cov.Mul(1 / volume).Sub(com.OuterProd3(com))
	s.volume = volume
	s.inertia = mgl64.Ident3().Mul(cov.Trace()).Sub(cov)
}

func (s *hullShape) ComputeAABB(t actor.Transform) {
	if len(s.points) == 0 {
		s.aabb = actor.AABB{Min: t.Position, Max: t.Position}
		return
	}
	lo := t.Position.Add(t.Rotation.Rotate(s.points[0]))
	hi := lo
	for _, p := range s.points[1:] {
		w := t.Position.Add(t.Rotation.Rotate(p))
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], w[k])
			hi[k] = math.Max(hi[k], w[k])
		}
	}
	s.aabb = actor.AABB{Min: lo, Max: hi}
}

func (s *hullShape) GetAABB() actor.AABB { return s.aabb }

func (s *hullShape) ComputeMass(density float64) float64 { return density * s.volume }

func (s *hullShape) ComputeInertia(mass float64) mgl64.Mat3 { return s.inertia.Mul(mass) }

func (s *hullShape) Support(dir mgl64.Vec3) mgl64.Vec3 {
	best := math.Inf(-1)
	var out mgl64.Vec3
	for _, p := range s.points {
		if d := p.Dot(dir); d > best {
			best, out = d, p
		}
	}
	return out
}

// GetContactFeature writes the face most aligned with dir, in local space.
func (s *hullShape) GetContactFeature(dir mgl64.Vec3, out *[8]mgl64.Vec3, count *int) {
	best, face := math.Inf(-1), -1
	for i, n := range s.normals {
		if d := n.Dot(dir); d > best {
			best, face = d, i
		}
	}
	if face < 0 {
		out[0] = s.Support(dir)
		*count = 1
		return
	}
	n := min(len(s.faces[face]), len(out))
	for i := 0; i < n; i++ {
		out[i] = s.points[s.faces[face][i]]
	}
	*count = n
}

// CollideWithPlane reports the hull vertices behind the plane n·x + d = 0.
func (s *hullShape) CollideWithPlane(n mgl64.Vec3, d float64, t actor.Transform) (bool, actor.PlaneContact) {
	var contacts actor.PlaneContact
	for _, p := range s.points {
		w := t.Position.Add(t.Rotation.Rotate(p))
		dist := w.Dot(n) + d
		if dist >= 0 {
			continue
		}
		contacts = append(contacts, actor.ContactPoint{
			Position:    w.Sub(n.Mul(dist)),
			Penetration: -dist,
		})
	}
	if len(contacts) == 0 {
		return false, nil
	}
	if len(contacts) > maxPlanePoints {
		contacts = extremePoints(contacts, n)
	}
	return true, contacts
}

// extremePoints keeps the contacts furthest out along two tangents of n.
func extremePoints(points actor.PlaneContact, n mgl64.Vec3) actor.PlaneContact {
	t1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		t1 = mgl64.Vec3{0, 1, 0}
	}
	t1 = t1.Sub(n.Mul(t1.Dot(n))).Normalize()
	t2 := n.Cross(t1)

	var pick [4]int
	var score [4]float64
	for k := range score {
		score[k] = math.Inf(-1)
	}
	for i, p := range points {
		x, y := p.Position.Dot(t1), p.Position.Dot(t2)
		for k, v := range [4]float64{x, -x, y, -y} {
			if v > score[k] {
				score[k], pick[k] = v, i
			}
		}
	}

	out := make(actor.PlaneContact, 0, maxPlanePoints)
	seen := make(map[int]bool, maxPlanePoints)
	for _, i := range pick {
		if !seen[i] {
			seen[i] = true
			out = append(out, points[i])
		}
	}
	return out
}
