// Package geometry builds die shapes, face numbering, labels and collision hulls.
package geometry

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/dicebowl/pkg/dice"
)

// ReadMode selects which face counts as the rolled result.
type ReadMode uint8

const (
	// ReadTop reads the face pointing up.
	ReadTop ReadMode = iota
	// ReadBottom reads the face resting on the floor (tetrahedra).
	ReadBottom
)

// Face is one flat polygon of a die.
type Face struct {
	Vertices []int // indices into Shape.Vertices, counter-clockwise from outside
	Normal   mgl64.Vec3
	Center   mgl64.Vec3
	Value    int
	Label    Label
}

// Label describes where a face number is drawn.
type Label struct {
	Text   string
	Center mgl64.Vec3
	Normal mgl64.Vec3
	Up     mgl64.Vec3
	Size   float64
}

// Shape is the immutable geometry of one die type.
type Shape struct {
	Type     dice.Type
	Vertices []mgl64.Vec3
	Faces    []Face
	Read     ReadMode
	Radius   float64
}

type builder struct {
	radius float64
	read   ReadMode
	solid  func() ([]mgl64.Vec3, [][]int)
	number func(faces []Face, sides int)
}

var table = map[dice.Type]builder{
	dice.D4:   {radius: 1.0, read: ReadBottom, solid: tetrahedron, number: sequential},
	dice.D6:   {radius: math.Sqrt(3) / 2, solid: cube, number: cubeLayout},
	dice.D8:   {radius: 0.9, solid: octahedron, number: opposite},
	dice.D10:  {radius: 0.9, solid: trapezohedron, number: opposite},
	dice.D12:  {radius: 0.95, solid: dodecahedron, number: opposite},
	dice.D20:  {radius: 1.0, solid: icosahedron, number: opposite},
	dice.D100: {radius: 0.9, solid: trapezohedron, number: percentile},
}

var (
	cacheMu sync.Mutex
	cache   = map[dice.Type]*Shape{}
)

// Build returns the shape for t. Shapes are built once per type and shared;
// callers must not mutate them.
func Build(t dice.Type) (*Shape, error) {
	b, ok := table[t]
	if !ok {
		return nil, fmt.Errorf("build %v: %w", t, dice.ErrUnsupportedType)
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[t]; ok {
		return s, nil
	}

	verts, polys := b.solid()
	scaleToRadius(verts, b.radius)

	faces := make([]Face, len(polys))
	for i, p := range polys {
		faces[i] = newFace(verts, p)
	}
	b.number(faces, t.Sides())
	for i := range faces {
		faces[i].Label = placeLabel(verts, faces[i], labelText(t, faces[i].Value))
	}

	s := &Shape{Type: t, Vertices: verts, Faces: faces, Read: b.read, Radius: b.radius}
	cache[t] = s
	return s, nil
}

// MustBuild is like Build but panics on unsupported types.
func MustBuild(t dice.Type) *Shape {
	s, err := Build(t)
	if err != nil {
		panic(err)
	}
	return s
}

// ResultFace returns the face that counts as the result for the given body
// orientation.
func (s *Shape) ResultFace(rotation mgl64.Quat) (Face, bool) {
	if s == nil || len(s.Faces) == 0 {
		return Face{}, false
	}
	up := mgl64.Vec3{0, 1, 0}
	best := -1
	bestDot := math.Inf(-1)
	for i, f := range s.Faces {
		d := rotation.Rotate(f.Normal).Dot(up)
		if s.Read == ReadBottom {
			d = -d
		}
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	if best < 0 {
		return Face{}, false
	}
	return s.Faces[best], true
}

// TopFace returns the rolled value for the given orientation.
func (s *Shape) TopFace(rotation mgl64.Quat) (int, bool) {
	f, ok := s.ResultFace(rotation)
	if !ok {
		return 0, false
	}
	return f.Value, true
}

// Values returns the face values in face order.
func (s *Shape) Values() []int {
	out := make([]int, len(s.Faces))
	for i, f := range s.Faces {
		out[i] = f.Value
	}
	return out
}

func newFace(verts []mgl64.Vec3, poly []int) Face {
	var center mgl64.Vec3
	for _, idx := range poly {
		center = center.Add(verts[idx])
	}
	center = center.Mul(1 / float64(len(poly)))

	a, b, c := verts[poly[0]], verts[poly[1]], verts[poly[2]]
	normal := b.Sub(a).Cross(c.Sub(a)).Normalize()
	if normal.Dot(center) < 0 {
		normal = normal.Mul(-1)
		reversed := make([]int, len(poly))
		for i, idx := range poly {
			reversed[len(poly)-1-i] = idx
		}
		poly = reversed
	}
	return Face{Vertices: poly, Normal: normal, Center: center}
}

func scaleToRadius(verts []mgl64.Vec3, radius float64) {
	maxLen := 0.0
	for _, v := range verts {
		maxLen = math.Max(maxLen, v.Len())
	}
	if maxLen == 0 {
		return
	}
	k := radius / maxLen
	for i := range verts {
		verts[i] = verts[i].Mul(k)
	}
}
