package geometry

import "github.com/go-gl/mathgl/mgl64"

// Mesh is interleaved vertex data ready for upload:
// position (3), normal (3), uv (2) per vertex.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// Stride is the number of floats per vertex in Mesh.Vertices.
const Stride = 8

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / Stride
}

func (m *Mesh) push(p, n mgl64.Vec3, u, v float32) uint32 {
	idx := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices,
		float32(p.X()), float32(p.Y()), float32(p.Z()),
		float32(n.X()), float32(n.Y()), float32(n.Z()),
		u, v)
	return idx
}

// BodyMesh triangulates the faces as fans with flat normals.
func (s *Shape) BodyMesh() *Mesh {
	m := &Mesh{}
	for _, f := range s.Faces {
		base := uint32(m.VertexCount())
		for _, vi := range f.Vertices {
			m.push(s.Vertices[vi], f.Normal, 0, 0)
		}
		for i := 1; i+1 < len(f.Vertices); i++ {
			m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
		}
	}
	return m
}

// LabelMesh builds one textured quad per face, sized by the label and
// mapped onto the atlas cell of its text.
func (s *Shape) LabelMesh(atlas *LabelAtlas) *Mesh {
	m := &Mesh{}
	for _, f := range s.Faces {
		l := f.Label
		uv, ok := atlas.Lookup(l.Text)
		if !ok {
			continue
		}
		right := l.Up.Cross(l.Normal).Normalize()
		half := l.Size / 2
		// atlas cells are twice as wide as tall
		r := right.Mul(half)
		u := l.Up.Mul(half / 2)

		a := m.push(l.Center.Sub(r).Sub(u), l.Normal, uv.U0, uv.V1)
		b := m.push(l.Center.Add(r).Sub(u), l.Normal, uv.U1, uv.V1)
		c := m.push(l.Center.Add(r).Add(u), l.Normal, uv.U1, uv.V0)
		d := m.push(l.Center.Sub(r).Add(u), l.Normal, uv.U0, uv.V0)
		m.Indices = append(m.Indices, a, b, c, a, c, d)
	}
	return m
}
