package geometry

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

var phi = (1 + math.Sqrt(5)) / 2

// pairs expands each vector into itself and its opposite, keeping the pair
// adjacent so opposite faces are easy to find.
func pairs(vs ...mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, len(vs)*2)
	for _, v := range vs {
		out = append(out, v, v.Mul(-1))
	}
	return out
}

func tetrahedron() ([]mgl64.Vec3, [][]int) {
	verts := []mgl64.Vec3{{1, 1, 1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}
	normals := make([]mgl64.Vec3, len(verts))
	for i, v := range verts {
		normals[i] = v.Mul(-1)
	}
	return verts, facesFromNormals(verts, normals)
}

func cube() ([]mgl64.Vec3, [][]int) {
	var verts []mgl64.Vec3
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			for _, z := range []float64{-1, 1} {
				verts = append(verts, mgl64.Vec3{x, y, z})
			}
		}
	}
	// top, right, front, back, left, bottom
	normals := []mgl64.Vec3{{0, 1, 0}, {1, 0, 0}, {0, 0, 1}, {0, 0, -1}, {-1, 0, 0}, {0, -1, 0}}
	return verts, facesFromNormals(verts, normals)
}

func octahedron() ([]mgl64.Vec3, [][]int) {
	verts := pairs(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1})
	normals := pairs(
		mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, -1},
		mgl64.Vec3{1, -1, 1}, mgl64.Vec3{1, -1, -1},
	)
	return verts, facesFromNormals(verts, normals)
}

func dodecahedron() ([]mgl64.Vec3, [][]int) {
	verts := pairs(
		mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, -1},
		mgl64.Vec3{1, -1, 1}, mgl64.Vec3{1, -1, -1},
		mgl64.Vec3{0, 1 / phi, phi}, mgl64.Vec3{0, 1 / phi, -phi},
		mgl64.Vec3{1 / phi, phi, 0}, mgl64.Vec3{-1 / phi, phi, 0},
		mgl64.Vec3{phi, 0, 1 / phi}, mgl64.Vec3{phi, 0, -1 / phi},
	)
	normals := pairs(
		mgl64.Vec3{0, phi, 1}, mgl64.Vec3{0, phi, -1},
		mgl64.Vec3{1, 0, phi}, mgl64.Vec3{-1, 0, phi},
		mgl64.Vec3{phi, 1, 0}, mgl64.Vec3{phi, -1, 0},
	)
	return verts, facesFromNormals(verts, normals)
}

func icosahedron() ([]mgl64.Vec3, [][]int) {
	verts := pairs(
		mgl64.Vec3{0, 1, phi}, mgl64.Vec3{0, 1, -phi},
		mgl64.Vec3{1, phi, 0}, mgl64.Vec3{-1, phi, 0},
		mgl64.Vec3{phi, 0, 1}, mgl64.Vec3{phi, 0, -1},
	)
	normals := pairs(
		mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, -1},
		mgl64.Vec3{1, -1, 1}, mgl64.Vec3{1, -1, -1},
		mgl64.Vec3{0, phi, 1 / phi}, mgl64.Vec3{0, phi, -1 / phi},
		mgl64.Vec3{1 / phi, 0, phi}, mgl64.Vec3{-1 / phi, 0, phi},
		mgl64.Vec3{phi, 1 / phi, 0}, mgl64.Vec3{phi, -1 / phi, 0},
	)
	return verts, facesFromNormals(verts, normals)
}

// trapezohedron builds the pentagonal trapezohedron used by d10 and d100:
// a zig-zag ring of ten vertices capped by two apexes, with ten kite faces.
func trapezohedron() ([]mgl64.Vec3, [][]int) {
	const ring = 10
	const zig = 0.105
	c := math.Cos(math.Pi / 5)
	apex := zig * (1 + c) / (1 - c)

	verts := make([]mgl64.Vec3, 0, ring+2)
	for i := 0; i < ring; i++ {
		a := float64(i) * math.Pi / 5
		y := zig
		if i%2 == 1 {
			y = -zig
		}
		verts = append(verts, mgl64.Vec3{math.Cos(a), y, math.Sin(a)})
	}
	top, bottom := ring, ring+1
	verts = append(verts, mgl64.Vec3{0, apex, 0}, mgl64.Vec3{0, -apex, 0})

	faces := make([][]int, 0, ring)
	for k := 0; k < ring/2; k++ {
		faces = append(faces, []int{top, 2 * k, 2*k + 1, (2*k + 2) % ring})
	}
	for k := 0; k < ring/2; k++ {
		faces = append(faces, []int{bottom, 2*k + 1, (2*k + 2) % ring, (2*k + 3) % ring})
	}
	return verts, faces
}

// facesFromNormals finds, for each outward face normal, the vertices lying
// on the supporting plane and orders them around the face center.
func facesFromNormals(verts, normals []mgl64.Vec3) [][]int {
	const eps = 1e-6
	faces := make([][]int, 0, len(normals))
	for _, n := range normals {
		n = n.Normalize()
		best := math.Inf(-1)
		for _, v := range verts {
			best = math.Max(best, v.Dot(n))
		}
		var idx []int
		for i, v := range verts {
			if v.Dot(n) > best-eps {
				idx = append(idx, i)
			}
		}
		faces = append(faces, orderAround(verts, idx, n))
	}
	return faces
}

func orderAround(verts []mgl64.Vec3, idx []int, n mgl64.Vec3) []int {
	var center mgl64.Vec3
	for _, i := range idx {
		center = center.Add(verts[i])
	}
	center = center.Mul(1 / float64(len(idx)))

	u := verts[idx[0]].Sub(center).Normalize()
	w := n.Cross(u)
	angle := func(i int) float64 {
		d := verts[i].Sub(center)
		return math.Atan2(d.Dot(w), d.Dot(u))
	}
	sort.Slice(idx, func(a, b int) bool { return angle(idx[a]) < angle(idx[b]) })
	return idx
}
