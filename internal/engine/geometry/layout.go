package geometry

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/dicebowl/pkg/dice"
)

// cubeFaceValues numbers the cube faces top, right, front, back, left, bottom.
var cubeFaceValues = [6]int{6, 5, 4, 3, 2, 1}

func sequential(faces []Face, _ int) {
	for i := range faces {
		faces[i].Value = i + 1
	}
}

func cubeLayout(faces []Face, _ int) {
	for i := range faces {
		faces[i].Value = cubeFaceValues[i]
	}
}

// opposite numbers faces so that each pair of parallel faces sums to n+1.
func opposite(faces []Face, _ int) {
	n := len(faces)
	next := 1
	for i := range faces {
		if faces[i].Value != 0 {
			continue
		}
		j := mostOpposed(faces, i)
		faces[i].Value = next
		if j >= 0 {
			faces[j].Value = n + 1 - next
		}
		next++
	}
}

// percentile numbers a ten-faced body 00, 10, ... 90.
func percentile(faces []Face, sides int) {
	opposite(faces, sides)
	for i := range faces {
		faces[i].Value = (faces[i].Value - 1) * 10
	}
}

func mostOpposed(faces []Face, i int) int {
	best := -1
	bestDot := math.Inf(1)
	for j := range faces {
		if j == i || faces[j].Value != 0 {
			continue
		}
		if d := faces[i].Normal.Dot(faces[j].Normal); d < bestDot {
			bestDot = d
			best = j
		}
	}
	return best
}

// labelText formats the printed number for a face value.
func labelText(t dice.Type, value int) string {
	switch t {
	case dice.D100:
		if value == 0 {
			return "00"
		}
		return strconv.Itoa(value)
	case dice.D10:
		if value == 10 {
			return "0"
		}
	}
	s := strconv.Itoa(value)
	if t.Sides() > 8 && (value == 6 || value == 9) {
		s += "."
	}
	return s
}

func placeLabel(verts []mgl64.Vec3, f Face, text string) Label {
	up := mgl64.Vec3{0, 1, 0}
	if math.Abs(f.Normal.Y()) > 0.9 {
		up = mgl64.Vec3{0, 0, -math.Copysign(1, f.Normal.Y())}
	}
	up = up.Sub(f.Normal.Mul(up.Dot(f.Normal))).Normalize()

	return Label{
		Text:   text,
		Center: f.Center.Add(f.Normal.Mul(0.002)),
		Normal: f.Normal,
		Up:     up,
		Size:   1.1 * inradius(verts, f),
	}
}

// inradius is the distance from the face center to its nearest edge.
func inradius(verts []mgl64.Vec3, f Face) float64 {
	r := math.Inf(1)
	for i, a := range f.Vertices {
		b := f.Vertices[(i+1)%len(f.Vertices)]
		edge := verts[b].Sub(verts[a])
		l := edge.Len()
		if l == 0 {
			continue
		}
		d := f.Center.Sub(verts[a]).Cross(edge).Len() / l
		r = math.Min(r, d)
	}
	return r
}
