package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformVec3(t *testing.T) {
	// Translate by (10, 20, 30)
	m := Translate(10, 20, 30)
	result := m.TransformVec3(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformVec3: got %v, want %v", result, expected)
	}
}

func TestTransformVec3Scale(t *testing.T) {
	m := Scale(2, 2, 2)
	result := m.TransformVec3(Vec3{1, 2, 3})

	expected := Vec3{2, 4, 6}
	if result != expected {
		t.Errorf("TransformVec3 with scale: got %v, want %v", result, expected)
	}
}

func TestPerspective(t *testing.T) {
	fov := float32(math.Pi / 4) // 45 degrees
	aspect := float32(1.0)
	near := float32(0.1)
	far := float32(100.0)

	m := Perspective(fov, aspect, near, far)

	// Should be a valid projection matrix (not identity)
	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	// Element [15] should be 0 for perspective projection
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	// Element [11] should be -1 for perspective projection
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestOrtho(t *testing.T) {
	m := Ortho(-2, 2, -1, 1, 1, 11)

	corners := []struct {
		in, want Vec3
	}{
		{Vec3{-2, -1, -1}, Vec3{-1, -1, -1}},
		{Vec3{2, 1, -11}, Vec3{1, 1, 1}},
		{Vec3{0, 0, -6}, Vec3{0, 0, 0}},
	}
	for _, c := range corners {
		got := m.TransformVec3(c.in)
		if got.Distance(c.want) > 1e-5 {
			t.Errorf("Ortho(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, 0, 5}
	center := Vec3{0, 0, 0}
	up := Vec3{0, 1, 0}

	m := LookAt(eye, center, up)

	// Transform eye position - should result in origin (or close to it)
	// This is a simple sanity check
	if m[15] != 1 {
		t.Errorf("LookAt [15] should be 1, got %f", m[15])
	}
}

func TestModel(t *testing.T) {
	half := float32(math.Sqrt2 / 2)
	// 90 degrees around Y
	rot := Quat{Y: half, W: half}
	m := Model(Vec3{10, 0, 0}, rot, 2)

	got := m.TransformVec3(Vec3{1, 0, 0})
	want := Vec3{10, 0, -2}
	if got.Distance(want) > 1e-5 {
		t.Errorf("Model: got %v, want %v", got, want)
	}
	if m.TransformVec3(Vec3{}) != (Vec3{10, 0, 0}) {
		t.Error("Model should map the origin to the position")
	}
}
