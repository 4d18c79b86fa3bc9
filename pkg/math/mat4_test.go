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
	result := m.Mul(Identity())

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

func TestTransformVec3(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformVec3(Vec3{1, 2, 3})

	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformVec3: got %v, want %v", got, want)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(math.Pi / 2)
	result := m.TransformVec3(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result.X) > 1e-9 || abs(result.Y) > 1e-9 || abs(result.Z+1) > 1e-9 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestTransformVec3PerspectiveDivide(t *testing.T) {
	proj := Perspective(math.Pi/2, 1, 1, 100)

	// A point on the near plane maps to depth -1, one on the far plane to 1.
	near := proj.TransformVec3(Vec3{0, 0, -1})
	far := proj.TransformVec3(Vec3{0, 0, -100})
	if abs(near.Z+1) > 1e-9 || abs(far.Z-1) > 1e-9 {
		t.Errorf("depths near %v far %v, want -1 and 1", near.Z, far.Z)
	}
	// Round trip through the inverse, as picking does.
	back := proj.Inverse().TransformVec3(Vec3{0.5, -0.25, 0})
	if got := proj.TransformVec3(back); abs(got.X-0.5) > 1e-9 || abs(got.Y+0.25) > 1e-9 || abs(got.Z) > 1e-9 {
		t.Errorf("inverse round trip = %v", got)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(math.Pi/4, 1.0, 0.1, 100.0)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestInverse(t *testing.T) {
	m := Translate(3, -4, 5).Mul(RotateZ(0.3)).Mul(RotateX(-1.1))
	got := m.Mul(m.Inverse())
	id := Identity()
	for i := range got {
		if abs(got[i]-id[i]) > 1e-9 {
			t.Fatalf("M * M^-1 element %d = %f, want %f", i, got[i], id[i])
		}
	}
}

func TestProjectUnproject(t *testing.T) {
	model := Translate(0, 0, -50)
	proj := Perspective(math.Pi/3, 4.0/3.0, 1, 1000)
	vp := Viewport{0, 0, 800, 600}

	center, ok := Project(Vec3{0, 0, 0}, model, proj, vp)
	if !ok {
		t.Fatal("Project failed for visible point")
	}
	if abs(center.X-400) > 1e-6 || abs(center.Y-300) > 1e-6 {
		t.Errorf("origin should project to viewport center, got %v", center)
	}

	p := Vec3{3, -7, 10}
	win, ok := Project(p, model, proj, vp)
	if !ok {
		t.Fatal("Project failed")
	}
	back, ok := Unproject(win, model, proj, vp)
	if !ok {
		t.Fatal("Unproject failed")
	}
	if back.Distance(p) > 1e-6 {
		t.Errorf("Unproject(Project(p)) = %v, want %v", back, p)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
