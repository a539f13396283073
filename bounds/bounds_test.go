package bounds

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBoxCornerLayout(t *testing.T) {
	b := NewBox(mgl32.Vec3{1, 2, 3}, 10, 20, 30)
	p := b.Points()

	want := [8]mgl32.Vec3{
		{1, 2, 3},
		{11, 2, 3},
		{11, 22, 3},
		{1, 22, 3},
		{1, 22, 33},
		{11, 22, 33},
		{11, 2, 33},
		{1, 2, 33},
	}
	for i := range want {
		if p[i] != want[i] {
			t.Errorf("corner %d: got %v, want %v", i, p[i], want[i])
		}
	}
	if got := b.Center(); got != (mgl32.Vec3{6, 12, 18}) {
		t.Errorf("center: got %v", got)
	}
}

func TestBoxPlanesAgreeWithContainment(t *testing.T) {
	b := NewBox(mgl32.Vec3{-1, -1, -1}, 2, 2, 2)
	planes := b.MakePlanes()

	points := []struct {
		p    mgl32.Vec3
		want Intersection
	}{
		{mgl32.Vec3{0, 0, 0}, In},
		{mgl32.Vec3{0.99, 0.99, 0.99}, In},
		{mgl32.Vec3{1.01, 0, 0}, Out},
		{mgl32.Vec3{0, -1.5, 0}, Out},
		{mgl32.Vec3{0, 0, 3}, Out},
		{mgl32.Vec3{-0.5, 0.5, -0.99}, In},
	}
	for _, tc := range points {
		if got := PlanesWithPoint(planes[:], tc.p); got != tc.want {
			t.Errorf("planes with %v: got %v, want %v", tc.p, got, tc.want)
		}
		if got := BoxWithPoint(&b, tc.p); got != tc.want {
			t.Errorf("box with %v: got %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestBoxPushPop(t *testing.T) {
	b := NewBox(mgl32.Vec3{0, 0, 0}, 1, 1, 1)
	orig := *b.Points()

	m := mgl32.Translate3D(5, 0, 0)
	b.Push(m)
	if b.Points()[0] != (mgl32.Vec3{5, 0, 0}) {
		t.Errorf("pushed origin: got %v", b.Points()[0])
	}
	// push is a no-op while pushed
	b.Push(mgl32.Translate3D(100, 100, 100))
	if b.Points()[0] != (mgl32.Vec3{5, 0, 0}) {
		t.Error("second push should not apply")
	}
	b.Pop()
	if *b.Points() != orig {
		t.Error("pop should restore corners")
	}
}

func TestSpherePushPop(t *testing.T) {
	s := NewSphere(mgl32.Vec3{1, 0, 0}, 2)
	s.Push(mgl32.Scale3D(3, 1, 1).Mul4(mgl32.Translate3D(1, 0, 0)))
	if s.Radius != 6 {
		t.Errorf("pushed radius: got %f, want 6", s.Radius)
	}
	s.Pop()
	if s.Radius != 2 || s.Center != (mgl32.Vec3{1, 0, 0}) {
		t.Error("pop should restore the sphere")
	}
}

func TestAABBWithSphere(t *testing.T) {
	min := mgl32.Vec3{-10, -10, -10}
	max := mgl32.Vec3{10, 10, 10}

	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   Intersection
	}{
		{"contained", mgl32.Vec3{0, 0, 0}, 5, In},
		{"poking through the wall from inside", mgl32.Vec3{8, 0, 0}, 5, Partially},
		{"straddling", mgl32.Vec3{10, 0, 0}, 2, Partially},
		{"outside", mgl32.Vec3{20, 0, 0}, 2, Out},
		{"outside corner", mgl32.Vec3{13, 13, 13}, 2, Out},
	}
	for _, tc := range tests {
		s := NewSphere(tc.center, tc.radius)
		if got := AABBWithSphere(min, max, &s); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFrustumBoxClassification(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := FrustumFromMatrix(proj.Mul4(view))

	tests := []struct {
		name   string
		center mgl32.Vec3
		want   Intersection
	}{
		{"fully in view", mgl32.Vec3{0, 0, -50}, In},
		{"far to the side", mgl32.Vec3{200, 0, -50}, Out},
		{"behind the camera", mgl32.Vec3{0, 0, 50}, Out},
	}
	for _, tc := range tests {
		var b Box
		b.SetFromCenter(tc.center, 10, 10, 10)
		if got := f.BoxIn(&b); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	// straddling the left plane
	var b Box
	b.SetFromCenter(mgl32.Vec3{-50, 0, -50}, 20, 2, 2)
	if got := f.BoxIn(&b); got != Partially {
		t.Errorf("straddling box: got %v, want partially", got)
	}
}

func TestFrustumSphere(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := FrustumFromMatrix(proj.Mul4(view))

	in := NewSphere(mgl32.Vec3{0, 0, -50}, 5)
	if got := f.SphereIn(&in); got != In {
		t.Errorf("sphere in view: got %v", got)
	}
	out := NewSphere(mgl32.Vec3{0, 300, -50}, 5)
	if got := f.SphereIn(&out); got != Out {
		t.Errorf("sphere out of view: got %v", got)
	}
}

func TestSphereWithSphere(t *testing.T) {
	a := NewSphere(mgl32.Vec3{0, 0, 0}, 10)
	small := NewSphere(mgl32.Vec3{2, 0, 0}, 3)
	if got := SphereWithSphere(&a, &small); got != In {
		t.Errorf("contained sphere: got %v", got)
	}
	cross := NewSphere(mgl32.Vec3{11, 0, 0}, 3)
	if got := SphereWithSphere(&a, &cross); got != Partially {
		t.Errorf("crossing sphere: got %v", got)
	}
	far := NewSphere(mgl32.Vec3{20, 0, 0}, 3)
	if got := SphereWithSphere(&a, &far); got != Out {
		t.Errorf("distant sphere: got %v", got)
	}
}
