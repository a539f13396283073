package bounds

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is a bounding sphere with a stashed pre-transform pair so it can
// be temporarily transformed (pushed) and restored (popped).
type Sphere struct {
	Center mgl32.Vec3
	Radius float32

	ocenter mgl32.Vec3
	oradius float32
	pushed  bool
}

func NewSphere(center mgl32.Vec3, radius float32) Sphere {
	return Sphere{Center: center, Radius: radius}
}

func (s *Sphere) Pushed() bool { return s.pushed }

// Push stashes the sphere and applies m. Idempotent while pushed.
func (s *Sphere) Push(m mgl32.Mat4) {
	if s.pushed {
		return
	}
	s.ocenter = s.Center
	s.oradius = s.Radius
	s.pushed = true
	s.Center = m.Mul4x1(s.Center.Vec4(1)).Vec3()
	s.Radius *= maxScale(m)
}

// Pop restores the stashed sphere.
func (s *Sphere) Pop() {
	if !s.pushed {
		return
	}
	s.Center = s.ocenter
	s.Radius = s.oradius
	s.pushed = false
}

// maxScale is the largest axis scale of the upper 3x3 of m; a transformed
// sphere stays conservative under non-uniform scaling.
func maxScale(m mgl32.Mat4) float32 {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	return math32.Max(sx, math32.Max(sy, sz))
}
