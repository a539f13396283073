// Package bounds holds the bounding volumes and intersection tests used by
// culling, spatial indexing and level-of-detail selection.
package bounds

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Intersection classifies how two volumes overlap.
type Intersection int

const (
	Out Intersection = iota
	In
	Partially
)

func (i Intersection) String() string {
	switch i {
	case In:
		return "in"
	case Partially:
		return "partially"
	default:
		return "out"
	}
}

// Plane is (normal, d) with DistanceToPoint(p) = dot(n,p) + d.
type Plane struct {
	N mgl32.Vec3
	D float32
}

func NewPlane(n mgl32.Vec3, d float32) Plane {
	return Plane{N: n, D: d}
}

// PlaneFromPointNormal builds the plane through p with normal n.
func PlaneFromPointNormal(n, p mgl32.Vec3) Plane {
	return Plane{N: n, D: -n.Dot(p)}
}

func (p Plane) DistanceToPoint(v mgl32.Vec3) float32 {
	return p.N.Dot(v) + p.D
}

// Normalized rescales the plane so N is unit length, keeping the same
// point set.
func (p Plane) Normalized() Plane {
	l := math32.Sqrt(p.N.Dot(p.N))
	if l == 0 {
		return p
	}
	inv := 1.0 / l
	return Plane{N: p.N.Mul(inv), D: p.D * inv}
}
