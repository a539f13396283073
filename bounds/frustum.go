package bounds

import "github.com/go-gl/mathgl/mgl32"

// Frustum is six inward-facing planes extracted from a view-projection
// matrix, in the order left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the planes of vp by row combination and
// normalizes them.
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 { return vp.Row(i) }
	r3 := row(3)
	combos := [6]mgl32.Vec4{
		r3.Add(row(0)), // left
		r3.Sub(row(0)), // right
		r3.Add(row(1)), // bottom
		r3.Sub(row(1)), // top
		r3.Add(row(2)), // near
		r3.Sub(row(2)), // far
	}
	var f Frustum
	for i, c := range combos {
		f.Planes[i] = Plane{N: c.Vec3(), D: c.W()}.Normalized()
	}
	return f
}

// BoxIn classifies the box against the frustum.
func (f *Frustum) BoxIn(b *Box) Intersection {
	points := b.Points()
	allIn := true
	for _, pl := range f.Planes {
		out := 0
		for _, p := range points {
			if pl.DistanceToPoint(p) < 0 {
				out++
			}
		}
		if out == len(points) {
			return Out
		}
		if out > 0 {
			allIn = false
		}
	}
	if allIn {
		return In
	}
	return Partially
}

// SphereIn classifies the sphere against the frustum.
func (f *Frustum) SphereIn(s *Sphere) Intersection {
	state := In
	for _, pl := range f.Planes {
		d := pl.DistanceToPoint(s.Center)
		if d < -s.Radius {
			return Out
		}
		if d < s.Radius {
			state = Partially
		}
	}
	return state
}
