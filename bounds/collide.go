package bounds

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Pairwise intersection tests. Every test returns Out, In or Partially;
// In means the first operand fully contains the second where containment
// makes sense, otherwise that the second lies entirely on the positive
// side.

// PlaneWithPoint classifies p against the plane's positive half-space.
func PlaneWithPoint(pl Plane, p mgl32.Vec3) Intersection {
	if pl.DistanceToPoint(p) >= 0 {
		return In
	}
	return Out
}

// PlanesWithPoint reports In when p is inside every plane's positive
// half-space.
func PlanesWithPoint(planes []Plane, p mgl32.Vec3) Intersection {
	for _, pl := range planes {
		if pl.DistanceToPoint(p) < 0 {
			return Out
		}
	}
	return In
}

// PlaneWithSphere classifies the sphere against the plane.
func PlaneWithSphere(pl Plane, s *Sphere) Intersection {
	d := pl.DistanceToPoint(s.Center)
	switch {
	case d < -s.Radius:
		return Out
	case d < s.Radius:
		return Partially
	default:
		return In
	}
}

// PlaneWithBox classifies the box corners against the plane.
func PlaneWithBox(pl Plane, b *Box) Intersection {
	out := 0
	for _, p := range b.Points() {
		if pl.DistanceToPoint(p) < 0 {
			out++
		}
	}
	switch out {
	case 0:
		return In
	case 8:
		return Out
	default:
		return Partially
	}
}

// AABBWithPoint tests a min/max box against a point.
func AABBWithPoint(min, max, p mgl32.Vec3) Intersection {
	for i := 0; i < 3; i++ {
		if p[i] < min[i] || p[i] > max[i] {
			return Out
		}
	}
	return In
}

// AABBWithSphere classifies the sphere against a min/max box: In when the
// box fully contains the sphere, Partially when they overlap.
func AABBWithSphere(min, max mgl32.Vec3, s *Sphere) Intersection {
	inside := true
	var dist2 float32
	for i := 0; i < 3; i++ {
		c := s.Center[i]
		if c-s.Radius < min[i] || c+s.Radius > max[i] {
			inside = false
		}
		if c < min[i] {
			d := min[i] - c
			dist2 += d * d
		} else if c > max[i] {
			d := c - max[i]
			dist2 += d * d
		}
	}
	if inside {
		return In
	}
	if dist2 <= s.Radius*s.Radius {
		return Partially
	}
	return Out
}

// BoxWithPoint tests containment through the box planes, so it is valid
// for pushed boxes.
func BoxWithPoint(b *Box, p mgl32.Vec3) Intersection {
	planes := b.MakePlanes()
	return PlanesWithPoint(planes[:], p)
}

// BoxWithSphere classifies a sphere against the box planes.
func BoxWithSphere(b *Box, s *Sphere) Intersection {
	planes := b.MakePlanes()
	state := In
	for _, pl := range planes {
		switch PlaneWithSphere(pl, s) {
		case Out:
			return Out
		case Partially:
			state = Partially
		}
	}
	return state
}

// BoxWithBox classifies box b2 against box b1 corner-wise.
func BoxWithBox(b1, b2 *Box) Intersection {
	planes := b1.MakePlanes()
	in := 0
	for _, p := range b2.Points() {
		if PlanesWithPoint(planes[:], p) == In {
			in++
		}
	}
	switch in {
	case 8:
		return In
	case 0:
		// no corner of b2 inside b1; b1 may still poke into b2
		planes2 := b2.MakePlanes()
		for _, p := range b1.Points() {
			if PlanesWithPoint(planes2[:], p) == In {
				return Partially
			}
		}
		return Out
	default:
		return Partially
	}
}

// SphereWithPoint tests point containment.
func SphereWithPoint(s *Sphere, p mgl32.Vec3) Intersection {
	if p.Sub(s.Center).Len() <= s.Radius {
		return In
	}
	return Out
}

// SphereWithSphere classifies s2 against s1.
func SphereWithSphere(s1, s2 *Sphere) Intersection {
	d := s2.Center.Sub(s1.Center).Len()
	switch {
	case d+s2.Radius <= s1.Radius:
		return In
	case d <= s1.Radius+s2.Radius:
		return Partially
	default:
		return Out
	}
}

// SphereWithBox classifies the box against the sphere.
func SphereWithBox(s *Sphere, b *Box) Intersection {
	in := 0
	for _, p := range b.Points() {
		if SphereWithPoint(s, p) == In {
			in++
		}
	}
	switch in {
	case 8:
		return In
	case 0:
		// the sphere may still intersect a face
		if BoxWithPoint(b, s.Center) == In {
			return Partially
		}
		if distanceToAABB(b.Min(), b.Max(), s.Center) <= s.Radius {
			return Partially
		}
		return Out
	default:
		return Partially
	}
}

func distanceToAABB(min, max, p mgl32.Vec3) float32 {
	var dist2 float32
	for i := 0; i < 3; i++ {
		if p[i] < min[i] {
			d := min[i] - p[i]
			dist2 += d * d
		} else if p[i] > max[i] {
			d := p[i] - max[i]
			dist2 += d * d
		}
	}
	return math32.Sqrt(dist2)
}
