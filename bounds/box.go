package bounds

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box corner indices, measured from the origin corner of a box built from
// (origin, w, h, d):
//
//	0 origin      1 +X        2 +X+Y      3 +Y
//	4 +Y+Z        5 +X+Y+Z    6 +X+Z      7 +Z
//
// The layout is fixed; every consumer (plane synthesis, LOD projection,
// octree math) indexes corners by these positions.
const (
	BoxOrigin = iota
	BoxX
	BoxXY
	BoxY
	BoxYZ
	BoxXYZ
	BoxXZ
	BoxZ
)

// Box is an 8-corner bounding box with a stashed copy so it can be pushed
// through a matrix and popped back.
type Box struct {
	p      [8]mgl32.Vec3
	old    [8]mgl32.Vec3
	pushed bool
}

// NewBox builds an axis-aligned box from its minimum corner and sizes.
func NewBox(origin mgl32.Vec3, w, h, d float32) Box {
	var b Box
	b.Set(origin, w, h, d)
	return b
}

func (b *Box) Set(origin mgl32.Vec3, w, h, d float32) {
	o := origin
	b.p[BoxOrigin] = o
	b.p[BoxX] = o.Add(mgl32.Vec3{w, 0, 0})
	b.p[BoxXY] = o.Add(mgl32.Vec3{w, h, 0})
	b.p[BoxY] = o.Add(mgl32.Vec3{0, h, 0})
	b.p[BoxYZ] = o.Add(mgl32.Vec3{0, h, d})
	b.p[BoxXYZ] = o.Add(mgl32.Vec3{w, h, d})
	b.p[BoxXZ] = o.Add(mgl32.Vec3{w, 0, d})
	b.p[BoxZ] = o.Add(mgl32.Vec3{0, 0, d})
}

// SetFromCenter builds the box around a center point.
func (b *Box) SetFromCenter(center mgl32.Vec3, w, h, d float32) {
	b.Set(center.Sub(mgl32.Vec3{w / 2, h / 2, d / 2}), w, h, d)
}

func (b *Box) Points() *[8]mgl32.Vec3 { return &b.p }
func (b *Box) Pushed() bool           { return b.pushed }

func (b *Box) Origin() mgl32.Vec3 { return b.p[BoxOrigin] }

func (b *Box) Width() float32  { return b.p[BoxX].Sub(b.p[BoxOrigin]).Len() }
func (b *Box) Height() float32 { return b.p[BoxY].Sub(b.p[BoxOrigin]).Len() }
func (b *Box) Depth() float32  { return b.p[BoxZ].Sub(b.p[BoxOrigin]).Len() }

func (b *Box) Center() mgl32.Vec3 {
	return b.p[BoxOrigin].Add(b.p[BoxXYZ]).Mul(0.5)
}

// SetCenter translates the box so its center lands on c.
func (b *Box) SetCenter(c mgl32.Vec3) {
	delta := c.Sub(b.Center())
	for i := range b.p {
		b.p[i] = b.p[i].Add(delta)
	}
}

// Min and Max are the component-wise extremes over the corners, valid for
// pushed (rotated) boxes too.
func (b *Box) Min() mgl32.Vec3 {
	m := b.p[0]
	for _, q := range b.p[1:] {
		m = mgl32.Vec3{math32.Min(m.X(), q.X()), math32.Min(m.Y(), q.Y()), math32.Min(m.Z(), q.Z())}
	}
	return m
}

func (b *Box) Max() mgl32.Vec3 {
	m := b.p[0]
	for _, q := range b.p[1:] {
		m = mgl32.Vec3{math32.Max(m.X(), q.X()), math32.Max(m.Y(), q.Y()), math32.Max(m.Z(), q.Z())}
	}
	return m
}

// Push stashes the corners and transforms them by m. Idempotent while
// pushed.
func (b *Box) Push(m mgl32.Mat4) {
	if b.pushed {
		return
	}
	b.old = b.p
	b.pushed = true
	for i := range b.p {
		b.p[i] = m.Mul4x1(b.p[i].Vec4(1)).Vec3()
	}
}

// Pop restores the stashed corners.
func (b *Box) Pop() {
	if !b.pushed {
		return
	}
	b.p = b.old
	b.pushed = false
}

// MakePlanes synthesizes the box's six inward-facing planes in the order
// near, far, left, right, up, down. The intersection of their positive
// half-spaces is the box interior; valid for pushed boxes.
func (b *Box) MakePlanes() [6]Plane {
	x := b.p[BoxX].Sub(b.p[BoxOrigin]).Normalize()
	y := b.p[BoxY].Sub(b.p[BoxOrigin]).Normalize()
	z := b.p[BoxZ].Sub(b.p[BoxOrigin]).Normalize()
	return [6]Plane{
		PlaneFromPointNormal(z, b.p[BoxOrigin]),          // near
		PlaneFromPointNormal(z.Mul(-1), b.p[BoxXYZ]),     // far
		PlaneFromPointNormal(x, b.p[BoxOrigin]),          // left
		PlaneFromPointNormal(x.Mul(-1), b.p[BoxXYZ]),     // right
		PlaneFromPointNormal(y.Mul(-1), b.p[BoxXYZ]),     // up
		PlaneFromPointNormal(y, b.p[BoxOrigin]),          // down
	}
}
