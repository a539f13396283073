package anim

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/scengine/scengine/core"
)

func sqrt32(v float32) float32 { return math32.Sqrt(v) }

// Matrix slots. A skeleton carries up to MaxMatrixSlots parallel matrix
// arrays so the transform stages (relative, absolute, inverse bind,
// final) coexist without reallocating.
const MaxMatrixSlots = 4

// Skeleton is a joints array plus its matrix slots.
type Skeleton struct {
	joints []Joint
	mats   [MaxMatrixSlots][]mgl32.Mat4
}

func NewSkeleton() *Skeleton { return &Skeleton{} }

// NewSkeletonWithJoints allocates n identity joints.
func NewSkeletonWithJoints(n int) *Skeleton {
	s := &Skeleton{joints: make([]Joint, n)}
	for i := range s.joints {
		s.joints[i] = NewJoint()
	}
	return s
}

func (s *Skeleton) Joints() []Joint      { return s.joints }
func (s *Skeleton) NumJoints() int       { return len(s.joints) }
func (s *Skeleton) SetJoints(js []Joint) { s.joints = js }

// Matrices returns the slot's matrix array, allocating it on first use.
func (s *Skeleton) Matrices(slot int) []mgl32.Mat4 {
	if len(s.mats[slot]) != len(s.joints) {
		s.mats[slot] = make([]mgl32.Mat4, len(s.joints))
		for i := range s.mats[slot] {
			s.mats[slot][i] = mgl32.Ident4()
		}
	}
	return s.mats[slot]
}

// ComputeMatrices fills the slot from the joints.
func (s *Skeleton) ComputeMatrices(slot int) {
	mats := s.Matrices(slot)
	for i := range s.joints {
		mats[i] = s.joints[i].Matrix()
	}
}

// SortJoints reorders the joints so every parent precedes its children,
// swapping each out-of-order child with its parent until the invariant
// holds. Parent indices are remapped along the way.
func (s *Skeleton) SortJoints() {
	for {
		swapped := false
		for i := range s.joints {
			p := s.joints[i].Parent
			if p > i {
				s.swapJoints(i, p)
				swapped = true
			}
		}
		if !swapped {
			return
		}
	}
}

func (s *Skeleton) swapJoints(a, b int) {
	s.joints[a], s.joints[b] = s.joints[b], s.joints[a]
	for i := range s.joints {
		switch s.joints[i].Parent {
		case a:
			s.joints[i].Parent = b
		case b:
			s.joints[i].Parent = a
		}
	}
}

// ComputeAbsoluteJoints rewrites the joints in place from parent-relative
// to absolute. Requires the sort invariant.
func (s *Skeleton) ComputeAbsoluteJoints() {
	for i := range s.joints {
		p := s.joints[i].Parent
		if p < 0 {
			continue
		}
		parent := &s.joints[p]
		s.joints[i].Position = parent.Position.Add(
			parent.Orientation.Rotate(s.joints[i].Position))
		s.joints[i].Orientation = parent.Orientation.Mul(
			s.joints[i].Orientation).Normalize()
	}
}

// ComputeRelativeJoints is the involution partner: it rewrites absolute
// joints back to parent-relative. Children are visited before their
// parents lose their absolute values.
func (s *Skeleton) ComputeRelativeJoints() {
	for i := len(s.joints) - 1; i >= 0; i-- {
		p := s.joints[i].Parent
		if p < 0 {
			continue
		}
		parent := &s.joints[p]
		inv := parent.Orientation.Conjugate()
		s.joints[i].Position = inv.Rotate(
			s.joints[i].Position.Sub(parent.Position))
		s.joints[i].Orientation = inv.Mul(s.joints[i].Orientation).Normalize()
	}
}

// AbsoluteMatrices composes relative matrices into absolute ones:
// dst[i] = dst[parent] × src[i], src[i] for roots. src and dst may be the
// same slice.
func (s *Skeleton) AbsoluteMatrices(src, dst []mgl32.Mat4) error {
	if len(src) < len(s.joints) || len(dst) < len(s.joints) {
		return fmt.Errorf("skeleton matrix arrays too short: %w", core.ErrInvalidSize)
	}
	for i := range s.joints {
		p := s.joints[i].Parent
		if p >= 0 {
			dst[i] = dst[p].Mul4(src[i])
		} else {
			dst[i] = src[i]
		}
	}
	return nil
}

// MulMatrices writes a[i] × b[i] into dst.
func MulMatrices(a, b, dst []mgl32.Mat4) {
	for i := range dst {
		dst[i] = a[i].Mul4(b[i])
	}
}

// MulCopyMatrices composes b into a in place.
func MulCopyMatrices(a, b []mgl32.Mat4) {
	for i := range a {
		a[i] = a[i].Mul4(b[i])
	}
}

// InverseMatrices inverts per-joint matrices into dst.
func InverseMatrices(src, dst []mgl32.Mat4) {
	for i := range src {
		dst[i] = src[i].Inv()
	}
}

// Interpolator blends two keyframe skeletons at weight w into r.
type Interpolator func(k1, k2 *Skeleton, w float32, r *Skeleton)

func lerp3(a, b mgl32.Vec3, w float32) mgl32.Vec3 {
	return a.Mul(1 - w).Add(b.Mul(w))
}

// acute flips b when the quaternions sit in opposite hemispheres so the
// blend takes the short arc.
func acute(a, b mgl32.Quat) mgl32.Quat {
	if a.Dot(b) < 0 {
		return mgl32.Quat{W: -b.W, V: b.V.Mul(-1)}
	}
	return b
}

// InterpolateLinear lerps positions and takes the normalized linear blend
// of orientations.
func InterpolateLinear(k1, k2 *Skeleton, w float32, r *Skeleton) {
	r.ensureJoints(k1)
	for i := range r.joints {
		j1, j2 := &k1.joints[i], &k2.joints[i]
		r.joints[i].Parent = j1.Parent
		r.joints[i].Position = lerp3(j1.Position, j2.Position, w)
		r.joints[i].Orientation = mgl32.QuatNlerp(j1.Orientation,
			acute(j1.Orientation, j2.Orientation), w)
	}
}

// InterpolateSLERP lerps positions and takes the spherical blend of
// orientations.
func InterpolateSLERP(k1, k2 *Skeleton, w float32, r *Skeleton) {
	r.ensureJoints(k1)
	for i := range r.joints {
		j1, j2 := &k1.joints[i], &k2.joints[i]
		r.joints[i].Parent = j1.Parent
		r.joints[i].Position = lerp3(j1.Position, j2.Position, w)
		r.joints[i].Orientation = mgl32.QuatSlerp(j1.Orientation,
			acute(j1.Orientation, j2.Orientation), w)
	}
}

// InterpolateMatrices blends the slot-0 matrix arrays componentwise,
// without touching the joints.
func InterpolateMatrices(k1, k2 *Skeleton, w float32, r *Skeleton) {
	r.ensureJoints(k1)
	m1 := k1.Matrices(0)
	m2 := k2.Matrices(0)
	dst := r.Matrices(0)
	for i := range dst {
		dst[i] = m1[i].Mul(1 - w).Add(m2[i].Mul(w))
	}
}

// InterpolateIndexed blends only the listed joints, with the linear
// orientation blend.
func InterpolateIndexed(k1, k2 *Skeleton, w float32, indices []int, r *Skeleton) {
	r.ensureJoints(k1)
	for _, i := range indices {
		j1, j2 := &k1.joints[i], &k2.joints[i]
		r.joints[i].Parent = j1.Parent
		r.joints[i].Position = lerp3(j1.Position, j2.Position, w)
		r.joints[i].Orientation = mgl32.QuatNlerp(j1.Orientation,
			acute(j1.Orientation, j2.Orientation), w)
	}
}

func (s *Skeleton) ensureJoints(like *Skeleton) {
	if len(s.joints) != len(like.joints) {
		s.joints = make([]Joint, len(like.joints))
		copy(s.joints, like.joints)
	}
}
