package anim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quatEqual(t *testing.T, want, got mgl32.Quat, eps float64) {
	t.Helper()
	// up to sign: q and -q are the same rotation
	if want.Dot(got) < 0 {
		got = mgl32.Quat{W: -got.W, V: got.V.Mul(-1)}
	}
	assert.InDelta(t, want.W, got.W, eps)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want.V[i], got.V[i], eps)
	}
}

func TestSortJoints(t *testing.T) {
	s := NewSkeleton()
	// joint 0's parent sits after it
	s.SetJoints([]Joint{
		{Parent: 2, Position: mgl32.Vec3{1, 0, 0}, Orientation: mgl32.QuatIdent()},
		{Parent: 0, Position: mgl32.Vec3{2, 0, 0}, Orientation: mgl32.QuatIdent()},
		{Parent: -1, Position: mgl32.Vec3{3, 0, 0}, Orientation: mgl32.QuatIdent()},
	})
	s.SortJoints()

	for i, j := range s.Joints() {
		assert.Less(t, j.Parent, i, "parent %d of joint %d must precede it", j.Parent, i)
	}
	// the root kept its payload
	assert.Equal(t, mgl32.Vec3{3, 0, 0}, s.Joints()[0].Position)
}

func TestAbsoluteRelativeInvolution(t *testing.T) {
	s := NewSkeleton()
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	s.SetJoints([]Joint{
		{Parent: -1, Position: mgl32.Vec3{1, 2, 3}, Orientation: rot},
		{Parent: 0, Position: mgl32.Vec3{0, 1, 0}, Orientation: mgl32.QuatIdent()},
		{Parent: 1, Position: mgl32.Vec3{2, 0, 0}, Orientation: rot},
	})
	original := make([]Joint, 3)
	copy(original, s.Joints())

	s.ComputeAbsoluteJoints()
	// child 1 hangs off the rotated root
	want := mgl32.Vec3{1, 3, 3}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], s.Joints()[1].Position[i], 1e-5)
	}

	s.ComputeRelativeJoints()
	for i := range original {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, original[i].Position[c], s.Joints()[i].Position[c], 1e-5)
		}
		quatEqual(t, original[i].Orientation, s.Joints()[i].Orientation, 1e-5)
	}
}

func TestQuaternionSLERPLaws(t *testing.T) {
	q1 := mgl32.QuatRotate(0, mgl32.Vec3{0, 1, 0})
	q2 := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	k1 := NewSkeleton()
	k1.SetJoints([]Joint{{Parent: -1, Orientation: q1}})
	k2 := NewSkeleton()
	k2.SetJoints([]Joint{{Parent: -1, Orientation: q2}})
	r := NewSkeleton()

	InterpolateSLERP(k1, k2, 0, r)
	quatEqual(t, q1, r.Joints()[0].Orientation, 1e-5)

	InterpolateSLERP(k1, k2, 1, r)
	quatEqual(t, q2, r.Joints()[0].Orientation, 1e-5)

	InterpolateSLERP(k1, k2, 0.5, r)
	want := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})
	quatEqual(t, want, r.Joints()[0].Orientation, 1e-5)

	// identical endpoints are a fixed point
	InterpolateSLERP(k2, k2, 0.3, r)
	quatEqual(t, q2, r.Joints()[0].Orientation, 1e-5)
}

func TestInterpolateLinearPositions(t *testing.T) {
	k1 := NewSkeleton()
	k1.SetJoints([]Joint{{Parent: -1, Position: mgl32.Vec3{0, 0, 0}, Orientation: mgl32.QuatIdent()}})
	k2 := NewSkeleton()
	k2.SetJoints([]Joint{{Parent: -1, Position: mgl32.Vec3{10, 0, 0}, Orientation: mgl32.QuatIdent()}})
	r := NewSkeleton()

	InterpolateLinear(k1, k2, 0.25, r)
	assert.InDelta(t, 2.5, r.Joints()[0].Position.X(), 1e-6)
}

func TestInterpolateMatrices(t *testing.T) {
	k1 := NewSkeletonWithJoints(1)
	k2 := NewSkeletonWithJoints(1)
	k1.Matrices(0)[0] = mgl32.Translate3D(0, 0, 0)
	k2.Matrices(0)[0] = mgl32.Translate3D(4, 0, 0)
	r := NewSkeletonWithJoints(1)

	InterpolateMatrices(k1, k2, 0.5, r)
	assert.InDelta(t, 2, r.Matrices(0)[0].At(0, 3), 1e-6)
}

func TestAnimationStepping(t *testing.T) {
	keys := make([]*Skeleton, 4)
	for i := range keys {
		keys[i] = NewSkeletonWithJoints(1)
	}
	a := NewAnimation()
	require.NoError(t, a.SetKeys(keys, 10)) // 10 frames per second
	a.Start()

	assert.Equal(t, 0, a.Current())
	assert.Equal(t, 1, a.Next())

	a.Animate(0.05) // half a frame
	assert.InDelta(t, 0.5, a.Weight(), 1e-5)
	assert.Equal(t, 0, a.Current())

	a.Animate(0.1) // 1.5 frames in: current advances once
	assert.Equal(t, 1, a.Current())
	assert.Equal(t, 2, a.Next())
	assert.InDelta(t, 0.5, a.Weight(), 1e-4)

	// wrap: 4 keys at 10 Hz wrap every 0.4 seconds
	a.Start()
	a.Animate(0.42)
	assert.Equal(t, 0, a.Current())
	assert.Equal(t, 1, a.Next())
	assert.GreaterOrEqual(t, a.Weight(), float32(0))
	assert.Less(t, a.Weight(), float32(1))
}

func TestAnimationWeightStaysBounded(t *testing.T) {
	keys := []*Skeleton{NewSkeletonWithJoints(1), NewSkeletonWithJoints(1), NewSkeletonWithJoints(1)}
	a := NewAnimation()
	require.NoError(t, a.SetKeys(keys, 24))
	a.Start()
	for i := 0; i < 1000; i++ {
		a.Animate(0.013)
		assert.GreaterOrEqual(t, a.Weight(), float32(0))
		assert.Less(t, a.Weight(), float32(1))
		assert.GreaterOrEqual(t, a.Current(), 0)
		assert.Less(t, a.Current(), 3)
		assert.Less(t, a.Next(), 3)
	}
}

func TestAnimationRejectsEmptyKeys(t *testing.T) {
	a := NewAnimation()
	assert.Error(t, a.SetKeys(nil, 24))
	assert.Error(t, a.SetKeys([]*Skeleton{NewSkeleton()}, 0))
}

func TestComputeW(t *testing.T) {
	// a unit quaternion persisted as xyz comes back with |q| = 1
	q := ComputeW(mgl32.Vec3{0.5, 0.5, 0.5})
	assert.InDelta(t, 1.0, q.Len(), 1e-5)
	// xyz at unit length leaves no room for w
	q = ComputeW(mgl32.Vec3{1, 0, 0})
	assert.Equal(t, float32(0), q.W)
}
