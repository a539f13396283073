package anim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/geometry"
)

func skinnedTriangle(t *testing.T) (*AnimatedMesh, *Skeleton) {
	t.Helper()
	g := geometry.NewGeometry(core.Triangles)
	require.NoError(t, g.SetData(make([]float32, 9), nil, nil, []uint16{0, 1, 2}, 3))

	skel := NewSkeleton()
	skel.SetJoints([]Joint{
		{Parent: -1, Position: mgl32.Vec3{0, 0, 0}, Orientation: mgl32.QuatIdent()},
		{Parent: 0, Position: mgl32.Vec3{0, 5, 0}, Orientation: mgl32.QuatIdent()},
	})

	vertices := []VertexWeights{
		{First: 0, Count: 1},
		{First: 1, Count: 1},
		{First: 2, Count: 2},
	}
	weights := []Weight{
		{Joint: 0, Weight: 1, Position: mgl32.Vec3{1, 0, 0}},
		{Joint: 1, Weight: 1, Position: mgl32.Vec3{0, 1, 0}},
		{Joint: 0, Weight: 0.5, Position: mgl32.Vec3{0, 0, 2}},
		{Joint: 1, Weight: 0.5, Position: mgl32.Vec3{0, 0, 2}},
	}
	am, err := NewAnimatedMesh(g, skel, vertices, weights)
	require.NoError(t, err)
	return am, skel
}

func TestApplySkeletonSkinsPositions(t *testing.T) {
	am, skel := skinnedTriangle(t)
	require.NoError(t, am.ApplySkeleton(skel))

	pos := am.Geometry().Positions().Data()
	// vertex 0 rides joint 0 at the origin
	assert.Equal(t, []float32{1, 0, 0}, pos[0:3])
	// vertex 1 rides joint 1 at (0,5,0)
	assert.Equal(t, []float32{0, 6, 0}, pos[3:6])
	// vertex 2 blends both joints evenly
	assert.InDelta(t, 0, pos[6], 1e-6)
	assert.InDelta(t, 2.5, pos[7], 1e-6)
	assert.InDelta(t, 2, pos[8], 1e-6)

	// skinning marks the position stream for the update protocol
	assert.Len(t, am.Geometry().ModifiedArrays(), 1)
}

func TestApplySkeletonRejectsBadJoint(t *testing.T) {
	am, _ := skinnedTriangle(t)
	tiny := NewSkeletonWithJoints(1)
	err := am.ApplySkeleton(tiny)
	assert.ErrorIs(t, err, core.ErrInvalidArg)
}

func TestAnimatedMeshVertexCountMismatch(t *testing.T) {
	g := geometry.NewGeometry(core.Triangles)
	require.NoError(t, g.SetData(make([]float32, 9), nil, nil, nil, 3))
	_, err := NewAnimatedMesh(g, NewSkeleton(), []VertexWeights{{0, 1}}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidSize)
}

func TestAnimateDrivesSkinning(t *testing.T) {
	am, skel := skinnedTriangle(t)

	// two keys: bind pose and joint 1 lifted higher
	k1 := NewSkeleton()
	k1.SetJoints(append([]Joint(nil), skel.Joints()...))
	k2 := NewSkeleton()
	lifted := append([]Joint(nil), skel.Joints()...)
	lifted[1].Position = mgl32.Vec3{0, 10, 0}
	k2.SetJoints(lifted)

	a := NewAnimation()
	require.NoError(t, a.SetKeys([]*Skeleton{k1, k2}, 1))
	a.Start()

	require.NoError(t, am.Animate(a, 0.5)) // halfway to the lifted key
	pos := am.Geometry().Positions().Data()
	assert.InDelta(t, 8.5, pos[4], 1e-5, "vertex 1 follows the blended joint")
}
