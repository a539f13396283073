package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scengine/scengine/bounds"
)

func TestDefaultGetLOD(t *testing.T) {
	// a large on-screen object is level 0
	assert.Equal(t, 0, DefaultGetLOD(1.0))
	assert.Equal(t, 0, DefaultGetLOD(0.5))
	// shrinking area walks down the ladder
	assert.Equal(t, 1, DefaultGetLOD(0.08))
	assert.Equal(t, 4, DefaultGetLOD(0.01))
	// degenerate projections land beyond every level
	assert.Greater(t, DefaultGetLOD(0), 1000)
}

func TestLODComputeDistanceAndArea(t *testing.T) {
	cam := NewCamera()
	cam.SetPerspective(mgl32.DegToRad(60), 1024.0/768.0, 1, 1000)
	cam.Update()

	box := bounds.NewBox(mgl32.Vec3{-0.5, -0.5, -0.5}, 1, 1, 1)
	lod := NewLevelOfDetail()
	lod.SetBoundingBox(&box)

	m := mgl32.Translate3D(0, 0, -50)
	level := lod.Compute(m, cam)

	assert.InDelta(t, 50, lod.Distance(), 1e-3)

	// unit box at 50 units under a 60 degree lens: the projected face is
	// tiny, so the selector asks for a very coarse level
	f := 1 / math32.Tan(mgl32.DegToRad(30))
	wantArea := (f / (1024.0 / 768.0)) / 50.5 * (f / 50.5)
	assert.InDelta(t, wantArea, lod.Size(), float64(wantArea*0.1))
	assert.Equal(t, int(0.4/math32.Sqrt(lod.Size())), level)
	assert.GreaterOrEqual(t, level, 3)

	// the box is restored afterwards
	assert.False(t, box.Pushed())
}

func TestDetermineLODClampsToLadder(t *testing.T) {
	ctx := testContext()
	e0, e1, e2 := testEntity(t, ctx), testEntity(t, ctx), testEntity(t, ctx)
	g := NewEntityGroup(e0, e1, e2)

	inst := NewInstance()
	require.NoError(t, g.AddInstance(inst))

	cam := NewCamera()
	cam.SetPerspective(mgl32.DegToRad(60), 1024.0/768.0, 1, 1000)
	cam.Update()

	// far away: clamped to the coarsest entity
	inst.Node().SetLocal(mgl32.Translate3D(0, 0, -50))
	inst.RefreshFromNode(nil)
	far := g.DetermineLOD(inst, cam)
	assert.Same(t, e2, far)

	// close up: the most detailed entity
	inst.Node().SetLocal(mgl32.Translate3D(0, 0, -2))
	inst.RefreshFromNode(nil)
	near := g.DetermineLOD(inst, cam)
	assert.Same(t, e0, near)
}

func TestCustomGetLODFunc(t *testing.T) {
	lod := NewLevelOfDetail()
	box := bounds.NewBox(mgl32.Vec3{-1, -1, -1}, 2, 2, 2)
	lod.SetBoundingBox(&box)
	lod.SetGetLODFunc(func(area float32) int { return 7 })

	cam := NewCamera()
	cam.SetPerspective(mgl32.DegToRad(60), 1, 1, 100)
	cam.Update()
	assert.Equal(t, 7, lod.Compute(mgl32.Translate3D(0, 0, -10), cam))

	lod.SetGetLODFunc(nil)
	assert.NotEqual(t, 7, lod.Compute(mgl32.Translate3D(0, 0, -10), cam))
}
