package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scengine/scengine/core"
)

func groupWithInstances(t *testing.T, ctx *core.Context, n int) *InstanceGroup {
	t.Helper()
	e := testEntity(t, ctx)
	g := e.InstanceGroup()
	for i := 0; i < n; i++ {
		gi := NewGeometryInstance()
		gi.Matrix = mgl32.Translate3D(float32(i)*2, 0, 0)
		g.AddInstance(gi)
	}
	return g
}

func TestSimpleInstancingDrawsPerInstance(t *testing.T) {
	ctx := testContext()
	dev := ctx.Device().(*core.NullDevice)
	g := groupWithInstances(t, ctx, 3)

	var handed []mgl32.Mat4
	g.SetMatrixFunc(func(ctx *core.Context, m mgl32.Mat4) {
		handed = append(handed, m)
	})

	cam := testCamera()
	cam.Update()
	g.Render(ctx, cam, nil)

	assert.Equal(t, 3, dev.DrawCalls)
	require.Len(t, handed, 3)
	assert.Equal(t, mgl32.Translate3D(2, 0, 0), handed[1])
}

func TestPseudoInstancingDrawsPerInstance(t *testing.T) {
	ctx := testContext()
	dev := ctx.Device().(*core.NullDevice)
	g := groupWithInstances(t, ctx, 4)
	g.SetMode(PseudoInstancing)

	cam := testCamera()
	cam.Update()
	g.Render(ctx, cam, nil)
	assert.Equal(t, 4, dev.DrawCalls)
}

func TestHardwareInstancingSingleDraw(t *testing.T) {
	ctx := testContext()
	dev := ctx.Device().(*core.NullDevice)
	g := groupWithInstances(t, ctx, 16)
	g.SetMode(HardwareInstancing)

	cam := testCamera()
	cam.Update()
	g.Render(ctx, cam, nil)
	assert.Equal(t, 1, dev.DrawCalls, "hardware path batches into one instanced draw")

	// steady-state frame reuses the instance buffer
	g.Render(ctx, cam, nil)
	assert.Equal(t, 2, dev.DrawCalls)
}

func TestInstanceGroupMembership(t *testing.T) {
	ctx := testContext()
	g := groupWithInstances(t, ctx, 2)
	gi := g.Instances()[0]
	require.Same(t, g, gi.Group())

	g.RemoveInstance(gi)
	assert.Nil(t, gi.Group())
	assert.Len(t, g.Instances(), 1)
}

func TestRenderSubsetOnly(t *testing.T) {
	ctx := testContext()
	dev := ctx.Device().(*core.NullDevice)
	g := groupWithInstances(t, ctx, 5)

	cam := testCamera()
	cam.Update()
	subset := g.Instances()[:2]
	g.Render(ctx, cam, subset)
	assert.Equal(t, 2, dev.DrawCalls)
}
