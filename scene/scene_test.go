package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scengine/scengine/bounds"
	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/geometry"
)

func testContext() *core.Context {
	return core.NewContext(core.NewNullDevice(), core.NewNopLogger())
}

// testEntity builds a unit-box entity on the null device.
func testEntity(t *testing.T, ctx *core.Context) *Entity {
	t.Helper()
	box := bounds.NewBox(mgl32.Vec3{-0.5, -2, -0.5}, 1, 4, 1)
	geom, err := geometry.NewBoxGeometry(core.Triangles, &box)
	require.NoError(t, err)
	mesh := geometry.NewMesh(geom)
	require.NoError(t, mesh.Build(ctx, core.StaticDraw, core.RenderVBO))
	e, err := NewEntity(mesh)
	require.NoError(t, err)
	return e
}

func testCamera() *Camera {
	cam := NewCamera()
	cam.SetPerspective(mgl32.DegToRad(90), 1, 1, 500)
	cam.SetViewport(0, 0, 1024, 768)
	return cam
}

func TestSceneFrameFlow(t *testing.T) {
	ctx := testContext()
	dev := ctx.Device().(*core.NullDevice)
	sc, err := NewScene(ctx, DefaultSettings())
	require.NoError(t, err)

	e := testEntity(t, ctx)
	g := NewEntityGroup(e)

	visible := NewInstance()
	visible.Node().SetLocal(mgl32.Translate3D(0, 0, -50))
	hidden := NewInstance()
	hidden.Node().SetLocal(mgl32.Translate3D(5000, 0, -50))
	require.NoError(t, g.AddInstance(visible))
	require.NoError(t, g.AddInstance(hidden))
	sc.AddEntityGroup(g)

	cam := testCamera()

	sc.Update(cam, nil, 0)
	assert.True(t, visible.Selected())
	assert.False(t, hidden.Selected())

	sc.Render(nil)
	assert.Equal(t, 1, dev.DrawCalls, "only the visible instance draws")

	// octree placement followed the node matrices
	require.NotNil(t, visible.Element().Octree())
	assert.Equal(t, mgl32.Vec3{0, 0, -50}, visible.Element().Sphere.Center)
}

func TestSceneUpdateGuard(t *testing.T) {
	ctx := testContext()
	sc, err := NewScene(ctx, DefaultSettings())
	require.NoError(t, err)
	cam := testCamera()

	e := testEntity(t, ctx)
	g := NewEntityGroup(e)
	inst := NewInstance()
	inst.Node().SetLocal(mgl32.Translate3D(0, 0, -10))
	require.NoError(t, g.AddInstance(inst))
	sc.AddEntityGroup(g)

	sc.Update(cam, nil, 0)
	moved := mgl32.Translate3D(0, 0, -20)
	inst.Node().SetLocal(moved)
	inst.Node().HasMoved()

	// second Update before Render is swallowed by the guard
	sc.Update(cam, nil, 0)
	assert.NotEqual(t, moved, inst.GeometryInstance().Matrix)

	sc.Render(nil)
	sc.Update(cam, nil, 0)
	assert.Equal(t, moved, inst.GeometryInstance().Matrix)
}

func TestSceneMovedInstanceReinserts(t *testing.T) {
	ctx := testContext()
	sc, err := NewScene(ctx, DefaultSettings())
	require.NoError(t, err)
	cam := testCamera()

	e := testEntity(t, ctx)
	g := NewEntityGroup(e)
	inst := NewInstance()
	require.NoError(t, g.AddInstance(inst))
	sc.AddEntityGroup(g)
	sc.Update(cam, nil, 0)
	sc.Render(nil)

	first := inst.Element().Octree()
	require.NotNil(t, first)

	inst.Node().SetLocal(mgl32.Translate3D(6000, 6000, 6000))
	inst.Node().HasMoved()
	sc.Update(cam, nil, 0)

	node := inst.Element().Octree()
	require.NotNil(t, node)
	assert.NotSame(t, first, node)
	assert.Equal(t, bounds.In,
		bounds.AABBWithSphere(node.Box().Min(), node.Box().Max(), &inst.Element().Sphere))
}

func TestSceneLightSelection(t *testing.T) {
	ctx := testContext()
	sc, err := NewScene(ctx, DefaultSettings())
	require.NoError(t, err)
	sc.MaxLights = 2
	cam := testCamera()

	near := NewLight()
	near.Node().SetLocal(mgl32.Translate3D(0, 0, -20))

	far := NewLight()
	far.SetRadius(5)
	far.Node().SetLocal(mgl32.Translate3D(4000, 0, 0))

	off := NewLight()
	off.Activate(false)

	sun := NewLight()
	sun.Infinite = true

	sc.AddLight(near)
	sc.AddLight(far)
	sc.AddLight(off)
	sc.AddLight(sun)

	sc.Update(cam, nil, 0)
	lights := sc.ActiveLights()
	require.Len(t, lights, 2, "capped at MaxLights, skipping unreachable and disabled")
	assert.Same(t, near, lights[0])
	assert.Same(t, sun, lights[1])
}

func TestSceneSkybox(t *testing.T) {
	ctx := testContext()
	dev := ctx.Device().(*core.NullDevice)
	sc, err := NewScene(ctx, DefaultSettings())
	require.NoError(t, err)
	cam := testCamera()
	cam.LookAt(mgl32.Vec3{10, 20, 30}, mgl32.Vec3{10, 20, 0}, mgl32.Vec3{0, 1, 0})
	cam.Node().UpdateRootRecursive()

	sb, err := NewSkybox(ctx, 100)
	require.NoError(t, err)
	sc.SetSkybox(sb)

	sc.Update(cam, nil, 0)
	sc.Render(nil)
	assert.Equal(t, 1, dev.DrawCalls)

	// the box followed the camera
	center := sb.Instance().GeometryInstance().Matrix.Col(3).Vec3()
	assert.InDelta(t, 10, center.X(), 1e-4)
	assert.InDelta(t, 20, center.Y(), 1e-4)
	assert.InDelta(t, 30, center.Z(), 1e-4)
}

func TestSettingsLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"octree_size: 1024\nloose_ratio: 0.25\nmax_lights: 4\nlod: true\n"), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, float32(1024), s.OctreeSize)
	assert.Equal(t, float32(0.25), s.LooseRatio)
	assert.Equal(t, 4, s.MaxLights)
	assert.True(t, s.LOD)
	// untouched keys keep their defaults
	assert.Equal(t, 3, s.OctreeDepth)

	_, err = LoadSettings(filepath.Join(dir, "absent.yaml"))
	assert.ErrorIs(t, err, core.ErrFileNotFound)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("octree_size: -5\n"), 0o644))
	_, err = LoadSettings(bad)
	assert.ErrorIs(t, err, core.ErrInvalidArg)
}
