package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/bounds"
	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/geometry"
	"github.com/scengine/scengine/resource"
)

// Skybox is a camera-centered box entity drawn first each frame with
// depth testing and face culling off.
type Skybox struct {
	entity *Entity
	inst   *Instance
	size   float32
}

// NewSkybox builds the box mesh and its single instance.
func NewSkybox(ctx *core.Context, size float32) (*Skybox, error) {
	box := bounds.NewBox(mgl32.Vec3{-size / 2, -size / 2, -size / 2}, size, size, size)
	geom, err := geometry.NewBoxGeometry(core.Triangles, &box)
	if err != nil {
		return nil, err
	}
	mesh := geometry.NewMesh(geom)
	if err := mesh.Build(ctx, core.StaticDraw, core.RenderVBO); err != nil {
		return nil, err
	}
	entity, err := NewEntity(mesh)
	if err != nil {
		return nil, err
	}
	entity.Props = EntityProps{} // no depth, no culling
	sb := &Skybox{entity: entity, inst: NewInstance(), size: size}
	return sb, nil
}

func (sb *Skybox) Entity() *Entity    { return sb.entity }
func (sb *Skybox) Instance() *Instance { return sb.inst }

// SetTexture installs the sky texture resource.
func (sb *Skybox) SetTexture(h *resource.Handle) {
	sb.entity.Textures = []*resource.Handle{h}
}

// follow recenters the box on the camera and refreshes the instance
// matrix.
func (sb *Skybox) follow(cam *Camera) {
	p := cam.Position()
	sb.inst.Node().SetLocal(mgl32.Translate3D(p.X(), p.Y(), p.Z()))
	sb.inst.ginst.Matrix = *sb.inst.Node().Final()
}

// render draws the skybox with its states forced off.
func (sb *Skybox) render(ctx *core.Context, cam *Camera) {
	dev := ctx.Device()
	dev.EnableDepthTest(false)
	dev.EnableCullFace(false)
	sb.entity.igroup.Render(ctx, cam, []*GeometryInstance{&sb.inst.ginst})
	dev.EnableDepthTest(true)
	dev.EnableCullFace(true)
}
