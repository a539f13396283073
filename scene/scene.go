package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/resource"
)

// Resource group names of the three fixed groups a scene owns.
const (
	ShaderGroup   = "shaders"
	MaterialGroup = "materials"
	TextureGroup  = "textures0"
)

// StateFlags toggle the per-frame behaviors.
type StateFlags struct {
	ClearColor     bool
	ClearDepth     bool
	FrustumCulling bool
	Lighting       bool
	LOD            bool
}

// EntityHook runs right before an entity's instances are drawn, after its
// pipeline properties are applied. Clients bind the entity's shader,
// material and textures here; shader handling itself stays outside the
// scene core.
type EntityHook func(ctx *core.Context, e *Entity)

// Scene owns the node root, the octree, the resource groups, the entity
// groups, the lights and the per-frame update → cull → LOD → render
// pipeline.
type Scene struct {
	ctx    *core.Context
	root   *Node
	octree *Octree

	shaders   *resource.Group
	materials *resource.Group
	textures  *resource.Group

	groups []*EntityGroup
	lights []*Light
	skybox *Skybox

	camera *Camera

	ClearColor [4]float32
	ClearDepth float32
	MaxLights  int
	States     StateFlags

	// RenderTarget and CubeFace are opaque client state recorded for the
	// frame; binding targets is outside the scene core.
	RenderTarget any
	CubeFace     int

	BeginEntity EntityHook
	EndEntity   EntityHook

	activeLights []*Light
	updated      bool
}

// NewScene assembles a scene from the settings: the node root, an
// octree of the configured size, depth and looseness centered at the
// origin, and
// the three resource groups.
func NewScene(ctx *core.Context, s Settings) (*Scene, error) {
	sc := &Scene{
		ctx:        ctx,
		root:       NewTreeNode(),
		shaders:    resource.NewGroup(ShaderGroup),
		materials:  resource.NewGroup(MaterialGroup),
		textures:   resource.NewGroup(TextureGroup),
		ClearColor: s.ClearColor,
		ClearDepth: s.ClearDepth,
		MaxLights:  s.MaxLights,
		States: StateFlags{
			ClearColor:     true,
			ClearDepth:     true,
			FrustumCulling: s.FrustumCulling,
			Lighting:       s.Lighting,
			LOD:            s.LOD,
		},
	}
	sc.octree = NewOctreeCentered(mgl32.Vec3{}, s.OctreeSize, s.OctreeSize, s.OctreeSize)
	if s.OctreeDepth > 0 {
		if err := sc.octree.MakeChildrenRecursive(s.LooseOctree, s.LooseRatio, s.OctreeDepth); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func (sc *Scene) Context() *core.Context { return sc.ctx }
func (sc *Scene) RootNode() *Node        { return sc.root }
func (sc *Scene) Octree() *Octree        { return sc.octree }
func (sc *Scene) Camera() *Camera        { return sc.camera }

func (sc *Scene) Shaders() *resource.Group   { return sc.shaders }
func (sc *Scene) Materials() *resource.Group { return sc.materials }
func (sc *Scene) Textures() *resource.Group  { return sc.textures }

func (sc *Scene) EntityGroups() []*EntityGroup { return sc.groups }
func (sc *Scene) Lights() []*Light             { return sc.lights }

// ActiveLights is the per-frame light selection, capped at MaxLights.
func (sc *Scene) ActiveLights() []*Light { return sc.activeLights }

// AddEntityGroup registers a group and inserts its instances into the
// octree.
func (sc *Scene) AddEntityGroup(g *EntityGroup) {
	sc.groups = append(sc.groups, g)
	for _, inst := range g.Instances() {
		sc.AddInstance(inst)
	}
}

// AddInstance parents the instance node under the scene root and places
// its element into the octree.
func (sc *Scene) AddInstance(inst *Instance) {
	if inst.OwnsNode() {
		sc.root.AddChild(inst.Node())
	}
	if inst.Element().Octree() == nil {
		sc.octree.InsertElement(inst.Element())
	}
}

// RemoveInstance detaches the instance from the scene.
func (sc *Scene) RemoveInstance(inst *Instance) {
	RemoveElement(inst.Element())
	if inst.OwnsNode() {
		inst.Node().Detach()
	}
}

func (sc *Scene) AddLight(l *Light) {
	sc.lights = append(sc.lights, l)
	sc.root.AddChild(l.Node())
}

func (sc *Scene) SetSkybox(sb *Skybox) { sc.skybox = sb }
func (sc *Scene) Skybox() *Skybox      { return sc.skybox }

// Update runs the frame preparation in its fixed order: node walk, camera
// matrices, octree marking, frustum culling, LOD. A guard keeps a second
// Update before Render from repeating the work.
func (sc *Scene) Update(cam *Camera, target any, face int) {
	if sc.updated {
		return
	}
	sc.camera = cam
	sc.RenderTarget = target
	sc.CubeFace = face

	sc.root.UpdateRootRecursive()
	cam.Node().UpdateRootRecursive()
	cam.Update()
	sc.octree.MarkVisibles(cam.Frustum())

	for _, g := range sc.groups {
		if sc.States.FrustumCulling {
			g.Select(cam, sc.States.LOD)
		} else {
			g.SelectAll(sc.States.LOD, cam)
		}
	}
	sc.selectLights(cam)
	sc.updated = true
}

func (sc *Scene) selectLights(cam *Camera) {
	sc.activeLights = sc.activeLights[:0]
	if !sc.States.Lighting {
		return
	}
	for _, l := range sc.lights {
		if !l.Activated() || !l.Reaches(cam.Frustum()) {
			continue
		}
		if len(sc.activeLights) >= sc.MaxLights {
			break
		}
		sc.activeLights = append(sc.activeLights, l)
	}
}

// Render draws the prepared frame: clears, skybox, entity passes. The
// camera defaults to the one Update ran with.
func (sc *Scene) Render(cam *Camera) {
	if cam == nil {
		cam = sc.camera
	}
	if cam == nil {
		sc.ctx.Logger().Errorf("scene render without a camera")
		return
	}
	dev := sc.ctx.Device()

	vp := cam.GetViewport()
	if vp.Width > 0 && vp.Height > 0 {
		dev.SetViewport(vp.X, vp.Y, vp.Width, vp.Height)
	}
	if sc.States.ClearColor || sc.States.ClearDepth {
		dev.SetClearColor(sc.ClearColor[0], sc.ClearColor[1], sc.ClearColor[2], sc.ClearColor[3])
		dev.SetClearDepth(sc.ClearDepth)
		dev.Clear(sc.States.ClearColor, sc.States.ClearDepth)
	}

	// pending geometry edits reach the GPU before anything binds buffers
	sc.ctx.UpdateModifiedBuffers()

	if sc.skybox != nil {
		sc.skybox.follow(cam)
		sc.skybox.render(sc.ctx, cam)
	}

	for _, g := range sc.groups {
		for _, e := range g.Entities() {
			if len(e.toRender) == 0 {
				continue
			}
			sc.applyProps(e.Props)
			if sc.BeginEntity != nil {
				sc.BeginEntity(sc.ctx, e)
			}
			e.igroup.Render(sc.ctx, cam, e.toRender)
			if sc.EndEntity != nil {
				sc.EndEntity(sc.ctx, e)
			}
		}
	}
	sc.applyProps(DefaultEntityProps())
	sc.updated = false
}

func (sc *Scene) applyProps(p EntityProps) {
	dev := sc.ctx.Device()
	dev.EnableDepthTest(p.DepthTest)
	dev.EnableCullFace(p.CullFace)
}

// ClearFrame drops the per-frame selections without rendering; useful
// when a prepared frame is abandoned.
func (sc *Scene) ClearFrame() {
	for _, g := range sc.groups {
		for _, e := range g.Entities() {
			e.toRender = e.toRender[:0]
		}
	}
	sc.updated = false
}
