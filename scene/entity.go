package scene

import (
	"fmt"

	"github.com/scengine/scengine/bounds"
	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/geometry"
	"github.com/scengine/scengine/resource"
)

// EntityProps are the fixed pipeline states an entity renders under.
type EntityProps struct {
	CullFace  bool
	CullBack  bool // false culls front faces
	DepthTest bool
	AlphaTest bool
}

// DefaultEntityProps is the state most entities want.
func DefaultEntityProps() EntityProps {
	return EntityProps{CullFace: true, CullBack: true, DepthTest: true}
}

// Entity is one LOD level of a renderable bundle: mesh, resources,
// pipeline properties and an instance group replaying the mesh.
type Entity struct {
	igroup *InstanceGroup
	mesh   *geometry.Mesh

	box    bounds.Box
	sphere bounds.Sphere

	Textures []*resource.Handle
	Shader   *resource.Handle
	Material *resource.Handle

	Props EntityProps

	group *EntityGroup

	// render set of the current frame
	toRender []*GeometryInstance
}

// NewEntity bundles a built mesh. Bounding volumes come from the mesh
// geometry.
func NewEntity(mesh *geometry.Mesh) (*Entity, error) {
	e := &Entity{
		mesh:  mesh,
		Props: DefaultEntityProps(),
	}
	e.igroup = NewInstanceGroup(mesh)
	box, err := mesh.Geometry().GenerateBoundingBox()
	if err != nil {
		return nil, fmt.Errorf("entity bounds: %w", err)
	}
	sphere, err := mesh.Geometry().GenerateBoundingSphere()
	if err != nil {
		return nil, fmt.Errorf("entity bounds: %w", err)
	}
	e.box = *box
	e.sphere = *sphere
	return e, nil
}

func (e *Entity) InstanceGroup() *InstanceGroup { return e.igroup }
func (e *Entity) Mesh() *geometry.Mesh          { return e.mesh }
func (e *Entity) Group() *EntityGroup           { return e.group }
func (e *Entity) Box() *bounds.Box              { return &e.box }
func (e *Entity) Sphere() *bounds.Sphere        { return &e.sphere }

// AddTexture appends a texture resource handle.
func (e *Entity) AddTexture(h *resource.Handle) {
	e.Textures = append(e.Textures, h)
}

// InFrustum tests the instance's culling sphere against the camera.
func (e *Entity) InFrustum(inst *Instance, cam *Camera) bool {
	return cam.Frustum().SphereIn(&inst.element.Sphere) != bounds.Out
}

// Instance binds a node, an octree element and a LOD selector to an
// entity group; the rendered unit.
type Instance struct {
	node     *Node
	ownsNode bool
	element  OctreeElement
	ginst    GeometryInstance
	lod      *LevelOfDetail
	group    *EntityGroup
	selected bool
	removed  bool
}

// NewInstance creates an instance with its own tree node. The node's
// moved callback keeps the culling sphere and the octree placement in
// step with the transform.
func NewInstance() *Instance {
	inst := &Instance{
		lod:      NewLevelOfDetail(),
		ownsNode: true,
	}
	inst.node = NewTreeNode()
	inst.node.Data = inst
	inst.element.Owner = inst
	inst.ginst = *NewGeometryInstance()
	inst.node.SetOnMovedCallback(instanceMoved, inst)
	return inst
}

// NewInstanceWithNode shares an existing node (a "true node") instead of
// owning one; the caller keeps control of the node's callbacks.
func NewInstanceWithNode(n *Node) *Instance {
	inst := &Instance{
		lod:  NewLevelOfDetail(),
		node: n,
	}
	inst.element.Owner = inst
	inst.ginst = *NewGeometryInstance()
	return inst
}

func instanceMoved(n *Node, arg any) {
	inst := arg.(*Instance)
	inst.RefreshFromNode(nil)
}

// RefreshFromNode pulls the node's final matrix into the geometry
// instance and the culling sphere, re-inserting the octree element when
// it lives in a tree. The logger may be nil.
func (inst *Instance) RefreshFromNode(log core.Logger) {
	final := *inst.node.Final()
	inst.ginst.Matrix = final
	inst.element.Sphere.Center = final.Col(3).Vec3()
	if inst.element.Octree() != nil {
		ReinsertElement(log, &inst.element)
	}
}

func (inst *Instance) Node() *Node               { return inst.node }
func (inst *Instance) OwnsNode() bool            { return inst.ownsNode }
func (inst *Instance) Element() *OctreeElement   { return &inst.element }
func (inst *Instance) GeometryInstance() *GeometryInstance { return &inst.ginst }
func (inst *Instance) LOD() *LevelOfDetail       { return inst.lod }
func (inst *Instance) Group() *EntityGroup       { return inst.group }
func (inst *Instance) Selected() bool            { return inst.selected }
func (inst *Instance) Removed() bool             { return inst.removed }

// EntityGroup ties the LOD ladder of one logical object to its shared
// instances; entity index is the LOD level.
type EntityGroup struct {
	entities  []*Entity
	instances []*Instance
}

func NewEntityGroup(entities ...*Entity) *EntityGroup {
	g := &EntityGroup{}
	for _, e := range entities {
		g.AddEntity(e)
	}
	return g
}

func (g *EntityGroup) Entities() []*Entity   { return g.entities }
func (g *EntityGroup) Instances() []*Instance { return g.instances }

// AddEntity appends the next (coarser) LOD level.
func (g *EntityGroup) AddEntity(e *Entity) {
	e.group = g
	g.entities = append(g.entities, e)
}

// AddInstance links an instance into the group and sizes its culling
// sphere and LOD box from the most detailed entity.
func (g *EntityGroup) AddInstance(inst *Instance) error {
	if len(g.entities) == 0 {
		return fmt.Errorf("entity group without entities: %w", core.ErrInvalidOperation)
	}
	inst.group = g
	inst.removed = false
	lead := g.entities[0]
	inst.element.Sphere.Radius = lead.sphere.Radius
	inst.lod.SetBoundingBox(&lead.box)
	g.instances = append(g.instances, inst)
	return nil
}

// RemoveInstance marks the instance removed and unlinks it.
func (g *EntityGroup) RemoveInstance(inst *Instance) {
	for i, other := range g.instances {
		if other == inst {
			g.instances = append(g.instances[:i], g.instances[i+1:]...)
			break
		}
	}
	RemoveElement(&inst.element)
	inst.group = nil
	inst.removed = true
}

// DetermineLOD computes the instance's level from the camera and assigns
// it to the matching entity, clamped to the ladder.
func (g *EntityGroup) DetermineLOD(inst *Instance, cam *Camera) *Entity {
	lod := inst.lod.Compute(*inst.node.Final(), cam)
	if lod >= len(g.entities) {
		lod = len(g.entities) - 1
	}
	if lod < 0 {
		lod = 0
	}
	return g.entities[lod]
}

// Select culls every instance against the camera, assigns survivors to a
// LOD entity (the most detailed one when lod is false) and fills the
// entities' render sets.
func (g *EntityGroup) Select(cam *Camera, lod bool) {
	for _, e := range g.entities {
		e.toRender = e.toRender[:0]
	}
	for _, inst := range g.instances {
		inst.selected = false
		if len(g.entities) == 0 {
			continue
		}
		lead := g.entities[0]
		if !lead.InFrustum(inst, cam) {
			continue
		}
		inst.selected = true
		e := lead
		if lod {
			e = g.DetermineLOD(inst, cam)
		}
		e.toRender = append(e.toRender, &inst.ginst)
	}
}

// SelectAll fills the render sets without culling, with optional LOD.
func (g *EntityGroup) SelectAll(lod bool, cam *Camera) {
	for _, e := range g.entities {
		e.toRender = e.toRender[:0]
	}
	if len(g.entities) == 0 {
		return
	}
	for _, inst := range g.instances {
		inst.selected = true
		e := g.entities[0]
		if lod {
			e = g.DetermineLOD(inst, cam)
		}
		e.toRender = append(e.toRender, &inst.ginst)
	}
}

// Render draws every entity owning selected instances.
func (g *EntityGroup) Render(ctx *core.Context, cam *Camera) {
	for _, e := range g.entities {
		if len(e.toRender) == 0 {
			continue
		}
		e.igroup.Render(ctx, cam, e.toRender)
	}
}
