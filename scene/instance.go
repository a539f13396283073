package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/geometry"
)

// InstancingMode selects how an InstanceGroup replays its mesh.
type InstancingMode int

const (
	// SimpleInstancing draws once per instance, handing each model
	// matrix to the client hook.
	SimpleInstancing InstancingMode = iota
	// PseudoInstancing loads the modelview once and ships each
	// instance's composed matrix rows through constant vertex
	// attributes between draws.
	PseudoInstancing
	// HardwareInstancing uploads per-instance matrix rows into an
	// attribute buffer stepped with a divisor and issues one instanced
	// draw.
	HardwareInstancing
)

// GeometryInstance carries the final model matrix of one drawn copy.
type GeometryInstance struct {
	Matrix mgl32.Mat4
	Data   any
	group  *InstanceGroup
}

func NewGeometryInstance() *GeometryInstance {
	return &GeometryInstance{Matrix: mgl32.Ident4()}
}

func (gi *GeometryInstance) Group() *InstanceGroup { return gi.group }

// MatrixFunc hands a matrix to the client, which binds it wherever its
// shader expects it. Used by the simple path, where the engine does not
// own the transport.
type MatrixFunc func(ctx *core.Context, m mgl32.Mat4)

// InstanceGroup renders one mesh many times under one of three
// strategies. The three attribute slots carry a row-major 3x4 matrix on
// the pseudo and hardware paths.
type InstanceGroup struct {
	mesh      *geometry.Mesh
	instances []*GeometryInstance
	mode      InstancingMode

	// attribute locations for the three matrix rows
	attrib1, attrib2, attrib3 uint32

	setMatrix MatrixFunc

	// hardware path state
	hwData    []float32
	hwBuf     *core.Buffer
	hwSeg     *core.BufferSegment
	hwCap     int
}

const hwFloatsPerInstance = 12 // three vec4 rows

func NewInstanceGroup(mesh *geometry.Mesh) *InstanceGroup {
	return &InstanceGroup{
		mesh:    mesh,
		attrib1: 12,
		attrib2: 13,
		attrib3: 14,
	}
}

func (g *InstanceGroup) Mesh() *geometry.Mesh           { return g.mesh }
func (g *InstanceGroup) Instances() []*GeometryInstance { return g.instances }
func (g *InstanceGroup) Mode() InstancingMode           { return g.mode }
func (g *InstanceGroup) SetMode(m InstancingMode)       { g.mode = m }

// SetAttribIndices picks the generic attribute locations carrying the
// matrix rows.
func (g *InstanceGroup) SetAttribIndices(a1, a2, a3 uint32) {
	g.attrib1, g.attrib2, g.attrib3 = a1, a2, a3
}

// SetMatrixFunc installs the simple-path matrix transport.
func (g *InstanceGroup) SetMatrixFunc(f MatrixFunc) { g.setMatrix = f }

// AddInstance links gi into the group.
func (g *InstanceGroup) AddInstance(gi *GeometryInstance) {
	gi.group = g
	g.instances = append(g.instances, gi)
}

// RemoveInstance unlinks gi.
func (g *InstanceGroup) RemoveInstance(gi *GeometryInstance) {
	for i, other := range g.instances {
		if other == gi {
			g.instances = append(g.instances[:i], g.instances[i+1:]...)
			break
		}
	}
	gi.group = nil
}

// Render draws the listed instances; nil draws every instance in the
// group.
func (g *InstanceGroup) Render(ctx *core.Context, cam *Camera, instances []*GeometryInstance) {
	if instances == nil {
		instances = g.instances
	}
	if len(instances) == 0 {
		return
	}
	switch g.mode {
	case PseudoInstancing:
		g.renderPseudo(ctx, cam, instances)
	case HardwareInstancing:
		g.renderHardware(ctx, cam, instances)
	default:
		g.renderSimple(ctx, instances)
	}
}

func (g *InstanceGroup) renderSimple(ctx *core.Context, instances []*GeometryInstance) {
	for _, gi := range instances {
		if g.setMatrix != nil {
			g.setMatrix(ctx, gi.Matrix)
		}
		g.mesh.Render(ctx)
	}
}

func (g *InstanceGroup) renderPseudo(ctx *core.Context, cam *Camera, instances []*GeometryInstance) {
	dev := ctx.Device()
	mv := cam.View()
	for _, gi := range instances {
		final := mv.Mul4(gi.Matrix)
		shipRow(dev, g.attrib1, final.Row(0))
		shipRow(dev, g.attrib2, final.Row(1))
		shipRow(dev, g.attrib3, final.Row(2))
		g.mesh.Render(ctx)
	}
}

func shipRow(dev core.Device, attrib uint32, row mgl32.Vec4) {
	dev.VertexAttrib4f(attrib, row.X(), row.Y(), row.Z(), row.W())
}

func (g *InstanceGroup) renderHardware(ctx *core.Context, cam *Camera, instances []*GeometryInstance) {
	if err := g.uploadInstanceData(ctx, instances); err != nil {
		ctx.Logger().Errorf("hardware instancing fell back to pseudo: %v", err)
		g.renderPseudo(ctx, cam, instances)
		return
	}
	dev := ctx.Device()
	g.hwBuf.Use(ctx)
	stride := int32(hwFloatsPerInstance * 4)
	attribs := [3]uint32{g.attrib1, g.attrib2, g.attrib3}
	for i, a := range attribs {
		dev.EnableVertexAttribArray(a)
		dev.VertexAttribPointer(a, 4, core.Float32, false, stride, i*16)
		dev.VertexAttribDivisor(a, 1)
	}
	g.mesh.RenderInstanced(ctx, int32(len(instances)))
	for _, a := range attribs {
		dev.VertexAttribDivisor(a, 0)
		dev.DisableVertexAttribArray(a)
	}
}

// uploadInstanceData packs each instance's first three matrix rows and
// pushes them through the buffer broker, rebuilding storage only when the
// instance count outgrows it.
func (g *InstanceGroup) uploadInstanceData(ctx *core.Context, instances []*GeometryInstance) error {
	need := len(instances) * hwFloatsPerInstance
	rebuild := g.hwBuf == nil || need > g.hwCap
	if rebuild {
		if g.hwBuf != nil {
			g.hwBuf.Delete(ctx)
		}
		g.hwCap = need
		g.hwData = make([]float32, need)
	}
	for i, gi := range instances {
		base := i * hwFloatsPerInstance
		for r := 0; r < 3; r++ {
			row := gi.Matrix.Row(r)
			copy(g.hwData[base+r*4:], []float32{row.X(), row.Y(), row.Z(), row.W()})
		}
	}
	if rebuild {
		g.hwBuf = core.NewBuffer()
		g.hwSeg = g.hwBuf.AddNewData(core.Float32Bytes(g.hwData))
		return g.hwBuf.Build(ctx, core.ArrayBuffer, core.StreamDraw)
	}
	if err := g.hwSeg.Modified(ctx, &core.Range{First: 0, Size: need * 4}); err != nil {
		return err
	}
	return g.hwBuf.Update(ctx)
}
