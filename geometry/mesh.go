package geometry

import (
	"fmt"

	"github.com/scengine/scengine/core"
)

// Mesh is a geometry bound to GPU storage. Building registers the mesh as
// a user of every geometry array, so array edits marked through
// Geometry.Modified become buffer segment updates on the next
// Geometry.Update.
type Mesh struct {
	geom  *Geometry
	vb    *core.VertexBuffer
	ib    *core.IndexBuffer
	ctx   *core.Context
	built bool
}

func NewMesh(g *Geometry) *Mesh {
	return &Mesh{geom: g}
}

func (m *Mesh) Geometry() *Geometry            { return m.geom }
func (m *Mesh) VertexBuffer() *core.VertexBuffer { return m.vb }
func (m *Mesh) IndexBuffer() *core.IndexBuffer   { return m.ib }
func (m *Mesh) Built() bool                      { return m.built }

// Build packs every interleave root into its own buffer segment, uploads
// the whole thing and wires the update path.
func (m *Mesh) Build(ctx *core.Context, usage core.BufferUsage, mode core.RenderMode) error {
	if m.built {
		return fmt.Errorf("mesh already built: %w", core.ErrInvalidOperation)
	}
	m.ctx = ctx
	m.vb = core.NewVertexBuffer()
	for _, a := range m.geom.Arrays() {
		if a.Root() != a {
			continue
		}
		d := core.NewVertexBufferData(a.Bytes())
		d.AddArray(a.VertexArray(), 0)
		a.AddUser(m.arrayUpdated, d)
		for _, c := range a.Children() {
			d.AddArray(c.VertexArray(), c.VertexArray().Offset)
			c.AddUser(m.arrayUpdated, d)
		}
		if err := m.vb.AddData(d); err != nil {
			return err
		}
	}
	m.vb.SetNumVertices(int32(m.geom.NumVertices()))
	if err := m.vb.Build(ctx, usage, mode); err != nil {
		return err
	}
	if ia := m.geom.IndexArray(); ia != nil {
		m.ib = core.NewIndexBuffer(ia, int32(m.geom.NumIndices()))
		if err := m.ib.Build(ctx, usage); err != nil {
			m.vb.Delete(ctx)
			return err
		}
	}
	m.built = true
	return nil
}

// arrayUpdated translates a modified vertex range into a modified buffer
// segment range.
func (m *Mesh) arrayUpdated(a *Array, arg any) {
	d := arg.(*core.VertexBufferData)
	rng := a.ModifiedRange()
	if err := d.Modified(m.ctx, &rng); err != nil {
		m.ctx.Logger().Errorf("mesh array update: %v", err)
	}
}

// Update propagates pending geometry edits into the buffers.
func (m *Mesh) Update() {
	m.geom.Update()
}

// Render draws the mesh with its own vertex setup.
func (m *Mesh) Render(ctx *core.Context) {
	m.vb.Use(ctx)
	if m.ib != nil {
		m.ib.Use(ctx)
		m.ib.Render(ctx, m.geom.PrimitiveType())
	} else {
		m.vb.Render(ctx, m.geom.PrimitiveType())
	}
	m.vb.Unuse(ctx)
}

// RenderInstanced draws the mesh ninst times.
func (m *Mesh) RenderInstanced(ctx *core.Context, ninst int32) {
	m.vb.Use(ctx)
	if m.ib != nil {
		m.ib.Use(ctx)
		m.ib.RenderInstanced(ctx, m.geom.PrimitiveType(), ninst)
	} else {
		m.vb.RenderInstanced(ctx, m.geom.PrimitiveType(), ninst)
	}
	m.vb.Unuse(ctx)
}

// Delete releases the GPU objects and unregisters the update users.
func (m *Mesh) Delete(ctx *core.Context) {
	if !m.built {
		return
	}
	for _, a := range m.geom.Arrays() {
		for _, d := range m.vb.Data() {
			a.RemoveUser(d)
		}
	}
	m.vb.Delete(ctx)
	if m.ib != nil {
		m.ib.Delete(ctx)
	}
	m.built = false
}
