package core

import "fmt"

// RenderMode selects the setup path a VertexBuffer takes at use time.
type RenderMode int

const (
	// RenderVertexArrays sources every attribute from client memory.
	RenderVertexArrays RenderMode = iota
	// RenderVBO binds the buffer and sets attribute pointers per use.
	RenderVBO
	// RenderVAOPerData replays one vertex array object per data segment.
	RenderVAOPerData
	// RenderUnifiedVAO replays a single object covering the whole buffer.
	RenderUnifiedVAO
)

// VertexBufferData is one buffer segment together with the vertex arrays
// interleaved inside it. The arrays' offsets are relative to the segment
// until the owning VertexBuffer is built.
type VertexBufferData struct {
	Seg    BufferSegment
	arrays []*VertexArray
	stride int32
	vao    VertexArrayID
	hasVAO bool
	built  bool
}

// NewVertexBufferData wraps the raw interleaved bytes of one segment.
func NewVertexBufferData(data []byte) *VertexBufferData {
	d := &VertexBufferData{}
	d.Seg = *NewBufferSegment(data)
	return d
}

// AddArray registers an attribute at the given byte offset inside the
// segment. The first added array's stride is the stride of the whole
// interleave group.
func (d *VertexBufferData) AddArray(va *VertexArray, offset int) {
	va.Offset = offset
	if len(d.arrays) == 0 {
		d.stride = va.Stride
	}
	d.arrays = append(d.arrays, va)
}

func (d *VertexBufferData) Arrays() []*VertexArray { return d.arrays }
func (d *VertexBufferData) Stride() int32          { return d.stride }

// Modified marks a vertex index range of the segment as changed. A nil
// range marks the whole segment.
func (d *VertexBufferData) Modified(ctx *Context, vertices *Range) error {
	if vertices == nil {
		return d.Seg.Modified(ctx, nil)
	}
	if d.stride <= 0 {
		return fmt.Errorf("vertex buffer data without stride: %w", ErrInvalidOperation)
	}
	r := Range{
		First: vertices.First * int(d.stride),
		Size:  vertices.Size * int(d.stride),
	}
	return d.Seg.Modified(ctx, &r)
}

func (d *VertexBufferData) use(ctx *Context, client bool) {
	for _, va := range d.arrays {
		va.use(ctx, client)
	}
}

// VertexBuffer owns a GPU buffer and the data segments packed into it.
type VertexBuffer struct {
	buf   Buffer
	data  []*VertexBufferData
	mode  RenderMode
	vao   VertexArrayID
	hasVAO bool
	nvert int32
	built bool
}

func NewVertexBuffer() *VertexBuffer { return &VertexBuffer{} }

func (vb *VertexBuffer) Buffer() *Buffer            { return &vb.buf }
func (vb *VertexBuffer) Data() []*VertexBufferData  { return vb.data }
func (vb *VertexBuffer) RenderMode() RenderMode     { return vb.mode }
func (vb *VertexBuffer) SetNumVertices(n int32)     { vb.nvert = n }
func (vb *VertexBuffer) NumVertices() int32         { return vb.nvert }

// AddData appends a data segment. Must happen before Build.
func (vb *VertexBuffer) AddData(d *VertexBufferData) error {
	if vb.built {
		return fmt.Errorf("vertex buffer already built: %w", ErrInvalidOperation)
	}
	if err := vb.buf.AddData(&d.Seg); err != nil {
		return err
	}
	vb.data = append(vb.data, d)
	return nil
}

// Build uploads the segments and prepares the chosen render mode. On VAO
// modes a partially failed setup releases the objects created so far and
// leaves the buffer usable in RenderVBO mode.
func (vb *VertexBuffer) Build(ctx *Context, usage BufferUsage, mode RenderMode) error {
	if err := vb.buf.Build(ctx, ArrayBuffer, usage); err != nil {
		return err
	}
	for _, d := range vb.data {
		if !d.built {
			for _, va := range d.arrays {
				va.Offset += d.Seg.first
			}
			d.built = true
		}
	}
	vb.built = true
	return vb.SetRenderMode(ctx, mode)
}

// SetRenderMode switches the setup path, creating or dropping vertex
// array objects as needed.
func (vb *VertexBuffer) SetRenderMode(ctx *Context, mode RenderMode) error {
	if !vb.built && mode != RenderVertexArrays {
		return fmt.Errorf("vertex buffer not built: %w", ErrInvalidOperation)
	}
	vb.mode = mode
	switch mode {
	case RenderVAOPerData:
		for _, d := range vb.data {
			if d.hasVAO {
				continue
			}
			id, err := ctx.BeginVertexArraySequence()
			if err != nil {
				vb.dropVAOs(ctx)
				vb.mode = RenderVBO
				return err
			}
			vb.buf.Use(ctx)
			d.use(ctx, false)
			ctx.EndVertexArraySequence()
			d.vao = id
			d.hasVAO = true
		}
	case RenderUnifiedVAO:
		if !vb.hasVAO {
			id, err := ctx.BeginVertexArraySequence()
			if err != nil {
				vb.mode = RenderVBO
				return err
			}
			vb.buf.Use(ctx)
			for _, d := range vb.data {
				d.use(ctx, false)
			}
			ctx.EndVertexArraySequence()
			vb.vao = id
			vb.hasVAO = true
		}
	}
	return nil
}

func (vb *VertexBuffer) dropVAOs(ctx *Context) {
	for _, d := range vb.data {
		if d.hasVAO {
			ctx.Device().DeleteVertexArray(d.vao)
			d.hasVAO = false
		}
	}
	if vb.hasVAO {
		ctx.Device().DeleteVertexArray(vb.vao)
		vb.hasVAO = false
	}
}

// Use sets up the vertex streams along the current render mode.
func (vb *VertexBuffer) Use(ctx *Context) {
	switch vb.mode {
	case RenderVertexArrays:
		for _, d := range vb.data {
			d.use(ctx, true)
		}
	case RenderVBO:
		vb.buf.Use(ctx)
		for _, d := range vb.data {
			d.use(ctx, false)
		}
	case RenderVAOPerData:
		for _, d := range vb.data {
			ctx.CallVertexArraySequence(d.vao)
		}
	case RenderUnifiedVAO:
		ctx.CallVertexArraySequence(vb.vao)
	}
}

// Unuse tears down what Use set up.
func (vb *VertexBuffer) Unuse(ctx *Context) {
	switch vb.mode {
	case RenderVAOPerData, RenderUnifiedVAO:
		ctx.Device().BindVertexArray(0)
	default:
		ctx.FinishVertexArrayRender()
	}
}

// Render draws the buffer's vertices.
func (vb *VertexBuffer) Render(ctx *Context, prim Primitive) {
	ctx.Render(prim, vb.nvert)
}

// RenderInstanced draws the buffer's vertices ninst times.
func (vb *VertexBuffer) RenderInstanced(ctx *Context, prim Primitive, ninst int32) {
	ctx.RenderInstanced(prim, vb.nvert, ninst)
}

// Delete releases the GPU objects. CPU data stays with the segments.
func (vb *VertexBuffer) Delete(ctx *Context) {
	vb.dropVAOs(ctx)
	vb.buf.Delete(ctx)
	vb.built = false
}

// IndexBuffer owns a GPU buffer holding one index segment.
type IndexBuffer struct {
	buf   Buffer
	seg   BufferSegment
	ia    IndexArray
	count int32
	built bool
}

// NewIndexBuffer wraps an index stream. The array's client data backs the
// GPU segment once built.
func NewIndexBuffer(ia *IndexArray, count int32) *IndexBuffer {
	ib := &IndexBuffer{ia: *ia, count: count}
	ib.seg = *NewBufferSegment(ia.Data)
	ib.buf.AddData(&ib.seg)
	return ib
}

func (ib *IndexBuffer) Buffer() *Buffer        { return &ib.buf }
func (ib *IndexBuffer) IndexArray() *IndexArray { return &ib.ia }
func (ib *IndexBuffer) Count() int32           { return ib.count }

func (ib *IndexBuffer) Build(ctx *Context, usage BufferUsage) error {
	if err := ib.buf.Build(ctx, ElementArrayBuffer, usage); err != nil {
		return err
	}
	ib.ia.Offset = ib.seg.first
	ib.ia.Data = nil
	ib.built = true
	return nil
}

// Modified marks an index range (in indices) as changed.
func (ib *IndexBuffer) Modified(ctx *Context, indices *Range) error {
	if indices == nil {
		return ib.seg.Modified(ctx, nil)
	}
	isize := ib.ia.Type.Size()
	r := Range{First: indices.First * isize, Size: indices.Size * isize}
	return ib.seg.Modified(ctx, &r)
}

func (ib *IndexBuffer) Use(ctx *Context) {
	ib.buf.Use(ctx)
}

// Render draws count indices through the bound vertex setup.
func (ib *IndexBuffer) Render(ctx *Context, prim Primitive) {
	ctx.RenderIndexed(prim, &ib.ia, ib.count)
}

func (ib *IndexBuffer) RenderInstanced(ctx *Context, prim Primitive, ninst int32) {
	ctx.RenderIndexedInstanced(prim, &ib.ia, ib.count, ninst)
}

func (ib *IndexBuffer) Delete(ctx *Context) {
	ib.buf.Delete(ctx)
	ib.built = false
}
