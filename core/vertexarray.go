package core

import "fmt"

// AttribKind discriminates vertex attribute kinds. TexCoord and Generic
// carry a unit/slot number in Attrib.Unit.
type AttribKind int

const (
	PositionAttrib AttribKind = iota
	NormalAttrib
	ColorAttrib
	TexCoordAttrib
	GenericAttrib
)

// Attrib is a tagged vertex attribute kind.
type Attrib struct {
	Kind AttribKind
	Unit uint32
}

func Position() Attrib { return Attrib{Kind: PositionAttrib} }
func Normal() Attrib   { return Attrib{Kind: NormalAttrib} }
func Color() Attrib    { return Attrib{Kind: ColorAttrib} }

// TexCoord returns the attribute for texture unit n (0..7).
func TexCoord(n uint32) Attrib { return Attrib{Kind: TexCoordAttrib, Unit: n} }

// Generic returns the attribute bound to the raw location n. Instancing
// uses high locations so they never collide with the named kinds.
func Generic(n uint32) Attrib { return Attrib{Kind: GenericAttrib, Unit: n} }

// Tangent and Binormal are the conventional texture-unit aliases.
func Tangent() Attrib  { return TexCoord(1) }
func Binormal() Attrib { return TexCoord(2) }

// Location maps the attribute to its vertex pipeline slot: position 0,
// normal 1, color 2, texcoord n at 3+n, generic n at n verbatim.
func (a Attrib) Location() uint32 {
	switch a.Kind {
	case PositionAttrib:
		return 0
	case NormalAttrib:
		return 1
	case ColorAttrib:
		return 2
	case TexCoordAttrib:
		return 3 + a.Unit
	default:
		return a.Unit
	}
}

func (a Attrib) String() string {
	switch a.Kind {
	case PositionAttrib:
		return "POSITION"
	case NormalAttrib:
		return "NORMAL"
	case ColorAttrib:
		return "COLOR"
	case TexCoordAttrib:
		return fmt.Sprintf("TEXCOORD%d", a.Unit)
	default:
		return fmt.Sprintf("ATTRIB%d", a.Unit)
	}
}

// VertexArray binds one attribute to a stream: client memory while the
// geometry is CPU-resident, a buffer offset once it went through a
// VertexBuffer build.
type VertexArray struct {
	Attrib     Attrib
	Type       ScalarType
	Components int32
	Stride     int32
	Normalized bool

	// Data is the client stream; nil when the array sources a buffer.
	Data []byte
	// Offset is the byte offset inside the bound buffer.
	Offset int

	enabled bool
}

func NewVertexArray(attrib Attrib, typ ScalarType, components int32) *VertexArray {
	return &VertexArray{Attrib: attrib, Type: typ, Components: components}
}

// Use enables the array's pipeline slot and records it on the context so a
// later FinishVertexArrayRender can disable everything enabled this frame.
// Client memory is preferred when present.
func (va *VertexArray) Use(ctx *Context) {
	va.use(ctx, va.Data != nil)
}

func (va *VertexArray) use(ctx *Context, client bool) {
	dev := ctx.Device()
	loc := va.Attrib.Location()
	dev.EnableVertexAttribArray(loc)
	if client {
		dev.VertexAttribPointerData(loc, va.Components, va.Type, va.Normalized, va.Stride, va.Data)
	} else {
		dev.VertexAttribPointer(loc, va.Components, va.Type, va.Normalized, va.Stride, va.Offset)
	}
	if !va.enabled {
		va.enabled = true
		ctx.inUse = append(ctx.inUse, va)
	}
}

// FinishVertexArrayRender disables every slot enabled since the previous
// call. Arrays recorded while a VAO sequence was open are replayed by the
// VAO instead and are not tracked here.
func (c *Context) FinishVertexArrayRender() {
	for _, va := range c.inUse {
		c.dev.DisableVertexAttribArray(va.Attrib.Location())
		va.enabled = false
	}
	c.inUse = c.inUse[:0]
}

// BeginVertexArraySequence creates a vertex array object and starts
// recording Use calls into it.
func (c *Context) BeginVertexArraySequence() (VertexArrayID, error) {
	if c.recording {
		return 0, fmt.Errorf("vertex array sequence already open: %w", ErrInvalidOperation)
	}
	id, err := c.dev.CreateVertexArray()
	if err != nil {
		return 0, fmt.Errorf("vertex array sequence: %w", err)
	}
	c.dev.BindVertexArray(id)
	c.recording = true
	return id, nil
}

// EndVertexArraySequence stops recording.
func (c *Context) EndVertexArraySequence() {
	if !c.recording {
		return
	}
	c.dev.BindVertexArray(0)
	c.recording = false
	// the recorded enables belong to the VAO, not to this frame
	for _, va := range c.inUse {
		va.enabled = false
	}
	c.inUse = c.inUse[:0]
}

// CallVertexArraySequence replays a recorded sequence in O(1).
func (c *Context) CallVertexArraySequence(id VertexArrayID) {
	c.dev.BindVertexArray(id)
}

// IndexArray describes an indexed-draw stream.
type IndexArray struct {
	Type ScalarType
	// Data is the client stream; nil when indices live in a buffer.
	Data []byte
	// Offset is the byte offset inside the bound index buffer.
	Offset int
}

func NewIndexArrayUint16(indices []uint16) *IndexArray {
	return &IndexArray{Type: Uint16, Data: Uint16Bytes(indices)}
}

func NewIndexArrayUint32(indices []uint32) *IndexArray {
	return &IndexArray{Type: Uint32, Data: Uint32Bytes(indices)}
}

// Render draws non-indexed vertices.
func (c *Context) Render(prim Primitive, nvert int32) {
	c.dev.DrawArrays(prim, 0, nvert)
}

// RenderInstanced draws non-indexed vertices ninst times.
func (c *Context) RenderInstanced(prim Primitive, nvert, ninst int32) {
	c.dev.DrawArraysInstanced(prim, 0, nvert, ninst)
}

// RenderIndexed draws nidx indices from ia.
func (c *Context) RenderIndexed(prim Primitive, ia *IndexArray, nidx int32) {
	if ia.Data != nil {
		c.dev.DrawElementsData(prim, nidx, ia.Type, ia.Data)
	} else {
		c.dev.DrawElements(prim, nidx, ia.Type, ia.Offset)
	}
}

// RenderIndexedInstanced draws nidx indices from ia ninst times. Client
// memory indices are not supported on the instanced path.
func (c *Context) RenderIndexedInstanced(prim Primitive, ia *IndexArray, nidx, ninst int32) {
	c.dev.DrawElementsInstanced(prim, nidx, ia.Type, ia.Offset, ninst)
}
