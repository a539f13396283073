package core

// BufferID and VertexArrayID are opaque handles owned by the Device.
type (
	BufferID      uint32
	VertexArrayID uint32
)

// BufferTarget selects which binding point a buffer attaches to.
type BufferTarget uint32

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// BufferUsage is the expected update pattern of a buffer, passed through
// to the backend at allocation time.
type BufferUsage uint32

const (
	StaticDraw BufferUsage = iota
	DynamicDraw
	StreamDraw
	StaticCopy
	DynamicCopy
	StreamCopy
)

// MapAccess is a bitfield of mapping flags.
type MapAccess uint32

const (
	MapRead MapAccess = 1 << iota
	MapWrite
	// MapFlushExplicit requires the caller to flush written sub-ranges
	// through FlushMappedRange before unmapping.
	MapFlushExplicit
)

// Primitive is the assembly mode of a draw call.
type Primitive uint32

const (
	Points Primitive = iota
	Lines
	Triangles
	TriangleStrip
	TriangleFan
)

// ScalarType is the component type of a vertex or index stream.
type ScalarType uint32

const (
	Int8 ScalarType = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
)

// Size returns the byte size of one scalar.
func (t ScalarType) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	default:
		return 4
	}
}

// Device is the opaque GPU collaborator. The scene core drives it from a
// single render goroutine; implementations do not need to be safe for
// concurrent use. All slices passed in are read before the call returns
// unless the method documents otherwise.
type Device interface {
	CreateBuffer() (BufferID, error)
	DeleteBuffer(id BufferID)
	BindBuffer(target BufferTarget, id BufferID)
	// BufferData allocates size bytes of storage for the buffer bound to
	// target and uploads data when non-nil.
	BufferData(target BufferTarget, size int, data []byte, usage BufferUsage)
	BufferSubData(target BufferTarget, offset int, data []byte)
	// MapBuffer maps the whole buffer bound to target. The returned slice
	// stays valid until UnmapBuffer.
	MapBuffer(target BufferTarget, access MapAccess) ([]byte, error)
	MapBufferRange(target BufferTarget, offset, length int, access MapAccess) ([]byte, error)
	// FlushMappedRange takes offsets relative to the mapped range.
	FlushMappedRange(target BufferTarget, offset, length int)
	UnmapBuffer(target BufferTarget) error

	CreateVertexArray() (VertexArrayID, error)
	DeleteVertexArray(id VertexArrayID)
	BindVertexArray(id VertexArrayID)

	// VertexAttribPointer sources the attribute from the buffer currently
	// bound to ArrayBuffer at the given byte offset.
	VertexAttribPointer(index uint32, components int32, typ ScalarType, normalized bool, stride int32, offset int)
	// VertexAttribPointerData sources the attribute from client memory.
	// The slice must stay valid until the draw call that consumes it.
	VertexAttribPointerData(index uint32, components int32, typ ScalarType, normalized bool, stride int32, data []byte)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	VertexAttribDivisor(index, divisor uint32)
	// VertexAttrib4f sets the constant value of a disabled attribute slot.
	VertexAttrib4f(index uint32, x, y, z, w float32)

	// Framebuffer and fixed state, driven by the scene orchestrator.
	SetViewport(x, y, w, h int32)
	SetClearColor(r, g, b, a float32)
	SetClearDepth(d float32)
	Clear(color, depth bool)
	EnableDepthTest(enabled bool)
	EnableCullFace(enabled bool)

	DrawArrays(prim Primitive, first, count int32)
	DrawArraysInstanced(prim Primitive, first, count, primcount int32)
	// DrawElements sources indices from the buffer bound to
	// ElementArrayBuffer at the given byte offset.
	DrawElements(prim Primitive, count int32, typ ScalarType, offset int)
	// DrawElementsData sources indices from client memory.
	DrawElementsData(prim Primitive, count int32, typ ScalarType, data []byte)
	DrawElementsInstanced(prim Primitive, count int32, typ ScalarType, offset int, primcount int32)
}
