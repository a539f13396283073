// Package gldevice implements the core.Device contract over OpenGL 3.3
// core through go-gl. One Device per GL context, driven from the thread
// owning that context.
package gldevice

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/scengine/scengine/core"
)

// Device is the OpenGL realization of the scene core's GPU collaborator.
type Device struct {
	sizes map[core.BufferID]int
	bound map[core.BufferTarget]core.BufferID
}

// New initializes the GL bindings for the current context.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %v: %w", err, core.ErrDevice)
	}
	return &Device{
		sizes: make(map[core.BufferID]int),
		bound: make(map[core.BufferTarget]core.BufferID),
	}, nil
}

func glTarget(t core.BufferTarget) uint32 {
	if t == core.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glUsage(u core.BufferUsage) uint32 {
	switch u {
	case core.DynamicDraw:
		return gl.DYNAMIC_DRAW
	case core.StreamDraw:
		return gl.STREAM_DRAW
	case core.StaticCopy:
		return gl.STATIC_COPY
	case core.DynamicCopy:
		return gl.DYNAMIC_COPY
	case core.StreamCopy:
		return gl.STREAM_COPY
	default:
		return gl.STATIC_DRAW
	}
}

func glScalar(t core.ScalarType) uint32 {
	switch t {
	case core.Int8:
		return gl.BYTE
	case core.Uint8:
		return gl.UNSIGNED_BYTE
	case core.Int16:
		return gl.SHORT
	case core.Uint16:
		return gl.UNSIGNED_SHORT
	case core.Int32:
		return gl.INT
	case core.Uint32:
		return gl.UNSIGNED_INT
	default:
		return gl.FLOAT
	}
}

func glPrimitive(p core.Primitive) uint32 {
	switch p {
	case core.Points:
		return gl.POINTS
	case core.Lines:
		return gl.LINES
	case core.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case core.TriangleFan:
		return gl.TRIANGLE_FAN
	default:
		return gl.TRIANGLES
	}
}

func (d *Device) CreateBuffer() (core.BufferID, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("glGenBuffers: %w", core.ErrDevice)
	}
	return core.BufferID(id), nil
}

func (d *Device) DeleteBuffer(id core.BufferID) {
	gid := uint32(id)
	gl.DeleteBuffers(1, &gid)
	delete(d.sizes, id)
}

func (d *Device) BindBuffer(target core.BufferTarget, id core.BufferID) {
	gl.BindBuffer(glTarget(target), uint32(id))
	d.bound[target] = id
}

func (d *Device) BufferData(target core.BufferTarget, size int, data []byte, usage core.BufferUsage) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(glTarget(target), size, ptr, glUsage(usage))
	d.sizes[d.bound[target]] = size
}

func (d *Device) BufferSubData(target core.BufferTarget, offset int, data []byte) {
	gl.BufferSubData(glTarget(target), offset, len(data), gl.Ptr(data))
}

func glAccess(access core.MapAccess) uint32 {
	switch {
	case access&core.MapRead != 0 && access&core.MapWrite != 0:
		return gl.READ_WRITE
	case access&core.MapWrite != 0:
		return gl.WRITE_ONLY
	default:
		return gl.READ_ONLY
	}
}

func (d *Device) MapBuffer(target core.BufferTarget, access core.MapAccess) ([]byte, error) {
	ptr := gl.MapBuffer(glTarget(target), glAccess(access))
	if ptr == nil {
		return nil, fmt.Errorf("glMapBuffer (0x%04x): %w", gl.GetError(), core.ErrDevice)
	}
	size := d.sizes[d.bound[target]]
	return unsafe.Slice((*byte)(ptr), size), nil
}

func (d *Device) MapBufferRange(target core.BufferTarget, offset, length int, access core.MapAccess) ([]byte, error) {
	var bits uint32
	if access&core.MapRead != 0 {
		bits |= gl.MAP_READ_BIT
	}
	if access&core.MapWrite != 0 {
		bits |= gl.MAP_WRITE_BIT
	}
	if access&core.MapFlushExplicit != 0 {
		bits |= gl.MAP_FLUSH_EXPLICIT_BIT
	}
	ptr := gl.MapBufferRange(glTarget(target), offset, length, bits)
	if ptr == nil {
		return nil, fmt.Errorf("glMapBufferRange (0x%04x): %w", gl.GetError(), core.ErrDevice)
	}
	return unsafe.Slice((*byte)(ptr), length), nil
}

func (d *Device) FlushMappedRange(target core.BufferTarget, offset, length int) {
	gl.FlushMappedBufferRange(glTarget(target), offset, length)
}

func (d *Device) UnmapBuffer(target core.BufferTarget) error {
	if !gl.UnmapBuffer(glTarget(target)) {
		return fmt.Errorf("glUnmapBuffer: data store lost: %w", core.ErrDevice)
	}
	return nil
}

func (d *Device) CreateVertexArray() (core.VertexArrayID, error) {
	var id uint32
	gl.GenVertexArrays(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("glGenVertexArrays: %w", core.ErrDevice)
	}
	return core.VertexArrayID(id), nil
}

func (d *Device) DeleteVertexArray(id core.VertexArrayID) {
	gid := uint32(id)
	gl.DeleteVertexArrays(1, &gid)
}

func (d *Device) BindVertexArray(id core.VertexArrayID) {
	gl.BindVertexArray(uint32(id))
}

func (d *Device) VertexAttribPointer(index uint32, components int32, typ core.ScalarType, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, components, glScalar(typ), normalized, stride, uintptr(offset))
}

func (d *Device) VertexAttribPointerData(index uint32, components int32, typ core.ScalarType, normalized bool, stride int32, data []byte) {
	gl.VertexAttribPointer(index, components, glScalar(typ), normalized, stride, gl.Ptr(data))
}

func (d *Device) EnableVertexAttribArray(index uint32)  { gl.EnableVertexAttribArray(index) }
func (d *Device) DisableVertexAttribArray(index uint32) { gl.DisableVertexAttribArray(index) }

func (d *Device) VertexAttribDivisor(index, divisor uint32) {
	gl.VertexAttribDivisor(index, divisor)
}

func (d *Device) VertexAttrib4f(index uint32, x, y, z, w float32) {
	gl.VertexAttrib4f(index, x, y, z, w)
}

func (d *Device) SetViewport(x, y, w, h int32) { gl.Viewport(x, y, w, h) }

func (d *Device) SetClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (d *Device) SetClearDepth(depth float32)      { gl.ClearDepth(float64(depth)) }

func (d *Device) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (d *Device) EnableDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (d *Device) EnableCullFace(enabled bool) {
	if enabled {
		gl.Enable(gl.CULL_FACE)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
}

func (d *Device) DrawArrays(prim core.Primitive, first, count int32) {
	gl.DrawArrays(glPrimitive(prim), first, count)
}

func (d *Device) DrawArraysInstanced(prim core.Primitive, first, count, primcount int32) {
	gl.DrawArraysInstanced(glPrimitive(prim), first, count, primcount)
}

func (d *Device) DrawElements(prim core.Primitive, count int32, typ core.ScalarType, offset int) {
	gl.DrawElementsWithOffset(glPrimitive(prim), count, glScalar(typ), uintptr(offset))
}

func (d *Device) DrawElementsData(prim core.Primitive, count int32, typ core.ScalarType, data []byte) {
	gl.DrawElements(glPrimitive(prim), count, glScalar(typ), gl.Ptr(data))
}

func (d *Device) DrawElementsInstanced(prim core.Primitive, count int32, typ core.ScalarType, offset int, primcount int32) {
	gl.DrawElementsInstanced(glPrimitive(prim), count, glScalar(typ), gl.PtrOffset(offset), primcount)
}
