package core

import "fmt"

// NullDevice is a headless Device keeping buffer storage in process
// memory. It backs tests and tools that exercise the scene core without a
// GPU; draw calls are counted and otherwise dropped.
type NullDevice struct {
	nextBuffer BufferID
	nextVAO    VertexArrayID
	buffers    map[BufferID][]byte
	bound      map[BufferTarget]BufferID
	mapped     map[BufferTarget][]byte

	DrawCalls int
}

func NewNullDevice() *NullDevice {
	return &NullDevice{
		buffers: make(map[BufferID][]byte),
		bound:   make(map[BufferTarget]BufferID),
		mapped:  make(map[BufferTarget][]byte),
	}
}

// BufferBytes exposes the stored bytes of a buffer for inspection.
func (d *NullDevice) BufferBytes(id BufferID) []byte { return d.buffers[id] }

func (d *NullDevice) CreateBuffer() (BufferID, error) {
	d.nextBuffer++
	d.buffers[d.nextBuffer] = nil
	return d.nextBuffer, nil
}

func (d *NullDevice) DeleteBuffer(id BufferID) { delete(d.buffers, id) }

func (d *NullDevice) BindBuffer(target BufferTarget, id BufferID) { d.bound[target] = id }

func (d *NullDevice) BufferData(target BufferTarget, size int, data []byte, usage BufferUsage) {
	buf := make([]byte, size)
	copy(buf, data)
	d.buffers[d.bound[target]] = buf
}

func (d *NullDevice) BufferSubData(target BufferTarget, offset int, data []byte) {
	copy(d.buffers[d.bound[target]][offset:], data)
}

func (d *NullDevice) MapBuffer(target BufferTarget, access MapAccess) ([]byte, error) {
	id := d.bound[target]
	if _, ok := d.buffers[id]; !ok {
		return nil, fmt.Errorf("no buffer bound to target %d: %w", target, ErrDevice)
	}
	d.mapped[target] = d.buffers[id]
	return d.mapped[target], nil
}

func (d *NullDevice) MapBufferRange(target BufferTarget, offset, length int, access MapAccess) ([]byte, error) {
	id := d.bound[target]
	store, ok := d.buffers[id]
	if !ok || offset < 0 || offset+length > len(store) {
		return nil, fmt.Errorf("map range [%d,%d) of buffer %d: %w", offset, offset+length, id, ErrDevice)
	}
	d.mapped[target] = store[offset : offset+length]
	return d.mapped[target], nil
}

func (d *NullDevice) FlushMappedRange(target BufferTarget, offset, length int) {}

func (d *NullDevice) UnmapBuffer(target BufferTarget) error {
	delete(d.mapped, target)
	return nil
}

func (d *NullDevice) CreateVertexArray() (VertexArrayID, error) {
	d.nextVAO++
	return d.nextVAO, nil
}

func (d *NullDevice) DeleteVertexArray(id VertexArrayID) {}
func (d *NullDevice) BindVertexArray(id VertexArrayID)   {}

func (d *NullDevice) VertexAttribPointer(index uint32, components int32, typ ScalarType, normalized bool, stride int32, offset int) {
}

func (d *NullDevice) VertexAttribPointerData(index uint32, components int32, typ ScalarType, normalized bool, stride int32, data []byte) {
}

func (d *NullDevice) EnableVertexAttribArray(index uint32)      {}
func (d *NullDevice) DisableVertexAttribArray(index uint32)     {}
func (d *NullDevice) VertexAttribDivisor(index, divisor uint32) {}
func (d *NullDevice) VertexAttrib4f(index uint32, x, y, z, w float32) {}

func (d *NullDevice) SetViewport(x, y, w, h int32)            {}
func (d *NullDevice) SetClearColor(r, g, b, a float32)        {}
func (d *NullDevice) SetClearDepth(depth float32)             {}
func (d *NullDevice) Clear(color, depth bool)                 {}
func (d *NullDevice) EnableDepthTest(enabled bool)            {}
func (d *NullDevice) EnableCullFace(enabled bool)             {}

func (d *NullDevice) DrawArrays(prim Primitive, first, count int32) { d.DrawCalls++ }
func (d *NullDevice) DrawArraysInstanced(prim Primitive, first, count, primcount int32) {
	d.DrawCalls++
}
func (d *NullDevice) DrawElements(prim Primitive, count int32, typ ScalarType, offset int) {
	d.DrawCalls++
}
func (d *NullDevice) DrawElementsData(prim Primitive, count int32, typ ScalarType, data []byte) {
	d.DrawCalls++
}
func (d *NullDevice) DrawElementsInstanced(prim Primitive, count int32, typ ScalarType, offset int, primcount int32) {
	d.DrawCalls++
}
