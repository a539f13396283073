package core

import "fmt"

// fakeDevice keeps buffer storage in plain byte slices and records the
// upload traffic so tests can assert exactly which ranges moved.
type fakeDevice struct {
	nextBuffer BufferID
	nextVAO    VertexArrayID
	storage    map[BufferID][]byte
	bound      map[BufferTarget]BufferID

	mapped       []byte
	mappedOffset int
	failMap      bool

	flushes   []Range // offsets relative to the mapped range
	subData   []Range // absolute BufferSubData ranges
	boundVAO  VertexArrayID
	enabled   map[uint32]bool
	divisors  map[uint32]uint32
	drawCalls int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		storage:  make(map[BufferID][]byte),
		bound:    make(map[BufferTarget]BufferID),
		enabled:  make(map[uint32]bool),
		divisors: make(map[uint32]uint32),
	}
}

func (d *fakeDevice) CreateBuffer() (BufferID, error) {
	d.nextBuffer++
	d.storage[d.nextBuffer] = nil
	return d.nextBuffer, nil
}

func (d *fakeDevice) DeleteBuffer(id BufferID) { delete(d.storage, id) }

func (d *fakeDevice) BindBuffer(target BufferTarget, id BufferID) { d.bound[target] = id }

func (d *fakeDevice) BufferData(target BufferTarget, size int, data []byte, usage BufferUsage) {
	buf := make([]byte, size)
	copy(buf, data)
	d.storage[d.bound[target]] = buf
}

func (d *fakeDevice) BufferSubData(target BufferTarget, offset int, data []byte) {
	copy(d.storage[d.bound[target]][offset:], data)
	d.subData = append(d.subData, Range{First: offset, Size: len(data)})
}

func (d *fakeDevice) MapBuffer(target BufferTarget, access MapAccess) ([]byte, error) {
	if d.failMap {
		return nil, fmt.Errorf("mapping refused: %w", ErrDevice)
	}
	d.mapped = d.storage[d.bound[target]]
	d.mappedOffset = 0
	return d.mapped, nil
}

func (d *fakeDevice) MapBufferRange(target BufferTarget, offset, length int, access MapAccess) ([]byte, error) {
	if d.failMap {
		return nil, fmt.Errorf("mapping refused: %w", ErrDevice)
	}
	d.mapped = d.storage[d.bound[target]][offset : offset+length]
	d.mappedOffset = offset
	return d.mapped, nil
}

func (d *fakeDevice) FlushMappedRange(target BufferTarget, offset, length int) {
	d.flushes = append(d.flushes, Range{First: offset, Size: length})
}

func (d *fakeDevice) UnmapBuffer(target BufferTarget) error {
	d.mapped = nil
	return nil
}

func (d *fakeDevice) CreateVertexArray() (VertexArrayID, error) {
	d.nextVAO++
	return d.nextVAO, nil
}

func (d *fakeDevice) DeleteVertexArray(id VertexArrayID) {}
func (d *fakeDevice) BindVertexArray(id VertexArrayID)   { d.boundVAO = id }

func (d *fakeDevice) VertexAttribPointer(index uint32, components int32, typ ScalarType, normalized bool, stride int32, offset int) {
}

func (d *fakeDevice) VertexAttribPointerData(index uint32, components int32, typ ScalarType, normalized bool, stride int32, data []byte) {
}

func (d *fakeDevice) EnableVertexAttribArray(index uint32)  { d.enabled[index] = true }
func (d *fakeDevice) DisableVertexAttribArray(index uint32) { d.enabled[index] = false }
func (d *fakeDevice) VertexAttribDivisor(index, divisor uint32) {
	d.divisors[index] = divisor
}
func (d *fakeDevice) VertexAttrib4f(index uint32, x, y, z, w float32) {}

func (d *fakeDevice) SetViewport(x, y, w, h int32)     {}
func (d *fakeDevice) SetClearColor(r, g, b, a float32) {}
func (d *fakeDevice) SetClearDepth(depth float32)      {}
func (d *fakeDevice) Clear(color, depth bool)          {}
func (d *fakeDevice) EnableDepthTest(enabled bool)     {}
func (d *fakeDevice) EnableCullFace(enabled bool)      {}

func (d *fakeDevice) DrawArrays(prim Primitive, first, count int32) { d.drawCalls++ }
func (d *fakeDevice) DrawArraysInstanced(prim Primitive, first, count, primcount int32) {
	d.drawCalls++
}
func (d *fakeDevice) DrawElements(prim Primitive, count int32, typ ScalarType, offset int) {
	d.drawCalls++
}
func (d *fakeDevice) DrawElementsData(prim Primitive, count int32, typ ScalarType, data []byte) {
	d.drawCalls++
}
func (d *fakeDevice) DrawElementsInstanced(prim Primitive, count int32, typ ScalarType, offset int, primcount int32) {
	d.drawCalls++
}
