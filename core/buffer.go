package core

import "fmt"

// Range is a byte range as (First, Size). A zero Size means empty.
type Range struct {
	First int
	Size  int
}

func (r Range) End() int      { return r.First + r.Size }
func (r Range) Empty() bool   { return r.Size <= 0 }
func (r Range) Union(o Range) Range {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	lo, hi := r.First, r.End()
	if o.First < lo {
		lo = o.First
	}
	if o.End() > hi {
		hi = o.End()
	}
	return Range{First: lo, Size: hi - lo}
}

// BufferSegment is a named sub-range of a Buffer backed by a CPU byte
// region; the unit of partial upload. A segment belongs to at most one
// buffer, and while it belongs to one it is either clean or on the
// buffer's modified list, never both.
type BufferSegment struct {
	buf      *Buffer
	first    int
	size     int
	data     []byte
	rng      Range // modified sub-range, relative to the segment
	modified bool
}

// NewBufferSegment wraps data as a segment. The byte slice is aliased, not
// copied: client writes into it followed by Modified schedule an upload.
func NewBufferSegment(data []byte) *BufferSegment {
	return &BufferSegment{size: len(data), data: data}
}

func (s *BufferSegment) Buffer() *Buffer { return s.buf }
func (s *BufferSegment) First() int      { return s.first }
func (s *BufferSegment) Size() int       { return s.size }
func (s *BufferSegment) Data() []byte    { return s.data }
func (s *BufferSegment) IsModified() bool { return s.modified }

// ModifiedRange returns the pending sub-range, relative to the segment.
func (s *BufferSegment) ModifiedRange() Range { return s.rng }

// Modified marks a sub-range of the segment as changed. A nil range marks
// the whole segment. Successive calls union their ranges. The owning
// buffer is registered for the next UpdateModifiedBuffers pass.
func (s *BufferSegment) Modified(ctx *Context, rng *Range) error {
	if s.buf == nil {
		return fmt.Errorf("segment not in a buffer: %w", ErrInvalidOperation)
	}
	r := Range{First: 0, Size: s.size}
	if rng != nil {
		r = *rng
		if r.First < 0 || r.End() > s.size {
			return fmt.Errorf("segment range [%d,%d) out of [0,%d): %w",
				r.First, r.End(), s.size, ErrInvalidSize)
		}
	}
	if s.modified {
		s.rng = s.rng.Union(r)
	} else {
		s.rng = r
		s.modified = true
		s.buf.modified = append(s.buf.modified, s)
	}
	s.buf.Modified(&Range{First: s.rng.First + s.first, Size: s.rng.Size})
	ctx.registerModified(s.buf)
	return nil
}

func (s *BufferSegment) clean() {
	s.modified = false
	s.rng = Range{}
}

// Buffer composes segments into one GPU-resident byte buffer. It is
// append-only while being built; after Build only segment contents change,
// never the layout.
type Buffer struct {
	id     BufferID
	target BufferTarget
	usage  BufferUsage
	size   int
	built  bool

	segs     []*BufferSegment // all segments, in offset order
	modified []*BufferSegment // segments with pending ranges
	rng      Range            // unified modified range, absolute
	registered bool           // in the context's modified registry
}

func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) ID() BufferID         { return b.id }
func (b *Buffer) Target() BufferTarget { return b.target }
func (b *Buffer) Size() int            { return b.size }

// ModifiedRange returns the unified absolute range pending upload.
func (b *Buffer) ModifiedRange() Range { return b.rng }

// Segments returns the buffer's segments in offset order.
func (b *Buffer) Segments() []*BufferSegment { return b.segs }

// ModifiedSegments returns the segments with pending ranges.
func (b *Buffer) ModifiedSegments() []*BufferSegment { return b.modified }

// AddData appends a segment; its offset is the buffer's running size.
func (b *Buffer) AddData(seg *BufferSegment) error {
	if seg.buf != nil {
		return fmt.Errorf("segment already in a buffer: %w", ErrInvalidOperation)
	}
	seg.buf = b
	seg.first = b.size
	b.size += seg.size
	b.segs = append(b.segs, seg)
	return nil
}

// AddNewData wraps data as a new segment, appends it and returns it.
func (b *Buffer) AddNewData(data []byte) *BufferSegment {
	seg := NewBufferSegment(data)
	b.AddData(seg)
	return seg
}

// RemoveData unlinks a segment. The layout is not compacted: later
// segments keep their offsets and the removed segment's range stays dead.
func (b *Buffer) RemoveData(seg *BufferSegment) {
	if seg.buf != b {
		return
	}
	for i, s := range b.segs {
		if s == seg {
			b.segs = append(b.segs[:i], b.segs[i+1:]...)
			break
		}
	}
	if seg.modified {
		for i, s := range b.modified {
			if s == seg {
				b.modified = append(b.modified[:i], b.modified[i+1:]...)
				break
			}
		}
		seg.clean()
	}
	seg.buf = nil
}

// Build allocates GPU storage of the accumulated size and uploads every
// segment's current CPU bytes.
func (b *Buffer) Build(ctx *Context, target BufferTarget, usage BufferUsage) error {
	dev := ctx.Device()
	if !b.built {
		id, err := dev.CreateBuffer()
		if err != nil {
			return fmt.Errorf("buffer build: %w", err)
		}
		b.id = id
		b.built = true
	}
	b.target = target
	b.usage = usage
	dev.BindBuffer(target, b.id)
	dev.BufferData(target, b.size, nil, usage)
	for _, seg := range b.segs {
		dev.BufferSubData(target, seg.first, seg.data[:seg.size])
	}
	dev.BindBuffer(target, 0)
	b.rng = Range{}
	return nil
}

// Modified grows the unified range. A nil range means the whole buffer.
func (b *Buffer) Modified(rng *Range) {
	r := Range{First: 0, Size: b.size}
	if rng != nil {
		r = *rng
	}
	b.rng = b.rng.Union(r)
}

// Update uploads the modified segments along the context's update method,
// cleans them and resets the unified range. On mapping failure nothing is
// uploaded and the pending state is kept for a later retry.
func (b *Buffer) Update(ctx *Context) error {
	if len(b.modified) == 0 {
		return nil
	}
	switch ctx.UpdateMethod() {
	case UpdateMapRange:
		return b.updateMapRange(ctx)
	default:
		return b.updateMapClassic(ctx)
	}
}

func (b *Buffer) updateMapClassic(ctx *Context) error {
	dev := ctx.Device()
	dev.BindBuffer(b.target, b.id)
	ptr, err := dev.MapBuffer(b.target, MapWrite)
	if err != nil {
		dev.BindBuffer(b.target, 0)
		return fmt.Errorf("map buffer: %w", err)
	}
	for _, seg := range b.modified {
		copy(ptr[seg.first+seg.rng.First:], seg.data[seg.rng.First:seg.rng.End()])
		seg.clean()
	}
	b.modified = b.modified[:0]
	if err := dev.UnmapBuffer(b.target); err != nil {
		ctx.Logger().Warnf("unmap buffer %d: %v", b.id, err)
	}
	dev.BindBuffer(b.target, 0)
	b.rng = Range{}
	return nil
}

func (b *Buffer) updateMapRange(ctx *Context) error {
	dev := ctx.Device()
	dev.BindBuffer(b.target, b.id)
	ptr, err := dev.MapBufferRange(b.target, b.rng.First, b.rng.Size,
		MapWrite|MapFlushExplicit)
	if err != nil {
		dev.BindBuffer(b.target, 0)
		return fmt.Errorf("map buffer range [%d,%d): %w", b.rng.First, b.rng.End(), err)
	}
	for _, seg := range b.modified {
		offset := seg.rng.First + seg.first - b.rng.First
		length := seg.rng.Size
		copy(ptr[offset:offset+length], seg.data[seg.rng.First:seg.rng.End()])
		dev.FlushMappedRange(b.target, offset, length)
		seg.clean()
	}
	b.modified = b.modified[:0]
	if err := dev.UnmapBuffer(b.target); err != nil {
		ctx.Logger().Warnf("unmap buffer %d: %v", b.id, err)
	}
	dev.BindBuffer(b.target, 0)
	b.rng = Range{}
	return nil
}

// Use binds the buffer to its build target.
func (b *Buffer) Use(ctx *Context) {
	ctx.Device().BindBuffer(b.target, b.id)
}

// Delete releases the GPU storage. Segments keep their CPU data.
func (b *Buffer) Delete(ctx *Context) {
	if b.built {
		ctx.Device().DeleteBuffer(b.id)
		b.built = false
		b.id = 0
	}
}
