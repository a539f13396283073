// Package particle implements the particle buffer: fixed-capacity
// heterogeneous records driven by client callbacks, mirrored into a
// vertex array that backs a geometry.
package particle

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/scengine/scengine/bounds"
	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/geometry"
)

// Particle is the fixed header at the front of every particle record.
// The user payload follows it in the same record.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Age      float32
}

// particleHeaderSize is the byte size of the header inside a record.
const particleHeaderSize = 7 * 4

// ParticleFunc works on one particle and its payload bytes.
type ParticleFunc func(p *Particle, payload []byte, dt float32, arg any)

// ArrayFunc refreshes the vertex-side bytes of one particle.
type ArrayFunc func(p *Particle, payload []byte, vertices []byte, arg any)

// Buffer holds up to max particles. Particle records are pStride bytes
// (header + payload); each particle owns vpp vertices, vStride bytes in
// all, in the parallel vertex array. Active records stay packed at the front, so
// the vertex mirror is always a contiguous prefix.
type Buffer struct {
	particles []byte
	vertices  []byte

	max     int
	count   int
	pStride int
	vStride int
	vpp     int

	array *geometry.Array
	geom  *geometry.Geometry

	init       ParticleFunc
	initArg    any
	initArray  ArrayFunc
	initArrArg any

	update       ParticleFunc
	updateArg    any
	updateArray  ArrayFunc
	updateArrArg any

	box        *bounds.Box
	updateAABB bool
}

// NewBuffer sizes the storage: max particles, payload bytes per particle,
// vertex bytes per vertex and vertices per particle.
func NewBuffer(max, payloadSize, vertexSize, vpp int) (*Buffer, error) {
	if max <= 0 || vpp <= 0 || payloadSize < 0 || vertexSize <= 0 {
		return nil, fmt.Errorf("particle buffer sizes: %w", core.ErrInvalidSize)
	}
	pb := &Buffer{
		max:     max,
		pStride: particleHeaderSize + payloadSize,
		vStride: vertexSize * vpp,
		vpp:     vpp,
	}
	pb.particles = make([]byte, max*pb.pStride)
	pb.vertices = make([]byte, max*pb.vStride)
	return pb, nil
}

func (pb *Buffer) Max() int          { return pb.max }
func (pb *Buffer) Count() int        { return pb.count }
func (pb *Buffer) Available() int    { return pb.max - pb.count }
func (pb *Buffer) VerticesPP() int   { return pb.vpp }
func (pb *Buffer) VertexStride() int { return pb.vStride }

// Vertices exposes the active prefix of the vertex mirror.
func (pb *Buffer) Vertices() []byte { return pb.vertices[:pb.count*pb.vStride] }

// SetInitCallbacks installs the spawn callbacks.
func (pb *Buffer) SetInitCallbacks(p ParticleFunc, pArg any, v ArrayFunc, vArg any) {
	pb.init = p
	pb.initArg = pArg
	pb.initArray = v
	pb.initArrArg = vArg
}

// SetUpdateCallbacks installs the per-tick callbacks.
func (pb *Buffer) SetUpdateCallbacks(p ParticleFunc, pArg any, v ArrayFunc, vArg any) {
	pb.update = p
	pb.updateArg = pArg
	pb.updateArray = v
	pb.updateArrArg = vArg
}

// SetBox assigns the AABB written by UpdateParticles; nil disables the
// tracking.
func (pb *Buffer) SetBox(b *bounds.Box) {
	pb.box = b
	if b == nil {
		pb.updateAABB = false
	}
}

// ActivateBoxUpdate toggles AABB tracking. Requires a box.
func (pb *Buffer) ActivateBoxUpdate(enabled bool) {
	pb.updateAABB = enabled && pb.box != nil
}

func (pb *Buffer) Box() *bounds.Box { return pb.box }

// particle returns the typed header and payload of record i.
func (pb *Buffer) particle(i int) (*Particle, []byte) {
	rec := pb.particles[i*pb.pStride : (i+1)*pb.pStride]
	p := (*Particle)(particlePtr(rec))
	return p, rec[particleHeaderSize:]
}

// Particle exposes record i for client inspection.
func (pb *Buffer) Particle(i int) (*Particle, []byte) {
	return pb.particle(i)
}

func (pb *Buffer) vertexSlice(i int) []byte {
	return pb.vertices[i*pb.vStride : (i+1)*pb.vStride]
}

// AddParticles activates up to n new particles, clamped to the remaining
// capacity, and returns the index of the first one. New slots run the
// init callbacks.
func (pb *Buffer) AddParticles(n int) int {
	if n > pb.Available() {
		n = pb.Available()
	}
	offset := pb.count
	pb.count += n
	for i := offset; i < pb.count; i++ {
		p, payload := pb.particle(i)
		*p = Particle{}
		if pb.init != nil {
			pb.init(p, payload, 0, pb.initArg)
		}
		if pb.initArray != nil {
			pb.initArray(p, payload, pb.vertexSlice(i), pb.initArrArg)
		}
	}
	return offset
}

// RemoveParticle swaps the last active particle into slot i, moving the
// record and its vertex bytes in lock-step so the mirror stays packed.
func (pb *Buffer) RemoveParticle(i int) {
	pb.count--
	last := pb.count
	if i == last {
		return
	}
	copy(pb.particles[i*pb.pStride:(i+1)*pb.pStride],
		pb.particles[last*pb.pStride:(last+1)*pb.pStride])
	copy(pb.vertices[i*pb.vStride:(i+1)*pb.vStride],
		pb.vertices[last*pb.vStride:(last+1)*pb.vStride])
}

// RemoveDead compacts away every particle younger than the threshold.
func (pb *Buffer) RemoveDead(age float32) {
	for i := 0; i < pb.count; i++ {
		p, _ := pb.particle(i)
		if p.Age < age {
			pb.RemoveParticle(i)
			i--
		}
	}
}

// UpdateParticles runs the update callback over the active particles,
// tracking the position extent into the assigned box when enabled.
func (pb *Buffer) UpdateParticles(dt float32) {
	minP := mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	maxP := minP.Mul(-1)
	for i := 0; i < pb.count; i++ {
		p, payload := pb.particle(i)
		if pb.update != nil {
			pb.update(p, payload, dt, pb.updateArg)
		}
		if pb.updateAABB {
			for c := 0; c < 3; c++ {
				minP[c] = math32.Min(minP[c], p.Position[c])
				maxP[c] = math32.Max(maxP[c], p.Position[c])
			}
		}
	}
	if pb.updateAABB && pb.count > 0 {
		size := maxP.Sub(minP)
		pb.box.Set(minP, size.X(), size.Y(), size.Z())
	}
}

// BuildArray wires a float32 vertex view over the mirror into a geometry,
// so array updates flow through the usual buffer broker path. components
// is the attribute width of the per-vertex stream.
func (pb *Buffer) BuildArray(prim core.Primitive, attrib core.Attrib, components int32) *geometry.Geometry {
	g := geometry.NewGeometry(prim)
	view := core.Float32View(pb.vertices)
	a := geometry.NewArray(attrib, components, view)
	a.VertexArray().Stride = int32(pb.vStride / pb.vpp)
	g.AddArray(a)
	g.SetNumVertices(pb.count * pb.vpp)
	pb.array = a
	pb.geom = g
	return g
}

func (pb *Buffer) Array() *geometry.Array { return pb.array }

// UpdateArrays refreshes the vertex mirror through the update-array
// callback and marks the active vertex prefix modified on the geometry.
func (pb *Buffer) UpdateArrays() {
	for i := 0; i < pb.count; i++ {
		p, payload := pb.particle(i)
		if pb.updateArray != nil {
			pb.updateArray(p, payload, pb.vertexSlice(i), pb.updateArrArg)
		}
	}
	if pb.geom != nil && pb.array != nil {
		pb.geom.SetNumVertices(pb.count * pb.vpp)
		rng := core.Range{First: 0, Size: pb.count * pb.vpp}
		pb.geom.Modified(pb.array, &rng)
	}
}
