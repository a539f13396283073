package particle

import (
	"encoding/binary"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scengine/scengine/bounds"
	"github.com/scengine/scengine/core"
)

// one float32 payload, one 12-byte vertex per particle
func smokeBuffer(t *testing.T, max int) *Buffer {
	t.Helper()
	pb, err := NewBuffer(max, 4, 12, 1)
	require.NoError(t, err)
	pb.SetInitCallbacks(
		func(p *Particle, payload []byte, dt float32, arg any) {
			p.Age = 1
			binary.LittleEndian.PutUint32(payload, 42)
		}, nil,
		func(p *Particle, payload, vertices []byte, arg any) {
			copy(vertices, payload)
		}, nil)
	pb.SetUpdateCallbacks(
		func(p *Particle, payload []byte, dt float32, arg any) {
			p.Position = p.Position.Add(p.Velocity.Mul(dt))
			p.Age -= dt
		}, nil,
		func(p *Particle, payload, vertices []byte, arg any) {
			v := core.Float32View(vertices)
			v[0], v[1], v[2] = p.Position.X(), p.Position.Y(), p.Position.Z()
		}, nil)
	return pb
}

func TestAddParticlesClampsToCapacity(t *testing.T) {
	pb := smokeBuffer(t, 4)
	first := pb.AddParticles(3)
	assert.Equal(t, 0, first)
	assert.Equal(t, 3, pb.Count())

	first = pb.AddParticles(5)
	assert.Equal(t, 3, first)
	assert.Equal(t, 4, pb.Count(), "clamped to capacity")

	// spawn callbacks ran for every slot
	for i := 0; i < pb.Count(); i++ {
		p, payload := pb.Particle(i)
		assert.Equal(t, float32(1), p.Age)
		assert.Equal(t, uint32(42), binary.LittleEndian.Uint32(payload))
	}
}

func TestRemoveParticleSwapsMirrorInLockStep(t *testing.T) {
	pb := smokeBuffer(t, 8)
	pb.AddParticles(3)
	for i := 0; i < 3; i++ {
		p, _ := pb.Particle(i)
		p.Position = mgl32.Vec3{float32(i * 10), 0, 0}
	}
	pb.UpdateArrays()

	pb.RemoveParticle(0)
	assert.Equal(t, 2, pb.Count())

	// the last particle moved into slot 0, vertices included
	p, _ := pb.Particle(0)
	assert.Equal(t, float32(20), p.Position.X())
	v := core.Float32View(pb.Vertices())
	assert.Equal(t, float32(20), v[0])
}

func TestVertexMirrorMatchesHeaders(t *testing.T) {
	pb := smokeBuffer(t, 16)
	pb.AddParticles(10)
	for i := 0; i < 10; i++ {
		p, _ := pb.Particle(i)
		p.Position = mgl32.Vec3{float32(i), float32(i) * 2, 0}
	}
	pb.UpdateArrays()
	pb.RemoveParticle(4)
	pb.RemoveParticle(7)

	v := core.Float32View(pb.Vertices())
	for i := 0; i < pb.Count(); i++ {
		p, _ := pb.Particle(i)
		assert.Equal(t, p.Position.X(), v[i*3], "slot %d mirror out of step", i)
		assert.Equal(t, p.Position.Y(), v[i*3+1])
	}
}

func TestUpdateParticlesMovesAndTracksBox(t *testing.T) {
	pb := smokeBuffer(t, 4)
	var box bounds.Box
	pb.SetBox(&box)
	pb.ActivateBoxUpdate(true)

	pb.AddParticles(2)
	p0, _ := pb.Particle(0)
	p0.Velocity = mgl32.Vec3{1, 0, 0}
	p1, _ := pb.Particle(1)
	p1.Position = mgl32.Vec3{0, 5, 0}

	pb.UpdateParticles(2)
	assert.Equal(t, float32(2), p0.Position.X())

	assert.Equal(t, mgl32.Vec3{0, 0, 0}, box.Origin())
	assert.Equal(t, mgl32.Vec3{2, 5, 0}, box.Max())
}

func TestRemoveDeadCompacts(t *testing.T) {
	pb := smokeBuffer(t, 8)
	pb.AddParticles(5) // all spawn with age 1
	p, _ := pb.Particle(1)
	p.Age = 0.1
	p, _ = pb.Particle(3)
	p.Age = 0.2

	pb.RemoveDead(0.5)
	assert.Equal(t, 3, pb.Count())
	for i := 0; i < pb.Count(); i++ {
		p, _ := pb.Particle(i)
		assert.GreaterOrEqual(t, p.Age, float32(0.5))
	}
}

func TestUpdateArraysMarksActivePrefix(t *testing.T) {
	pb := smokeBuffer(t, 8)
	g := pb.BuildArray(core.Points, core.Position(), 3)
	pb.AddParticles(5)
	pb.UpdateArrays()

	require.Len(t, g.ModifiedArrays(), 1)
	rng := pb.Array().ModifiedRange()
	assert.Equal(t, core.Range{First: 0, Size: 5}, rng)
	assert.Equal(t, 5, g.NumVertices())

	g.Update()
	assert.Empty(t, g.ModifiedArrays())
}

func TestBufferSizeValidation(t *testing.T) {
	_, err := NewBuffer(0, 4, 12, 1)
	assert.ErrorIs(t, err, core.ErrInvalidSize)
	_, err = NewBuffer(4, 4, 12, 0)
	assert.ErrorIs(t, err, core.ErrInvalidSize)
}
