// Package loader reads and writes the persisted geometry containers: the
// FFM binary mesh format, Wavefront OBJ text meshes and MD5 skeletal
// mesh/animation files.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/geometry"
	"github.com/scengine/scengine/resource"
)

// FFMMagic opens every FFM stream, little-endian "FFM\x00".
const FFMMagic uint32 = 0x004d4646

// FFMMesh is one mesh record of an FFM container.
type FFMMesh struct {
	VertexCount int
	Positions   []float32 // 3 per vertex
	TexCoords   []float32 // 2 per vertex, nil when absent
	Normals     []float32 // 3 per vertex, nil when absent
	Indices     []uint32  // nil when the mesh is non-indexed
}

// ReadFFM parses a container: magic, mesh count, then per mesh the vertex
// count, the presence bytes, the streams and the index block.
func ReadFFM(r io.Reader) ([]*FFMMesh, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("ffm header: %w", core.ErrBadFormat)
	}
	if magic != FFMMagic {
		return nil, fmt.Errorf("ffm magic %08x: %w", magic, core.ErrBadFormat)
	}
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil || count < 0 {
		return nil, fmt.Errorf("ffm mesh count: %w", core.ErrBadFormat)
	}
	meshes := make([]*FFMMesh, 0, count)
	for i := int32(0); i < count; i++ {
		m, err := readFFMMesh(r)
		if err != nil {
			return nil, fmt.Errorf("ffm mesh %d: %w", i, err)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func readFFMMesh(r io.Reader) (*FFMMesh, error) {
	var vcount int32
	if err := binary.Read(r, binary.LittleEndian, &vcount); err != nil || vcount < 0 {
		return nil, fmt.Errorf("vertex count: %w", core.ErrBadFormat)
	}
	var hasTex, hasNor uint8
	if err := binary.Read(r, binary.LittleEndian, &hasTex); err != nil {
		return nil, fmt.Errorf("texcoord flag: %w", core.ErrBadFormat)
	}
	if err := binary.Read(r, binary.LittleEndian, &hasNor); err != nil {
		return nil, fmt.Errorf("normal flag: %w", core.ErrBadFormat)
	}
	m := &FFMMesh{VertexCount: int(vcount)}
	m.Positions = make([]float32, vcount*3)
	if err := binary.Read(r, binary.LittleEndian, m.Positions); err != nil {
		return nil, fmt.Errorf("positions: %w", core.ErrBadFormat)
	}
	if hasTex != 0 {
		m.TexCoords = make([]float32, vcount*2)
		if err := binary.Read(r, binary.LittleEndian, m.TexCoords); err != nil {
			return nil, fmt.Errorf("texcoords: %w", core.ErrBadFormat)
		}
	}
	if hasNor != 0 {
		m.Normals = make([]float32, vcount*3)
		if err := binary.Read(r, binary.LittleEndian, m.Normals); err != nil {
			return nil, fmt.Errorf("normals: %w", core.ErrBadFormat)
		}
	}
	var indexSize, icount int32
	if err := binary.Read(r, binary.LittleEndian, &indexSize); err != nil {
		return nil, fmt.Errorf("index size: %w", core.ErrBadFormat)
	}
	if err := binary.Read(r, binary.LittleEndian, &icount); err != nil || icount < 0 {
		return nil, fmt.Errorf("index count: %w", core.ErrBadFormat)
	}
	switch indexSize {
	case 0:
	case 2:
		raw := make([]uint16, icount)
		if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
			return nil, fmt.Errorf("indices: %w", core.ErrBadFormat)
		}
		m.Indices = make([]uint32, icount)
		for i, v := range raw {
			m.Indices[i] = uint32(v)
		}
	case 4:
		m.Indices = make([]uint32, icount)
		if err := binary.Read(r, binary.LittleEndian, m.Indices); err != nil {
			return nil, fmt.Errorf("indices: %w", core.ErrBadFormat)
		}
	default:
		return nil, fmt.Errorf("index size %d: %w", indexSize, core.ErrBadFormat)
	}
	return m, nil
}

// WriteFFM serializes the meshes. Indices are narrowed to 16 bits when
// the count allows it.
func WriteFFM(w io.Writer, meshes []*FFMMesh) error {
	if err := binary.Write(w, binary.LittleEndian, FFMMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(meshes))); err != nil {
		return err
	}
	for _, m := range meshes {
		if err := writeFFMMesh(w, m); err != nil {
			return err
		}
	}
	return nil
}

func writeFFMMesh(w io.Writer, m *FFMMesh) error {
	if len(m.Positions) != m.VertexCount*3 {
		return fmt.Errorf("position stream does not match vertex count: %w", core.ErrInvalidSize)
	}
	if err := binary.Write(w, binary.LittleEndian, int32(m.VertexCount)); err != nil {
		return err
	}
	flags := []uint8{0, 0}
	if m.TexCoords != nil {
		flags[0] = 1
	}
	if m.Normals != nil {
		flags[1] = 1
	}
	if err := binary.Write(w, binary.LittleEndian, flags); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.Positions); err != nil {
		return err
	}
	if m.TexCoords != nil {
		if err := binary.Write(w, binary.LittleEndian, m.TexCoords); err != nil {
			return err
		}
	}
	if m.Normals != nil {
		if err := binary.Write(w, binary.LittleEndian, m.Normals); err != nil {
			return err
		}
	}
	if m.Indices == nil {
		if err := binary.Write(w, binary.LittleEndian, int32(0)); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, int32(0))
	}
	narrow := len(m.Indices) < 1<<16
	indexSize := int32(4)
	if narrow {
		indexSize = 2
	}
	if err := binary.Write(w, binary.LittleEndian, indexSize); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(m.Indices))); err != nil {
		return err
	}
	if narrow {
		raw := make([]uint16, len(m.Indices))
		for i, v := range m.Indices {
			raw[i] = uint16(v)
		}
		return binary.Write(w, binary.LittleEndian, raw)
	}
	return binary.Write(w, binary.LittleEndian, m.Indices)
}

// ToGeometry builds a triangle geometry from the mesh record.
func (m *FFMMesh) ToGeometry() (*geometry.Geometry, error) {
	g := geometry.NewGeometry(core.Triangles)
	var ind16 []uint16
	if m.Indices != nil && len(m.Indices) < 1<<16 {
		ind16 = make([]uint16, len(m.Indices))
		for i, v := range m.Indices {
			ind16[i] = uint16(v)
		}
	}
	if err := g.SetData(m.Positions, m.Normals, m.TexCoords, ind16, m.VertexCount); err != nil {
		return nil, err
	}
	if ind16 == nil && m.Indices != nil {
		g.SetIndexData(core.NewIndexArrayUint32(m.Indices), len(m.Indices))
	}
	return g, nil
}

// RegisterFFMLoader wires the container into a media registry.
func RegisterFFMLoader(m *resource.Media) {
	m.Register(resource.TypeGeometry, FFMMagic, ".ffm", func(r io.Reader, name string) (any, error) {
		return ReadFFM(r)
	})
}
