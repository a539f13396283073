package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/resource"
)

// OBJMode selects the post-processing applied to parsed face data.
type OBJMode int

const (
	// GenerateIndices dedupes (v,vt,vn) triplets into aligned vertex
	// streams plus an index array.
	GenerateIndices OBJMode = iota
	// ExpandVertices unrolls the faces into non-indexed streams.
	ExpandVertices
)

// OBJData is the loader output: aligned per-vertex streams and, in
// GenerateIndices mode, the index array.
type OBJData struct {
	VertexCount int
	Positions   []float32
	TexCoords   []float32
	Normals     []float32
	Indices     []uint32
}

type objCorner struct {
	v, vt, vn int // 1-based; 0 when absent
}

// ReadOBJ parses a Wavefront OBJ stream limited to triangle-able meshes:
// v/vt/vn records and f faces, fanning polygons into triangles.
func ReadOBJ(r io.Reader, mode OBJMode) (*OBJData, error) {
	var positions, texcoords, normals []float32
	var corners []objCorner

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if err := parseFloats(fields[1:], 3, &positions); err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
		case "vt":
			if err := parseFloats(fields[1:], 2, &texcoords); err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
		case "vn":
			if err := parseFloats(fields[1:], 3, &normals); err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj line %d: truncated face: %w", line, core.ErrBadFormat)
			}
			face := make([]objCorner, 0, len(fields)-1)
			for _, spec := range fields[1:] {
				c, err := parseCorner(spec)
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", line, err)
				}
				face = append(face, c)
			}
			for i := 2; i < len(face); i++ {
				corners = append(corners, face[0], face[i-1], face[i])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(corners) == 0 {
		return nil, fmt.Errorf("obj without faces: %w", core.ErrBadFormat)
	}
	if mode == ExpandVertices {
		return expandVertices(positions, texcoords, normals, corners)
	}
	return generateIndices(positions, texcoords, normals, corners)
}

func parseFloats(fields []string, n int, dst *[]float32) error {
	if len(fields) < n {
		return fmt.Errorf("expected %d components: %w", n, core.ErrBadFormat)
	}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return fmt.Errorf("component %q: %w", fields[i], core.ErrBadFormat)
		}
		*dst = append(*dst, float32(v))
	}
	return nil
}

func parseCorner(spec string) (objCorner, error) {
	var c objCorner
	parts := strings.Split(spec, "/")
	refs := []*int{&c.v, &c.vt, &c.vn}
	for i, p := range parts {
		if i >= len(refs) || p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return c, fmt.Errorf("face reference %q: %w", spec, core.ErrBadFormat)
		}
		*refs[i] = v
	}
	if c.v == 0 {
		return c, fmt.Errorf("face without vertex reference: %w", core.ErrBadFormat)
	}
	return c, nil
}

func (c objCorner) fill(positions, texcoords, normals []float32, d *OBJData) error {
	vi := (c.v - 1) * 3
	if vi+2 >= len(positions) {
		return fmt.Errorf("vertex reference %d out of range: %w", c.v, core.ErrBadFormat)
	}
	d.Positions = append(d.Positions, positions[vi:vi+3]...)
	if c.vt > 0 {
		ti := (c.vt - 1) * 2
		if ti+1 >= len(texcoords) {
			return fmt.Errorf("texcoord reference %d out of range: %w", c.vt, core.ErrBadFormat)
		}
		d.TexCoords = append(d.TexCoords, texcoords[ti:ti+2]...)
	}
	if c.vn > 0 {
		ni := (c.vn - 1) * 3
		if ni+2 >= len(normals) {
			return fmt.Errorf("normal reference %d out of range: %w", c.vn, core.ErrBadFormat)
		}
		d.Normals = append(d.Normals, normals[ni:ni+3]...)
	}
	return nil
}

func expandVertices(positions, texcoords, normals []float32, corners []objCorner) (*OBJData, error) {
	d := &OBJData{}
	for _, c := range corners {
		if err := c.fill(positions, texcoords, normals, d); err != nil {
			return nil, err
		}
	}
	d.VertexCount = len(corners)
	return d, nil
}

func generateIndices(positions, texcoords, normals []float32, corners []objCorner) (*OBJData, error) {
	d := &OBJData{}
	seen := make(map[objCorner]uint32)
	for _, c := range corners {
		idx, ok := seen[c]
		if !ok {
			idx = uint32(d.VertexCount)
			seen[c] = idx
			if err := c.fill(positions, texcoords, normals, d); err != nil {
				return nil, err
			}
			d.VertexCount++
		}
		d.Indices = append(d.Indices, idx)
	}
	return d, nil
}

// RegisterOBJLoader wires the text format into a media registry with the
// index-generating mode.
func RegisterOBJLoader(m *resource.Media) {
	m.Register(resource.TypeGeometry, 0, ".obj", func(r io.Reader, name string) (any, error) {
		return ReadOBJ(r, GenerateIndices)
	})
}
