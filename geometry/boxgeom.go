package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/bounds"
	"github.com/scengine/scengine/core"
)

// Box geometry generator. Points and lines share the box's eight corners;
// triangles unroll per-face vertices so each face carries its own normal
// and texture coordinates.

var boxLineIndices = []uint16{
	0, 1, 1, 2, 2, 3, 3, 0, // near rectangle
	7, 6, 6, 5, 5, 4, 4, 7, // far rectangle
	0, 7, 1, 6, 2, 5, 3, 4, // connecting edges
}

// faces as corner quads wound counter-clockwise seen from outside,
// with the outward face normal
var boxFaces = [6]struct {
	corners [4]int
	normal  mgl32.Vec3
}{
	{[4]int{bounds.BoxX, bounds.BoxOrigin, bounds.BoxY, bounds.BoxXY}, mgl32.Vec3{0, 0, -1}},
	{[4]int{bounds.BoxZ, bounds.BoxXZ, bounds.BoxXYZ, bounds.BoxYZ}, mgl32.Vec3{0, 0, 1}},
	{[4]int{bounds.BoxOrigin, bounds.BoxZ, bounds.BoxYZ, bounds.BoxY}, mgl32.Vec3{-1, 0, 0}},
	{[4]int{bounds.BoxXZ, bounds.BoxX, bounds.BoxXY, bounds.BoxXYZ}, mgl32.Vec3{1, 0, 0}},
	{[4]int{bounds.BoxY, bounds.BoxYZ, bounds.BoxXYZ, bounds.BoxXY}, mgl32.Vec3{0, 1, 0}},
	{[4]int{bounds.BoxOrigin, bounds.BoxX, bounds.BoxXZ, bounds.BoxZ}, mgl32.Vec3{0, -1, 0}},
}

// NewBoxGeometry builds a geometry for the given box. prim selects the
// form: Points (8 vertices), Lines (12 edges) or Triangles (24 vertices,
// 12 triangles, per-face normals and texcoords).
func NewBoxGeometry(prim core.Primitive, box *bounds.Box) (*Geometry, error) {
	switch prim {
	case core.Points, core.Lines:
		return cornerBoxGeometry(prim, box)
	case core.Triangles:
		return triangleBoxGeometry(box)
	default:
		return nil, fmt.Errorf("box geometry primitive %d: %w", prim, core.ErrInvalidEnum)
	}
}

func cornerBoxGeometry(prim core.Primitive, box *bounds.Box) (*Geometry, error) {
	g := NewGeometry(prim)
	points := box.Points()
	positions := make([]float32, 0, 8*3)
	for _, p := range points {
		positions = append(positions, p.X(), p.Y(), p.Z())
	}
	var indices []uint16
	if prim == core.Lines {
		indices = append(indices, boxLineIndices...)
	}
	if err := g.SetData(positions, nil, nil, indices, 8); err != nil {
		return nil, err
	}
	return g, nil
}

func triangleBoxGeometry(box *bounds.Box) (*Geometry, error) {
	g := NewGeometry(core.Triangles)
	points := box.Points()

	positions := make([]float32, 0, 24*3)
	normals := make([]float32, 0, 24*3)
	texcoords := make([]float32, 0, 24*2)
	indices := make([]uint16, 0, 36)

	quadUV := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for _, face := range boxFaces {
		base := uint16(len(positions) / 3)
		for i, c := range face.corners {
			p := points[c]
			positions = append(positions, p.X(), p.Y(), p.Z())
			normals = append(normals, face.normal.X(), face.normal.Y(), face.normal.Z())
			texcoords = append(texcoords, quadUV[i][0], quadUV[i][1])
		}
		indices = append(indices,
			base, base+1, base+2,
			base, base+2, base+3)
	}
	if err := g.SetData(positions, normals, texcoords, indices, 24); err != nil {
		return nil, err
	}
	return g, nil
}
