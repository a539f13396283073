package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/bounds"
	"github.com/scengine/scengine/core"
)

// Geometry owns a set of attribute arrays and optionally an index stream.
// Client code edits the arrays in place, marks the touched ranges with
// Modified and calls Update once per frame; the registered users mirror
// the edits wherever they need to go.
type Geometry struct {
	prim core.Primitive

	arrays   []*Array
	modified []*Array

	index  *core.IndexArray
	nindex int

	pos, nor, tex *Array

	nvert int

	box      bounds.Box
	sphere   bounds.Sphere
	boxOK    bool
	sphereOK bool
}

func NewGeometry(prim core.Primitive) *Geometry {
	return &Geometry{prim: prim}
}

func (g *Geometry) PrimitiveType() core.Primitive { return g.prim }
func (g *Geometry) NumVertices() int              { return g.nvert }
func (g *Geometry) NumIndices() int               { return g.nindex }
func (g *Geometry) Arrays() []*Array              { return g.arrays }
func (g *Geometry) ModifiedArrays() []*Array      { return g.modified }
func (g *Geometry) IndexArray() *core.IndexArray  { return g.index }

// Fast accessors for the common streams, recorded by AddArray/SetData.
func (g *Geometry) Positions() *Array { return g.pos }
func (g *Geometry) Normals() *Array   { return g.nor }
func (g *Geometry) TexCoords() *Array { return g.tex }

func (g *Geometry) SetNumVertices(n int) { g.nvert = n }

// AddArray registers an attribute array. The first position, normal and
// texcoord-0 arrays are cached for fast lookup.
func (g *Geometry) AddArray(a *Array) {
	a.geom = g
	g.arrays = append(g.arrays, a)
	switch {
	case a.va.Attrib.Kind == core.PositionAttrib && g.pos == nil:
		g.pos = a
	case a.va.Attrib.Kind == core.NormalAttrib && g.nor == nil:
		g.nor = a
	case a.va.Attrib == core.TexCoord(0) && g.tex == nil:
		g.tex = a
	}
}

// SetIndexData records the index stream.
func (g *Geometry) SetIndexData(ia *core.IndexArray, count int) {
	g.index = ia
	g.nindex = count
}

// SetData is the common fast path: positions plus optional normals,
// texcoords and 16-bit indices.
func (g *Geometry) SetData(positions, normals, texcoords []float32, indices []uint16, nvert int) error {
	if positions == nil {
		return fmt.Errorf("geometry without positions: %w", core.ErrInvalidArg)
	}
	g.AddArray(NewArray(core.Position(), 3, positions))
	if normals != nil {
		g.AddArray(NewArray(core.Normal(), 3, normals))
	}
	if texcoords != nil {
		g.AddArray(NewArray(core.TexCoord(0), 2, texcoords))
	}
	if indices != nil {
		g.SetIndexData(core.NewIndexArrayUint16(indices), len(indices))
	}
	g.nvert = nvert
	return nil
}

// Modified moves the array onto the modified list and unions the vertex
// range. A nil range covers every vertex.
func (g *Geometry) Modified(a *Array, rng *core.Range) {
	r := core.Range{First: 0, Size: g.nvert}
	if rng != nil {
		r = *rng
	}
	if a.modified {
		a.rng = a.rng.Union(r)
	} else {
		a.rng = r
		a.modified = true
		g.modified = append(g.modified, a)
	}
	if a == g.pos || a.root == g.pos {
		g.boxOK = false
		g.sphereOK = false
	}
}

// Update fires the users of every modified array and returns the arrays
// to the normal list.
func (g *Geometry) Update() {
	for _, a := range g.modified {
		a.update()
	}
	g.modified = g.modified[:0]
}

// GenerateBoundingBox computes the axis-aligned box of the position
// stream. Cached until positions are marked modified.
func (g *Geometry) GenerateBoundingBox() (*bounds.Box, error) {
	if g.boxOK {
		return &g.box, nil
	}
	min, max, err := g.positionExtent()
	if err != nil {
		return nil, err
	}
	size := max.Sub(min)
	g.box.Set(min, size.X(), size.Y(), size.Z())
	g.boxOK = true
	return &g.box, nil
}

// GenerateBoundingSphere computes the bounding sphere around the box
// center. Cached until positions are marked modified.
func (g *Geometry) GenerateBoundingSphere() (*bounds.Sphere, error) {
	if g.sphereOK {
		return &g.sphere, nil
	}
	min, max, err := g.positionExtent()
	if err != nil {
		return nil, err
	}
	center := min.Add(max).Mul(0.5)
	radius := float32(0)
	data := g.pos.Data()
	for i := 0; i+2 < len(data); i += g.positionStep() {
		p := mgl32.Vec3{data[i], data[i+1], data[i+2]}
		if d := p.Sub(center).Len(); d > radius {
			radius = d
		}
	}
	g.sphere = bounds.NewSphere(center, radius)
	g.sphereOK = true
	return &g.sphere, nil
}

// positionStep is the float distance between vertex records in the
// position stream; interleaved roots carry other attributes in between.
func (g *Geometry) positionStep() int {
	step := int(g.pos.va.Stride) / 4
	if step < 3 {
		step = 3
	}
	return step
}

func (g *Geometry) positionExtent() (min, max mgl32.Vec3, err error) {
	if g.pos == nil || len(g.pos.Data()) < 3 {
		return min, max, fmt.Errorf("geometry without positions: %w", core.ErrInvalidOperation)
	}
	data := g.pos.Data()
	min = mgl32.Vec3{data[0], data[1], data[2]}
	max = min
	for i := g.positionStep(); i+2 < len(data); i += g.positionStep() {
		for c := 0; c < 3; c++ {
			v := data[i+c]
			if v < min[c] {
				min[c] = v
			}
			if v > max[c] {
				max[c] = v
			}
		}
	}
	return min, max, nil
}
