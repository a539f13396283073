package anim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/geometry"
)

// VertexWeights indexes one vertex's weight span.
type VertexWeights struct {
	First int
	Count int
}

// Weight ties a vertex to a joint: the joint id, the blend weight and the
// weighted position in joint space (xyz, w carries the weight again in
// persisted data).
type Weight struct {
	Joint    int
	Weight   float32
	Position mgl32.Vec3
}

// AnimatedMesh skins a geometry from a skeleton pose: per-vertex weight
// records accumulate joint-space positions into the output position
// stream, which feeds the geometry's update protocol.
type AnimatedMesh struct {
	geom *geometry.Geometry

	baseSkel *Skeleton
	animSkel *Skeleton

	vertices []VertexWeights
	weights  []Weight

	// output streams; positions is the array registered on the geometry
	positions []float32
	normals   []float32
	local     bool // streams live in a local buffer until built global
}

// NewAnimatedMesh wires the skinning records to a geometry whose position
// stream it owns.
func NewAnimatedMesh(geom *geometry.Geometry, base *Skeleton, vertices []VertexWeights, weights []Weight) (*AnimatedMesh, error) {
	if geom.Positions() == nil {
		return nil, fmt.Errorf("animated mesh without position stream: %w", core.ErrInvalidArg)
	}
	if len(vertices) != geom.NumVertices() {
		return nil, fmt.Errorf("weight records (%d) do not match vertices (%d): %w",
			len(vertices), geom.NumVertices(), core.ErrInvalidSize)
	}
	return &AnimatedMesh{
		geom:      geom,
		baseSkel:  base,
		vertices:  vertices,
		weights:   weights,
		positions: geom.Positions().Data(),
		local:     true,
	}, nil
}

func (am *AnimatedMesh) Geometry() *geometry.Geometry { return am.geom }
func (am *AnimatedMesh) BaseSkeleton() *Skeleton      { return am.baseSkel }

// SetAnimationSkeleton records an animation skeleton on the mesh. Animate
// does not read it: it skins the current key of the Animation it is given.
func (am *AnimatedMesh) SetAnimationSkeleton(s *Skeleton) { am.animSkel = s }

// ApplySkeleton recomputes every vertex position from the pose and marks
// the geometry's position stream modified.
func (am *AnimatedMesh) ApplySkeleton(skel *Skeleton) error {
	joints := skel.Joints()
	for v := range am.vertices {
		var sum mgl32.Vec3
		span := am.vertices[v]
		for k := span.First; k < span.First+span.Count; k++ {
			w := &am.weights[k]
			if w.Joint < 0 || w.Joint >= len(joints) {
				return fmt.Errorf("weight %d references joint %d of %d: %w",
					k, w.Joint, len(joints), core.ErrInvalidArg)
			}
			j := &joints[w.Joint]
			p := j.Position.Add(j.Orientation.Rotate(w.Position))
			sum = sum.Add(p.Mul(w.Weight))
		}
		am.positions[v*3+0] = sum.X()
		am.positions[v*3+1] = sum.Y()
		am.positions[v*3+2] = sum.Z()
	}
	am.geom.Modified(am.geom.Positions(), nil)
	return nil
}

// ApplyBaseSkeleton rebuilds the bind pose.
func (am *AnimatedMesh) ApplyBaseSkeleton() error {
	return am.ApplySkeleton(am.baseSkel)
}

// Animate steps the animation and skins the interpolated pose.
func (am *AnimatedMesh) Animate(a *Animation, dt float32) error {
	a.Animate(dt)
	a.ComputeCurrentKey()
	return am.ApplySkeleton(a.Key())
}
