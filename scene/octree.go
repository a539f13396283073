// Package scene composes the transform node tree, the octree, cameras,
// lights, entities with LOD and instancing, and the per-frame
// update → cull → render orchestration.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/bounds"
	"github.com/scengine/scengine/core"
)

// OctreeElement is one spatially indexed entry: a bounding sphere plus a
// back-pointer to the octree node holding it. An element is free, held by
// exactly one node, or momentarily unlinked during re-insertion.
type OctreeElement struct {
	octree *Octree
	Sphere bounds.Sphere
	// Owner is the client object the element stands for.
	Owner any
}

func NewOctreeElement() *OctreeElement { return &OctreeElement{} }

// Octree returns the node currently holding the element, nil when free.
func (e *OctreeElement) Octree() *Octree { return e.octree }

// Octree partitions a fixed axis-aligned region. A node either has no
// children or exactly eight; the loose variant stores children enlarged
// by a margin ratio so moving elements change nodes less often.
type Octree struct {
	box      bounds.Box
	children [8]*Octree
	parent   *Octree
	elements []*OctreeElement

	loose bool
	ratio float32

	visible   bool
	partially bool
}

// NewOctree builds a leaf covering the box with minimum corner origin and
// the given sizes.
func NewOctree(origin mgl32.Vec3, w, h, d float32) *Octree {
	t := &Octree{}
	t.box.Set(origin, w, h, d)
	return t
}

// NewOctreeCentered builds a leaf covering a region around center.
func NewOctreeCentered(center mgl32.Vec3, w, h, d float32) *Octree {
	return NewOctree(center.Sub(mgl32.Vec3{w / 2, h / 2, d / 2}), w, h, d)
}

func (t *Octree) Box() *bounds.Box            { return &t.box }
func (t *Octree) Parent() *Octree             { return t.parent }
func (t *Octree) HasChildren() bool           { return t.children[0] != nil }
func (t *Octree) Children() *[8]*Octree       { return &t.children }
func (t *Octree) Elements() []*OctreeElement  { return t.elements }
func (t *Octree) Visible() bool               { return t.visible }
func (t *Octree) PartiallyVisible() bool      { return t.partially }

// MakeChildren splits the node into eight children ordered from the
// minimum corner: index = x + 2y + 4z. In loose mode each child's stored
// box is its half-region grown by ratio times the child size on every
// side.
func (t *Octree) MakeChildren(loose bool, ratio float32) error {
	if t.HasChildren() {
		return fmt.Errorf("octree already subdivided: %w", core.ErrInvalidOperation)
	}
	t.loose = loose
	t.ratio = ratio
	o := t.box.Origin()
	w2 := t.box.Width() / 2
	h2 := t.box.Height() / 2
	d2 := t.box.Depth() / 2

	i := 0
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				origin := o.Add(mgl32.Vec3{float32(x) * w2, float32(y) * h2, float32(z) * d2})
				cw, ch, cd := w2, h2, d2
				if loose {
					origin = origin.Sub(mgl32.Vec3{w2 * ratio, h2 * ratio, d2 * ratio})
					cw += 2 * w2 * ratio
					ch += 2 * h2 * ratio
					cd += 2 * d2 * ratio
				}
				child := NewOctree(origin, cw, ch, cd)
				child.parent = t
				t.children[i] = child
				i++
			}
		}
	}
	return nil
}

// MakeChildrenRecursive subdivides depth levels deep.
func (t *Octree) MakeChildrenRecursive(loose bool, ratio float32, depth int) error {
	if depth <= 0 {
		return nil
	}
	if err := t.MakeChildren(loose, ratio); err != nil {
		return err
	}
	for _, c := range t.children {
		if err := c.MakeChildrenRecursive(loose, ratio, depth-1); err != nil {
			return err
		}
	}
	return nil
}

// InsertElement places the element into the deepest node of this subtree
// whose box fully contains its sphere, along the node's insertion mode.
func (t *Octree) InsertElement(e *OctreeElement) {
	t.insert(e)
}

func (t *Octree) insert(e *OctreeElement) {
	if !t.HasChildren() {
		t.link(e)
		return
	}
	if t.loose {
		for _, c := range t.children {
			if bounds.AABBWithSphere(c.box.Min(), c.box.Max(), &e.Sphere) == bounds.In {
				c.insert(e)
				return
			}
		}
		t.link(e)
		return
	}
	for _, c := range t.children {
		switch bounds.AABBWithSphere(c.box.Min(), c.box.Max(), &e.Sphere) {
		case bounds.Partially:
			t.link(e)
			return
		case bounds.In:
			c.insert(e)
			return
		}
	}
	t.link(e)
}

func (t *Octree) link(e *OctreeElement) {
	t.elements = append(t.elements, e)
	e.octree = t
}

// ReinsertElement walks up from the element's current node until an
// ancestor fully contains the sphere, then re-inserts from there. An
// element that escaped the root region is left where it is and reported.
func ReinsertElement(log core.Logger, e *OctreeElement) error {
	node := e.octree
	if node == nil {
		return fmt.Errorf("element not in an octree: %w", core.ErrInvalidOperation)
	}
	for n := node; n != nil; n = n.parent {
		if bounds.AABBWithSphere(n.box.Min(), n.box.Max(), &e.Sphere) == bounds.In {
			RemoveElement(e)
			n.insert(e)
			return nil
		}
	}
	if log != nil {
		log.Errorf("octree element re-insertion failure: sphere at %v escapes the root region",
			e.Sphere.Center)
	}
	return fmt.Errorf("octree element out of the root region: %w", core.ErrInvalidOperation)
}

// RemoveElement unlinks the element from its node.
func RemoveElement(e *OctreeElement) {
	t := e.octree
	if t == nil {
		return
	}
	for i, el := range t.elements {
		if el == e {
			t.elements = append(t.elements[:i], t.elements[i+1:]...)
			break
		}
	}
	e.octree = nil
}

// MarkVisibles classifies every node against the frustum: a node fully
// outside clears its subtree lazily (the marks stop being read below it),
// a node fully inside is visible without partial flag, and a straddling
// node recurses.
func (t *Octree) MarkVisibles(f *bounds.Frustum) {
	switch f.BoxIn(&t.box) {
	case bounds.Out:
		t.visible = false
		t.partially = false
	case bounds.In:
		t.visible = true
		t.partially = false
	default:
		t.visible = true
		t.partially = true
		if t.HasChildren() {
			for _, c := range t.children {
				c.MarkVisibles(f)
			}
		}
	}
}
