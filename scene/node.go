package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/core"
)

// NodeType selects how a node's final matrix is derived.
type NodeType int

const (
	// SingleMatrixNode reads its one matrix as the final matrix.
	SingleMatrixNode NodeType = iota
	// TreeNode composes the parent's final matrix with its read matrix
	// into a dedicated final slot.
	TreeNode
)

// Node marks.
const (
	markMoved uint8 = 1 << iota
	markForce
)

// NodeGroup is a table of matrix slot indices shared by the nodes bound
// to it. Swapping two indices redirects every bound node's read and write
// accessors at once, which is how a scene double-buffers last frame's
// matrices against this frame's without copying.
type NodeGroup struct {
	ids []int
}

// Slot conventions.
const (
	ReadMatrix  = 0
	WriteMatrix = 1
)

func NewNodeGroup(n int) *NodeGroup {
	g := &NodeGroup{ids: make([]int, n)}
	for i := range g.ids {
		g.ids[i] = i
	}
	return g
}

func (g *NodeGroup) NumSlots() int { return len(g.ids) }

// Switch swaps the indices stored at slots a and b.
func (g *NodeGroup) Switch(a, b int) {
	g.ids[a], g.ids[b] = g.ids[b], g.ids[a]
}

var defaultGroup = NewNodeGroup(2)

// MovedFunc is invoked after a node's final matrix is recomputed during
// the update walk.
type MovedFunc func(n *Node, arg any)

// Node is one transform in the hierarchy. A child is in exactly one of
// its parent's child list or to-update list; marking a node moved shifts
// it (and its ancestor chain) onto the to-update lists the update walk
// consumes.
type Node struct {
	parent   *Node
	children []*Node
	toupdate []*Node
	inUpdate bool // which parent list the node sits in

	element *OctreeElement

	group    *NodeGroup
	matrices []mgl32.Mat4
	typ      NodeType

	marks uint8

	moved    MovedFunc
	movedArg any

	// Data is free for the client, conventionally the owning instance.
	Data any
}

// NewNode creates a single-matrix node bound to the default two-slot
// group, with an octree element whose owner is the node itself.
func NewNode() *Node {
	n, _ := NewNodeInGroup(defaultGroup, SingleMatrixNode)
	return n
}

// NewTreeNode creates a tree node bound to the default group.
func NewTreeNode() *Node {
	n, _ := NewNodeInGroup(defaultGroup, TreeNode)
	return n
}

// NewNodeInGroup creates a node bound to a group. A tree node stores one
// extra matrix holding the composed final transform.
func NewNodeInGroup(group *NodeGroup, typ NodeType) (*Node, error) {
	if group == nil || group.NumSlots() < 1 {
		return nil, fmt.Errorf("node group without slots: %w", core.ErrInvalidArg)
	}
	count := group.NumSlots()
	if typ == TreeNode {
		count++
	}
	n := &Node{
		group:    group,
		typ:      typ,
		matrices: make([]mgl32.Mat4, count),
	}
	for i := range n.matrices {
		n.matrices[i] = mgl32.Ident4()
	}
	n.element = NewOctreeElement()
	n.element.Owner = n
	return n, nil
}

func (n *Node) Type() NodeType          { return n.typ }
func (n *Node) Parent() *Node           { return n.parent }
func (n *Node) HasParent() bool         { return n.parent != nil }
func (n *Node) Element() *OctreeElement { return n.element }
func (n *Node) Group() *NodeGroup       { return n.group }

// Matrix returns a pointer to the matrix at the group slot.
func (n *Node) Matrix(slot int) *mgl32.Mat4 {
	return &n.matrices[n.group.ids[slot]]
}

// Read is the matrix consumed by the update walk.
func (n *Node) Read() *mgl32.Mat4 { return n.Matrix(ReadMatrix) }

// Write is the matrix the client fills for the next frame. Writing does
// not mark the node; call HasMoved.
func (n *Node) Write() *mgl32.Mat4 { return n.Matrix(WriteMatrix) }

// Final is the matrix fed to draw calls: the composed matrix for parented
// tree nodes, the read matrix otherwise (an unparented node's read matrix
// is its final matrix).
func (n *Node) Final() *mgl32.Mat4 {
	if n.typ == TreeNode && n.parent != nil {
		return &n.matrices[len(n.matrices)-1]
	}
	return n.Read()
}

// SetMatrix copies m into the write slot; the value becomes visible to
// the update walk once the group switches read and write.
func (n *Node) SetMatrix(m mgl32.Mat4) { *n.Write() = m }

// SetLocal copies m straight into the read slot, for callers that do not
// double-buffer. Does not mark the node; call HasMoved.
func (n *Node) SetLocal(m mgl32.Mat4) { *n.Read() = m }

// SetOnMovedCallback registers f to run whenever the update walk
// recomputes this node.
func (n *Node) SetOnMovedCallback(f MovedFunc, arg any) {
	n.moved = f
	n.movedArg = arg
}

// Children returns the clean children; ToUpdate the moved ones.
func (n *Node) Children() []*Node { return n.children }
func (n *Node) ToUpdate() []*Node { return n.toupdate }

// AddChild attaches child, detaching it from any previous parent, and
// marks it moved so the next walk composes its matrices.
func (n *Node) AddChild(child *Node) {
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
	child.inUpdate = false
	child.HasMoved()
}

// Detach removes the node from its parent.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	p.removeFromLists(n)
	n.parent = nil
}

func (p *Node) removeFromLists(child *Node) {
	list := &p.children
	if child.inUpdate {
		list = &p.toupdate
	}
	for i, c := range *list {
		if c == child {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

func (p *Node) toUpdateList(child *Node) {
	if child.inUpdate {
		return
	}
	p.removeFromLists(child)
	p.toupdate = append(p.toupdate, child)
	child.inUpdate = true
}

// HasMoved marks the node as moved since the last update and lifts it
// (and its ancestor chain) onto the to-update lists. Idempotent; safe to
// call many times per frame.
func (n *Node) HasMoved() {
	n.marks |= markMoved
	for c := n; c.parent != nil; c = c.parent {
		c.parent.toUpdateList(c)
	}
}

// IsMoved reports whether the node still carries the moved mark.
func (n *Node) IsMoved() bool { return n.marks&markMoved != 0 }

// Force requests re-evaluation of the subtree on the next walk even if
// nothing marked it moved. Like HasMoved, it lifts the node (and its
// ancestor chain) onto the to-update lists so the walk reaches it.
func (n *Node) Force() {
	n.marks |= markForce
	for c := n; c.parent != nil; c = c.parent {
		c.parent.toUpdateList(c)
	}
	kids := append(append([]*Node(nil), n.children...), n.toupdate...)
	for _, c := range kids {
		c.Force()
	}
}

func (n *Node) DontForce() { n.marks &^= markForce }
func (n *Node) IsForced() bool { return n.marks&markForce != 0 }

// updateMatrix recomputes the final matrix and fires the moved callback.
func (n *Node) updateMatrix() {
	if n.typ == TreeNode && n.parent != nil {
		*n.Final() = n.parent.Final().Mul4(*n.Read())
	}
	if n.moved != nil {
		n.moved(n, n.movedArg)
	}
}

// updateForced recomputes the whole subtree.
func (n *Node) updateForced() {
	n.updateMatrix()
	n.spliceToUpdate()
	for _, c := range n.children {
		c.updateForced()
	}
	n.marks = 0
}

// updateRecursive descends to the moved nodes: a marked node rebuilds its
// subtree, an unmarked one only relays the walk to the children that need
// it.
func (n *Node) updateRecursive() {
	if n.marks != 0 {
		n.updateMatrix()
		for _, c := range n.toupdate {
			c.updateForced()
		}
		for _, c := range n.children {
			c.updateForced()
		}
		n.marks = 0
	} else {
		for _, c := range n.toupdate {
			c.updateRecursive()
		}
	}
	n.spliceToUpdate()
}

func (n *Node) spliceToUpdate() {
	for _, c := range n.toupdate {
		c.inUpdate = false
	}
	n.children = append(n.children, n.toupdate...)
	n.toupdate = n.toupdate[:0]
}

// UpdateRootRecursive runs the deferred update walk from a root: every
// marked node reachable through to-update lists is recomputed together
// with its whole subtree, unmarked nodes on the lists only relay the
// walk, and the lists are spliced back empty.
func (n *Node) UpdateRootRecursive() {
	if n.marks != 0 {
		// a forced or moved root re-evaluates everything below it
		n.updateForced()
		return
	}
	for _, c := range n.toupdate {
		c.updateRecursive()
	}
	n.spliceToUpdate()
}
