// Package geometry models CPU-side geometry: attribute arrays with an
// update protocol that propagates edits to whoever mirrors them (usually a
// vertex buffer), interleave chains, index data and lazy bounding volumes.
package geometry

import (
	"github.com/scengine/scengine/core"
)

// UserFunc is a client callback fired when an array it registered on is
// updated.
type UserFunc func(a *Array, arg any)

type arrayUser struct {
	fn  UserFunc
	arg any
}

// Array wraps one vertex attribute stream. Arrays may be attached into an
// interleave chain; the root of a chain describes the stride for the whole
// group and owns the backing storage.
type Array struct {
	va   core.VertexArray
	data []float32

	root     *Array
	children []*Array

	users    []arrayUser
	rng      core.Range // modified vertex range
	modified bool
	geom     *Geometry
}

// NewArray builds a float32 attribute stream with tightly packed
// components.
func NewArray(attrib core.Attrib, components int32, data []float32) *Array {
	a := &Array{data: data}
	a.va = *core.NewVertexArray(attrib, core.Float32, components)
	a.va.Stride = components * 4
	a.va.Data = core.Float32Bytes(data)
	a.root = a
	return a
}

func (a *Array) Attrib() core.Attrib           { return a.va.Attrib }
func (a *Array) VertexArray() *core.VertexArray { return &a.va }
func (a *Array) Data() []float32               { return a.data }
func (a *Array) Bytes() []byte                 { return core.Float32Bytes(a.data) }
func (a *Array) Root() *Array                  { return a.root }
func (a *Array) Children() []*Array            { return a.children }
func (a *Array) IsModified() bool              { return a.modified }
func (a *Array) ModifiedRange() core.Range     { return a.rng }

// Attach links child into a's interleave chain: both describe the same
// backing segment, addressed with the root's stride and the child's byte
// offset inside one vertex record.
func (a *Array) Attach(child *Array, offset int) {
	root := a.root
	child.root = root
	child.va.Stride = root.va.Stride
	child.va.Offset = offset
	child.data = nil
	child.va.Data = nil
	root.children = append(root.children, child)
}

// AddUser registers a callback fired by Update.
func (a *Array) AddUser(fn UserFunc, arg any) {
	a.users = append(a.users, arrayUser{fn: fn, arg: arg})
}

// RemoveUser unregisters every user with the given argument.
func (a *Array) RemoveUser(arg any) {
	kept := a.users[:0]
	for _, u := range a.users {
		if u.arg != arg {
			kept = append(kept, u)
		}
	}
	a.users = kept
}

// update fires the registered users and clears the pending range.
func (a *Array) update() {
	for _, u := range a.users {
		u.fn(a, u.arg)
	}
	a.modified = false
	a.rng = core.Range{}
}
