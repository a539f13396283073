// Package anim holds the skeletal animation core: joints, keyframe
// skeletons, interpolation and per-frame animation stepping.
package anim

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Joint is one bone: a parent index (-1 for roots), a position and an
// orientation, both relative to the parent until made absolute.
type Joint struct {
	Parent      int
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

func NewJoint() Joint {
	return Joint{Parent: -1, Orientation: mgl32.QuatIdent()}
}

// Matrix is the joint's affine transform: the orientation as rotation,
// the position as translation.
func (j *Joint) Matrix() mgl32.Mat4 {
	m := j.Orientation.Mat4()
	m.SetCol(3, j.Position.Vec4(1))
	return m
}

// ComputeW fills in the scalar part of a unit quaternion stored as xyz,
// the way keyframe files persist orientations.
func ComputeW(v mgl32.Vec3) mgl32.Quat {
	t := 1 - v.Dot(v)
	w := float32(0)
	if t > 0 {
		w = -sqrt32(t)
	}
	return mgl32.Quat{W: w, V: v}
}
