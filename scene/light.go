package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/bounds"
)

// Light is a scene light riding a node. Its position and direction come
// from the node's final matrix; its bounding sphere is sized by the
// attenuation radius so culling can drop lights that cannot reach the
// view.
type Light struct {
	node *Node

	Color     [4]float32
	Intensity float32
	// Radius is the attenuation distance; 0 means unattenuated.
	Radius float32
	// Angle is the spot half-angle in radians; 0 means omnidirectional.
	Angle float32
	// Infinite marks a directional light.
	Infinite bool

	sphere    bounds.Sphere
	activated bool
}

func NewLight() *Light {
	l := &Light{
		Color:     [4]float32{1, 1, 1, 1},
		Intensity: 1,
		Radius:    16,
		activated: true,
	}
	l.node = NewTreeNode()
	l.node.Data = l
	l.sphere = bounds.NewSphere(mgl32.Vec3{}, l.Radius)
	l.node.SetOnMovedCallback(lightMoved, l)
	return l
}

func lightMoved(n *Node, arg any) {
	l := arg.(*Light)
	l.sphere.Center = l.Position()
}

func (l *Light) Node() *Node             { return l.node }
func (l *Light) Sphere() *bounds.Sphere  { return &l.sphere }
func (l *Light) Activated() bool         { return l.activated }
func (l *Light) Activate(a bool)         { l.activated = a }

// SetRadius resizes the influence sphere with the attenuation distance.
func (l *Light) SetRadius(r float32) {
	l.Radius = r
	l.sphere.Radius = r
}

// Position is the light's world position.
func (l *Light) Position() mgl32.Vec3 {
	return l.node.Final().Col(3).Vec3()
}

// Direction is the light's forward axis (-Z of the node frame).
func (l *Light) Direction() mgl32.Vec3 {
	return l.node.Final().Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3().Normalize()
}

// Reaches reports whether the light can affect anything inside the
// frustum; infinite lights always do.
func (l *Light) Reaches(f *bounds.Frustum) bool {
	if l.Infinite || l.Radius <= 0 {
		return true
	}
	return f.SphereIn(&l.sphere) != bounds.Out
}
