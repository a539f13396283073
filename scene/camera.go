package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/bounds"
)

// Viewport is the target rectangle in pixels.
type Viewport struct {
	X, Y          int32
	Width, Height int32
}

// Camera owns the view and projection matrices, their inverses and
// products, the extracted frustum and a node so it can ride the
// transform hierarchy like any other object.
type Camera struct {
	proj     mgl32.Mat4
	invProj  mgl32.Mat4
	view     mgl32.Mat4
	invView  mgl32.Mat4
	viewProj mgl32.Mat4
	invVP    mgl32.Mat4

	viewport Viewport
	frustum  bounds.Frustum
	sphere   bounds.Sphere
	node     *Node
}

func NewCamera() *Camera {
	c := &Camera{
		proj:     mgl32.Ident4(),
		invProj:  mgl32.Ident4(),
		view:     mgl32.Ident4(),
		invView:  mgl32.Ident4(),
		viewProj: mgl32.Ident4(),
		invVP:    mgl32.Ident4(),
		node:     NewTreeNode(),
		sphere:   bounds.NewSphere(mgl32.Vec3{}, 1),
	}
	c.node.Data = c
	return c
}

func (c *Camera) Node() *Node             { return c.node }
func (c *Camera) Frustum() *bounds.Frustum { return &c.frustum }
func (c *Camera) Sphere() *bounds.Sphere   { return &c.sphere }

func (c *Camera) SetViewport(x, y, w, h int32) {
	c.viewport = Viewport{X: x, Y: y, Width: w, Height: h}
}

func (c *Camera) GetViewport() Viewport { return c.viewport }

// SetProjection installs the projection matrix.
func (c *Camera) SetProjection(proj mgl32.Mat4) {
	c.proj = proj
	c.invProj = proj.Inv()
}

// SetPerspective is the common projection setup.
func (c *Camera) SetPerspective(fovy, aspect, near, far float32) {
	c.SetProjection(mgl32.Perspective(fovy, aspect, near, far))
}

// LookAt places the camera node so its final matrix is the inverse view.
func (c *Camera) LookAt(eye, center, up mgl32.Vec3) {
	c.node.SetLocal(mgl32.LookAtV(eye, center, up).Inv())
	c.node.HasMoved()
}

func (c *Camera) Proj() mgl32.Mat4     { return c.proj }
func (c *Camera) View() mgl32.Mat4     { return c.view }
func (c *Camera) ViewProj() mgl32.Mat4 { return c.viewProj }
func (c *Camera) InvView() mgl32.Mat4  { return c.invView }
func (c *Camera) InvViewProj() mgl32.Mat4 { return c.invVP }

// Position is the camera's world position, taken from the node's final
// matrix.
func (c *Camera) Position() mgl32.Vec3 {
	return c.node.Final().Col(3).Vec3()
}

// Update derives view, products, inverses, frustum and the positioning
// sphere from the node's final matrix. Runs after the node walk.
func (c *Camera) Update() {
	final := *c.node.Final()
	c.invView = final
	c.view = final.Inv()
	c.viewProj = c.proj.Mul4(c.view)
	c.invVP = c.viewProj.Inv()
	c.frustum = bounds.FrustumFromMatrix(c.viewProj)
	c.sphere.Center = c.Position()
}
