package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/scengine/scengine/bounds"
)

// GetLODFunc maps a projected screen-space area to a LOD index, 0 being
// the most detailed.
type GetLODFunc func(area float32) int

// DefaultGetLOD is the stock mapping.
func DefaultGetLOD(area float32) int {
	if area <= 0 {
		return int(^uint(0) >> 1) // beyond every level
	}
	return int(0.4 / math32.Sqrt(area))
}

// LevelOfDetail selects a detail level from the projected size of a
// bounding box at the object's camera distance.
type LevelOfDetail struct {
	box    *bounds.Box
	getLOD GetLODFunc

	size float32
	dist float32
	lod  int
}

func NewLevelOfDetail() *LevelOfDetail {
	return &LevelOfDetail{getLOD: DefaultGetLOD}
}

func (l *LevelOfDetail) SetBoundingBox(b *bounds.Box) { l.box = b }
func (l *LevelOfDetail) BoundingBox() *bounds.Box     { return l.box }

// SetGetLODFunc overrides the area-to-level mapping; nil restores the
// default.
func (l *LevelOfDetail) SetGetLODFunc(f GetLODFunc) {
	if f == nil {
		f = DefaultGetLOD
	}
	l.getLOD = f
}

func (l *LevelOfDetail) LOD() int          { return l.lod }
func (l *LevelOfDetail) Size() float32     { return l.size }
func (l *LevelOfDetail) Distance() float32 { return l.dist }

// Compute projects the box at the object's distance and derives the
// level. The model matrix's translation is undone so only its rotation
// shapes the projected silhouette.
func (l *LevelOfDetail) Compute(m mgl32.Mat4, cam *Camera) int {
	t := m.Col(3).Vec3()
	l.dist = cam.Position().Sub(t).Len()

	rot := m
	rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	l.box.Push(rot)
	l.size = boxSurfaceFromDist(l.box, l.dist, cam)
	l.box.Pop()

	l.lod = l.getLOD(l.size)
	return l.lod
}

// boxSurfaceFromDist projects one face of the box, pushed dist units down
// the view axis, through the camera projection and measures the
// screen-space bounding rectangle of the result.
func boxSurfaceFromDist(box *bounds.Box, dist float32, cam *Camera) float32 {
	points := box.Points()
	proj := cam.Proj()

	var minX, minY, maxX, maxY float32
	for i := 0; i < 4; i++ {
		p := points[i]
		v := proj.Mul4x1(mgl32.Vec4{p.X(), p.Y(), p.Z() - dist, 1})
		w := v.W()
		if w == 0 {
			continue
		}
		x, y := v.X()/w, v.Y()/w
		if i == 0 {
			minX, maxX = x, x
			minY, maxY = y, y
			continue
		}
		minX = math32.Min(minX, x)
		maxX = math32.Max(maxX, x)
		minY = math32.Min(minY, y)
		maxY = math32.Max(maxY, y)
	}
	return (maxX - minX) * (maxY - minY)
}
