package main

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/scengine/scengine/bounds"
	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/geometry"
	"github.com/scengine/scengine/scene"
)

func cosf(v float32) float32 { return math32.Cos(v) }
func sinf(v float32) float32 { return math32.Sin(v) }

// boxEntity builds a triangle-form box entity of the given edge length.
func boxEntity(ctx *core.Context, size float32) (*scene.Entity, error) {
	half := size / 2
	box := bounds.NewBox(mgl32.Vec3{-half, -half, -half}, size, size, size)
	geom, err := geometry.NewBoxGeometry(core.Triangles, &box)
	if err != nil {
		return nil, err
	}
	mesh := geometry.NewMesh(geom)
	if err := mesh.Build(ctx, core.StaticDraw, core.RenderUnifiedVAO); err != nil {
		return nil, err
	}
	return scene.NewEntity(mesh)
}
