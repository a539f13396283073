// scdemo opens a window and drives a small scene: a grid of instanced
// boxes under a point light, culled and drawn through the scene core.
// It is a wiring example; it uses the fixed vertex attributes without any
// shader, so recent drivers render it only under a compatibility context.
package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/scengine/scengine/core"
	"github.com/scengine/scengine/gldevice"
	"github.com/scengine/scengine/scene"
)

const (
	windowWidth  = 1024
	windowHeight = 768
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

func main() {
	settingsPath := flag.String("settings", "", "yaml scene settings file")
	flag.Parse()

	if err := glfw.Init(); err != nil {
		log.Fatalln("failed to initialize glfw:", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err := glfw.CreateWindow(windowWidth, windowHeight, "scdemo", nil, nil)
	if err != nil {
		log.Fatalln("failed to create window:", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	dev, err := gldevice.New()
	if err != nil {
		log.Fatalln("failed to initialize the device:", err)
	}
	logger := core.NewDefaultLogger("scdemo", false)
	ctx := core.NewContext(dev, logger)
	ctx.SetUpdateMethod(core.UpdateMapRange)

	settings := scene.DefaultSettings()
	if *settingsPath != "" {
		settings, err = scene.LoadSettings(*settingsPath)
		if err != nil {
			log.Fatalln("failed to load settings:", err)
		}
	}

	sc, err := scene.NewScene(ctx, settings)
	if err != nil {
		log.Fatalln("failed to build the scene:", err)
	}

	group, err := boxGrid(ctx)
	if err != nil {
		log.Fatalln("failed to build the box grid:", err)
	}
	sc.AddEntityGroup(group)

	light := scene.NewLight()
	light.SetRadius(200)
	light.Node().SetLocal(mgl32.Translate3D(0, 30, 0))
	light.Node().HasMoved()
	sc.AddLight(light)

	cam := scene.NewCamera()
	cam.SetPerspective(mgl32.DegToRad(60), float32(windowWidth)/windowHeight, 0.5, 1000)
	cam.SetViewport(0, 0, windowWidth, windowHeight)

	start := glfw.GetTime()
	for !window.ShouldClose() {
		t := float32(glfw.GetTime() - start)
		eye := mgl32.Vec3{40 * cosf(t*0.3), 25, 40 * sinf(t*0.3)}
		cam.LookAt(eye, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
		cam.Node().UpdateRootRecursive()

		sc.Update(cam, nil, 0)
		sc.Render(nil)

		window.SwapBuffers()
		glfw.PollEvents()
	}
}

// boxGrid builds one box entity replayed over a 8x8 grid of instances.
func boxGrid(ctx *core.Context) (*scene.EntityGroup, error) {
	entity, err := boxEntity(ctx, 4)
	if err != nil {
		return nil, err
	}
	entity.InstanceGroup().SetMode(scene.PseudoInstancing)

	group := scene.NewEntityGroup(entity)
	for x := 0; x < 8; x++ {
		for z := 0; z < 8; z++ {
			inst := scene.NewInstance()
			inst.Node().SetLocal(mgl32.Translate3D(
				float32(x-4)*8, 0, float32(z-4)*8))
			inst.Node().HasMoved()
			if err := group.AddInstance(inst); err != nil {
				return nil, err
			}
		}
	}
	return group, nil
}
