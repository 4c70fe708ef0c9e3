package opengl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"planetview/core"
	"planetview/gpu"
	"planetview/rendering/opengl/shaders"
	"planetview/telemetry"
)

// Surface is the window the renderer presents to. It owns the context the
// device draws into.
type Surface interface {
	ShouldClose() bool
	SwapBuffers()
	PollEvents()
	FramebufferSize() (width, height int)
	// Time returns the platform clock in seconds.
	Time() float64
}

// StatsSink receives a sample every time the FPS estimate is refreshed.
type StatsSink interface {
	Publish(telemetry.FrameStats)
}

type State int

const (
	Running State = iota
	Closed
)

func (s State) String() string {
	if s == Closed {
		return "closed"
	}
	return "running"
}

// Options configures the scene. Zero values fall back to the defaults.
type Options struct {
	Camera     *Camera
	LightPos   *mgl32.Vec3
	Planet     *core.Planet
	ClearColor [4]float32
	Stats      StatsSink
}

// PlanetRenderer draws a single lit sphere every frame.
type PlanetRenderer struct {
	dev     gpu.Device
	surface Surface

	program uint32
	mesh    *MeshBuffers

	// Uniform locations
	modelLoc      int32
	viewLoc       int32
	projectionLoc int32
	lightPosLoc   int32

	planet     *core.Planet
	camera     Camera
	lightPos   mgl32.Vec3
	viewMatrix mgl32.Mat4
	projMatrix mgl32.Mat4

	width, height int

	fps    FPSCounter
	frames uint64
	stats  StatsSink

	state      State
	terminated bool
}

// NewPlanetRenderer sets up GL state, compiles the planet program and uploads
// mesh. Any failure is returned after releasing what was already created.
func NewPlanetRenderer(dev gpu.Device, surface Surface, mesh *core.Mesh, opts Options) (*PlanetRenderer, error) {
	r := &PlanetRenderer{
		dev:      dev,
		surface:  surface,
		planet:   opts.Planet,
		camera:   DefaultCamera(),
		lightPos: mgl32.Vec3{5, 5, 5},
		stats:    opts.Stats,
	}
	if r.planet == nil {
		r.planet = core.NewPlanet()
	}
	if opts.Camera != nil {
		r.camera = *opts.Camera
	}
	if opts.LightPos != nil {
		r.lightPos = *opts.LightPos
	}

	dev.Enable(gpu.DepthTest)
	dev.DepthFunc(gpu.DepthLess)
	dev.Enable(gpu.Multisample)
	dev.PolygonMode(gpu.PolygonFill)
	c := opts.ClearColor
	dev.ClearColor(c[0], c[1], c[2], 1)

	r.viewMatrix = r.camera.View()
	width, height := surface.FramebufferSize()
	r.HandleFramebufferResize(width, height)
	if width <= 0 || height <= 0 {
		// Minimised at startup; square until the first real resize.
		r.projMatrix = r.camera.Projection(1)
	}

	program, err := shaders.CompilePlanetProgram(dev)
	if err != nil {
		return nil, fmt.Errorf("failed to compile planet shaders: %w", err)
	}
	r.program = program

	buffers, err := UploadMesh(dev, mesh)
	if err != nil {
		dev.DeleteProgram(program)
		return nil, fmt.Errorf("failed to upload planet mesh: %w", err)
	}
	r.mesh = buffers

	r.modelLoc = r.uniformLocation(shaders.UniformModel)
	r.viewLoc = r.uniformLocation(shaders.UniformView)
	r.projectionLoc = r.uniformLocation(shaders.UniformProjection)
	r.lightPosLoc = r.uniformLocation(shaders.UniformLightPos)

	r.checkErrors("setup")
	r.fps.Reset(surface.Time())

	slog.Info("renderer ready", "vertices", buffers.VertexCount(), "indices", buffers.IndexCount(),
		"width", r.width, "height", r.height)
	return r, nil
}

func (r *PlanetRenderer) uniformLocation(name string) int32 {
	loc := r.dev.UniformLocation(r.program, name)
	if loc < 0 {
		slog.Warn("uniform not found in planet program", "uniform", name)
	}
	return loc
}

// Frame renders and presents one frame.
func (r *PlanetRenderer) Frame() {
	r.dev.Clear(gpu.ColorBuffer | gpu.DepthBuffer)

	r.dev.UseProgram(r.program)
	r.dev.UniformMatrix4(r.modelLoc, r.planet.ModelMatrix())
	r.dev.UniformMatrix4(r.viewLoc, r.viewMatrix)
	r.dev.UniformMatrix4(r.projectionLoc, r.projMatrix)
	r.dev.Uniform3(r.lightPosLoc, r.lightPos)

	r.mesh.Draw()
	r.frames++

	now := r.surface.Time()
	if fps, ok := r.fps.Tick(now); ok {
		r.reportFPS(fps, now)
	}

	r.checkErrors("frame")

	r.surface.SwapBuffers()
	r.surface.PollEvents()
}

func (r *PlanetRenderer) reportFPS(fps, now float64) {
	slog.Debug("frame rate", "fps", fmt.Sprintf("%.1f", fps), "frames", r.frames)
	if r.stats == nil {
		return
	}
	r.stats.Publish(telemetry.FrameStats{
		FPS:      fps,
		Frames:   r.frames,
		Vertices: r.mesh.VertexCount(),
		Indices:  r.mesh.IndexCount(),
		Width:    r.width,
		Height:   r.height,
		Time:     now,
	})
}

// Run renders frames until the surface asks to close or ctx is cancelled.
// It returns nil when the window closed and ctx.Err() on cancellation.
func (r *PlanetRenderer) Run(ctx context.Context) error {
	for r.state == Running {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.surface.ShouldClose() {
			r.state = Closed
			break
		}
		r.Frame()
	}
	slog.Info("render loop finished", "frames", r.frames, "fps", fmt.Sprintf("%.1f", r.fps.FPS()))
	return nil
}

// HandleFramebufferResize stores the new framebuffer size, resets the
// viewport and recomputes the projection for the new aspect ratio. A zero
// size (minimised window) keeps the previous projection.
func (r *PlanetRenderer) HandleFramebufferResize(width, height int) {
	r.width = width
	r.height = height
	if width <= 0 || height <= 0 {
		return
	}

	r.dev.Viewport(0, 0, int32(width), int32(height))
	r.projMatrix = r.camera.Projection(float32(width) / float32(height))
}

// checkErrors logs every pending GL error. Errors are never fatal here.
func (r *PlanetRenderer) checkErrors(stage string) {
	for _, code := range gpu.DrainErrors(r.dev) {
		slog.Warn("OpenGL error", "stage", stage, "code", fmt.Sprintf("0x%x", code))
	}
}

func (r *PlanetRenderer) State() State { return r.state }

// Size returns the last framebuffer size seen.
func (r *PlanetRenderer) Size() (int, int) { return r.width, r.height }

func (r *PlanetRenderer) Projection() mgl32.Mat4 { return r.projMatrix }

func (r *PlanetRenderer) View() mgl32.Mat4 { return r.viewMatrix }

func (r *PlanetRenderer) FPS() float64 { return r.fps.FPS() }

func (r *PlanetRenderer) FrameCount() uint64 { return r.frames }

// Terminate releases the mesh buffers and the program. It is safe to call
// more than once. The window and context are released by their owner.
func (r *PlanetRenderer) Terminate() {
	if r.terminated {
		return
	}
	r.terminated = true
	r.state = Closed

	r.mesh.Release()
	r.dev.DeleteProgram(r.program)
	r.checkErrors("teardown")
}
