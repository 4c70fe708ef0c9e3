package opengl

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"planetview/core"
	"planetview/gpu"
	"planetview/gpu/gputest"
	"planetview/rendering/opengl/shaders"
	"planetview/telemetry"
)

// fakeSurface advances its clock by one tick per Time call.
type fakeSurface struct {
	width, height int
	closeAfter    int     // frames presented before ShouldClose reports true, <0 never
	rate          float64 // clock ticks per second

	calls  int
	swaps  int
	polls  int
	onPoll func()
}

func (s *fakeSurface) ShouldClose() bool {
	return s.closeAfter >= 0 && s.swaps >= s.closeAfter
}

func (s *fakeSurface) SwapBuffers() { s.swaps++ }

func (s *fakeSurface) PollEvents() {
	s.polls++
	if s.onPoll != nil {
		s.onPoll()
	}
}

func (s *fakeSurface) FramebufferSize() (int, int) { return s.width, s.height }

func (s *fakeSurface) Time() float64 {
	t := float64(s.calls) / s.rate
	s.calls++
	return t
}

type statsCollector struct {
	samples []telemetry.FrameStats
}

func (c *statsCollector) Publish(s telemetry.FrameStats) { c.samples = append(c.samples, s) }

func newSurface() *fakeSurface {
	return &fakeSurface{width: 640, height: 480, closeAfter: -1, rate: 60}
}

func newTestRenderer(t *testing.T, dev *gputest.Recorder, surface Surface, mesh *core.Mesh, opts Options) *PlanetRenderer {
	t.Helper()
	r, err := NewPlanetRenderer(dev, surface, mesh, opts)
	if err != nil {
		t.Fatalf("NewPlanetRenderer: %v", err)
	}
	return r
}

func TestUploadMatchesMesh(t *testing.T) {
	dev := gputest.NewRecorder()
	mesh := core.GenerateUVSphere(1, 8, 4)
	r := newTestRenderer(t, dev, newSurface(), mesh, Options{})
	defer r.Terminate()

	if len(dev.Uploads) != 2 {
		t.Fatalf("uploads = %d, want 2", len(dev.Uploads))
	}
	vertices, indices := dev.Uploads[0], dev.Uploads[1]
	if vertices.Target != gpu.ArrayBuffer || len(vertices.Floats) != 3*mesh.VertexCount() {
		t.Errorf("vertex upload: target %v, %d floats", vertices.Target, len(vertices.Floats))
	}
	for i, v := range mesh.Vertices {
		if vertices.Floats[i] != v {
			t.Fatalf("vertex float %d = %g, want %g", i, vertices.Floats[i], v)
		}
	}
	if indices.Target != gpu.ElementArrayBuffer || len(indices.Uints) != mesh.IndexCount() {
		t.Errorf("index upload: target %v, %d indices", indices.Target, len(indices.Uints))
	}
	for i, idx := range mesh.Indices {
		if indices.Uints[i] != idx {
			t.Fatalf("index %d = %d, want %d", i, indices.Uints[i], idx)
		}
	}

	if len(dev.Attribs) != 1 {
		t.Fatalf("attribs = %d, want 1", len(dev.Attribs))
	}
	a := dev.Attribs[0]
	if a.Index != shaders.PositionAttrib || a.Size != 3 || a.Stride != 12 || a.Offset != 0 || !a.Enabled {
		t.Errorf("attrib = %+v", a)
	}
	if a.Buffer != vertices.Buffer {
		t.Errorf("attrib sourced from buffer %d, vertices live in %d", a.Buffer, vertices.Buffer)
	}
}

func TestSetupState(t *testing.T) {
	dev := gputest.NewRecorder()
	r := newTestRenderer(t, dev, newSurface(), core.GenerateUVSphere(1, 8, 4), Options{})
	defer r.Terminate()

	if !dev.Enabled[gpu.DepthTest] || !dev.Enabled[gpu.Multisample] {
		t.Errorf("enabled = %v", dev.Enabled)
	}
	if len(dev.Viewports) != 1 || dev.Viewports[0] != [4]int32{0, 0, 640, 480} {
		t.Errorf("viewports = %v", dev.Viewports)
	}
	if w, h := r.Size(); w != 640 || h != 480 {
		t.Errorf("size = %dx%d", w, h)
	}
	if r.State() != Running {
		t.Errorf("state = %v", r.State())
	}
}

func TestFrameSetsUniformsAndDraws(t *testing.T) {
	dev := gputest.NewRecorder()
	mesh := core.GenerateUVSphere(1, 8, 4)
	surface := newSurface()
	r := newTestRenderer(t, dev, surface, mesh, Options{})
	defer r.Terminate()

	r.Frame()

	if len(dev.Draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(dev.Draws))
	}
	d := dev.Draws[0]
	if d.Mode != gpu.TriangleStrip || int(d.Count) != mesh.IndexCount() {
		t.Errorf("draw = %+v", d)
	}
	if d.Program == 0 || d.VertexArray == 0 {
		t.Errorf("draw without program or vertex array: %+v", d)
	}

	wantView := mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	if got := dev.Uniforms[shaders.UniformView]; got != wantView {
		t.Errorf("view = %v, want %v", got, wantView)
	}
	if got := dev.Uniforms[shaders.UniformModel]; got != mgl32.Ident4() {
		t.Errorf("model = %v, want identity", got)
	}
	wantProj := mgl32.Perspective(mgl32.DegToRad(45), 640.0/480.0, 0.1, 100)
	if got := dev.Uniforms[shaders.UniformProjection]; got != wantProj {
		t.Errorf("projection = %v, want %v", got, wantProj)
	}
	if got := dev.Uniforms[shaders.UniformLightPos]; got != (mgl32.Vec3{5, 5, 5}) {
		t.Errorf("lightPos = %v", got)
	}

	if dev.Clears != 1 || surface.swaps != 1 || surface.polls != 1 {
		t.Errorf("clears %d swaps %d polls %d", dev.Clears, surface.swaps, surface.polls)
	}
}

func TestOptionsOverrideScene(t *testing.T) {
	dev := gputest.NewRecorder()
	light := mgl32.Vec3{1, 2, 3}
	planet := &core.Planet{Position: mgl32.Vec3{1, 0, 0}, Radius: 2}
	r := newTestRenderer(t, dev, newSurface(), core.GenerateUVSphere(1, 8, 4), Options{
		LightPos: &light,
		Planet:   planet,
	})
	defer r.Terminate()

	r.Frame()
	if got := dev.Uniforms[shaders.UniformLightPos]; got != light {
		t.Errorf("lightPos = %v", got)
	}
	if got := dev.Uniforms[shaders.UniformModel]; got != planet.ModelMatrix() {
		t.Errorf("model = %v", got)
	}
}

func TestFPSSample(t *testing.T) {
	dev := gputest.NewRecorder()
	stats := &statsCollector{}
	mesh := core.GenerateUVSphere(1, 8, 4)
	r := newTestRenderer(t, dev, newSurface(), mesh, Options{Stats: stats})
	defer r.Terminate()

	for i := 0; i < 59; i++ {
		r.Frame()
	}
	if len(stats.samples) != 0 {
		t.Fatalf("sampled before a second elapsed: %+v", stats.samples)
	}

	r.Frame()
	if len(stats.samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(stats.samples))
	}
	s := stats.samples[0]
	if s.FPS != 60 {
		t.Errorf("fps = %g, want 60", s.FPS)
	}
	if s.Frames != 60 || s.Vertices != mesh.VertexCount() || s.Indices != mesh.IndexCount() {
		t.Errorf("sample = %+v", s)
	}
	if s.Width != 640 || s.Height != 480 {
		t.Errorf("sample size = %dx%d", s.Width, s.Height)
	}
	if r.fps.Frames() != 0 {
		t.Errorf("frame counter not reset: %d", r.fps.Frames())
	}
	if r.FPS() != 60 {
		t.Errorf("FPS() = %g", r.FPS())
	}
}

func TestResizeUpdatesViewportAndProjection(t *testing.T) {
	dev := gputest.NewRecorder()
	r := newTestRenderer(t, dev, newSurface(), core.GenerateUVSphere(1, 8, 4), Options{})
	defer r.Terminate()

	r.HandleFramebufferResize(800, 600)

	if w, h := r.Size(); w != 800 || h != 600 {
		t.Errorf("size = %dx%d, want 800x600", w, h)
	}
	last := dev.Viewports[len(dev.Viewports)-1]
	if last != [4]int32{0, 0, 800, 600} {
		t.Errorf("viewport = %v", last)
	}
	want := mgl32.Perspective(mgl32.DegToRad(45), 800.0/600.0, 0.1, 100)
	if r.Projection() != want {
		t.Errorf("projection = %v, want %v", r.Projection(), want)
	}

	r.Frame()
	if got := dev.Uniforms[shaders.UniformProjection]; got != want {
		t.Errorf("frame projection = %v", got)
	}
}

func TestResizeToZeroKeepsProjection(t *testing.T) {
	dev := gputest.NewRecorder()
	r := newTestRenderer(t, dev, newSurface(), core.GenerateUVSphere(1, 8, 4), Options{})
	defer r.Terminate()

	before := r.Projection()
	viewports := len(dev.Viewports)
	r.HandleFramebufferResize(0, 0)

	if r.Projection() != before {
		t.Error("projection changed on zero-size framebuffer")
	}
	if len(dev.Viewports) != viewports {
		t.Error("viewport set for zero-size framebuffer")
	}
}

func TestZeroInitialFramebufferUsesSquareProjection(t *testing.T) {
	dev := gputest.NewRecorder()
	surface := newSurface()
	surface.width, surface.height = 0, 0
	r := newTestRenderer(t, dev, surface, core.GenerateUVSphere(1, 8, 4), Options{})
	defer r.Terminate()

	want := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	if r.Projection() != want {
		t.Errorf("projection = %v, want %v", r.Projection(), want)
	}
	if len(dev.Viewports) != 0 {
		t.Errorf("viewport set for zero-size framebuffer: %v", dev.Viewports)
	}

	r.HandleFramebufferResize(800, 600)
	if r.Projection() != mgl32.Perspective(mgl32.DegToRad(45), 800.0/600.0, 0.1, 100) {
		t.Error("projection not updated by the first real resize")
	}
}

func TestTerminateReleasesEverythingOnce(t *testing.T) {
	dev := gputest.NewRecorder()
	r := newTestRenderer(t, dev, newSurface(), core.GenerateUVSphere(1, 8, 4), Options{})
	r.Frame()

	if dev.LiveCount(gputest.KindProgram) != 1 || dev.LiveCount(gputest.KindBuffer) != 2 ||
		dev.LiveCount(gputest.KindVertexArray) != 1 {
		t.Fatalf("live before teardown = %v", dev.Live())
	}
	if dev.LiveCount(gputest.KindShader) != 0 {
		t.Errorf("shader objects outlived the link: %v", dev.Live())
	}

	r.Terminate()
	r.Terminate()

	if err := dev.CheckReleased(); err != nil {
		t.Error(err)
	}
	if r.State() != Closed {
		t.Errorf("state = %v", r.State())
	}
}

func TestEmptyMeshDrawsNothing(t *testing.T) {
	dev := gputest.NewRecorder()
	r := newTestRenderer(t, dev, newSurface(), &core.Mesh{}, Options{})

	r.Frame()
	r.Frame()

	if len(dev.Draws) != 0 {
		t.Errorf("draws = %d for empty mesh", len(dev.Draws))
	}
	r.Terminate()
	if err := dev.CheckReleased(); err != nil {
		t.Error(err)
	}
}

func TestShaderFailureIsFatal(t *testing.T) {
	dev := gputest.NewRecorder()
	dev.FailCompile = map[gpu.ShaderStage]string{gpu.FragmentShader: "0:3: syntax error"}

	_, err := NewPlanetRenderer(dev, newSurface(), core.GenerateUVSphere(1, 8, 4), Options{})
	if !errors.Is(err, shaders.ErrCompile) {
		t.Fatalf("err = %v, want ErrCompile", err)
	}
	if len(dev.Uploads) != 0 {
		t.Error("mesh uploaded after shader failure")
	}
	if err := dev.CheckReleased(); err != nil {
		t.Error(err)
	}
}

func TestGLErrorsAreDrained(t *testing.T) {
	dev := gputest.NewRecorder()
	r := newTestRenderer(t, dev, newSurface(), core.GenerateUVSphere(1, 8, 4), Options{})
	defer r.Terminate()

	dev.Errors = []uint32{0x0500, 0x0502}
	r.Frame()
	if len(dev.Errors) != 0 {
		t.Errorf("pending errors after frame: %v", dev.Errors)
	}
}

func TestRunStopsWhenSurfaceCloses(t *testing.T) {
	dev := gputest.NewRecorder()
	surface := newSurface()
	surface.closeAfter = 5
	r := newTestRenderer(t, dev, surface, core.GenerateUVSphere(1, 8, 4), Options{})
	defer r.Terminate()

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.FrameCount() != 5 || len(dev.Draws) != 5 {
		t.Errorf("frames = %d, draws = %d, want 5", r.FrameCount(), len(dev.Draws))
	}
	if r.State() != Closed {
		t.Errorf("state = %v", r.State())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dev := gputest.NewRecorder()
	surface := newSurface()
	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	surface.onPoll = func() {
		frames++
		if frames == 3 {
			cancel()
		}
	}
	r := newTestRenderer(t, dev, surface, core.GenerateUVSphere(1, 8, 4), Options{})
	defer r.Terminate()

	err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if r.FrameCount() != 3 {
		t.Errorf("frames = %d, want 3", r.FrameCount())
	}
}
