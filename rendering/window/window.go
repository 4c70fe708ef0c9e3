// Package window owns the GLFW window and the OpenGL context it carries.
// Every function here must be called from the thread that called New.
package window

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/glfw/v3.3/glfw"

	"planetview/config"
)

type Window struct {
	window    *glfw.Window
	destroyed bool
}

// New initialises GLFW, opens a resizable window with a 4.1 core context
// and makes that context current.
func New(cfg config.WindowSettings) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.Samples, cfg.Samples)

	width, height := cfg.Clamp(cfg.Size.Width, cfg.Size.Height)
	window, err := glfw.CreateWindow(width, height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	window.SetSizeLimits(cfg.Min.Width, cfg.Min.Height, cfg.Max.Width, cfg.Max.Height)
	window.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	fbWidth, fbHeight := window.GetFramebufferSize()
	slog.Info("window created", "title", cfg.Title, "width", width, "height", height,
		"framebuffer", fmt.Sprintf("%dx%d", fbWidth, fbHeight), "samples", cfg.Samples)

	return &Window{window: window}, nil
}

// OnFramebufferResize registers fn to run whenever the framebuffer changes
// size. On high-DPI displays this differs from the window size.
func (w *Window) OnFramebufferResize(fn func(width, height int)) {
	w.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		fn(width, height)
	})
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

// SetShouldClose asks the render loop to stop after the current frame.
func (w *Window) SetShouldClose(v bool) {
	w.window.SetShouldClose(v)
}

func (w *Window) SwapBuffers() {
	w.window.SwapBuffers()
}

// PollEvents processes window events
func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

// Time returns seconds since GLFW was initialised.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

// Destroy closes the window and terminates GLFW. Later calls do nothing.
func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.window.Destroy()
	glfw.Terminate()
}
