package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"

	"planetview/config"
	"planetview/core"
	"planetview/geometry"
	"planetview/gpu/glcore"
	"planetview/rendering/opengl"
	"planetview/rendering/window"
	"planetview/telemetry"
)

func init() {
	// GLFW and OpenGL must be driven from the main thread.
	runtime.LockOSThread()
}

type options struct {
	configPath string
	source     string
	resolution int
	width      int
	height     int
	telemetry  string
	logLevel   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "settings.json", "Settings file (JSON or YAML)")
	flag.StringVar(&opts.source, "source", "", "Geometry source (script, files, procedural); script needs spheregen on $PATH (go install ./cmd/spheregen)")
	flag.IntVar(&opts.resolution, "resolution", 0, "Sphere resolution passed to the generator")
	flag.IntVar(&opts.width, "width", 0, "Window width")
	flag.IntVar(&opts.height, "height", 0, "Window height")
	flag.StringVar(&opts.telemetry, "telemetry", "", "Listen address for the stats WebSocket (empty disables)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(opts.logLevel),
	})))

	if err := run(opts); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// applyFlags overrides settings with the flags given on the command line.
func applyFlags(settings *config.Settings, opts options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			settings.Geometry.Source = opts.source
		case "resolution":
			settings.Geometry.Resolution = opts.resolution
		case "width":
			settings.Window.Size.Width = opts.width
		case "height":
			settings.Window.Size.Height = opts.height
		case "telemetry":
			settings.Telemetry.Addr = opts.telemetry
		}
	})
}

func run(opts options) error {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(&settings, opts)
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	fmt.Println("=== Planet Renderer ===")
	fmt.Printf("Geometry source: %s\n", settings.Geometry.Source)
	fmt.Printf("Resolution: %d\n", settings.Geometry.Resolution)
	fmt.Printf("Window: %dx%d\n", settings.Window.Size.Width, settings.Window.Size.Height)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Geometry is loaded before any window exists.
	src, err := geometry.NewSource(settings.Geometry)
	if err != nil {
		return err
	}
	mesh, err := geometry.Acquire(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to acquire geometry: %w", err)
	}

	win, err := window.New(settings.Window)
	if err != nil {
		return err
	}
	defer win.Destroy()

	dev, err := glcore.Init()
	if err != nil {
		return err
	}
	fmt.Println("OpenGL version:", dev.Version)
	fmt.Println("Renderer:", dev.Renderer)

	var hub *telemetry.Hub
	if settings.Telemetry.Addr != "" {
		hub = telemetry.NewHub()
		go func() {
			if err := telemetry.Serve(ctx, settings.Telemetry.Addr, hub); err != nil {
				slog.Error("telemetry server stopped", "err", err)
			}
		}()
	}

	camera := opengl.CameraFromSettings(settings.Camera)
	light := mgl32.Vec3(settings.Light.Position)
	rendererOpts := opengl.Options{
		Camera:   &camera,
		LightPos: &light,
		Planet: &core.Planet{
			Position: settings.Planet.Position,
			Radius:   settings.Planet.Radius,
		},
	}
	if hub != nil {
		rendererOpts.Stats = hub
	}

	renderer, err := opengl.NewPlanetRenderer(dev, win, mesh, rendererOpts)
	if err != nil {
		return err
	}
	defer renderer.Terminate()

	win.OnFramebufferResize(renderer.HandleFramebufferResize)

	fmt.Println("\nRendering... close the window or press Ctrl+C to exit")
	err = renderer.Run(ctx)
	fmt.Println("\nShutting down...")
	if err != nil && ctx.Err() != nil {
		// Interrupted by a signal, which is a normal exit.
		return nil
	}
	return err
}
