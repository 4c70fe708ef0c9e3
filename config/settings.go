package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Geometry source names accepted in GeometrySettings.Source.
const (
	SourceScript     = "script"
	SourceFiles      = "files"
	SourceProcedural = "procedural"
)

// MinResolution is the smallest sphere resolution that still encloses a volume.
const MinResolution = 3

type Settings struct {
	Window    WindowSettings    `json:"window" yaml:"window"`
	Geometry  GeometrySettings  `json:"geometry" yaml:"geometry"`
	Camera    CameraSettings    `json:"camera" yaml:"camera"`
	Light     LightSettings     `json:"light" yaml:"light"`
	Planet    PlanetSettings    `json:"planet" yaml:"planet"`
	Telemetry TelemetrySettings `json:"telemetry" yaml:"telemetry"`
}

type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

type WindowSettings struct {
	Title   string `json:"title" yaml:"title"`
	Size    Size   `json:"size" yaml:"size"`
	Min     Size   `json:"min" yaml:"min"`
	Max     Size   `json:"max" yaml:"max"`
	Samples int    `json:"samples" yaml:"samples"`
	VSync   bool   `json:"vsync" yaml:"vsync"`
}

type GeometrySettings struct {
	Source       string   `json:"source" yaml:"source"`
	Command      []string `json:"command" yaml:"command"`
	Resolution   int      `json:"resolution" yaml:"resolution"`
	Dir          string   `json:"dir" yaml:"dir"`
	VerticesFile string   `json:"verticesFile" yaml:"verticesFile"`
	IndicesFile  string   `json:"indicesFile" yaml:"indicesFile"`
}

type CameraSettings struct {
	Eye    [3]float32 `json:"eye" yaml:"eye"`
	Target [3]float32 `json:"target" yaml:"target"`
	Up     [3]float32 `json:"up" yaml:"up"`
	FovY   float32    `json:"fovY" yaml:"fovY"` // degrees
	Near   float32    `json:"near" yaml:"near"`
	Far    float32    `json:"far" yaml:"far"`
}

type LightSettings struct {
	Position [3]float32 `json:"position" yaml:"position"`
}

type PlanetSettings struct {
	Position [3]float32 `json:"position" yaml:"position"`
	Radius   float32    `json:"radius" yaml:"radius"`
}

type TelemetrySettings struct {
	// Addr is the listen address of the WebSocket stats endpoint. Empty disables it.
	Addr string `json:"addr" yaml:"addr"`
}

// Defaults returns the settings used when no file is present.
func Defaults() Settings {
	return Settings{
		Window: WindowSettings{
			Title:   "Planet Renderer",
			Size:    Size{Width: 640, Height: 480},
			Min:     Size{Width: 300, Height: 300},
			Max:     Size{Width: 2024, Height: 1080},
			Samples: 4,
			VSync:   true,
		},
		Geometry: GeometrySettings{
			Source:       SourceScript,
			Command:      []string{"spheregen"},
			Resolution:   64,
			Dir:          ".",
			VerticesFile: "sphere_vertices.dat",
			IndicesFile:  "sphere_indices.dat",
		},
		Camera: CameraSettings{
			Eye:    [3]float32{0, 0, 3},
			Target: [3]float32{0, 0, 0},
			Up:     [3]float32{0, 1, 0},
			FovY:   45,
			Near:   0.1,
			Far:    100,
		},
		Light: LightSettings{
			Position: [3]float32{5, 5, 5},
		},
		Planet: PlanetSettings{
			Radius: 1,
		},
	}
}

// Load reads settings from path on top of Defaults. A missing file is not
// an error. Files ending in .yaml or .yml are decoded as YAML, anything
// else as JSON.
func Load(path string) (Settings, error) {
	settings := Defaults()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("no settings file found, using defaults", "path", path)
			return settings, nil
		}
		return settings, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &settings)
	default:
		err = json.Unmarshal(data, &settings)
	}
	if err != nil {
		return settings, fmt.Errorf("error parsing %s: %w", path, err)
	}

	slog.Info("loaded settings", "path", path, "source", settings.Geometry.Source,
		"resolution", settings.Geometry.Resolution)
	return settings, nil
}

// Validate reports the first inconsistency in s.
func (s Settings) Validate() error {
	w := s.Window
	if w.Min.Width <= 0 || w.Min.Height <= 0 {
		return fmt.Errorf("window min size must be positive, got %dx%d", w.Min.Width, w.Min.Height)
	}
	if w.Min.Width > w.Max.Width || w.Min.Height > w.Max.Height {
		return fmt.Errorf("window min size %dx%d exceeds max size %dx%d",
			w.Min.Width, w.Min.Height, w.Max.Width, w.Max.Height)
	}
	if w.Size.Width <= 0 || w.Size.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", w.Size.Width, w.Size.Height)
	}
	if w.Samples < 0 {
		return fmt.Errorf("window samples must not be negative, got %d", w.Samples)
	}

	g := s.Geometry
	switch g.Source {
	case SourceScript:
		if len(g.Command) == 0 || g.Command[0] == "" {
			return errors.New("geometry command is required for the script source")
		}
	case SourceFiles, SourceProcedural:
	default:
		return fmt.Errorf("unknown geometry source %q", g.Source)
	}
	if g.Resolution < MinResolution {
		return fmt.Errorf("geometry resolution must be at least %d, got %d", MinResolution, g.Resolution)
	}
	if g.Source != SourceProcedural && (g.VerticesFile == "" || g.IndicesFile == "") {
		return errors.New("geometry vertices and indices files are required")
	}

	c := s.Camera
	if c.FovY <= 0 || c.FovY >= 180 {
		return fmt.Errorf("camera fovY must be in (0, 180), got %g", c.FovY)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("camera clip planes must satisfy 0 < near < far, got near=%g far=%g", c.Near, c.Far)
	}

	if s.Planet.Radius <= 0 {
		return fmt.Errorf("planet radius must be positive, got %g", s.Planet.Radius)
	}
	return nil
}

// Clamp limits a requested window size to the configured bounds.
func (w WindowSettings) Clamp(width, height int) (int, int) {
	return clamp(width, w.Min.Width, w.Max.Width), clamp(height, w.Min.Height, w.Max.Height)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
