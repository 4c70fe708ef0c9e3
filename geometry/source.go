// Package geometry acquires the planet mesh. A Source hides where the
// vertices come from: an external generator process, files already on disk,
// or an in-process UV sphere.
package geometry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"planetview/config"
	"planetview/core"
)

// ErrUnknownSource is returned by NewSource for an unrecognised source name.
var ErrUnknownSource = errors.New("unknown geometry source")

// Source produces the planet mesh.
type Source interface {
	Load(ctx context.Context) (*core.Mesh, error)
	Name() string
}

// installHint tells the user how to get the default generator onto $PATH.
const installHint = "install the bundled generator with `go install ./cmd/spheregen`, or use -source procedural"

// ScriptSource runs an external generator with a single resolution argument
// and reads the two files it writes into Dir.
type ScriptSource struct {
	Command      []string
	Resolution   int
	Dir          string
	VerticesFile string
	IndicesFile  string
}

func (s *ScriptSource) Name() string { return config.SourceScript }

func (s *ScriptSource) Load(ctx context.Context) (*core.Mesh, error) {
	if len(s.Command) == 0 {
		return nil, errors.New("geometry generator command is empty")
	}

	args := append(append([]string(nil), s.Command[1:]...), strconv.Itoa(s.Resolution))
	cmd := exec.CommandContext(ctx, s.Command[0], args...)
	cmd.Dir = s.Dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	slog.Info("running geometry generator", "command", strings.Join(cmd.Args, " "), "dir", s.Dir)
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("geometry generator %q not found: %w (%s)", s.Command[0], err, installHint)
		}
		return nil, fmt.Errorf("geometry generator %q failed: %w: %s",
			s.Command[0], err, strings.TrimSpace(output.String()))
	}
	if out := strings.TrimSpace(output.String()); out != "" {
		slog.Debug("geometry generator output", "output", out)
	}
	slog.Info("geometry generator finished", "elapsed", time.Since(start).Round(time.Millisecond))

	files := &FileSource{
		VerticesPath: filepath.Join(s.Dir, s.VerticesFile),
		IndicesPath:  filepath.Join(s.Dir, s.IndicesFile),
	}
	return files.Load(ctx)
}

// FileSource reads a mesh previously written by a generator.
type FileSource struct {
	VerticesPath string
	IndicesPath  string
}

func (s *FileSource) Name() string { return config.SourceFiles }

func (s *FileSource) Load(ctx context.Context) (*core.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFiles(s.VerticesPath, s.IndicesPath)
}

// ProceduralSource builds the UV sphere in process.
type ProceduralSource struct {
	Radius   float32
	Segments int
	Rings    int
}

func (s *ProceduralSource) Name() string { return config.SourceProcedural }

func (s *ProceduralSource) Load(ctx context.Context) (*core.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return core.GenerateUVSphere(s.Radius, s.Segments, s.Rings), nil
}

// NewSource builds the source selected in cfg.
func NewSource(cfg config.GeometrySettings) (Source, error) {
	switch cfg.Source {
	case config.SourceScript:
		return &ScriptSource{
			Command:      cfg.Command,
			Resolution:   cfg.Resolution,
			Dir:          cfg.Dir,
			VerticesFile: cfg.VerticesFile,
			IndicesFile:  cfg.IndicesFile,
		}, nil
	case config.SourceFiles:
		return &FileSource{
			VerticesPath: filepath.Join(cfg.Dir, cfg.VerticesFile),
			IndicesPath:  filepath.Join(cfg.Dir, cfg.IndicesFile),
		}, nil
	case config.SourceProcedural:
		return &ProceduralSource{Radius: 1, Segments: cfg.Resolution, Rings: cfg.Resolution}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
}

// Acquire loads a mesh from src and validates it. An empty mesh is accepted
// with a warning; out-of-range indices are an error.
func Acquire(ctx context.Context, src Source) (*core.Mesh, error) {
	mesh, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s geometry: %w", src.Name(), err)
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s geometry: %w", src.Name(), err)
	}

	if mesh.Empty() {
		slog.Warn("geometry is empty, nothing will be drawn", "source", src.Name(),
			"vertices", mesh.VertexCount(), "indices", mesh.IndexCount())
	} else {
		slog.Info("loaded geometry", "source", src.Name(),
			"vertices", mesh.VertexCount(), "indices", mesh.IndexCount())
	}
	return mesh, nil
}
