// Command spheregen writes a UV sphere as sphere_vertices.dat and
// sphere_indices.dat, one value per line.
//
//	spheregen [-dir path] [-radius r] <resolution>
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/schollz/progressbar/v3"

	"planetview/config"
	"planetview/core"
	"planetview/geometry"
)

func main() {
	dir := flag.String("dir", ".", "Output directory")
	radius := flag.Float64("radius", 1.0, "Sphere radius")
	quiet := flag.Bool("quiet", false, "Disable the progress bar")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <resolution>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	resolution, err := strconv.Atoi(flag.Arg(0))
	if err != nil || resolution < config.MinResolution {
		fmt.Fprintf(os.Stderr, "resolution must be an integer >= %d, got %q\n", config.MinResolution, flag.Arg(0))
		os.Exit(1)
	}

	mesh := core.GenerateUVSphere(float32(*radius), resolution, resolution)
	defaults := config.Defaults().Geometry

	vertices := filepath.Join(*dir, defaults.VerticesFile)
	if err := writeAtomic(vertices, "vertices", *quiet, func(w io.Writer) error {
		return geometry.WriteVertices(w, mesh.Vertices)
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	indices := filepath.Join(*dir, defaults.IndicesFile)
	if err := writeAtomic(indices, "indices", *quiet, func(w io.Writer) error {
		return geometry.WriteIndices(w, mesh.Indices)
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d vertices and %d indices to %s\n", mesh.VertexCount(), mesh.IndexCount(), *dir)
}

// writeAtomic writes to a temporary file next to path and renames it into
// place, so a reader never sees a partial file.
func writeAtomic(path, title string, quiet bool, write func(io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".spheregen_*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	var writer io.Writer = tmpFile
	if !quiet {
		bar := progressbar.DefaultBytes(-1, "write "+title)
		defer bar.Close()
		writer = io.MultiWriter(tmpFile, bar)
	}

	if err := write(writer); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		os.Remove(tmpFile.Name())
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}
