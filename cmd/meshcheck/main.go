package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"planetview/config"
	"planetview/core"
	"planetview/geometry"
)

func main() {
	defaults := config.Defaults().Geometry
	dir := flag.String("dir", defaults.Dir, "Directory holding the mesh files")
	verticesFile := flag.String("vertices", defaults.VerticesFile, "Vertex file name")
	indicesFile := flag.String("indices", defaults.IndicesFile, "Index file name")
	flag.Parse()

	vpath := filepath.Join(*dir, *verticesFile)
	ipath := filepath.Join(*dir, *indicesFile)

	fmt.Println("=== Mesh Check ===")
	fmt.Printf("Vertices: %s\n", vpath)
	fmt.Printf("Indices:  %s\n\n", ipath)

	mesh, err := geometry.LoadFiles(vpath, ipath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Vertex count: %d (%d floats)\n", mesh.VertexCount(), len(mesh.Vertices))
	fmt.Printf("Index count:  %d\n", mesh.IndexCount())

	if err := mesh.Validate(); err != nil {
		fmt.Printf("INVALID: %v\n", err)
		os.Exit(1)
	}
	if mesh.Empty() {
		fmt.Println("Mesh is empty, nothing would be drawn")
		return
	}

	lo, hi, _ := mesh.Bounds()
	fmt.Printf("Bounds min: (%.4f, %.4f, %.4f)\n", lo.X(), lo.Y(), lo.Z())
	fmt.Printf("Bounds max: (%.4f, %.4f, %.4f)\n", hi.X(), hi.Y(), hi.Z())

	minR, maxR := radiusRange(mesh)
	fmt.Printf("Radius range: %.4f .. %.4f\n", minR, maxR)

	fmt.Println("\nSample positions:")
	samples := []struct {
		name  string
		index int
	}{
		{"First vertex", 0},
		{"Middle vertex", mesh.VertexCount() / 2},
		{"Last vertex", mesh.VertexCount() - 1},
	}
	for _, s := range samples {
		p := vertex(mesh, s.index)
		geo := core.CartesianToGeographic(p)
		fmt.Printf("  %s #%d: (%.4f, %.4f, %.4f) -> %.2f°, %.2f°\n", s.name, s.index,
			p.X(), p.Y(), p.Z(),
			core.RadiansToDegrees(geo.Lat), core.RadiansToDegrees(geo.Lon))
	}

	fmt.Println("\nOK")
}

func vertex(mesh *core.Mesh, i int) mgl32.Vec3 {
	return mgl32.Vec3{mesh.Vertices[i*3], mesh.Vertices[i*3+1], mesh.Vertices[i*3+2]}
}

func radiusRange(mesh *core.Mesh) (float64, float64) {
	minR, maxR := math.Inf(1), math.Inf(-1)
	for i := 0; i < mesh.VertexCount(); i++ {
		r := float64(vertex(mesh, i).Len())
		minR = math.Min(minR, r)
		maxR = math.Max(maxR, r)
	}
	return minR, maxR
}
