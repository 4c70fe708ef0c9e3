package core

import (
	"math"
)

// GenerateUVSphere generates a UV sphere as positions plus triangle-strip
// indices. Vertices are emitted ring by ring from the north pole, with
// segments+1 vertices per ring so the seam is duplicated. Each ring except
// the last contributes two indices per vertex, pairing it with the vertex
// directly below.
func GenerateUVSphere(radius float32, segments, rings int) *Mesh {
	// Use default values if not specified
	if segments <= 0 {
		segments = 32
	}
	if rings <= 0 {
		rings = 16
	}

	mesh := &Mesh{
		Vertices: make([]float32, 0, (rings+1)*(segments+1)*3),
		Indices:  make([]uint32, 0, rings*(segments+1)*2),
	}

	for ring := 0; ring <= rings; ring++ {
		theta := math.Pi * float64(ring) / float64(rings)

		for seg := 0; seg <= segments; seg++ {
			phi := 2 * math.Pi * float64(seg) / float64(segments)

			p := GeographicToCartesian(Geographic{Lat: math.Pi/2 - theta, Lon: phi}, radius)
			mesh.Vertices = append(mesh.Vertices, p.X(), p.Y(), p.Z())

			if ring != rings {
				current := uint32(ring*(segments+1) + seg)
				below := current + uint32(segments) + 1
				mesh.Indices = append(mesh.Indices, current, below)
			}
		}
	}

	return mesh
}
