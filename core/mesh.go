package core

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrVertexStride is returned when the flat vertex list is not made of whole xyz triples.
	ErrVertexStride = errors.New("vertex data is not a multiple of 3 floats")

	// ErrIndexOutOfRange is returned when an index references a vertex that does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Mesh holds flat vertex positions (x, y, z triples) and triangle-strip
// indices. It is populated once and never mutated afterwards.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// VertexCount returns the number of whole xyz triples.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// Empty reports whether there is nothing to draw.
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0 || len(m.Vertices) == 0
}

// Validate checks the vertex stride and that every index references an
// existing vertex. An empty mesh is valid.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("%w: got %d floats", ErrVertexStride, len(m.Vertices))
	}

	count := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= count {
			return fmt.Errorf("%w: index %d at position %d, vertex count %d", ErrIndexOutOfRange, idx, i, count)
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the vertices.
// ok is false when the mesh has no vertices.
func (m *Mesh) Bounds() (min, max mgl32.Vec3, ok bool) {
	n := m.VertexCount()
	if n == 0 {
		return min, max, false
	}

	min = mgl32.Vec3{m.Vertices[0], m.Vertices[1], m.Vertices[2]}
	max = min
	for i := 1; i < n; i++ {
		for axis := 0; axis < 3; axis++ {
			v := m.Vertices[i*3+axis]
			if v < min[axis] {
				min[axis] = v
			}
			if v > max[axis] {
				max[axis] = v
			}
		}
	}
	return min, max, true
}
