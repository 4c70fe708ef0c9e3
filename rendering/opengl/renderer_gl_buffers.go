package opengl

import (
	"fmt"
	"math"

	"planetview/core"
	"planetview/gpu"
	"planetview/rendering/opengl/shaders"
)

// MeshBuffers owns the vertex array, vertex buffer and index buffer of one
// mesh. The data is uploaded once as static draw data and never updated.
type MeshBuffers struct {
	dev gpu.Device

	vao uint32
	vbo uint32
	ibo uint32

	vertexCount int
	indexCount  int32
	released    bool
}

// UploadMesh creates the buffers for mesh and uploads the vertex positions
// and indices untransformed. Positions are bound to attribute 0 as three
// tightly packed floats.
func UploadMesh(dev gpu.Device, mesh *core.Mesh) (*MeshBuffers, error) {
	if mesh.IndexCount() > math.MaxInt32 {
		return nil, fmt.Errorf("mesh has %d indices, more than a single draw call accepts", mesh.IndexCount())
	}

	b := &MeshBuffers{
		dev:         dev,
		vao:         dev.GenVertexArray(),
		vbo:         dev.GenBuffer(),
		ibo:         dev.GenBuffer(),
		vertexCount: mesh.VertexCount(),
		indexCount:  int32(mesh.IndexCount()),
	}
	if b.vao == 0 || b.vbo == 0 || b.ibo == 0 {
		b.Release()
		return nil, fmt.Errorf("failed to allocate mesh buffers (vao=%d vbo=%d ibo=%d)", b.vao, b.vbo, b.ibo)
	}

	dev.BindVertexArray(b.vao)

	dev.BindBuffer(gpu.ArrayBuffer, b.vbo)
	dev.BufferFloat32(gpu.ArrayBuffer, mesh.Vertices)

	// The element binding is recorded in the vertex array.
	dev.BindBuffer(gpu.ElementArrayBuffer, b.ibo)
	dev.BufferUint32(gpu.ElementArrayBuffer, mesh.Indices)

	dev.VertexAttribFloat(shaders.PositionAttrib, 3, 3*gpu.Float32Size, 0)
	dev.EnableVertexAttribArray(shaders.PositionAttrib)

	dev.BindBuffer(gpu.ArrayBuffer, 0)
	dev.BindVertexArray(0)

	return b, nil
}

// Draw issues one indexed triangle-strip draw. An empty mesh draws nothing.
func (b *MeshBuffers) Draw() {
	if b.released || b.indexCount == 0 {
		return
	}
	b.dev.BindVertexArray(b.vao)
	b.dev.DrawElements(gpu.TriangleStrip, b.indexCount)
	b.dev.BindVertexArray(0)
}

func (b *MeshBuffers) VertexCount() int { return b.vertexCount }

func (b *MeshBuffers) IndexCount() int { return int(b.indexCount) }

// Release deletes the GPU objects. Later calls do nothing.
func (b *MeshBuffers) Release() {
	if b.released {
		return
	}
	b.released = true
	b.dev.DeleteBuffer(b.ibo)
	b.dev.DeleteBuffer(b.vbo)
	b.dev.DeleteVertexArray(b.vao)
}
