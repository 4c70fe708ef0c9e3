// Package glcore implements gpu.Device on an OpenGL 4.1 core profile context.
package glcore

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"planetview/gpu"
)

// Device forwards to the OpenGL driver of the current context.
type Device struct {
	Version  string
	Renderer string
}

// Init loads the OpenGL function pointers. A context must be current on the
// calling thread.
func Init() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	return &Device{
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
	}, nil
}

var _ gpu.Device = (*Device)(nil)

func (d *Device) CreateShader(stage gpu.ShaderStage) uint32 {
	switch stage {
	case gpu.VertexShader:
		return gl.CreateShader(gl.VERTEX_SHADER)
	case gpu.FragmentShader:
		return gl.CreateShader(gl.FRAGMENT_SHADER)
	}
	return 0
}

func (d *Device) CompileShader(shader uint32, source string) (string, bool) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		return readLog(logLength, func(buf *uint8) { gl.GetShaderInfoLog(shader, logLength, nil, buf) }), false
	}
	return "", true
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Device) LinkProgram(program uint32) (string, bool) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		return readLog(logLength, func(buf *uint8) { gl.GetProgramInfoLog(program, logLength, nil, buf) }), false
	}
	return "", true
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *Device) Uniform3(location int32, v mgl32.Vec3) {
	gl.Uniform3fv(location, 1, &v[0])
}

func (d *Device) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (d *Device) GenBuffer() uint32 {
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	return buffer
}

func (d *Device) BindBuffer(target gpu.BufferTarget, buffer uint32) {
	gl.BindBuffer(bufferTarget(target), buffer)
}

func (d *Device) BufferFloat32(target gpu.BufferTarget, data []float32) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(bufferTarget(target), len(data)*gpu.Float32Size, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) BufferUint32(target gpu.BufferTarget, data []uint32) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(bufferTarget(target), len(data)*gpu.Uint32Size, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (d *Device) VertexAttribFloat(index uint32, size, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

func (d *Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (d *Device) DrawElements(mode gpu.Primitive, count int32) {
	gl.DrawElements(primitive(mode), count, gl.UNSIGNED_INT, nil)
}

func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *Device) Clear(mask gpu.ClearMask) {
	var bits uint32
	if mask&gpu.ColorBuffer != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gpu.DepthBuffer != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *Device) Enable(capability gpu.Capability) {
	switch capability {
	case gpu.DepthTest:
		gl.Enable(gl.DEPTH_TEST)
	case gpu.Multisample:
		gl.Enable(gl.MULTISAMPLE)
	case gpu.CullFace:
		gl.Enable(gl.CULL_FACE)
	}
}

func (d *Device) DepthFunc(fn gpu.DepthFunc) {
	switch fn {
	case gpu.DepthLess:
		gl.DepthFunc(gl.LESS)
	case gpu.DepthLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	}
}

func (d *Device) PolygonMode(mode gpu.PolygonMode) {
	switch mode {
	case gpu.PolygonFill:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	case gpu.PolygonLine:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
}

func (d *Device) GetError() uint32 { return gl.GetError() }

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func primitive(p gpu.Primitive) uint32 {
	if p == gpu.TriangleStrip {
		return gl.TRIANGLE_STRIP
	}
	return gl.TRIANGLES
}

func readLog(length int32, read func(buf *uint8)) string {
	if length <= 0 {
		return ""
	}
	log := make([]uint8, length)
	read(&log[0])
	return strings.TrimRight(string(log), "\x00\n")
}
