package gpu

import "github.com/go-gl/mathgl/mgl32"

// Device is the subset of the graphics API the planet renderer drives.
// Handles are the raw object names returned by the driver; zero is never a
// valid handle. All methods must be called from the thread that owns the
// context.
type Device interface {
	// Shaders and programs
	CreateShader(stage ShaderStage) uint32
	// CompileShader uploads source and compiles it, returning the info log on failure.
	CompileShader(shader uint32, source string) (infoLog string, ok bool)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	// LinkProgram links the attached shaders, returning the info log on failure.
	LinkProgram(program uint32) (infoLog string, ok bool)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	// Uniforms. A location of -1 is silently ignored, as in OpenGL.
	UniformLocation(program uint32, name string) int32
	UniformMatrix4(location int32, m mgl32.Mat4)
	Uniform3(location int32, v mgl32.Vec3)

	// Vertex arrays and buffers
	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	GenBuffer() uint32
	BindBuffer(target BufferTarget, buffer uint32)
	// BufferFloat32 and BufferUint32 upload data to the buffer bound at target as static draw data.
	BufferFloat32(target BufferTarget, data []float32)
	BufferUint32(target BufferTarget, data []uint32)
	DeleteBuffer(buffer uint32)
	// VertexAttribFloat describes a tightly typed float attribute; stride and offset are in bytes.
	VertexAttribFloat(index uint32, size, stride int32, offset int)
	EnableVertexAttribArray(index uint32)

	// Drawing
	DrawElements(mode Primitive, count int32)
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	Enable(capability Capability)
	DepthFunc(fn DepthFunc)
	PolygonMode(mode PolygonMode)

	// GetError returns the oldest pending error code, or NoError.
	GetError() uint32
}

// DrainErrors pops every pending error code from dev.
func DrainErrors(dev Device) []uint32 {
	var codes []uint32
	for code := dev.GetError(); code != NoError; code = dev.GetError() {
		codes = append(codes, code)
		// Drivers without a context keep returning the same code forever.
		if len(codes) >= maxDrainedErrors {
			break
		}
	}
	return codes
}

const maxDrainedErrors = 32
