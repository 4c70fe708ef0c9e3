package gpu

// NoError is the value GetError returns when nothing is pending.
const NoError uint32 = 0

type ShaderStage int

const (
	VertexShader ShaderStage = iota
	FragmentShader
)

func (s ShaderStage) String() string {
	switch s {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	}
	return "unknown"
}

type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

type Primitive int

const (
	Triangles Primitive = iota
	TriangleStrip
)

type ClearMask int

const (
	ColorBuffer ClearMask = 1 << iota
	DepthBuffer
)

type Capability int

const (
	DepthTest Capability = iota
	Multisample
	CullFace
)

type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
)

type PolygonMode int

const (
	PolygonFill PolygonMode = iota
	PolygonLine
)

// Byte sizes of the element types uploaded by BufferFloat32 and BufferUint32.
const (
	Float32Size = 4
	Uint32Size  = 4
)
