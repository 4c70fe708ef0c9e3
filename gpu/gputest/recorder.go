// Package gputest provides an in-memory gpu.Device that tracks every object
// it hands out, for tests that must run without a display or driver.
package gputest

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"planetview/gpu"
)

type Kind int

const (
	KindShader Kind = iota
	KindProgram
	KindVertexArray
	KindBuffer
)

func (k Kind) String() string {
	switch k {
	case KindShader:
		return "shader"
	case KindProgram:
		return "program"
	case KindVertexArray:
		return "vertex array"
	case KindBuffer:
		return "buffer"
	}
	return "unknown"
}

// Handle identifies a tracked object.
type Handle struct {
	Kind Kind
	ID   uint32
}

// Upload records one BufferFloat32/BufferUint32 call.
type Upload struct {
	Buffer uint32
	Target gpu.BufferTarget
	Floats []float32
	Uints  []uint32
}

// Draw records one DrawElements call.
type Draw struct {
	Mode        gpu.Primitive
	Count       int32
	Program     uint32
	VertexArray uint32
}

// Attrib records one VertexAttribFloat call.
type Attrib struct {
	VertexArray uint32
	Buffer      uint32
	Index       uint32
	Size        int32
	Stride      int32
	Offset      int
	Enabled     bool
}

// Recorder implements gpu.Device. Set FailCompile or FailLink before use to
// inject driver failures, and push codes onto Errors to simulate GetError.
type Recorder struct {
	FailCompile map[gpu.ShaderStage]string
	FailLink    string
	Errors      []uint32

	nextID  uint32
	live    map[Handle]bool
	deleted map[Handle]int
	stages  map[uint32]gpu.ShaderStage

	// DoubleDeletes lists handles deleted more than once or never created.
	DoubleDeletes []Handle
	Uploads       []Upload
	Draws         []Draw
	Attribs       []Attrib
	Uniforms      map[string]any
	Viewports     [][4]int32
	Clears        int
	Enabled       map[gpu.Capability]bool
	Sources       map[uint32]string

	program        uint32
	vertexArray    uint32
	bound          map[gpu.BufferTarget]uint32
	locations      map[int32]string
	locationByName map[string]int32
}

func NewRecorder() *Recorder {
	return &Recorder{
		live:           map[Handle]bool{},
		deleted:        map[Handle]int{},
		stages:         map[uint32]gpu.ShaderStage{},
		Uniforms:       map[string]any{},
		Enabled:        map[gpu.Capability]bool{},
		Sources:        map[uint32]string{},
		bound:          map[gpu.BufferTarget]uint32{},
		locations:      map[int32]string{},
		locationByName: map[string]int32{},
	}
}

var _ gpu.Device = (*Recorder)(nil)

func (r *Recorder) create(kind Kind) uint32 {
	r.nextID++
	r.live[Handle{kind, r.nextID}] = true
	return r.nextID
}

func (r *Recorder) release(kind Kind, id uint32) {
	// Deleting name 0 is a no-op in OpenGL.
	if id == 0 {
		return
	}
	h := Handle{kind, id}
	if !r.live[h] {
		r.DoubleDeletes = append(r.DoubleDeletes, h)
		return
	}
	delete(r.live, h)
	r.deleted[h]++
}

// Live returns the handles created but not yet deleted, ordered by ID.
func (r *Recorder) Live() []Handle {
	var handles []Handle
	for h := range r.live {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].ID < handles[j].ID })
	return handles
}

// LiveCount returns the number of live handles of kind.
func (r *Recorder) LiveCount(kind Kind) int {
	n := 0
	for h := range r.live {
		if h.Kind == kind {
			n++
		}
	}
	return n
}

// Deleted returns how many times h was successfully deleted.
func (r *Recorder) Deleted(h Handle) int {
	return r.deleted[h]
}

// CheckReleased returns an error describing leaked or doubly released handles.
func (r *Recorder) CheckReleased() error {
	if live := r.Live(); len(live) > 0 {
		return fmt.Errorf("leaked %d handles: %v", len(live), live)
	}
	if len(r.DoubleDeletes) > 0 {
		return fmt.Errorf("invalid deletes: %v", r.DoubleDeletes)
	}
	return nil
}

func (r *Recorder) CreateShader(stage gpu.ShaderStage) uint32 {
	id := r.create(KindShader)
	r.stages[id] = stage
	return id
}

func (r *Recorder) CompileShader(shader uint32, source string) (string, bool) {
	r.Sources[shader] = source
	if msg, ok := r.FailCompile[r.stages[shader]]; ok {
		return msg, false
	}
	return "", true
}

func (r *Recorder) DeleteShader(shader uint32) { r.release(KindShader, shader) }

func (r *Recorder) CreateProgram() uint32 { return r.create(KindProgram) }

func (r *Recorder) AttachShader(program, shader uint32) {}

func (r *Recorder) LinkProgram(program uint32) (string, bool) {
	if r.FailLink != "" {
		return r.FailLink, false
	}
	return "", true
}

func (r *Recorder) DeleteProgram(program uint32) { r.release(KindProgram, program) }

func (r *Recorder) UseProgram(program uint32) { r.program = program }

// UniformLocation assigns stable locations per name.
func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	if loc, ok := r.locationByName[name]; ok {
		return loc
	}
	loc := int32(len(r.locationByName))
	r.locationByName[name] = loc
	r.locations[loc] = name
	return loc
}

func (r *Recorder) UniformMatrix4(location int32, m mgl32.Mat4) {
	if name, ok := r.locations[location]; ok {
		r.Uniforms[name] = m
	}
}

func (r *Recorder) Uniform3(location int32, v mgl32.Vec3) {
	if name, ok := r.locations[location]; ok {
		r.Uniforms[name] = v
	}
}

func (r *Recorder) GenVertexArray() uint32 { return r.create(KindVertexArray) }

func (r *Recorder) BindVertexArray(vao uint32) { r.vertexArray = vao }

func (r *Recorder) DeleteVertexArray(vao uint32) { r.release(KindVertexArray, vao) }

func (r *Recorder) GenBuffer() uint32 { return r.create(KindBuffer) }

func (r *Recorder) BindBuffer(target gpu.BufferTarget, buffer uint32) { r.bound[target] = buffer }

func (r *Recorder) BufferFloat32(target gpu.BufferTarget, data []float32) {
	r.Uploads = append(r.Uploads, Upload{
		Buffer: r.bound[target],
		Target: target,
		Floats: append([]float32(nil), data...),
	})
}

func (r *Recorder) BufferUint32(target gpu.BufferTarget, data []uint32) {
	r.Uploads = append(r.Uploads, Upload{
		Buffer: r.bound[target],
		Target: target,
		Uints:  append([]uint32(nil), data...),
	})
}

func (r *Recorder) DeleteBuffer(buffer uint32) { r.release(KindBuffer, buffer) }

func (r *Recorder) VertexAttribFloat(index uint32, size, stride int32, offset int) {
	r.Attribs = append(r.Attribs, Attrib{
		VertexArray: r.vertexArray,
		Buffer:      r.bound[gpu.ArrayBuffer],
		Index:       index,
		Size:        size,
		Stride:      stride,
		Offset:      offset,
	})
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	for i := range r.Attribs {
		if r.Attribs[i].Index == index && r.Attribs[i].VertexArray == r.vertexArray {
			r.Attribs[i].Enabled = true
		}
	}
}

func (r *Recorder) DrawElements(mode gpu.Primitive, count int32) {
	r.Draws = append(r.Draws, Draw{
		Mode:        mode,
		Count:       count,
		Program:     r.program,
		VertexArray: r.vertexArray,
	})
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.Viewports = append(r.Viewports, [4]int32{x, y, width, height})
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {}

func (r *Recorder) Clear(mask gpu.ClearMask) { r.Clears++ }

func (r *Recorder) Enable(capability gpu.Capability) { r.Enabled[capability] = true }

func (r *Recorder) DepthFunc(fn gpu.DepthFunc) {}

func (r *Recorder) PolygonMode(mode gpu.PolygonMode) {}

func (r *Recorder) GetError() uint32 {
	if len(r.Errors) == 0 {
		return gpu.NoError
	}
	code := r.Errors[0]
	r.Errors = r.Errors[1:]
	return code
}
