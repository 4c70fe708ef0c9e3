package gputest

import (
	"testing"

	"planetview/gpu"
)

func TestRecorderTracksHandles(t *testing.T) {
	r := NewRecorder()

	vao := r.GenVertexArray()
	vbo := r.GenBuffer()
	if vao == 0 || vbo == 0 || vao == vbo {
		t.Fatalf("handles must be unique and non-zero, got %d %d", vao, vbo)
	}
	if err := r.CheckReleased(); err == nil {
		t.Fatal("expected leak report before release")
	}

	r.DeleteBuffer(vbo)
	r.DeleteVertexArray(vao)
	if err := r.CheckReleased(); err != nil {
		t.Fatalf("CheckReleased: %v", err)
	}

	r.DeleteBuffer(vbo)
	if len(r.DoubleDeletes) != 1 || r.DoubleDeletes[0] != (Handle{KindBuffer, vbo}) {
		t.Fatalf("double delete not recorded: %v", r.DoubleDeletes)
	}
	if r.Deleted(Handle{KindBuffer, vbo}) != 1 {
		t.Errorf("buffer deleted %d times, want 1", r.Deleted(Handle{KindBuffer, vbo}))
	}
}

func TestRecorderDeleteZeroIsNoop(t *testing.T) {
	r := NewRecorder()
	r.DeleteProgram(0)
	r.DeleteBuffer(0)
	if err := r.CheckReleased(); err != nil {
		t.Fatalf("CheckReleased: %v", err)
	}
}

func TestRecorderUploadsFollowBinding(t *testing.T) {
	r := NewRecorder()
	vbo := r.GenBuffer()
	r.BindBuffer(gpu.ArrayBuffer, vbo)

	data := []float32{1, 2, 3}
	r.BufferFloat32(gpu.ArrayBuffer, data)
	data[0] = 99

	if len(r.Uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(r.Uploads))
	}
	up := r.Uploads[0]
	if up.Buffer != vbo || up.Target != gpu.ArrayBuffer {
		t.Errorf("upload = %+v", up)
	}
	if up.Floats[0] != 1 {
		t.Error("upload must copy the data")
	}
}

func TestDrainErrors(t *testing.T) {
	r := NewRecorder()
	if codes := gpu.DrainErrors(r); len(codes) != 0 {
		t.Fatalf("codes = %v, want none", codes)
	}

	r.Errors = []uint32{0x500, 0x502}
	codes := gpu.DrainErrors(r)
	if len(codes) != 2 || codes[0] != 0x500 || codes[1] != 0x502 {
		t.Fatalf("codes = %v", codes)
	}
	if r.GetError() != gpu.NoError {
		t.Error("errors should be drained")
	}
}
