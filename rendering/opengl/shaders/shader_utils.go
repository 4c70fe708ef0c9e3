package shaders

import (
	"errors"
	"fmt"

	"planetview/gpu"
)

var (
	ErrCompile = errors.New("shader compilation failed")
	ErrLink    = errors.New("program link failed")
)

// CompileShader compiles a single shader
func CompileShader(dev gpu.Device, source string, stage gpu.ShaderStage) (uint32, error) {
	shader := dev.CreateShader(stage)
	if shader == 0 {
		return 0, fmt.Errorf("%w: could not create %s shader", ErrCompile, stage)
	}

	if log, ok := dev.CompileShader(shader, source); !ok {
		dev.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s shader: %s", ErrCompile, stage, log)
	}

	return shader, nil
}

// LinkProgram links vertex and fragment shaders into a program
func LinkProgram(dev gpu.Device, vertShader, fragShader uint32) (uint32, error) {
	program := dev.CreateProgram()
	if program == 0 {
		return 0, fmt.Errorf("%w: could not create program", ErrLink)
	}
	dev.AttachShader(program, vertShader)
	dev.AttachShader(program, fragShader)

	if log, ok := dev.LinkProgram(program); !ok {
		dev.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", ErrLink, log)
	}

	return program, nil
}

// BuildProgram compiles both stages and links them. The shader objects are
// deleted before returning whether or not linking succeeds.
func BuildProgram(dev gpu.Device, vertexSource, fragmentSource string) (uint32, error) {
	vertShader, err := CompileShader(dev, vertexSource, gpu.VertexShader)
	if err != nil {
		return 0, err
	}
	defer dev.DeleteShader(vertShader)

	fragShader, err := CompileShader(dev, fragmentSource, gpu.FragmentShader)
	if err != nil {
		return 0, err
	}
	defer dev.DeleteShader(fragShader)

	return LinkProgram(dev, vertShader, fragShader)
}
