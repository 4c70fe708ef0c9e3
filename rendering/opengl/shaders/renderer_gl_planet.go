package shaders

import "planetview/gpu"

// Uniform names shared by the planet shaders and the renderer.
const (
	UniformModel      = "model"
	UniformView       = "view"
	UniformProjection = "projection"
	UniformLightPos   = "lightPos"
)

// PositionAttrib is the vertex attribute location of inPosition.
const PositionAttrib = 0

// planetVertexShader projects positions and forwards the world-space position
const planetVertexShader = `
#version 410 core

layout(location = 0) in vec3 inPosition;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 fragPos;

void main() {
    vec4 world = model * vec4(inPosition, 1.0);
    fragPos = world.xyz;
    gl_Position = projection * view * world;
}
`

// planetFragmentShader shades white with a single diffuse term
const planetFragmentShader = `
#version 410 core

in vec3 fragPos;
out vec4 color;

uniform vec3 lightPos;

void main() {
    vec3 lightDir = normalize(lightPos - fragPos);
    float diff = max(dot(lightDir, normalize(-fragPos)), 0.0);
    color = vec4(diff * vec3(1.0), 1.0);
}
`

// CompilePlanetProgram builds the program used to draw the planet
func CompilePlanetProgram(dev gpu.Device) (uint32, error) {
	return BuildProgram(dev, planetVertexShader, planetFragmentShader)
}
