package core

import "github.com/go-gl/mathgl/mgl32"

// Planet is the single object in the scene. It only carries what the
// renderer consumes: where the sphere sits and how large it is.
type Planet struct {
	Position mgl32.Vec3
	Radius   float32
}

// NewPlanet returns a unit planet at the origin.
func NewPlanet() *Planet {
	return &Planet{Radius: 1}
}

// ModelMatrix places unit-sphere geometry at Position scaled by Radius.
func (p *Planet) ModelMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z()).
		Mul4(mgl32.Scale3D(p.Radius, p.Radius, p.Radius))
}
