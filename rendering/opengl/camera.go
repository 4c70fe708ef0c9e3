package opengl

import (
	"github.com/go-gl/mathgl/mgl32"

	"planetview/config"
)

// Camera is a fixed look-at camera with a perspective projection.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
	FovY   float32 // degrees
	Near   float32
	Far    float32
}

// DefaultCamera looks at the origin from 3 units down +Z.
func DefaultCamera() Camera {
	return CameraFromSettings(config.Defaults().Camera)
}

func CameraFromSettings(c config.CameraSettings) Camera {
	return Camera{
		Eye:    c.Eye,
		Target: c.Target,
		Up:     c.Up,
		FovY:   c.FovY,
		Near:   c.Near,
		Far:    c.Far,
	}
}

func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// Projection returns the perspective matrix for a width/height aspect ratio.
func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}
