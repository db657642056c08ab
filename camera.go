package gettingback

import (
	"math"

	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a left-handed perspective camera looking down +Z in view space.
type Camera struct {
	*Node
	// FOV is the vertical field of view in degrees.
	FOV    float32
	Near   float32
	Far    float32
	Aspect float32
}

func NewCamera(name string) *Camera {
	return &Camera{Node: NewNode(name), FOV: 70, Near: 0.001, Far: 100, Aspect: 1}
}

// ProjectionMatrix maps view depth Near..Far to clip depth 0..1.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	y := float32(1 / math.Tan(float64(mgl32.DegToRad(c.FOV))*0.5))
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	x := y / aspect
	z := c.Far / (c.Far - c.Near)
	w := -c.Near * z
	return mgl32.Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 1,
		0, 0, w, 0,
	}
}

// ViewMatrix is the inverse of the camera's world placement. Scale is ignored.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(c.Position.X(), c.Position.Y(), c.Position.Z())
	return t.Mul4(rotationMatrix(c.Rotation)).Inv()
}

// Basis is the camera frame handed to the shaders. Its axes are the columns of
// the rotation matrix.
func (c *Camera) Basis() (shading.CameraBasis, error) {
	return shading.BasisFromRotation(c.Position, rotationMatrix(c.Rotation).Mat3())
}

// LookAt turns the camera toward target by setting X and Y rotation. Targets
// behind the camera (negative view Z) leave it upside down.
func (c *Camera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.Position)
	if d.Len() == 0 {
		return
	}
	d = d.Normalize()
	yaw := math.Asin(float64(mgl32.Clamp(d.X(), -1, 1)))
	pitch := math.Atan2(float64(-d.Y()), float64(d.Z()))
	c.Rotation = mgl32.Vec3{float32(pitch), float32(yaw), 0}
}
