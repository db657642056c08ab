package gettingback

import (
	"math"

	"github.com/gekko3d/gettingback/mesh"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// NewTestScene builds the demo: a red "sun" sphere with a linear gradient and a
// green metallic "cube", both circling while the camera looks on from -Z.
func NewTestScene(width, height uint32, log Logger) (*Scene, error) {
	s := NewScene("Test", width, height, log)

	sphere, err := NewPrimitive("sun", mesh.Sphere, 1)
	if err != nil {
		return nil, err
	}
	sphere.Material = shading.Material{
		BaseColor:        mgl32.Vec3{1, 0, 0},
		Metallic:         0,
		Roughness:        0,
		Shininess:        0.4,
		SpecularColor:    mgl32.Vec3{0, 0, 0},
		AmbientOcclusion: mgl32.Vec3{0, 0, 0},
		Gradient:         shading.LinearGradient{SecondColor: mgl32.Vec3{1, 0, 1}},
	}
	s.Add(sphere, nil)

	box, err := NewPrimitive("cube", mesh.Cube, 1)
	if err != nil {
		return nil, err
	}
	box.Position = mgl32.Vec3{-1.5, 0.5, 0}
	box.Rotation = mgl32.Vec3{0, mgl32.DegToRad(45), 0}
	box.Material = shading.Material{
		BaseColor:        mgl32.Vec3{0, 0.5, 0},
		Metallic:         1,
		Roughness:        0,
		Shininess:        0.1,
		SpecularColor:    mgl32.Vec3{0, 1, 0},
		AmbientOcclusion: mgl32.Vec3{1, 1, 1},
		Gradient:         shading.NoGradient{},
	}

	s.Camera.Name = "Test"
	s.Camera.Position = mgl32.Vec3{0, 0, -15}
	s.Add(box, nil)

	var t float64
	s.OnUpdate = func(s *Scene, dt float32) {
		t += 0.1
		box.Position = mgl32.Vec3{-1.5 + float32(math.Cos(t)), 0.5 + float32(math.Sin(t)), 0}
		sphere.Position = mgl32.Vec3{float32(math.Cos(t)), 0, float32(math.Sin(t))}
	}
	return s, nil
}
