package gettingback

import (
	"testing"

	"github.com/gekko3d/gettingback/mesh"
	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraProjectionDepthRange(t *testing.T) {
	c := NewCamera("c")
	c.Near, c.Far = 1, 10
	proj := c.ProjectionMatrix()

	ndc := func(z float32) float32 {
		p := proj.Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return p.Z() / p.W()
	}
	assert.InDelta(t, 0, ndc(1), 1e-5)
	assert.InDelta(t, 1, ndc(10), 1e-5)
}

func TestCameraViewAndBasis(t *testing.T) {
	c := NewCamera("c")
	c.Position = mgl32.Vec3{0, 0, -15}

	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assertVec3(t, mgl32.Vec3{0, 0, 15}, p)

	b, err := c.Basis()
	require.NoError(t, err)
	assertVec3(t, mgl32.Vec3{0, 0, 1}, b.Forward())
	assertVec3(t, mgl32.Vec3{1, 0, 0}, b.Right())
	assertVec3(t, mgl32.Vec3{0, 1, 0}, b.Up())
	assert.Equal(t, c.Position, b.Origin())
}

func TestCameraLookAt(t *testing.T) {
	c := NewCamera("c")
	c.Position = mgl32.Vec3{0, 5, -5}
	c.LookAt(mgl32.Vec3{3, 0, 2})

	b, err := c.Basis()
	require.NoError(t, err)
	want := mgl32.Vec3{3, 0, 2}.Sub(c.Position).Normalize()
	assertVec3(t, want, b.Forward())

	p := c.ViewMatrix().Mul4x1(mgl32.Vec3{3, 0, 2}.Vec4(1)).Vec3()
	assert.InDelta(t, 0, p.X(), 1e-4)
	assert.InDelta(t, 0, p.Y(), 1e-4)
	assert.Greater(t, p.Z(), float32(0))
}

func TestSceneAddRemoveRenderables(t *testing.T) {
	s := NewScene("s", 800, 600, nil)
	group := NewNode("group")
	a, err := NewPrimitive("a", mesh.Cube, 1)
	require.NoError(t, err)
	b, err := NewPrimitive("b", mesh.Plane, 1)
	require.NoError(t, err)

	group.Add(b)
	s.Add(a, nil)
	s.Add(group, a)
	assert.Equal(t, []*Node{a, b}, s.Renderables())
	assert.Same(t, b, s.Find("b"))

	s.Remove(a)
	assert.Equal(t, []*Node{b}, s.Renderables())
	assert.Same(t, s.Root, group.Parent())
	assert.Nil(t, s.Find("a"))
}

func TestSceneResizeAndUpdate(t *testing.T) {
	s := NewScene("s", 1280, 720, nil)
	assert.InDelta(t, 1280.0/720.0, s.Camera.Aspect, 1e-6)

	s.Resize(100, 0)
	assert.InDelta(t, 1280.0/720.0, s.Camera.Aspect, 1e-6)
	s.Resize(400, 400)
	assert.InDelta(t, 1, s.Camera.Aspect, 1e-6)

	var calls []string
	n := NewNode("n")
	n.OnUpdate = func(*Node, float32) { calls = append(calls, "node") }
	s.Add(n, nil)
	s.OnUpdate = func(*Scene, float32) { calls = append(calls, "scene") }

	require.NoError(t, s.Update(1.0/60))
	assert.Equal(t, []string{"scene", "node"}, calls)
	assert.EqualValues(t, 400, s.Uniforms.Width)
	assert.Equal(t, s.Camera.ProjectionMatrix(), s.Uniforms.ProjectionMatrix)
	assert.Equal(t, s.Camera.Position, s.Fragment.CameraPosition)
	assertVec3(t, mgl32.Vec3{0, 0, 1}, s.Uniforms.Forward)
}

func TestBuildFrame(t *testing.T) {
	s, err := NewTestScene(1280, 720, NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, s.Update(1.0/60))

	f, err := BuildFrame(s, layout.WGSL)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.LightCount)
	assert.Len(t, f.Lights, rev2.MaxLights*rev2.LightLayout(layout.WGSL).Stride())
	require.Len(t, f.Draws, 2)

	sun, cube := f.Draws[0], f.Draws[1]
	assert.Equal(t, "sun", sun.Node.Name)
	assert.Equal(t, shading.GradientLinear, sun.Material.Gradient)
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, sun.Material.SecondColor)
	assert.Equal(t, shading.GradientNone, cube.Material.Gradient)
	assert.Equal(t, mgl32.Vec3{}, cube.Material.SecondColor)

	assert.EqualValues(t, 2, cube.Fragment.LightCount)
	assert.EqualValues(t, 1, cube.Fragment.Tiling)
	assert.Equal(t, cube.Node.WorldTransform(), cube.Uniforms.ModelMatrix)
	assert.Equal(t, shading.NormalMatrix(cube.Uniforms.ModelMatrix), cube.Uniforms.NormalMatrix)

	got, err := rev2.DecodeUniforms(layout.WGSL, cube.UniformBytes)
	require.NoError(t, err)
	assert.Equal(t, cube.Uniforms, got)
	assert.Len(t, cube.MaterialBytes, rev2.MaterialLayout(layout.WGSL).Size)
	assert.Len(t, cube.FragmentBytes, rev2.FragmentUniformsLayout(layout.WGSL).Size)

	lights, err := rev2.DecodeLights(layout.WGSL, f.Lights, int(f.LightCount))
	require.NoError(t, err)
	assert.Equal(t, shading.Sunlight, lights[0].Type)
	assert.Equal(t, shading.Ambientlight, lights[1].Type)
}

func TestBuildFrameErrors(t *testing.T) {
	s := NewScene("s", 10, 10, nil)
	s.Lights = make([]shading.Light, rev2.MaxLights+1)
	_, err := BuildFrame(s, layout.Metal)
	assert.ErrorIs(t, err, rev2.ErrTooManyLights)

	s.Lights = nil
	n, err := NewPrimitive("n", mesh.Cube, 1)
	require.NoError(t, err)
	n.Material.Gradient = nil
	n.Tiling = 0
	s.Add(n, nil)
	f, err := BuildFrame(s, layout.Metal)
	require.NoError(t, err)
	assert.EqualValues(t, 0, f.LightCount)
	assert.EqualValues(t, 1, f.Draws[0].Fragment.Tiling)
	assert.Len(t, f.Draws[0].MaterialBytes, 128)
}

type customGradient struct{ shading.RadialGradient }

func TestBuildFramePointerVariants(t *testing.T) {
	s := NewScene("s", 10, 10, nil)
	s.Lights = []shading.Light{
		&shading.PointLight{Position: mgl32.Vec3{0, 1, 0}, Color: mgl32.Vec3{1, 0, 0}, Attenuation: mgl32.Vec3{1, 0, 0}},
		&shading.AmbientLight{Color: mgl32.Vec3{0.1, 0.1, 0.1}, Intensity: 1},
	}
	n, err := NewPrimitive("n", mesh.Cube, 1)
	require.NoError(t, err)
	n.Material.Gradient = &shading.LinearGradient{SecondColor: mgl32.Vec3{0, 0, 1}}
	s.Add(n, nil)

	f, err := BuildFrame(s, layout.WGSL)
	require.NoError(t, err)
	lights, err := rev2.DecodeLights(layout.WGSL, f.Lights, int(f.LightCount))
	require.NoError(t, err)
	assert.Equal(t, shading.Pointlight, lights[0].Type)
	assert.Equal(t, shading.Ambientlight, lights[1].Type)
	assert.Equal(t, shading.GradientLinear, f.Draws[0].Material.Gradient)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, f.Draws[0].Material.SecondColor)

	n.Material.Gradient = customGradient{}
	_, err = BuildFrame(s, layout.WGSL)
	assert.ErrorIs(t, err, shading.ErrUnknownGradient)
}

func TestTestSceneAnimates(t *testing.T) {
	s, err := NewTestScene(1280, 720, nil)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{0, 0, -15}, s.Camera.Position)

	box := s.Find("cube")
	require.NotNil(t, box)
	before := box.Position
	require.NoError(t, s.Update(1.0/60))
	assert.NotEqual(t, before, box.Position)
}
