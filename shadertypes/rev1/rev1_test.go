package rev1

import (
	"testing"

	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexValues(t *testing.T) {
	assert.EqualValues(t, 0, BufferIndexMeshPositions)
	assert.EqualValues(t, 1, BufferIndexUniforms)
	assert.EqualValues(t, 0, VertexAttributePosition)
	assert.EqualValues(t, 1, VertexAttributeNormal)
	assert.EqualValues(t, 0, TextureIndexColor)

	assert.Equal(t, uint32(1), Registry().MustSlot("BufferIndexUniforms"))
}

func TestMetalLayouts(t *testing.T) {
	cases := []struct {
		s       layout.Struct
		size    int
		offsets map[string]int
	}{
		{UniformsLayout(layout.Metal), 240, map[string]int{"viewMatrix": 64, "projectionMatrix": 128, "normalMatrix": 192}},
		{FragmentUniformsLayout(layout.Metal), 32, map[string]int{"lightCount": 0, "cameraPosition": 16}},
		{LightLayout(layout.Metal), 128, map[string]int{"intensity": 48, "attenuation": 64, "type": 80, "coneAngle": 84, "coneDirection": 96, "coneAttenuation": 112}},
		{MaterialLayout(layout.Metal), 112, map[string]int{"secondColor": 16, "roughness": 48, "metallic": 52, "ambientOcclusion": 64, "shininess": 80, "irradiatedColor": 96}},
	}
	for _, c := range cases {
		assert.Equal(t, c.size, c.s.Size, c.s.Name)
		for name, want := range c.offsets {
			got, ok := c.s.Offset(name)
			require.True(t, ok, "%s.%s", c.s.Name, name)
			assert.Equal(t, want, got, "%s.%s", c.s.Name, name)
		}
	}
}

func TestWGSLMaterialLayout(t *testing.T) {
	s := MaterialLayout(layout.WGSL)
	off, _ := s.Offset("roughness")
	assert.Equal(t, 44, off)
	off, _ = s.Offset("shininess")
	assert.Equal(t, 76, off)
	assert.Equal(t, 96, s.Size)
}

func TestUniformsEncodeDecode(t *testing.T) {
	model := mgl32.Translate3D(-1.5, 0.5, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(45)))
	u := Uniforms{
		ModelMatrix:      model,
		ViewMatrix:       mgl32.Translate3D(0, 0, 15),
		ProjectionMatrix: mgl32.Perspective(1, 1.5, 0.1, 100),
		NormalMatrix:     shading.NormalMatrix(model),
	}
	for _, target := range []layout.Target{layout.Metal, layout.WGSL} {
		buf := u.Encode(target)
		require.Len(t, buf, 240)
		got, err := DecodeUniforms(target, buf)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}
}

func TestLightArray(t *testing.T) {
	lights, err := FlattenLights([]shading.Light{
		shading.DirectionalLight{Position: mgl32.Vec3{1, 2, -2}, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1},
		&shading.AmbientLight{Color: mgl32.Vec3{0.5, 1, 0}, Intensity: 0.1},
	})
	require.NoError(t, err)
	buf, err := EncodeLights(layout.Metal, lights)
	require.NoError(t, err)
	assert.Len(t, buf, MaxLights*128)

	got, err := DecodeLights(layout.Metal, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, lights, got)

	v, err := got[1].Variant()
	require.NoError(t, err)
	assert.Equal(t, shading.AmbientLight{Color: mgl32.Vec3{0.5, 1, 0}, Intensity: 0.1}, v)

	_, err = EncodeLights(layout.Metal, make([]Light, MaxLights+1))
	assert.ErrorIs(t, err, ErrTooManyLights)

	_, err = DecodeLights(layout.Metal, buf[:200], 2)
	assert.ErrorIs(t, err, layout.ErrShortBuffer)

	_, err = DecodeLights(layout.Metal, buf, -1)
	assert.ErrorIs(t, err, shading.ErrNegativeCount)
}

func TestFlattenMaterialRejectsGradient(t *testing.T) {
	m := shading.DefaultMaterial()
	flat, err := FlattenMaterial(m)
	require.NoError(t, err)
	assert.Equal(t, m.BaseColor, flat.BaseColor)

	m.Gradient = shading.LinearGradient{SecondColor: mgl32.Vec3{1, 0, 1}}
	_, err = FlattenMaterial(m)
	assert.ErrorIs(t, err, ErrGradientUnsupported)

	m.Gradient = &shading.RadialGradient{SecondColor: mgl32.Vec3{1, 0, 1}}
	_, err = FlattenMaterial(m)
	assert.ErrorIs(t, err, ErrGradientUnsupported)

	m.Gradient = (*shading.LinearGradient)(nil)
	_, err = FlattenMaterial(m)
	assert.NoError(t, err)
}

func TestMaterialEncodeDecode(t *testing.T) {
	m := Material{
		BaseColor:        mgl32.Vec3{0, 0.5, 0},
		SecondColor:      mgl32.Vec3{1, 1, 0},
		SpecularColor:    mgl32.Vec3{0, 1, 0},
		Metallic:         1,
		Shininess:        0.1,
		AmbientOcclusion: mgl32.Vec3{1, 1, 1},
		IrradiatedColor:  mgl32.Vec4{0.2, 0.2, 0.2, 1},
	}
	for _, target := range []layout.Target{layout.Metal, layout.WGSL} {
		got, err := DecodeMaterial(target, m.Encode(target))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}
