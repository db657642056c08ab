package gpu

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gettingback/mesh"
	"github.com/gekko3d/gettingback/shaders"
	"github.com/gekko3d/gettingback/shadertypes/binding"
	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/rev1"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexFormat(t *testing.T) {
	f, err := VertexFormat(layout.Float3)
	require.NoError(t, err)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, f)

	_, err = VertexFormat(layout.Float4x4)
	assert.ErrorIs(t, err, ErrNoVertexFormat)
}

func TestVertexBufferLayoutFollowsRegistry(t *testing.T) {
	vl, err := mesh.LayoutFor(rev2.Registry())
	require.NoError(t, err)
	vbl, err := VertexBufferLayout(vl)
	require.NoError(t, err)

	assert.EqualValues(t, mesh.VertexStride, vbl.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, vbl.StepMode)
	require.Len(t, vbl.Attributes, 5)
	assert.Equal(t, wgpu.VertexAttribute{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: uint32(rev2.UV)}, vbl.Attributes[2])
	assert.EqualValues(t, rev2.Bitangent, vbl.Attributes[4].ShaderLocation)

	_, err = VertexBufferLayout(mesh.VertexLayout{Attributes: []mesh.Attribute{{ShaderName: "m", Kind: layout.Float3x3}}})
	assert.ErrorIs(t, err, ErrNoVertexFormat)
}

func TestBindGroupLayoutEntries(t *testing.T) {
	sizes := UniformSizes(layout.WGSL)
	assert.EqualValues(t, 336, sizes["uniforms"])
	assert.EqualValues(t, rev2.MaxLights*96, sizes["lights"])

	groups, err := BindGroupLayoutEntries(rev2.Registry(), sizes)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	bufs := groups[rev2.GroupBuffers]
	require.Len(t, bufs, 4)
	assert.EqualValues(t, rev2.BufferIndexUniforms, bufs[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, bufs[0].Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, bufs[0].Buffer.Type)
	assert.EqualValues(t, 336, bufs[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageFragment, bufs[1].Visibility)

	texs := groups[rev2.GroupTextures]
	require.Len(t, texs, rev2.TextureCount)
	for i, e := range texs {
		assert.EqualValues(t, i, e.Binding)
		assert.Equal(t, wgpu.TextureViewDimension2D, e.Texture.ViewDimension)
	}

	smp := groups[rev2.GroupSamplers]
	require.Len(t, smp, 1)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, smp[0].Sampler.Type)
}

func TestBindGroupLayoutEntriesNeedSizes(t *testing.T) {
	reg := binding.MustRegistry(binding.Binding{Name: "U", ShaderName: "u", Kind: binding.UniformBuffer, Stages: binding.StageVertex})
	_, err := BindGroupLayoutEntries(reg, UniformSizes(layout.WGSL))
	assert.ErrorIs(t, err, ErrUnknownBuffer)

	groups, err := BindGroupLayoutEntries(reg, map[string]uint64{"u": 64})
	require.NoError(t, err)
	assert.Equal(t, wgpu.ShaderStageVertex, groups[0][0].Visibility)

	// the first revision's uniforms share the shader name but sit at binding 1
	groups, err = BindGroupLayoutEntries(rev1.Registry(), UniformSizes(layout.WGSL))
	require.NoError(t, err)
	assert.EqualValues(t, rev1.BufferIndexUniforms, groups[0][0].Binding)
}

func TestCheckShader(t *testing.T) {
	rep, err := CheckShader(shaders.LitWGSL)
	require.NoError(t, err)
	assert.Empty(t, rep.Unused)

	_, err = CheckShader(shaders.BasicWGSL)
	assert.Error(t, err)

	small := strings.Replace(shaders.LitWGSL, "array<Light, 16>", "array<Light, 8>", 1)
	require.NotEqual(t, shaders.LitWGSL, small)
	_, err = CheckShader(small)
	assert.ErrorIs(t, err, shaders.ErrArrayCapacity)
}

func TestPresentMode(t *testing.T) {
	all := []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeMailbox}
	assert.Equal(t, wgpu.PresentModeFifo, presentMode(true, all))
	assert.Equal(t, wgpu.PresentModeMailbox, presentMode(false, all))
	assert.Equal(t, wgpu.PresentModeFifo, presentMode(false, []wgpu.PresentMode{wgpu.PresentModeFifo}))
}
