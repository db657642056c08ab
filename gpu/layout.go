// Package gpu uploads frames built by the scene layer to a wgpu device and draws
// them with the lit pipeline.
package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/gettingback/mesh"
	"github.com/gekko3d/gettingback/shaders"
	"github.com/gekko3d/gettingback/shadertypes/binding"
	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
)

var (
	ErrNoVertexFormat = errors.New("gpu: no vertex format for kind")
	ErrUnknownBuffer  = errors.New("gpu: uniform buffer without a host layout")
)

var vertexFormats = map[layout.Kind]wgpu.VertexFormat{
	layout.Float:  wgpu.VertexFormatFloat32,
	layout.Float2: wgpu.VertexFormatFloat32x2,
	layout.Float3: wgpu.VertexFormatFloat32x3,
	layout.Float4: wgpu.VertexFormatFloat32x4,
	layout.Uint:   wgpu.VertexFormatUint32,
	layout.Int:    wgpu.VertexFormatSint32,
}

func VertexFormat(k layout.Kind) (wgpu.VertexFormat, error) {
	f, ok := vertexFormats[k]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoVertexFormat, k)
	}
	return f, nil
}

// VertexBufferLayout converts an interleaved mesh layout into the pipeline's
// vertex buffer description.
func VertexBufferLayout(vl mesh.VertexLayout) (wgpu.VertexBufferLayout, error) {
	attrs := make([]wgpu.VertexAttribute, 0, len(vl.Attributes))
	for _, a := range vl.Attributes {
		f, err := VertexFormat(a.Kind)
		if err != nil {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("attribute %s: %w", a.ShaderName, err)
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         f,
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		})
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: vl.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}

func shaderStages(s binding.Stage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&binding.StageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&binding.StageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

// UniformSizes returns the byte size of every revision 2 uniform buffer, keyed
// by shader name.
func UniformSizes(t layout.Target) map[string]uint64 {
	return map[string]uint64{
		"uniforms":         uint64(rev2.UniformsLayout(t).Size),
		"lights":           uint64(rev2.MaxLights * rev2.LightLayout(t).Stride()),
		"fragmentUniforms": uint64(rev2.FragmentUniformsLayout(t).Size),
		"material":         uint64(rev2.MaterialLayout(t).Size),
	}
}

// BindGroupLayoutEntries groups the resource bindings of reg by bind group.
// Uniform buffers take their minimum binding size from sizes.
func BindGroupLayoutEntries(reg *binding.Registry, sizes map[string]uint64) (map[uint32][]wgpu.BindGroupLayoutEntry, error) {
	out := map[uint32][]wgpu.BindGroupLayoutEntry{}
	var errs []error
	for _, k := range []binding.Kind{binding.UniformBuffer, binding.Texture, binding.Sampler} {
		for _, b := range reg.ByKind(k) {
			e := wgpu.BindGroupLayoutEntry{
				Binding:    b.Slot,
				Visibility: shaderStages(b.Stages),
			}
			switch k {
			case binding.UniformBuffer:
				size, ok := sizes[b.ShaderName]
				if !ok {
					errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownBuffer, b))
					continue
				}
				e.Buffer = wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				}
			case binding.Texture:
				e.Texture = wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				}
			case binding.Sampler:
				e.Sampler = wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				}
			}
			out[b.Group] = append(out[b.Group], e)
		}
	}
	return out, errors.Join(errs...)
}

// CheckShader is the startup check run before a pipeline is built. The shader
// must satisfy the revision 2 contract, so the light array holds exactly
// MaxLights records.
func CheckShader(src string) (binding.Report, error) {
	return shaders.Revision2().Check(src)
}
