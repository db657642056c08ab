// Package rev2 is the second revision of the shared shader contract. It moves the
// buffer slots above the vertex buffer range, adds the PBR texture set, tangent
// space vertex inputs, a viewport and ray camera basis in Uniforms, a tiling factor
// in FragmentUniforms and a gradient tag in Material.
package rev2

import (
	"github.com/gekko3d/gettingback/shadertypes/binding"
)

type BufferIndices int32

const (
	BufferIndexVertices         BufferIndices = 0
	BufferIndexUniforms         BufferIndices = 11
	BufferIndexLights           BufferIndices = 12
	BufferIndexFragmentUniforms BufferIndices = 13
	BufferIndexMaterials        BufferIndices = 14
)

type Attributes int32

const (
	Position  Attributes = 0
	Normal    Attributes = 1
	UV        Attributes = 2
	Tangent   Attributes = 3
	Bitangent Attributes = 4
)

type Textures int32

const (
	BaseColorTexture Textures = 0
	NormalTexture    Textures = 1
	RoughnessTexture Textures = 2
	MetallicTexture  Textures = 3
	AOTexture        Textures = 4
)

// SamplerIndexDefault is the fragment sampler slot used with every texture.
const SamplerIndexDefault = 0

// Bind groups used when the contract is expressed in WGSL. Metal keeps buffers,
// textures and samplers in separate index spaces; WGSL needs a group for each to
// keep the same numbers.
const (
	GroupBuffers  = 0
	GroupTextures = 1
	GroupSamplers = 2
)

var registry = binding.MustRegistry(
	binding.Binding{Name: "BufferIndexVertices", Kind: binding.VertexBuffer, Slot: uint32(BufferIndexVertices)},
	binding.Binding{Name: "BufferIndexUniforms", ShaderName: "uniforms", Kind: binding.UniformBuffer, Group: GroupBuffers, Slot: uint32(BufferIndexUniforms), Stages: binding.StageVertex | binding.StageFragment},
	binding.Binding{Name: "BufferIndexLights", ShaderName: "lights", Kind: binding.UniformBuffer, Group: GroupBuffers, Slot: uint32(BufferIndexLights), Stages: binding.StageFragment},
	binding.Binding{Name: "BufferIndexFragmentUniforms", ShaderName: "fragmentUniforms", Kind: binding.UniformBuffer, Group: GroupBuffers, Slot: uint32(BufferIndexFragmentUniforms), Stages: binding.StageFragment},
	binding.Binding{Name: "BufferIndexMaterials", ShaderName: "material", Kind: binding.UniformBuffer, Group: GroupBuffers, Slot: uint32(BufferIndexMaterials), Stages: binding.StageFragment},

	binding.Binding{Name: "Position", ShaderName: "position", Kind: binding.VertexAttribute, Slot: uint32(Position)},
	binding.Binding{Name: "Normal", ShaderName: "normal", Kind: binding.VertexAttribute, Slot: uint32(Normal)},
	binding.Binding{Name: "UV", ShaderName: "uv", Kind: binding.VertexAttribute, Slot: uint32(UV)},
	binding.Binding{Name: "Tangent", ShaderName: "tangent", Kind: binding.VertexAttribute, Slot: uint32(Tangent)},
	binding.Binding{Name: "Bitangent", ShaderName: "bitangent", Kind: binding.VertexAttribute, Slot: uint32(Bitangent)},

	binding.Binding{Name: "BaseColorTexture", ShaderName: "baseColorTexture", Kind: binding.Texture, Group: GroupTextures, Slot: uint32(BaseColorTexture), Stages: binding.StageFragment},
	binding.Binding{Name: "NormalTexture", ShaderName: "normalTexture", Kind: binding.Texture, Group: GroupTextures, Slot: uint32(NormalTexture), Stages: binding.StageFragment},
	binding.Binding{Name: "RoughnessTexture", ShaderName: "roughnessTexture", Kind: binding.Texture, Group: GroupTextures, Slot: uint32(RoughnessTexture), Stages: binding.StageFragment},
	binding.Binding{Name: "MetallicTexture", ShaderName: "metallicTexture", Kind: binding.Texture, Group: GroupTextures, Slot: uint32(MetallicTexture), Stages: binding.StageFragment},
	binding.Binding{Name: "AOTexture", ShaderName: "aoTexture", Kind: binding.Texture, Group: GroupTextures, Slot: uint32(AOTexture), Stages: binding.StageFragment},

	binding.Binding{Name: "SamplerIndexDefault", ShaderName: "textureSampler", Kind: binding.Sampler, Group: GroupSamplers, Slot: SamplerIndexDefault, Stages: binding.StageFragment},
)

// Registry returns the binding slots declared by this revision.
func Registry() *binding.Registry { return registry }

// TextureCount is the number of texture slots.
const TextureCount = 5

// TextureSlots lists the texture indices in slot order.
var TextureSlots = [TextureCount]Textures{BaseColorTexture, NormalTexture, RoughnessTexture, MetallicTexture, AOTexture}

func (t Textures) String() string {
	switch t {
	case BaseColorTexture:
		return "baseColor"
	case NormalTexture:
		return "normal"
	case RoughnessTexture:
		return "roughness"
	case MetallicTexture:
		return "metallic"
	case AOTexture:
		return "ao"
	}
	return "unknown"
}
