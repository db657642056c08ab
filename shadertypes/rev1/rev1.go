// Package rev1 is the first revision of the shared shader contract: transform
// uniforms, a single color texture and position/normal vertex inputs.
//
// Its slot numbers are not compatible with rev2 (BufferIndexUniforms is 1 here and
// 11 there). The two packages are independent and must not be mixed in one pipeline.
package rev1

import (
	"github.com/gekko3d/gettingback/shadertypes/binding"
)

type BufferIndex int32

const (
	BufferIndexMeshPositions BufferIndex = 0
	BufferIndexUniforms      BufferIndex = 1
)

type VertexAttribute int32

const (
	VertexAttributePosition VertexAttribute = 0
	VertexAttributeNormal   VertexAttribute = 1
)

type TextureIndex int32

const (
	TextureIndexColor TextureIndex = 0
)

// Bind groups used when the contract is expressed in WGSL.
const (
	GroupBuffers  = 0
	GroupTextures = 1
)

var registry = binding.MustRegistry(
	binding.Binding{Name: "BufferIndexMeshPositions", Kind: binding.VertexBuffer, Slot: uint32(BufferIndexMeshPositions)},
	binding.Binding{Name: "BufferIndexUniforms", ShaderName: "uniforms", Kind: binding.UniformBuffer, Group: GroupBuffers, Slot: uint32(BufferIndexUniforms), Stages: binding.StageVertex},
	binding.Binding{Name: "VertexAttributePosition", ShaderName: "position", Kind: binding.VertexAttribute, Slot: uint32(VertexAttributePosition)},
	binding.Binding{Name: "VertexAttributeNormal", ShaderName: "normal", Kind: binding.VertexAttribute, Slot: uint32(VertexAttributeNormal)},
	binding.Binding{Name: "TextureIndexColor", ShaderName: "colorTexture", Kind: binding.Texture, Group: GroupTextures, Slot: uint32(TextureIndexColor), Stages: binding.StageFragment},
)

// Registry returns the binding slots declared by this revision.
func Registry() *binding.Registry { return registry }
