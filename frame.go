package gettingback

import (
	"fmt"

	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/gekko3d/gettingback/shadertypes/shading"
)

// Draw is everything one renderable needs for its draw call, in host form and
// encoded for the frame's target.
type Draw struct {
	Node     *Node
	Uniforms rev2.Uniforms
	Fragment rev2.FragmentUniforms
	Material rev2.Material

	UniformBytes  []byte
	FragmentBytes []byte
	MaterialBytes []byte
}

type Frame struct {
	Target     layout.Target
	LightCount uint32
	// Lights is the full MaxLights array; records past LightCount are zero.
	Lights []byte
	Draws  []Draw
}

// BuildFrame encodes the current scene state. Update must have run first so the
// camera values are current.
func BuildFrame(s *Scene, t layout.Target) (*Frame, error) {
	flat, err := rev2.FlattenLights(s.Lights)
	if err != nil {
		return nil, err
	}
	lights, err := rev2.EncodeLights(t, flat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lights: %w", err)
	}
	f := &Frame{Target: t, LightCount: uint32(len(s.Lights)), Lights: lights}

	for _, n := range s.renderables {
		mat, err := rev2.FlattenMaterial(n.Material)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
		model := n.WorldTransform()

		u := s.Uniforms
		u.ModelMatrix = model
		u.NormalMatrix = shading.NormalMatrix(model)

		frag := s.Fragment
		frag.LightCount = f.LightCount
		frag.Tiling = max(n.Tiling, 1)

		f.Draws = append(f.Draws, Draw{
			Node:          n,
			Uniforms:      u,
			Fragment:      frag,
			Material:      mat,
			UniformBytes:  u.Encode(t),
			FragmentBytes: frag.Encode(t),
			MaterialBytes: mat.Encode(t),
		})
	}
	return f, nil
}
