package rev2

import (
	"errors"
	"fmt"

	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the capacity of the light array the shaders declare.
const MaxLights = 16

var ErrTooManyLights = errors.New("rev2: too many lights")

type Uniforms struct {
	ModelMatrix      mgl32.Mat4
	ViewMatrix       mgl32.Mat4
	ProjectionMatrix mgl32.Mat4
	NormalMatrix     mgl32.Mat3
	Width            uint32
	Height           uint32
	Origin           mgl32.Vec3
	Direction        mgl32.Vec3
	Up               mgl32.Vec3
	Right            mgl32.Vec3
	Forward          mgl32.Vec3
}

// SetCamera copies a validated basis into the ray camera fields.
func (u *Uniforms) SetCamera(b shading.CameraBasis) {
	u.Origin = b.Origin()
	u.Direction = b.Direction()
	u.Up = b.Up()
	u.Right = b.Right()
	u.Forward = b.Forward()
}

// Camera validates the ray camera fields.
func (u Uniforms) Camera() (shading.CameraBasis, error) {
	return shading.NewCameraBasis(u.Origin, u.Direction, u.Up, u.Right, u.Forward)
}

type FragmentUniforms struct {
	LightCount     uint32
	CameraPosition mgl32.Vec3
	Tiling         uint32
}

// Light is the flat record read by the fragment shader. Only the fields the Type
// selects carry meaning.
type Light shading.Flat

type Material struct {
	BaseColor        mgl32.Vec3
	SecondColor      mgl32.Vec3
	SpecularColor    mgl32.Vec3
	Roughness        float32
	Metallic         float32
	AmbientOcclusion mgl32.Vec3
	Shininess        float32
	IrradiatedColor  mgl32.Vec4
	Gradient         shading.GradientMode
}

func UniformsLayout(t layout.Target) layout.Struct {
	return layout.Compute(t, "Uniforms",
		layout.Field{Name: "modelMatrix", Kind: layout.Float4x4},
		layout.Field{Name: "viewMatrix", Kind: layout.Float4x4},
		layout.Field{Name: "projectionMatrix", Kind: layout.Float4x4},
		layout.Field{Name: "normalMatrix", Kind: layout.Float3x3},
		layout.Field{Name: "width", Kind: layout.Uint},
		layout.Field{Name: "height", Kind: layout.Uint},
		layout.Field{Name: "origin", Kind: layout.Float3},
		layout.Field{Name: "direction", Kind: layout.Float3},
		layout.Field{Name: "up", Kind: layout.Float3},
		layout.Field{Name: "right", Kind: layout.Float3},
		layout.Field{Name: "forward", Kind: layout.Float3},
	)
}

func FragmentUniformsLayout(t layout.Target) layout.Struct {
	return layout.Compute(t, "FragmentUniforms",
		layout.Field{Name: "lightCount", Kind: layout.Uint},
		layout.Field{Name: "cameraPosition", Kind: layout.Float3},
		layout.Field{Name: "tiling", Kind: layout.Uint},
	)
}

func LightLayout(t layout.Target) layout.Struct { return shading.FlatLayout(t) }

func MaterialLayout(t layout.Target) layout.Struct {
	return layout.Compute(t, "Material",
		layout.Field{Name: "baseColor", Kind: layout.Float3},
		layout.Field{Name: "secondColor", Kind: layout.Float3},
		layout.Field{Name: "specularColor", Kind: layout.Float3},
		layout.Field{Name: "roughness", Kind: layout.Float},
		layout.Field{Name: "metallic", Kind: layout.Float},
		layout.Field{Name: "ambientOcclusion", Kind: layout.Float3},
		layout.Field{Name: "shininess", Kind: layout.Float},
		layout.Field{Name: "irradiatedColor", Kind: layout.Float4},
		layout.Field{Name: "gradient", Kind: layout.Uint},
	)
}

func Layouts(t layout.Target) []layout.Struct {
	return []layout.Struct{UniformsLayout(t), FragmentUniformsLayout(t), LightLayout(t), MaterialLayout(t)}
}

func (u Uniforms) Encode(t layout.Target) []byte {
	s := UniformsLayout(t)
	w := s.NewWriter()
	w.Mat4(u.ModelMatrix)
	w.Mat4(u.ViewMatrix)
	w.Mat4(u.ProjectionMatrix)
	w.Mat3(u.NormalMatrix)
	w.Uint(u.Width)
	w.Uint(u.Height)
	w.Vec3(u.Origin)
	w.Vec3(u.Direction)
	w.Vec3(u.Up)
	w.Vec3(u.Right)
	w.Vec3(u.Forward)
	return w.Bytes()
}

func DecodeUniforms(t layout.Target, buf []byte) (Uniforms, error) {
	s := UniformsLayout(t)
	r, err := s.NewReader(buf)
	if err != nil {
		return Uniforms{}, err
	}
	return Uniforms{
		ModelMatrix:      r.Mat4(),
		ViewMatrix:       r.Mat4(),
		ProjectionMatrix: r.Mat4(),
		NormalMatrix:     r.Mat3(),
		Width:            r.Uint(),
		Height:           r.Uint(),
		Origin:           r.Vec3(),
		Direction:        r.Vec3(),
		Up:               r.Vec3(),
		Right:            r.Vec3(),
		Forward:          r.Vec3(),
	}, nil
}

func (f FragmentUniforms) Encode(t layout.Target) []byte {
	s := FragmentUniformsLayout(t)
	w := s.NewWriter()
	w.Uint(f.LightCount)
	w.Vec3(f.CameraPosition)
	w.Uint(f.Tiling)
	return w.Bytes()
}

func DecodeFragmentUniforms(t layout.Target, buf []byte) (FragmentUniforms, error) {
	s := FragmentUniformsLayout(t)
	r, err := s.NewReader(buf)
	if err != nil {
		return FragmentUniforms{}, err
	}
	return FragmentUniforms{LightCount: r.Uint(), CameraPosition: r.Vec3(), Tiling: r.Uint()}, nil
}

func (l Light) Encode(t layout.Target) []byte {
	s := LightLayout(t)
	w := s.NewWriter()
	shading.Flat(l).Write(w)
	return w.Bytes()
}

// FlattenLight converts a typed light into its record. A nil light is an unused slot.
func FlattenLight(l shading.Light) (Light, error) {
	f, err := shading.Flatten(l)
	return Light(f), err
}

func (l Light) Variant() (shading.Light, error) { return shading.Flat(l).Variant() }

// FlattenLights converts typed lights, in order.
func FlattenLights(lights []shading.Light) ([]Light, error) {
	out := make([]Light, len(lights))
	for i, l := range lights {
		f, err := FlattenLight(l)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// EncodeLights writes lights into an array of MaxLights records.
func EncodeLights(t layout.Target, lights []Light) ([]byte, error) {
	if len(lights) > MaxLights {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyLights, len(lights), MaxLights)
	}
	flat := make([]shading.Flat, len(lights))
	for i, l := range lights {
		flat[i] = shading.Flat(l)
	}
	return shading.EncodeFlats(t, flat, MaxLights), nil
}

func DecodeLights(t layout.Target, buf []byte, n int) ([]Light, error) {
	flat, err := shading.DecodeFlats(t, buf, n)
	if err != nil {
		return nil, err
	}
	out := make([]Light, len(flat))
	for i, f := range flat {
		out[i] = Light(f)
	}
	return out, nil
}

func (m Material) Encode(t layout.Target) []byte {
	s := MaterialLayout(t)
	w := s.NewWriter()
	w.Vec3(m.BaseColor)
	w.Vec3(m.SecondColor)
	w.Vec3(m.SpecularColor)
	w.Float(m.Roughness)
	w.Float(m.Metallic)
	w.Vec3(m.AmbientOcclusion)
	w.Float(m.Shininess)
	w.Vec4(m.IrradiatedColor)
	w.Uint(uint32(m.Gradient))
	return w.Bytes()
}

func DecodeMaterial(t layout.Target, buf []byte) (Material, error) {
	s := MaterialLayout(t)
	r, err := s.NewReader(buf)
	if err != nil {
		return Material{}, err
	}
	return Material{
		BaseColor:        r.Vec3(),
		SecondColor:      r.Vec3(),
		SpecularColor:    r.Vec3(),
		Roughness:        r.Float(),
		Metallic:         r.Float(),
		AmbientOcclusion: r.Vec3(),
		Shininess:        r.Float(),
		IrradiatedColor:  r.Vec4(),
		Gradient:         shading.GradientMode(r.Uint()),
	}, nil
}

// FlattenMaterial spreads the gradient variant into the tag and second color.
func FlattenMaterial(m shading.Material) (Material, error) {
	mode, second, err := shading.SplitGradient(m.Gradient)
	if err != nil {
		return Material{}, err
	}
	return Material{
		BaseColor:        m.BaseColor,
		SecondColor:      second,
		SpecularColor:    m.SpecularColor,
		Roughness:        m.Roughness,
		Metallic:         m.Metallic,
		AmbientOcclusion: m.AmbientOcclusion,
		Shininess:        m.Shininess,
		IrradiatedColor:  m.IrradiatedColor,
		Gradient:         mode,
	}, nil
}

// Variant rebuilds the typed material. The second color is dropped when the tag
// selects no gradient.
func (m Material) Variant() (shading.Material, error) {
	g, err := shading.NewGradient(m.Gradient, m.SecondColor)
	if err != nil {
		return shading.Material{}, err
	}
	return shading.Material{
		BaseColor:        m.BaseColor,
		SpecularColor:    m.SpecularColor,
		Roughness:        m.Roughness,
		Metallic:         m.Metallic,
		AmbientOcclusion: m.AmbientOcclusion,
		Shininess:        m.Shininess,
		IrradiatedColor:  m.IrradiatedColor,
		Gradient:         g,
	}, nil
}
