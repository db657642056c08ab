// Package shading holds the variant types that describe lights, materials and the
// camera basis on the application side. The revision packages flatten them into the
// fixed records the shaders read.
package shading

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType is the discriminant stored in every flat light record.
type LightType uint32

const (
	LightUnused  LightType = 0
	Sunlight     LightType = 1
	Spotlight    LightType = 2
	Pointlight   LightType = 3
	Ambientlight LightType = 4
)

// AllLightTypes lists every declared tag, including LightUnused.
var AllLightTypes = []LightType{LightUnused, Sunlight, Spotlight, Pointlight, Ambientlight}

func (t LightType) String() string {
	switch t {
	case LightUnused:
		return "unused"
	case Sunlight:
		return "sunlight"
	case Spotlight:
		return "spotlight"
	case Pointlight:
		return "pointlight"
	case Ambientlight:
		return "ambientlight"
	}
	return fmt.Sprintf("LightType(%d)", uint32(t))
}

func (t LightType) Valid() bool { return t <= Ambientlight }

// ParseLightType accepts the names printed by LightType.String.
func ParseLightType(s string) (LightType, error) {
	for _, t := range AllLightTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLightType, s)
}

// Light is one of Sunlight, Spotlight, Pointlight or Ambientlight.
type Light interface {
	Type() LightType
	isLight()
}

// DirectionalLight shines from Position toward the origin with no attenuation.
type DirectionalLight struct {
	Position      mgl32.Vec3
	Color         mgl32.Vec3
	SpecularColor mgl32.Vec3
	Intensity     float32
}

type SpotLight struct {
	Position        mgl32.Vec3
	Color           mgl32.Vec3
	SpecularColor   mgl32.Vec3
	Intensity       float32
	Attenuation     mgl32.Vec3 // constant, linear, quadratic
	ConeAngle       float32    // radians
	ConeDirection   mgl32.Vec3
	ConeAttenuation float32
}

type PointLight struct {
	Position      mgl32.Vec3
	Color         mgl32.Vec3
	SpecularColor mgl32.Vec3
	Intensity     float32
	Attenuation   mgl32.Vec3 // constant, linear, quadratic
}

type AmbientLight struct {
	Color     mgl32.Vec3
	Intensity float32
}

func (DirectionalLight) Type() LightType { return Sunlight }
func (SpotLight) Type() LightType        { return Spotlight }
func (PointLight) Type() LightType       { return Pointlight }
func (AmbientLight) Type() LightType     { return Ambientlight }

func (DirectionalLight) isLight() {}
func (SpotLight) isLight()        {}
func (PointLight) isLight()       {}
func (AmbientLight) isLight()     {}

// Flat is the union of every variant's fields, in the order the shaders declare them.
// Fields a variant does not use are zero.
type Flat struct {
	Position        mgl32.Vec3
	Color           mgl32.Vec3
	SpecularColor   mgl32.Vec3
	Intensity       float32
	Attenuation     mgl32.Vec3
	Type            LightType
	ConeAngle       float32
	ConeDirection   mgl32.Vec3
	ConeAttenuation float32
}

// Flatten spreads l into the shared record. A nil light, or a nil pointer to
// one, yields an unused slot. Pointers to the variants are accepted as well.
func Flatten(l Light) (Flat, error) {
	switch v := l.(type) {
	case nil:
		return Flat{Type: LightUnused}, nil
	case DirectionalLight:
		return Flat{Type: Sunlight, Position: v.Position, Color: v.Color, SpecularColor: v.SpecularColor, Intensity: v.Intensity}, nil
	case SpotLight:
		return Flat{
			Type:            Spotlight,
			Position:        v.Position,
			Color:           v.Color,
			SpecularColor:   v.SpecularColor,
			Intensity:       v.Intensity,
			Attenuation:     v.Attenuation,
			ConeAngle:       v.ConeAngle,
			ConeDirection:   v.ConeDirection,
			ConeAttenuation: v.ConeAttenuation,
		}, nil
	case PointLight:
		return Flat{Type: Pointlight, Position: v.Position, Color: v.Color, SpecularColor: v.SpecularColor, Intensity: v.Intensity, Attenuation: v.Attenuation}, nil
	case AmbientLight:
		return Flat{Type: Ambientlight, Color: v.Color, Intensity: v.Intensity}, nil
	case *DirectionalLight:
		return flattenPtr(v)
	case *SpotLight:
		return flattenPtr(v)
	case *PointLight:
		return flattenPtr(v)
	case *AmbientLight:
		return flattenPtr(v)
	}
	return Flat{}, fmt.Errorf("%w: %T", ErrUnknownLightType, l)
}

func flattenPtr[T DirectionalLight | SpotLight | PointLight | AmbientLight](p *T) (Flat, error) {
	if p == nil {
		return Flat{Type: LightUnused}, nil
	}
	return Flatten(any(*p).(Light))
}

// Variant rebuilds the typed light from a flat record, dropping fields the variant
// does not carry. An unused slot returns a nil Light and no error.
func (f Flat) Variant() (Light, error) {
	switch f.Type {
	case LightUnused:
		return nil, nil
	case Sunlight:
		return DirectionalLight{Position: f.Position, Color: f.Color, SpecularColor: f.SpecularColor, Intensity: f.Intensity}, nil
	case Spotlight:
		return SpotLight{
			Position:        f.Position,
			Color:           f.Color,
			SpecularColor:   f.SpecularColor,
			Intensity:       f.Intensity,
			Attenuation:     f.Attenuation,
			ConeAngle:       f.ConeAngle,
			ConeDirection:   f.ConeDirection,
			ConeAttenuation: f.ConeAttenuation,
		}, nil
	case Pointlight:
		return PointLight{Position: f.Position, Color: f.Color, SpecularColor: f.SpecularColor, Intensity: f.Intensity, Attenuation: f.Attenuation}, nil
	case Ambientlight:
		return AmbientLight{Color: f.Color, Intensity: f.Intensity}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownLightType, uint32(f.Type))
}
