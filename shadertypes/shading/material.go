package shading

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrUnknownLightType = errors.New("shading: unknown light type")
	ErrUnknownGradient  = errors.New("shading: unknown gradient mode")
)

// GradientMode selects how a material blends its base and second color.
type GradientMode uint32

const (
	GradientNone   GradientMode = 0
	GradientLinear GradientMode = 1
	GradientRadial GradientMode = 2
)

var AllGradientModes = []GradientMode{GradientNone, GradientLinear, GradientRadial}

func (g GradientMode) String() string {
	switch g {
	case GradientNone:
		return "none"
	case GradientLinear:
		return "linear"
	case GradientRadial:
		return "radial"
	}
	return fmt.Sprintf("GradientMode(%d)", uint32(g))
}

func (g GradientMode) Valid() bool { return g <= GradientRadial }

func ParseGradientMode(s string) (GradientMode, error) {
	if s == "" {
		return GradientNone, nil
	}
	for _, g := range AllGradientModes {
		if g.String() == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGradient, s)
}

// Gradient is one of NoGradient, LinearGradient or RadialGradient.
type Gradient interface {
	Mode() GradientMode
	isGradient()
}

type NoGradient struct{}

type LinearGradient struct {
	SecondColor mgl32.Vec3
}

type RadialGradient struct {
	SecondColor mgl32.Vec3
}

func (NoGradient) Mode() GradientMode     { return GradientNone }
func (LinearGradient) Mode() GradientMode { return GradientLinear }
func (RadialGradient) Mode() GradientMode { return GradientRadial }

func (NoGradient) isGradient()     {}
func (LinearGradient) isGradient() {}
func (RadialGradient) isGradient() {}

// SplitGradient returns the tag and blend target of g. A nil gradient, or a nil
// pointer to one, selects GradientNone. Pointers to the variants are accepted as
// well.
func SplitGradient(g Gradient) (GradientMode, mgl32.Vec3, error) {
	switch v := g.(type) {
	case nil, NoGradient, *NoGradient:
		return GradientNone, mgl32.Vec3{}, nil
	case LinearGradient:
		return GradientLinear, v.SecondColor, nil
	case RadialGradient:
		return GradientRadial, v.SecondColor, nil
	case *LinearGradient:
		if v == nil {
			return GradientNone, mgl32.Vec3{}, nil
		}
		return GradientLinear, v.SecondColor, nil
	case *RadialGradient:
		if v == nil {
			return GradientNone, mgl32.Vec3{}, nil
		}
		return GradientRadial, v.SecondColor, nil
	}
	return 0, mgl32.Vec3{}, fmt.Errorf("%w: %T", ErrUnknownGradient, g)
}

// NewGradient builds the variant selected by mode.
func NewGradient(mode GradientMode, second mgl32.Vec3) (Gradient, error) {
	switch mode {
	case GradientNone:
		return NoGradient{}, nil
	case GradientLinear:
		return LinearGradient{SecondColor: second}, nil
	case GradientRadial:
		return RadialGradient{SecondColor: second}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownGradient, uint32(mode))
}

type Material struct {
	BaseColor        mgl32.Vec3
	SpecularColor    mgl32.Vec3
	Roughness        float32
	Metallic         float32
	AmbientOcclusion mgl32.Vec3
	Shininess        float32
	IrradiatedColor  mgl32.Vec4
	Gradient         Gradient
}

func DefaultMaterial() Material {
	return Material{
		BaseColor:        mgl32.Vec3{1, 1, 1},
		SpecularColor:    mgl32.Vec3{1, 1, 1},
		Roughness:        1,
		Metallic:         0,
		AmbientOcclusion: mgl32.Vec3{1, 1, 1},
		Shininess:        32,
		Gradient:         NoGradient{},
	}
}

// GradientMode treats a nil Gradient as GradientNone.
func (m Material) GradientMode() (GradientMode, error) {
	mode, _, err := SplitGradient(m.Gradient)
	return mode, err
}
