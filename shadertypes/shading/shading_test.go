package shading

import (
	"testing"

	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightTypeValues(t *testing.T) {
	assert.Equal(t, LightType(0), LightUnused)
	assert.Equal(t, LightType(1), Sunlight)
	assert.Equal(t, LightType(2), Spotlight)
	assert.Equal(t, LightType(3), Pointlight)
	assert.Equal(t, LightType(4), Ambientlight)
	assert.False(t, LightType(5).Valid())
}

func TestFlattenEveryVariant(t *testing.T) {
	lights := []Light{
		nil,
		DirectionalLight{Position: mgl32.Vec3{1, 2, -2}, Color: mgl32.Vec3{1, 1, 1}, SpecularColor: mgl32.Vec3{0.6, 0.6, 0.6}, Intensity: 1},
		SpotLight{Position: mgl32.Vec3{0, 2, 0}, Color: mgl32.Vec3{1, 0, 0}, Attenuation: mgl32.Vec3{1, 0.5, 0}, ConeAngle: 0.7, ConeDirection: mgl32.Vec3{0, -1, 0}, ConeAttenuation: 12},
		PointLight{Position: mgl32.Vec3{0, 0.5, -0.5}, Color: mgl32.Vec3{1, 0, 0}, Attenuation: mgl32.Vec3{1, 3, 4}},
		AmbientLight{Color: mgl32.Vec3{0.5, 1, 0}, Intensity: 0.1},
	}

	seen := map[LightType]bool{}
	for _, l := range lights {
		f, err := Flatten(l)
		require.NoError(t, err)
		seen[f.Type] = true

		back, err := f.Variant()
		require.NoError(t, err)
		assert.Equal(t, l, back)
	}
	for _, lt := range AllLightTypes {
		assert.True(t, seen[lt], "variant %s not covered", lt)
	}
}

func TestFlattenZeroesUnusedFields(t *testing.T) {
	f, err := Flatten(AmbientLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.2})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{}, f.Position)
	assert.Equal(t, mgl32.Vec3{}, f.ConeDirection)
	assert.Zero(t, f.ConeAngle)
}

func TestVariantUnknownTag(t *testing.T) {
	_, err := Flat{Type: 9}.Variant()
	assert.ErrorIs(t, err, ErrUnknownLightType)
}

func TestGradients(t *testing.T) {
	second := mgl32.Vec3{1, 0, 1}
	for _, mode := range AllGradientModes {
		g, err := NewGradient(mode, second)
		require.NoError(t, err)
		assert.Equal(t, mode, g.Mode())
		gotMode, gotSecond, err := SplitGradient(g)
		require.NoError(t, err)
		assert.Equal(t, mode, gotMode)
		if mode == GradientNone {
			assert.Equal(t, mgl32.Vec3{}, gotSecond)
		} else {
			assert.Equal(t, second, gotSecond)
		}
	}

	_, err := NewGradient(3, second)
	assert.ErrorIs(t, err, ErrUnknownGradient)

	m, err := ParseGradientMode("radial")
	require.NoError(t, err)
	assert.Equal(t, GradientRadial, m)
	none, err := Material{}.GradientMode()
	require.NoError(t, err)
	assert.Equal(t, GradientNone, none)
}

type tintedPoint struct{ PointLight }

type tintedLinear struct{ LinearGradient }

func TestFlattenPointerVariants(t *testing.T) {
	dir := DirectionalLight{Position: mgl32.Vec3{1, 2, -2}, Intensity: 1}
	spot := SpotLight{Position: mgl32.Vec3{0, 2, 0}, ConeAngle: 0.7, ConeDirection: mgl32.Vec3{0, -1, 0}}
	point := PointLight{Position: mgl32.Vec3{0, 0.5, -0.5}, Attenuation: mgl32.Vec3{1, 3, 4}}
	amb := AmbientLight{Color: mgl32.Vec3{0.5, 1, 0}, Intensity: 0.1}

	for _, tc := range []struct {
		ptr Light
		val Light
	}{
		{&dir, dir},
		{&spot, spot},
		{&point, point},
		{&amb, amb},
	} {
		got, err := Flatten(tc.ptr)
		require.NoError(t, err)
		want, err := Flatten(tc.val)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, l := range []Light{(*DirectionalLight)(nil), (*SpotLight)(nil), (*PointLight)(nil), (*AmbientLight)(nil)} {
		f, err := Flatten(l)
		require.NoError(t, err)
		assert.Equal(t, LightUnused, f.Type)
	}

	_, err := Flatten(tintedPoint{point})
	assert.ErrorIs(t, err, ErrUnknownLightType)
}

func TestSplitGradientPointerVariants(t *testing.T) {
	second := mgl32.Vec3{1, 0, 1}

	mode, got, err := SplitGradient(&LinearGradient{SecondColor: second})
	require.NoError(t, err)
	assert.Equal(t, GradientLinear, mode)
	assert.Equal(t, second, got)

	mode, got, err = SplitGradient(&RadialGradient{SecondColor: second})
	require.NoError(t, err)
	assert.Equal(t, GradientRadial, mode)
	assert.Equal(t, second, got)

	for _, g := range []Gradient{&NoGradient{}, (*NoGradient)(nil), (*LinearGradient)(nil), (*RadialGradient)(nil)} {
		mode, got, err = SplitGradient(g)
		require.NoError(t, err)
		assert.Equal(t, GradientNone, mode)
		assert.Equal(t, mgl32.Vec3{}, got)
	}

	_, _, err = SplitGradient(tintedLinear{LinearGradient{SecondColor: second}})
	assert.ErrorIs(t, err, ErrUnknownGradient)

	_, err = Material{Gradient: tintedLinear{}}.GradientMode()
	assert.ErrorIs(t, err, ErrUnknownGradient)
}

func TestDecodeFlats(t *testing.T) {
	lights := []Flat{
		{Type: Pointlight, Position: mgl32.Vec3{0, 1, 0}, Attenuation: mgl32.Vec3{1, 0, 0}},
		{Type: Ambientlight, Color: mgl32.Vec3{0.2, 0.2, 0.2}, Intensity: 1},
	}
	for _, target := range []layout.Target{layout.Metal, layout.WGSL} {
		buf := EncodeFlats(target, lights, 4)
		assert.Len(t, buf, 4*FlatLayout(target).Stride())

		got, err := DecodeFlats(target, buf, len(lights))
		require.NoError(t, err)
		assert.Equal(t, lights, got)

		_, err = DecodeFlats(target, buf, -1)
		assert.ErrorIs(t, err, ErrNegativeCount)

		_, err = DecodeFlats(target, buf, 5)
		assert.ErrorIs(t, err, layout.ErrShortBuffer)

		none, err := DecodeFlats(target, nil, 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	}
}

func TestLookAtIsOrthonormal(t *testing.T) {
	b, err := LookAt(mgl32.Vec3{0, 0, -15}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float32{0, 0, 1}, b.Forward()[:], 1e-6)
	assert.InDeltaSlice(t, []float32{1, 0, 0}, b.Right()[:], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 1, 0}, b.Up()[:], 1e-6)
	assert.Equal(t, b.Forward(), b.Direction())
}

func TestLookAtRejectsDegenerateInput(t *testing.T) {
	_, err := LookAt(mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.ErrorIs(t, err, ErrBasisNotOrthonormal)

	_, err = LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 1, 0})
	assert.ErrorIs(t, err, ErrBasisNotOrthonormal)
}

func TestNewCameraBasisRejectsSkewedAxes(t *testing.T) {
	_, err := NewCameraBasis(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1},
		mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0.6, 0.8})
	assert.ErrorIs(t, err, ErrBasisNotOrthonormal)

	_, err = NewCameraBasis(mgl32.Vec3{}, mgl32.Vec3{0, 0, 2},
		mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1})
	assert.ErrorIs(t, err, ErrBasisNotOrthonormal)
}

func TestBasisFromRotation(t *testing.T) {
	rot := mgl32.Rotate3DY(0.5).Mul3(mgl32.Rotate3DX(0.25))
	b, err := BasisFromRotation(mgl32.Vec3{1, 2, 3}, rot)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Origin())
}

func TestNormalMatrixUndoesNonUniformScale(t *testing.T) {
	model := mgl32.Scale3D(2, 1, 1)
	n := NormalMatrix(model)
	assert.InDelta(t, 0.5, n.At(0, 0), 1e-6)
	assert.InDelta(t, 1, n.At(1, 1), 1e-6)

	// rotations are their own inverse-transpose
	rot := mgl32.HomogRotate3DY(0.3)
	nr := NormalMatrix(rot)
	for i := range nr {
		assert.InDelta(t, rot.Mat3()[i], nr[i], 1e-5)
	}

	singular := mgl32.Scale3D(0, 1, 1)
	assert.Equal(t, singular.Mat3(), NormalMatrix(singular))
}
