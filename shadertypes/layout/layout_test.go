package layout

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lightFields() []Field {
	return []Field{
		{"position", Float3},
		{"color", Float3},
		{"specularColor", Float3},
		{"intensity", Float},
		{"attenuation", Float3},
		{"type", Uint},
		{"coneAngle", Float},
		{"coneDirection", Float3},
		{"coneAttenuation", Float},
	}
}

func TestComputeMetalPadsFloat3(t *testing.T) {
	s := Compute(Metal, "Light", lightFields()...)

	want := map[string]int{
		"position": 0, "color": 16, "specularColor": 32, "intensity": 48,
		"attenuation": 64, "type": 80, "coneAngle": 84, "coneDirection": 96, "coneAttenuation": 112,
	}
	for name, off := range want {
		got, ok := s.Offset(name)
		require.True(t, ok, name)
		assert.Equal(t, off, got, name)
	}
	assert.Equal(t, 128, s.Size)
	assert.Equal(t, 16, s.Align)
	assert.Equal(t, 128, s.Stride())
}

func TestComputeWGSLPacksScalarAfterVec3(t *testing.T) {
	s := Compute(WGSL, "Light", lightFields()...)

	off, _ := s.Offset("intensity")
	assert.Equal(t, 44, off)
	off, _ = s.Offset("type")
	assert.Equal(t, 60, off)
	off, _ = s.Offset("coneAttenuation")
	assert.Equal(t, 92, off)
	assert.Equal(t, 96, s.Size)
}

func TestStrideRoundsWGSLArraysTo16(t *testing.T) {
	s := Compute(WGSL, "Pair", Field{"a", Float}, Field{"b", Float})
	assert.Equal(t, 8, s.Size)
	assert.Equal(t, 16, s.Stride())

	m := Compute(Metal, "Pair", Field{"a", Float}, Field{"b", Float})
	assert.Equal(t, 8, m.Stride())
}

func TestWriterReaderMatrices(t *testing.T) {
	s := Compute(Metal, "Uniforms",
		Field{"model", Float4x4},
		Field{"normal", Float3x3},
		Field{"count", Uint},
	)
	require.Equal(t, 128, s.Size)

	model := mgl32.Translate3D(1, 2, 3)
	normal := mgl32.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}

	w := s.NewWriter()
	w.Mat4(model)
	w.Mat3(normal)
	w.Uint(7)
	buf := w.Bytes()

	r, err := s.NewReader(buf)
	require.NoError(t, err)
	assert.Equal(t, model, r.Mat4())
	assert.Equal(t, normal, r.Mat3())
	assert.Equal(t, uint32(7), r.Uint())
}

func TestWriterPanicsOnKindMismatch(t *testing.T) {
	s := Compute(Metal, "Pair", Field{"a", Float}, Field{"b", Float3})
	w := s.NewWriter()
	w.Float(1)
	assert.Panics(t, func() { w.Float(2) })
}

func TestBytesPanicsWhenIncomplete(t *testing.T) {
	s := Compute(Metal, "Pair", Field{"a", Float}, Field{"b", Float})
	w := s.NewWriter()
	w.Float(1)
	assert.Panics(t, func() { w.Bytes() })
}

func TestReaderShortBuffer(t *testing.T) {
	s := Compute(Metal, "Vec", Field{"v", Float4})
	_, err := s.NewReader(make([]byte, 8))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestArrayReservesCapacity(t *testing.T) {
	s := Compute(WGSL, "Scalar", Field{"v", Float})
	buf := s.Array(2, 4, func(i int, w *Writer) { w.Float(float32(i + 1)) })
	require.Len(t, buf, 4*16)

	r, err := s.NewReader(buf[16:])
	require.NoError(t, err)
	assert.Equal(t, float32(2), r.Float())
	assert.Equal(t, make([]byte, 32), buf[32:])
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]Target{"metal": Metal, "MSL": Metal, "wgsl": WGSL, " webgpu ": WGSL} {
		got, err := ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTarget("hlsl")
	assert.Error(t, err)
}
