package shading

import (
	"errors"
	"fmt"

	"github.com/gekko3d/gettingback/shadertypes/layout"
)

var ErrNegativeCount = errors.New("shading: negative light count")

// FlatLayout is the Light record both revisions declare.
func FlatLayout(t layout.Target) layout.Struct {
	return layout.Compute(t, "Light",
		layout.Field{Name: "position", Kind: layout.Float3},
		layout.Field{Name: "color", Kind: layout.Float3},
		layout.Field{Name: "specularColor", Kind: layout.Float3},
		layout.Field{Name: "intensity", Kind: layout.Float},
		layout.Field{Name: "attenuation", Kind: layout.Float3},
		layout.Field{Name: "type", Kind: layout.Uint},
		layout.Field{Name: "coneAngle", Kind: layout.Float},
		layout.Field{Name: "coneDirection", Kind: layout.Float3},
		layout.Field{Name: "coneAttenuation", Kind: layout.Float},
	)
}

// Write puts f into w, which must have been made from FlatLayout.
func (f Flat) Write(w *layout.Writer) {
	w.Vec3(f.Position)
	w.Vec3(f.Color)
	w.Vec3(f.SpecularColor)
	w.Float(f.Intensity)
	w.Vec3(f.Attenuation)
	w.Uint(uint32(f.Type))
	w.Float(f.ConeAngle)
	w.Vec3(f.ConeDirection)
	w.Float(f.ConeAttenuation)
}

func ReadFlat(r *layout.Reader) Flat {
	return Flat{
		Position:        r.Vec3(),
		Color:           r.Vec3(),
		SpecularColor:   r.Vec3(),
		Intensity:       r.Float(),
		Attenuation:     r.Vec3(),
		Type:            LightType(r.Uint()),
		ConeAngle:       r.Float(),
		ConeDirection:   r.Vec3(),
		ConeAttenuation: r.Float(),
	}
}

// EncodeFlats writes lights into an array of capacity records. The caller checks
// len(lights) against capacity.
func EncodeFlats(t layout.Target, lights []Flat, capacity int) []byte {
	s := FlatLayout(t)
	return s.Array(len(lights), capacity, func(i int, w *layout.Writer) { lights[i].Write(w) })
}

// DecodeFlats reads the first n records of an encoded light array.
func DecodeFlats(t layout.Target, buf []byte, n int) ([]Flat, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, n)
	}
	s := FlatLayout(t)
	stride := s.Stride()
	if n*stride > len(buf) {
		return nil, fmt.Errorf("%w: %d lights need %d bytes, have %d", layout.ErrShortBuffer, n, n*stride, len(buf))
	}
	out := make([]Flat, 0, n)
	for i := 0; i < n; i++ {
		r, err := s.NewReader(buf[i*stride:])
		if err != nil {
			return nil, err
		}
		out = append(out, ReadFlat(r))
	}
	return out, nil
}
