// Package mesh builds procedural primitives, or reads model files, into the full
// tangent space vertex the lit pass consumes.
package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gekko3d/gettingback/shadertypes/binding"
	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrUnknownShape     = errors.New("mesh: unknown shape")
	ErrUnknownAttribute = errors.New("mesh: registry names an attribute the vertex does not carry")
)

type Shape int

const (
	Cube Shape = iota
	Sphere
	Plane
	// Loaded marks a mesh read by Load. New does not build it.
	Loaded
)

func (s Shape) String() string {
	switch s {
	case Cube:
		return "cube"
	case Sphere:
		return "sphere"
	case Plane:
		return "plane"
	case Loaded:
		return "loaded"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(s) {
	case "cube", "box":
		return Cube, nil
	case "sphere":
		return Sphere, nil
	case "plane":
		return Plane, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// Vertex is interleaved in this order in VertexBytes.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	UV        mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// VertexStride is the byte size of one interleaved Vertex.
const VertexStride = 14 * 4

type Bounds struct {
	Min, Max mgl32.Vec3
}

func (b Bounds) Size() mgl32.Vec3 { return b.Max.Sub(b.Min) }

// Mesh triangles are wound so that cross(v1-v0, v2-v0) points out of the
// surface, which is clockwise on screen under the left-handed camera.
type Mesh struct {
	Shape    Shape
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// DefaultSegments matches the tessellation used for spheres and planes when
// New is called.
const DefaultSegments = 100

// New builds shape with the given extent along every axis.
func New(shape Shape, size float32) (*Mesh, error) {
	switch shape {
	case Cube:
		return NewCube(size), nil
	case Sphere:
		return NewSphere(size, DefaultSegments, DefaultSegments), nil
	case Plane:
		return NewPlane(size, DefaultSegments), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownShape, int(shape))
}

func (m *Mesh) VertexBytes() []byte {
	buf := make([]byte, len(m.Vertices)*VertexStride)
	off := 0
	put := func(vs ...float32) {
		for _, v := range vs {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			off += 4
		}
	}
	for _, v := range m.Vertices {
		put(v.Position[:]...)
		put(v.Normal[:]...)
		put(v.UV[:]...)
		put(v.Tangent[:]...)
		put(v.Bitangent[:]...)
	}
	return buf
}

func (m *Mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func (m *Mesh) computeBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds = Bounds{}
		return
	}
	lo, hi := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	m.Bounds = Bounds{Min: lo, Max: hi}
}

// Attribute places one shader input inside the interleaved vertex.
type Attribute struct {
	ShaderName string
	Location   uint32
	Offset     uint64
	Kind       layout.Kind
}

type VertexLayout struct {
	Stride     uint64
	Attributes []Attribute
}

var vertexFields = map[string]struct {
	offset uint64
	kind   layout.Kind
}{
	"position":  {0, layout.Float3},
	"normal":    {12, layout.Float3},
	"uv":        {24, layout.Float2},
	"tangent":   {32, layout.Float3},
	"bitangent": {44, layout.Float3},
}

// LayoutFor maps the vertex attributes of a registry onto the interleaved
// vertex. Shader locations come from the registry slots.
func LayoutFor(reg *binding.Registry) (VertexLayout, error) {
	vl := VertexLayout{Stride: VertexStride}
	var errs []error
	for _, b := range reg.ByKind(binding.VertexAttribute) {
		f, ok := vertexFields[b.ShaderName]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownAttribute, b))
			continue
		}
		vl.Attributes = append(vl.Attributes, Attribute{ShaderName: b.ShaderName, Location: b.Slot, Offset: f.offset, Kind: f.kind})
	}
	return vl, errors.Join(errs...)
}
