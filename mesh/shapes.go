package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NewCube builds an axis aligned box centred on the origin with four vertices
// per face so every face keeps its own normal and UVs.
func NewCube(size float32) *Mesh {
	h := size / 2
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	m := &Mesh{Shape: Cube}
	corners := [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, c := range corners {
			su, sv := c[0]*2-1, (1-c[1])*2-1
			p := f.normal.Mul(h).Add(f.u.Mul(su * h)).Add(f.v.Mul(sv * h))
			m.Vertices = append(m.Vertices, Vertex{Position: p, Normal: f.normal, UV: c})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	computeTangents(m)
	m.computeBounds()
	return m
}

// NewSphere builds a UV sphere of the given diameter. rings is the number of
// latitude bands and segments the number of longitude slices.
func NewSphere(size float32, rings, segments int) *Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)
	r := size / 2
	m := &Mesh{Shape: Sphere}
	for i := 0; i <= rings; i++ {
		theta := math.Pi * float64(i) / float64(rings)
		st, ct := math.Sin(theta), math.Cos(theta)
		for j := 0; j <= segments; j++ {
			phi := 2 * math.Pi * float64(j) / float64(segments)
			n := mgl32.Vec3{float32(st * math.Cos(phi)), float32(ct), float32(st * math.Sin(phi))}
			m.Vertices = append(m.Vertices, Vertex{
				Position: n.Mul(r),
				Normal:   n,
				UV:       mgl32.Vec2{float32(j) / float32(segments), float32(i) / float32(rings)},
			})
		}
	}
	row := uint32(segments + 1)
	for i := 0; i < rings; i++ {
		for j := 0; j < segments; j++ {
			a := uint32(i)*row + uint32(j)
			b := a + row
			m.Indices = append(m.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	computeTangents(m)
	m.computeBounds()
	return m
}

// NewPlane builds a square in the XZ plane facing +Y.
func NewPlane(size float32, segments int) *Mesh {
	segments = max(segments, 1)
	h := size / 2
	m := &Mesh{Shape: Plane}
	for i := 0; i <= segments; i++ {
		v := float32(i) / float32(segments)
		for j := 0; j <= segments; j++ {
			u := float32(j) / float32(segments)
			m.Vertices = append(m.Vertices, Vertex{
				Position: mgl32.Vec3{-h + u*size, 0, h - v*size},
				Normal:   mgl32.Vec3{0, 1, 0},
				UV:       mgl32.Vec2{u, v},
			})
		}
	}
	row := uint32(segments + 1)
	for i := 0; i < segments; i++ {
		for j := 0; j < segments; j++ {
			a := uint32(i)*row + uint32(j)
			b := a + row
			m.Indices = append(m.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	computeTangents(m)
	m.computeBounds()
	return m
}

// computeTangents accumulates per triangle UV derivatives and orthonormalizes
// them against each vertex normal. Vertices whose triangles are all degenerate
// in UV space get an arbitrary perpendicular frame.
func computeTangents(m *Mesh) {
	tan := make([]mgl32.Vec3, len(m.Vertices))
	bit := make([]mgl32.Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]
		e1, e2 := v1.Position.Sub(v0.Position), v2.Position.Sub(v0.Position)
		d1, d2 := v1.UV.Sub(v0.UV), v2.UV.Sub(v0.UV)
		det := d1[0]*d2[1] - d2[0]*d1[1]
		if math.Abs(float64(det)) < 1e-12 {
			continue
		}
		f := 1 / det
		t := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(f)
		b := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(f)
		for _, idx := range []uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			bit[idx] = bit[idx].Add(b)
		}
	}
	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.Len() < 1e-6 {
			t = perpendicular(n)
		}
		t = t.Normalize()
		b := n.Cross(t)
		if b.Dot(bit[i]) < 0 {
			b = b.Mul(-1)
		}
		m.Vertices[i].Tangent = t
		m.Vertices[i].Bitangent = b
	}
}

func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math.Abs(float64(n[0])) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return n.Cross(axis)
}
