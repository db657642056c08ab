package mesh

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrUnknownFormat = errors.New("mesh: unknown model format")
	ErrNoGeometry    = errors.New("mesh: model has no triangles")
)

// Asset is a model file merged into one mesh.
type Asset struct {
	Name string
	Mesh *Mesh
	// Material is nil when the file names none.
	Material *shading.Material
	// Textures are the image files the material references, resolved against
	// the model's directory.
	Textures map[rev2.Textures]string
}

// Load reads a Wavefront .obj or a glTF .gltf/.glb file. Every object or
// primitive is merged into one mesh, with glTF node transforms applied. The
// first material the geometry uses becomes the asset material. Normals are
// generated when the file has none, and the tangent basis always is.
func Load(path string) (*Asset, error) {
	var a *Asset
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		a, err = loadOBJ(path)
	case ".gltf", ".glb":
		a, err = loadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	if len(a.Mesh.Indices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoGeometry, path)
	}
	a.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	a.Mesh.Shape = Loaded
	computeTangents(a.Mesh)
	a.Mesh.computeBounds()
	return a, nil
}

// builder collects triangles and remembers which vertices still need a normal.
type builder struct {
	m          Mesh
	needNormal []bool
}

func (b *builder) add(v Vertex, hasNormal bool) uint32 {
	b.m.Vertices = append(b.m.Vertices, v)
	b.needNormal = append(b.needNormal, !hasNormal)
	return uint32(len(b.m.Vertices) - 1)
}

// fillNormals gives every vertex without a normal the area weighted sum of the
// faces around it.
func (b *builder) fillNormals() {
	acc := make([]mgl32.Vec3, len(b.m.Vertices))
	for i := 0; i+2 < len(b.m.Indices); i += 3 {
		i0, i1, i2 := b.m.Indices[i], b.m.Indices[i+1], b.m.Indices[i+2]
		p0 := b.m.Vertices[i0].Position
		n := b.m.Vertices[i1].Position.Sub(p0).Cross(b.m.Vertices[i2].Position.Sub(p0))
		for _, idx := range []uint32{i0, i1, i2} {
			acc[idx] = acc[idx].Add(n)
		}
	}
	for i, need := range b.needNormal {
		if !need {
			continue
		}
		if acc[i].Len() > 0 {
			b.m.Vertices[i].Normal = acc[i].Normalize()
		} else {
			b.m.Vertices[i].Normal = mgl32.Vec3{0, 1, 0}
		}
	}
}
