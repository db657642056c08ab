package mesh

import (
	"fmt"
	"path/filepath"

	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// loadGLTF merges the triangle primitives of every node reachable from the
// default scene, or of every root node when the file has no scene. Images
// embedded in the file are not extracted; only textures with a file URI are
// returned.
func loadGLTF(path string) (*Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	g := gltfLoader{doc: doc, dir: filepath.Dir(path), material: -1}
	for _, root := range g.roots() {
		if err := g.node(root, mgl32.Ident4(), 0); err != nil {
			return nil, err
		}
	}
	g.b.fillNormals()

	a := &Asset{Mesh: &g.b.m}
	if g.material >= 0 {
		m, tex := g.convertMaterial(doc.Materials[g.material])
		a.Material, a.Textures = &m, tex
	}
	return a, nil
}

type gltfLoader struct {
	doc      *gltf.Document
	dir      string
	b        builder
	material int
}

func (g *gltfLoader) roots() []int {
	if g.doc.Scene != nil && *g.doc.Scene < len(g.doc.Scenes) {
		return g.doc.Scenes[*g.doc.Scene].Nodes
	}
	child := make([]bool, len(g.doc.Nodes))
	for _, n := range g.doc.Nodes {
		for _, c := range n.Children {
			if c < len(child) {
				child[c] = true
			}
		}
	}
	var out []int
	for i := range g.doc.Nodes {
		if !child[i] {
			out = append(out, i)
		}
	}
	return out
}

// maxDepth stops malformed files whose node children form a cycle.
const maxDepth = 64

func (g *gltfLoader) node(i int, parent mgl32.Mat4, depth int) error {
	if i < 0 || i >= len(g.doc.Nodes) {
		return fmt.Errorf("node %d out of range", i)
	}
	if depth > maxDepth {
		return fmt.Errorf("node %d nested deeper than %d", i, maxDepth)
	}
	n := g.doc.Nodes[i]
	world := parent.Mul4(nodeMatrix(n))
	if n.Mesh != nil {
		if *n.Mesh >= len(g.doc.Meshes) {
			return fmt.Errorf("node %d: mesh %d out of range", i, *n.Mesh)
		}
		for pi, prim := range g.doc.Meshes[*n.Mesh].Primitives {
			if err := g.primitive(prim, world); err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", *n.Mesh, pi, err)
			}
		}
	}
	for _, c := range n.Children {
		if err := g.node(c, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func nodeMatrix(n *gltf.Node) mgl32.Mat4 {
	if n.Matrix != [16]float64{} && n.Matrix != identity {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}
	t, r, s := n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func (g *gltfLoader) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(g.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", i)
	}
	return g.doc.Accessors[i], nil
}

func (g *gltfLoader) primitive(prim *gltf.Primitive, world mgl32.Mat4) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	acc, err := g.accessor(posIdx)
	if err != nil {
		return err
	}
	positions, err := modeler.ReadPosition(g.doc, acc, nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}
	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if acc, err = g.accessor(idx); err != nil {
			return err
		}
		if normals, err = modeler.ReadNormal(g.doc, acc, nil); err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if acc, err = g.accessor(idx); err != nil {
			return err
		}
		if uvs, err = modeler.ReadTextureCoord(g.doc, acc, nil); err != nil {
			return fmt.Errorf("texture coordinates: %w", err)
		}
	}

	normalMatrix := shading.NormalMatrix(world)
	base := uint32(len(g.b.m.Vertices))
	for i, p := range positions {
		v := Vertex{Position: world.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1}).Vec3()}
		hasNormal := i < len(normals)
		if hasNormal {
			v.Normal = normalMatrix.Mul3x1(mgl32.Vec3(normals[i])).Normalize()
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		g.b.add(v, hasNormal)
	}

	if prim.Indices == nil {
		for i := 0; i+2 < len(positions); i += 3 {
			g.b.m.Indices = append(g.b.m.Indices, base+uint32(i), base+uint32(i+1), base+uint32(i+2))
		}
	} else {
		if acc, err = g.accessor(*prim.Indices); err != nil {
			return err
		}
		indices, err := modeler.ReadIndices(g.doc, acc, nil)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			for _, idx := range indices[i : i+3] {
				if int(idx) >= len(positions) {
					return fmt.Errorf("index %d out of range", idx)
				}
				g.b.m.Indices = append(g.b.m.Indices, base+idx)
			}
		}
	}
	if g.material < 0 && prim.Material != nil && *prim.Material < len(g.doc.Materials) {
		g.material = *prim.Material
	}
	return nil
}

func (g *gltfLoader) convertMaterial(gm *gltf.Material) (shading.Material, map[rev2.Textures]string) {
	m := shading.DefaultMaterial()
	textures := map[rev2.Textures]string{}
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		m.BaseColor = mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}
		m.Roughness = float32(pbr.RoughnessFactorOrDefault())
		m.Metallic = float32(pbr.MetallicFactorOrDefault())
		if pbr.BaseColorTexture != nil {
			g.texture(textures, rev2.BaseColorTexture, pbr.BaseColorTexture.Index)
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		g.texture(textures, rev2.NormalTexture, *gm.NormalTexture.Index)
	}
	if len(textures) == 0 {
		textures = nil
	}
	return m, textures
}

func (g *gltfLoader) texture(out map[rev2.Textures]string, slot rev2.Textures, i int) {
	if i < 0 || i >= len(g.doc.Textures) || g.doc.Textures[i].Source == nil {
		return
	}
	src := *g.doc.Textures[i].Source
	if src >= len(g.doc.Images) {
		return
	}
	img := g.doc.Images[src]
	if img.URI == "" || img.IsEmbeddedResource() {
		return
	}
	out[slot] = filepath.Join(g.dir, img.URI)
}
