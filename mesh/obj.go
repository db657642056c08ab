package mesh

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// mtlMaps maps the .mtl texture statements onto texture slots.
var mtlMaps = map[string]rev2.Textures{
	"map_Kd":   rev2.BaseColorTexture,
	"map_bump": rev2.NormalTexture,
	"map_Bump": rev2.NormalTexture,
	"bump":     rev2.NormalTexture,
	"norm":     rev2.NormalTexture,
	"map_Pr":   rev2.RoughnessTexture,
	"map_Pm":   rev2.MetallicTexture,
	"map_Ka":   rev2.AOTexture,
}

type mtl struct {
	material shading.Material
	textures map[rev2.Textures]string
}

// loadOBJ fan triangulates every face. Texture coordinates are flipped so
// that v runs down the image like the procedural shapes.
func loadOBJ(path string) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dir := filepath.Dir(path)

	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		materials = map[string]mtl{}
		used      string
		b         builder
		seen      = map[[3]int]uint32{}
	)

	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]}.Normalize())
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			uvs = append(uvs, mgl32.Vec2{v[0], 1 - v[1]})
		case "mtllib":
			for _, name := range fields[1:] {
				lib, err := loadMTL(filepath.Join(dir, name))
				if err != nil {
					return nil, err
				}
				for k, v := range lib {
					materials[k] = v
				}
			}
		case "usemtl":
			if used == "" && len(fields) > 1 {
				used = fields[1]
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs three vertices", line)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				key, err := parseFaceVertex(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				idx, ok := seen[key]
				if !ok {
					v := Vertex{Position: positions[key[0]]}
					if key[1] >= 0 {
						v.UV = uvs[key[1]]
					}
					if key[2] >= 0 {
						v.Normal = normals[key[2]]
					}
					idx = b.add(v, key[2] >= 0)
					seen[key] = idx
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				b.m.Indices = append(b.m.Indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	b.fillNormals()

	a := &Asset{Mesh: &b.m}
	if m, ok := materials[used]; ok {
		a.Material = &m.material
		a.Textures = m.textures
	}
	return a, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range out {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseFaceVertex reads "v", "v/vt", "v//vn" or "v/vt/vn" into zero based
// indices, -1 where absent. Negative references count back from the end.
func parseFaceVertex(tok string, nv, nt, nn int) ([3]int, error) {
	key := [3]int{-1, -1, -1}
	counts := [3]int{nv, nt, nn}
	for i, part := range strings.SplitN(tok, "/", 3) {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return key, fmt.Errorf("face vertex %q: %w", tok, err)
		}
		if n < 0 {
			n += counts[i]
		} else {
			n--
		}
		if n < 0 || n >= counts[i] {
			return key, fmt.Errorf("face vertex %q: index out of range", tok)
		}
		key[i] = n
	}
	if key[0] < 0 {
		return key, fmt.Errorf("face vertex %q has no position", tok)
	}
	return key, nil
}

func loadMTL(path string) (map[string]mtl, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dir := filepath.Dir(path)

	out := map[string]mtl{}
	var name string
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return nil, fmt.Errorf("%s line %d: newmtl without a name", path, line)
			}
			name = fields[1]
			out[name] = mtl{material: shading.DefaultMaterial()}
			continue
		}
		cur, ok := out[name]
		if !ok {
			continue
		}
		switch fields[0] {
		case "Kd", "Ks":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", path, line, err)
			}
			if fields[0] == "Kd" {
				cur.material.BaseColor = mgl32.Vec3{v[0], v[1], v[2]}
			} else {
				cur.material.SpecularColor = mgl32.Vec3{v[0], v[1], v[2]}
			}
		case "Ns", "Pr", "Pm":
			v, err := parseFloats(fields[1:], 1)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", path, line, err)
			}
			switch fields[0] {
			case "Ns":
				cur.material.Shininess = v[0]
			case "Pr":
				cur.material.Roughness = v[0]
			case "Pm":
				cur.material.Metallic = v[0]
			}
		default:
			slot, ok := mtlMaps[fields[0]]
			if !ok || len(fields) < 2 {
				continue
			}
			if cur.textures == nil {
				cur.textures = map[rev2.Textures]string{}
			}
			// options such as -bm come before the file name
			cur.textures[slot] = filepath.Join(dir, fields[len(fields)-1])
		}
		out[name] = cur
	}
	return out, sc.Err()
}
