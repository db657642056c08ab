package gettingback

import (
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/gettingback/mesh"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScene = errors.New("gettingback: invalid scene file")

// SceneFile is the YAML form of a scene. Angles are in degrees.
type SceneFile struct {
	Name   string     `yaml:"name"`
	Camera CameraDef  `yaml:"camera"`
	Lights []LightDef `yaml:"lights"`
	Nodes  []NodeDef  `yaml:"nodes"`
}

type CameraDef struct {
	Position mgl32.Vec3  `yaml:"position"`
	Rotation mgl32.Vec3  `yaml:"rotation"`
	Target   *mgl32.Vec3 `yaml:"target"`
	FOV      float32     `yaml:"fov"`
	Near     float32     `yaml:"near"`
	Far      float32     `yaml:"far"`
}

type LightDef struct {
	Type            string     `yaml:"type"`
	Position        mgl32.Vec3 `yaml:"position"`
	Color           mgl32.Vec3 `yaml:"color"`
	SpecularColor   mgl32.Vec3 `yaml:"specularColor"`
	Intensity       float32    `yaml:"intensity"`
	Attenuation     mgl32.Vec3 `yaml:"attenuation"`
	ConeAngle       float32    `yaml:"coneAngle"`
	ConeDirection   mgl32.Vec3 `yaml:"coneDirection"`
	ConeAttenuation float32    `yaml:"coneAttenuation"`
}

type MaterialDef struct {
	BaseColor        mgl32.Vec3 `yaml:"baseColor"`
	SecondColor      mgl32.Vec3 `yaml:"secondColor"`
	SpecularColor    mgl32.Vec3 `yaml:"specularColor"`
	Roughness        float32    `yaml:"roughness"`
	Metallic         float32    `yaml:"metallic"`
	AmbientOcclusion mgl32.Vec3 `yaml:"ambientOcclusion"`
	Shininess        float32    `yaml:"shininess"`
	IrradiatedColor  mgl32.Vec4 `yaml:"irradiatedColor"`
	Gradient         string     `yaml:"gradient"`
}

// NodeDef describes a node holding a procedural Shape, a Model file or
// nothing. A Material, when given, replaces the one a model file names, and
// Textures entries replace the model's textures slot by slot.
type NodeDef struct {
	Name     string            `yaml:"name"`
	Shape    string            `yaml:"shape"`
	Model    string            `yaml:"model"`
	Size     float32           `yaml:"size"`
	Position mgl32.Vec3        `yaml:"position"`
	Rotation mgl32.Vec3        `yaml:"rotation"`
	Scale    mgl32.Vec3        `yaml:"scale"`
	Tiling   uint32            `yaml:"tiling"`
	Material *MaterialDef      `yaml:"material"`
	Textures map[string]string `yaml:"textures"`
	Children []NodeDef         `yaml:"children"`
}

func defaultCameraDef() CameraDef {
	return CameraDef{Position: mgl32.Vec3{0, 0, -15}, FOV: 70, Near: 0.001, Far: 100}
}

func (d *CameraDef) UnmarshalYAML(value *yaml.Node) error {
	type plain CameraDef
	*d = defaultCameraDef()
	return value.Decode((*plain)(d))
}

// validate requires a field of view strictly between 0 and 180 degrees and a
// positive near plane in front of the far plane.
func (d CameraDef) validate() error {
	if d.FOV <= 0 || d.FOV >= 180 {
		return fmt.Errorf("%w: camera fov %g is outside (0, 180)", ErrInvalidScene, d.FOV)
	}
	if d.Near <= 0 {
		return fmt.Errorf("%w: camera near %g is not positive", ErrInvalidScene, d.Near)
	}
	if d.Far <= d.Near {
		return fmt.Errorf("%w: camera far %g is not beyond near %g", ErrInvalidScene, d.Far, d.Near)
	}
	return nil
}

func defaultMaterialDef() MaterialDef {
	m := shading.DefaultMaterial()
	return MaterialDef{
		BaseColor:        m.BaseColor,
		SpecularColor:    m.SpecularColor,
		Roughness:        m.Roughness,
		Metallic:         m.Metallic,
		AmbientOcclusion: m.AmbientOcclusion,
		Shininess:        m.Shininess,
	}
}

func (d *MaterialDef) UnmarshalYAML(value *yaml.Node) error {
	type plain MaterialDef
	*d = defaultMaterialDef()
	return value.Decode((*plain)(d))
}

func (d *NodeDef) UnmarshalYAML(value *yaml.Node) error {
	type plain NodeDef
	*d = NodeDef{Size: 1, Scale: mgl32.Vec3{1, 1, 1}, Tiling: 1}
	return value.Decode((*plain)(d))
}

var textureNames = map[string]rev2.Textures{
	"baseColor": rev2.BaseColorTexture,
	"normal":    rev2.NormalTexture,
	"roughness": rev2.RoughnessTexture,
	"metallic":  rev2.MetallicTexture,
	"ao":        rev2.AOTexture,
}

// LoadSceneFile reads a YAML scene description.
func LoadSceneFile(path string, width, height uint32, log Logger) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", path, err)
	}
	s, err := ParseScene(data, width, height, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %w", path, err)
	}
	return s, nil
}

func ParseScene(data []byte, width, height uint32, log Logger) (*Scene, error) {
	var f SceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	return f.Build(width, height, log)
}

// Build instantiates the described scene. A file without lights gets
// DefaultLighting.
func (f SceneFile) Build(width, height uint32, log Logger) (*Scene, error) {
	name := f.Name
	if name == "" {
		name = "untitled"
	}
	s := NewScene(name, width, height, log)

	cam := f.Camera
	if cam == (CameraDef{}) {
		cam = defaultCameraDef()
	}
	if err := cam.validate(); err != nil {
		return nil, err
	}
	s.Camera.Position = cam.Position
	s.Camera.Rotation = degrees(cam.Rotation)
	s.Camera.FOV, s.Camera.Near, s.Camera.Far = cam.FOV, cam.Near, cam.Far
	if cam.Target != nil {
		s.Camera.LookAt(*cam.Target)
	}

	if len(f.Lights) > 0 {
		if len(f.Lights) > rev2.MaxLights {
			return nil, fmt.Errorf("%w: %d lights", rev2.ErrTooManyLights, len(f.Lights))
		}
		s.Lights = s.Lights[:0]
		for i, ld := range f.Lights {
			l, err := ld.light()
			if err != nil {
				return nil, fmt.Errorf("light %d: %w", i, err)
			}
			s.Lights = append(s.Lights, l)
		}
	}

	for _, nd := range f.Nodes {
		if err := addNode(s, nd, nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func addNode(s *Scene, d NodeDef, parent *Node) error {
	var n *Node
	var err error
	switch {
	case d.Shape != "" && d.Model != "":
		return fmt.Errorf("%w: node %s has both a shape and a model", ErrInvalidScene, d.Name)
	case d.Model != "":
		if n, err = NewModel(d.Name, d.Model); err != nil {
			return fmt.Errorf("node %s: %w", d.Name, err)
		}
	case d.Shape != "":
		shape, err := mesh.ParseShape(d.Shape)
		if err != nil {
			return fmt.Errorf("node %s: %w", d.Name, err)
		}
		if n, err = NewPrimitive(d.Name, shape, d.Size); err != nil {
			return err
		}
	default:
		n = NewNode(d.Name)
	}
	n.Position = d.Position
	n.Rotation = degrees(d.Rotation)
	n.Scale = d.Scale
	n.Tiling = d.Tiling

	if d.Material != nil {
		mat, err := d.Material.material()
		if err != nil {
			return fmt.Errorf("node %s: %w", d.Name, err)
		}
		n.Material = mat
	}

	for key, path := range d.Textures {
		slot, ok := textureNames[key]
		if !ok {
			return fmt.Errorf("%w: node %s: unknown texture slot %q", ErrInvalidScene, d.Name, key)
		}
		if n.Textures == nil {
			n.Textures = make(map[rev2.Textures]string)
		}
		n.Textures[slot] = path
	}

	s.Add(n, parent)
	for _, c := range d.Children {
		if err := addNode(s, c, n); err != nil {
			return err
		}
	}
	return nil
}

func (d LightDef) light() (shading.Light, error) {
	t, err := shading.ParseLightType(d.Type)
	if err != nil {
		return nil, err
	}
	switch t {
	case shading.Sunlight:
		return shading.DirectionalLight{Position: d.Position, Color: d.Color, SpecularColor: d.SpecularColor, Intensity: d.Intensity}, nil
	case shading.Spotlight:
		return shading.SpotLight{
			Position:        d.Position,
			Color:           d.Color,
			SpecularColor:   d.SpecularColor,
			Intensity:       d.Intensity,
			Attenuation:     d.Attenuation,
			ConeAngle:       mgl32.DegToRad(d.ConeAngle),
			ConeDirection:   d.ConeDirection,
			ConeAttenuation: d.ConeAttenuation,
		}, nil
	case shading.Pointlight:
		return shading.PointLight{Position: d.Position, Color: d.Color, SpecularColor: d.SpecularColor, Intensity: d.Intensity, Attenuation: d.Attenuation}, nil
	case shading.Ambientlight:
		return shading.AmbientLight{Color: d.Color, Intensity: d.Intensity}, nil
	}
	return nil, fmt.Errorf("%w: %s cannot be placed in a scene", ErrInvalidScene, t)
}

func (d MaterialDef) material() (shading.Material, error) {
	mode, err := shading.ParseGradientMode(d.Gradient)
	if err != nil {
		return shading.Material{}, err
	}
	g, err := shading.NewGradient(mode, d.SecondColor)
	if err != nil {
		return shading.Material{}, err
	}
	return shading.Material{
		BaseColor:        d.BaseColor,
		SpecularColor:    d.SpecularColor,
		Roughness:        d.Roughness,
		Metallic:         d.Metallic,
		AmbientOcclusion: d.AmbientOcclusion,
		Shininess:        d.Shininess,
		IrradiatedColor:  d.IrradiatedColor,
		Gradient:         g,
	}, nil
}

func degrees(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2])}
}
