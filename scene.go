package gettingback

import (
	"fmt"

	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene owns the node graph, the camera and the light list. Uniforms and
// Fragment hold the per-frame values shared by every draw.
type Scene struct {
	Name   string
	Root   *Node
	Camera *Camera
	Lights []shading.Light

	Width, Height uint32

	Uniforms rev2.Uniforms
	Fragment rev2.FragmentUniforms

	// OnUpdate runs after the camera values are refreshed and before nodes update.
	OnUpdate func(s *Scene, dt float32)

	renderables []*Node
	log         Logger
}

func NewScene(name string, width, height uint32, log Logger) *Scene {
	s := &Scene{
		Name:   name,
		Root:   NewNode("root"),
		Camera: NewCamera("camera"),
		Lights: DefaultLighting(),
		log:    orNop(log),
	}
	s.Resize(width, height)
	return s
}

// DefaultLighting is a white sun above and behind the default camera plus a dim
// ambient term.
func DefaultLighting() []shading.Light {
	return []shading.Light{
		shading.DirectionalLight{
			Position:      mgl32.Vec3{1, 2, -2},
			Color:         mgl32.Vec3{1, 1, 1},
			SpecularColor: mgl32.Vec3{0.6, 0.6, 0.6},
			Intensity:     1,
		},
		shading.AmbientLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.1},
	}
}

// Add attaches n under parent, or under the root when parent is nil. Nodes
// with a mesh become renderable.
func (s *Scene) Add(n *Node, parent *Node) {
	if parent == nil {
		parent = s.Root
	}
	parent.Add(n)
	s.track(n)
	n.Walk(s.track)
	s.log.Debugf("scene %s: added %s under %s", s.Name, n.Name, parent.Name)
}

func (s *Scene) track(n *Node) {
	if n.Mesh == nil {
		return
	}
	for _, r := range s.renderables {
		if r == n {
			return
		}
	}
	s.renderables = append(s.renderables, n)
}

// Remove detaches n. Its children move to n's parent and stay in the scene.
func (s *Scene) Remove(n *Node) {
	if n.parent != nil {
		n.parent.Remove(n)
	} else {
		for _, c := range n.children {
			c.parent = nil
		}
		n.children = nil
	}
	for i, r := range s.renderables {
		if r == n {
			s.renderables = append(s.renderables[:i], s.renderables[i+1:]...)
			s.log.Debugf("scene %s: removed %s", s.Name, n.Name)
			break
		}
	}
}

// Renderables lists drawable nodes in insertion order.
func (s *Scene) Renderables() []*Node { return s.renderables }

// Find returns the first node with the given name.
func (s *Scene) Find(name string) *Node {
	var found *Node
	s.Root.Walk(func(n *Node) {
		if found == nil && n.Name == name {
			found = n
		}
	})
	return found
}

// Resize updates the viewport and the camera aspect. A zero height keeps the
// previous aspect.
func (s *Scene) Resize(width, height uint32) {
	s.Width, s.Height = width, height
	if height > 0 {
		s.Camera.Aspect = float32(width) / float32(height)
	}
}

// Update refreshes the shared uniforms from the camera, then runs the scene
// and node hooks.
func (s *Scene) Update(dt float32) error {
	basis, err := s.Camera.Basis()
	if err != nil {
		return fmt.Errorf("failed to build camera basis: %w", err)
	}
	s.Uniforms.ProjectionMatrix = s.Camera.ProjectionMatrix()
	s.Uniforms.ViewMatrix = s.Camera.ViewMatrix()
	s.Uniforms.Width = s.Width
	s.Uniforms.Height = s.Height
	s.Uniforms.SetCamera(basis)
	s.Fragment.CameraPosition = s.Camera.Position

	if s.OnUpdate != nil {
		s.OnUpdate(s, dt)
	}
	s.Root.update(dt)
	return nil
}
