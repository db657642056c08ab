package gettingback

import (
	"fmt"
	"math"

	"github.com/gekko3d/gettingback/mesh"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/gekko3d/gettingback/shadertypes/shading"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Node is an element of the scene graph. A node with a Mesh is drawn.
type Node struct {
	ID       uuid.UUID
	Name     string
	Position mgl32.Vec3
	// Rotation holds Euler angles in radians, applied X then Y then Z.
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3

	Material shading.Material
	// Tiling repeats the UVs in the fragment stage; 0 behaves as 1.
	Tiling   uint32
	Mesh     *mesh.Mesh
	Textures map[rev2.Textures]string

	// OnUpdate runs once per scene update.
	OnUpdate func(n *Node, dt float32)

	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{
		ID:       uuid.New(),
		Name:     name,
		Scale:    mgl32.Vec3{1, 1, 1},
		Material: shading.DefaultMaterial(),
		Tiling:   1,
	}
}

// NewPrimitive builds a drawable node holding a procedural mesh.
func NewPrimitive(name string, shape mesh.Shape, size float32) (*Node, error) {
	m, err := mesh.New(shape, size)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", name, err)
	}
	n := NewNode(name)
	n.Mesh = m
	return n, nil
}

// NewModel builds a drawable node from a model file. The material and textures
// the file names replace the defaults.
func NewModel(name, path string) (*Node, error) {
	a, err := mesh.Load(path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = a.Name
	}
	n := NewNode(name)
	n.Mesh = a.Mesh
	if a.Material != nil {
		n.Material = *a.Material
	}
	if len(a.Textures) > 0 {
		n.Textures = make(map[rev2.Textures]string, len(a.Textures))
		for slot, p := range a.Textures {
			n.Textures[slot] = p
		}
	}
	return n, nil
}

func (n *Node) String() string { return fmt.Sprintf("<Node>: %s", n.Name) }

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

func rotationMatrix(r mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(r.X()).Mul4(mgl32.HomogRotate3DY(r.Y())).Mul4(mgl32.HomogRotate3DZ(r.Z()))
}

// ModelMatrix is translation * rotation * scale.
func (n *Node) ModelMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(rotationMatrix(n.Rotation)).Mul4(s)
}

// WorldTransform chains the model matrices of every ancestor.
func (n *Node) WorldTransform() mgl32.Mat4 {
	if n.parent != nil {
		return n.parent.WorldTransform().Mul4(n.ModelMatrix())
	}
	return n.ModelMatrix()
}

// Quaternion returns the rotation as a quaternion.
func (n *Node) Quaternion() mgl32.Quat {
	return mgl32.Mat4ToQuat(rotationMatrix(n.Rotation))
}

// ForwardVector is the heading in the XZ plane from the yaw alone.
func (n *Node) ForwardVector() mgl32.Vec3 {
	y := float64(n.Rotation.Y())
	return mgl32.Vec3{float32(math.Sin(y)), 0, float32(math.Cos(y))}.Normalize()
}

func (n *Node) RightVector() mgl32.Vec3 {
	f := n.ForwardVector()
	return mgl32.Vec3{f.Z(), f.Y(), -f.X()}
}

// Add attaches child, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.detach(child)
	}
	n.children = append(n.children, child)
	child.parent = n
}

// Remove detaches child and hands its children over to n.
func (n *Node) Remove(child *Node) {
	if child.parent != n {
		return
	}
	for _, c := range child.children {
		c.parent = n
		n.children = append(n.children, c)
	}
	child.children = nil
	n.detach(child)
}

func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Walk visits n's descendants depth first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	for _, c := range n.children {
		fn(c)
		c.Walk(fn)
	}
}

func (n *Node) update(dt float32) {
	if n.OnUpdate != nil {
		n.OnUpdate(n, dt)
	}
	for _, c := range n.children {
		c.update(dt)
	}
}
