// Package binding maps symbolic resource names to the numeric slots shaders bind
// them at, and checks those slots against what a shader module actually declares.
package binding

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	VertexBuffer Kind = iota
	VertexAttribute
	UniformBuffer
	Texture
	Sampler
)

func (k Kind) String() string {
	switch k {
	case VertexBuffer:
		return "vertex-buffer"
	case VertexAttribute:
		return "vertex-attribute"
	case UniformBuffer:
		return "uniform"
	case Texture:
		return "texture"
	case Sampler:
		return "sampler"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// space groups kinds whose slot numbers are drawn from the same pool.
type space int

const (
	spaceVertexBuffer space = iota
	spaceAttribute
	spaceResource
)

func (k Kind) space() space {
	switch k {
	case VertexBuffer:
		return spaceVertexBuffer
	case VertexAttribute:
		return spaceAttribute
	}
	return spaceResource
}

type Stage uint32

const (
	StageVertex Stage = 1 << iota
	StageFragment
)

func (s Stage) String() string {
	var parts []string
	if s&StageVertex != 0 {
		parts = append(parts, "vertex")
	}
	if s&StageFragment != 0 {
		parts = append(parts, "fragment")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Binding is one named slot. Group is ignored for vertex buffers and attributes.
type Binding struct {
	Name       string // symbolic constant, e.g. BufferIndexUniforms
	ShaderName string // variable or input name in the shader source
	Kind       Kind
	Group      uint32
	Slot       uint32
	Stages     Stage
}

func (b Binding) String() string {
	name := b.Name
	if name == "" {
		name = b.ShaderName
	}
	if b.Kind.space() == spaceResource {
		return fmt.Sprintf("%s(%s @group(%d) @binding(%d))", name, b.Kind, b.Group, b.Slot)
	}
	return fmt.Sprintf("%s(%s %d)", name, b.Kind, b.Slot)
}

type slotKey struct {
	space space
	group uint32
	slot  uint32
}

func keyOf(b Binding) slotKey {
	k := slotKey{space: b.Kind.space(), slot: b.Slot}
	if k.space == spaceResource {
		k.group = b.Group
	}
	return k
}

var (
	ErrDuplicateName = errors.New("binding: duplicate name")
	ErrSlotCollision = errors.New("binding: slot collision")
	ErrUnknownName   = errors.New("binding: unknown name")
)

// Registry is immutable after NewRegistry.
type Registry struct {
	bindings []Binding
	byName   map[string]int
	byShader map[string]int
}

func NewRegistry(bindings ...Binding) (*Registry, error) {
	r := &Registry{
		byName:   make(map[string]int, len(bindings)),
		byShader: make(map[string]int, len(bindings)),
	}
	used := make(map[slotKey]string, len(bindings))
	for _, b := range bindings {
		if _, dup := r.byName[b.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, b.Name)
		}
		k := keyOf(b)
		if other, taken := used[k]; taken {
			return nil, fmt.Errorf("%w: %s and %s", ErrSlotCollision, other, b)
		}
		used[k] = b.String()
		r.byName[b.Name] = len(r.bindings)
		if b.ShaderName != "" {
			if _, dup := r.byShader[b.ShaderName]; dup {
				return nil, fmt.Errorf("%w: shader name %s", ErrDuplicateName, b.ShaderName)
			}
			r.byShader[b.ShaderName] = len(r.bindings)
		}
		r.bindings = append(r.bindings, b)
	}
	return r, nil
}

// MustRegistry is NewRegistry for package-level tables known to be consistent.
func MustRegistry(bindings ...Binding) *Registry {
	r, err := NewRegistry(bindings...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Lookup(name string) (Binding, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Binding{}, false
	}
	return r.bindings[i], true
}

func (r *Registry) Slot(name string) (uint32, error) {
	b, ok := r.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return b.Slot, nil
}

func (r *Registry) MustSlot(name string) uint32 {
	s, err := r.Slot(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Bindings returns every binding in registration order.
func (r *Registry) Bindings() []Binding {
	return append([]Binding(nil), r.bindings...)
}

// ByKind returns the bindings of kind k ordered by group then slot.
func (r *Registry) ByKind(k Kind) []Binding {
	var out []Binding
	for _, b := range r.bindings {
		if b.Kind == k {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Slot < out[j].Slot
	})
	return out
}

// Groups returns the distinct bind groups used by resource bindings, ascending.
func (r *Registry) Groups() []uint32 {
	seen := map[uint32]bool{}
	var out []uint32
	for _, b := range r.bindings {
		if b.Kind.space() == spaceResource && !seen[b.Group] {
			seen[b.Group] = true
			out = append(out, b.Group)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
