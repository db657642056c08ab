package shaders

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gekko3d/gettingback/shadertypes/binding"
	"github.com/gekko3d/gettingback/shadertypes/layout"
)

var (
	ErrSyntax             = errors.New("shaders: malformed declaration")
	ErrUnknownStruct      = errors.New("shaders: unknown struct")
	ErrUnsupportedType    = errors.New("shaders: type has no host layout")
	ErrUnsupportedBinding = errors.New("shaders: unsupported resource binding")
	ErrLayoutMismatch     = errors.New("shaders: struct layout differs from host layout")
)

// Member is a struct field or entry point parameter. Location is -1 when the
// member carries no @location attribute.
type Member struct {
	Name     string
	Type     string
	Location int
	Builtin  string
}

type Struct struct {
	Name    string
	Members []Member
}

// Var is a module scope resource declared with @group and @binding.
type Var struct {
	Name         string
	AddressSpace string
	Type         string
	Group        uint32
	Binding      uint32
}

// Module is the reflected interface of a WGSL source: the parts the host has to
// agree with.
type Module struct {
	Structs      []Struct
	Vars         []Var
	VertexEntry  string
	VertexInputs []Member
}

var (
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	structHead   = regexp.MustCompile(`\bstruct\s+(\w+)\s*\{`)
	resourceVar  = regexp.MustCompile(`((?:@\w+\s*\(\s*\w+\s*\)\s*)+)var(?:\s*<([\w\s,]*)>)?\s+(\w+)\s*:\s*([^;]+);`)
	vertexHead   = regexp.MustCompile(`@vertex\s+fn\s+(\w+)\s*\(`)
	attribute    = regexp.MustCompile(`^@(\w+)\s*(?:\(([^)]*)\))?\s*`)
	arrayType    = regexp.MustCompile(`^array<(\w+),(\d+)u?>$`)
)

// Reflect parses the declarations of a WGSL module: structs, resource
// variables and the inputs of the vertex entry point. Function bodies are
// not interpreted.
func Reflect(src string) (*Module, error) {
	src = blockComment.ReplaceAllString(src, "")
	src = lineComment.ReplaceAllString(src, "")

	m := &Module{}
	for _, loc := range structHead.FindAllStringSubmatchIndex(src, -1) {
		name := src[loc[2]:loc[3]]
		end := strings.IndexByte(src[loc[1]:], '}')
		if end < 0 {
			return nil, fmt.Errorf("%w: struct %s is not closed", ErrSyntax, name)
		}
		members, err := parseMembers(src[loc[1] : loc[1]+end])
		if err != nil {
			return nil, fmt.Errorf("struct %s: %w", name, err)
		}
		m.Structs = append(m.Structs, Struct{Name: name, Members: members})
	}

	for _, sm := range resourceVar.FindAllStringSubmatch(src, -1) {
		attrs, _, err := parseAttributes(sm[1])
		if err != nil {
			return nil, err
		}
		group, okG := attrs["group"]
		slot, okB := attrs["binding"]
		if !okG || !okB {
			continue
		}
		v := Var{Name: sm[3], AddressSpace: strings.TrimSpace(sm[2]), Type: normalizeType(sm[4])}
		g, err := strconv.ParseUint(group, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: @group(%s) on %s", ErrSyntax, group, v.Name)
		}
		b, err := strconv.ParseUint(slot, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: @binding(%s) on %s", ErrSyntax, slot, v.Name)
		}
		v.Group, v.Binding = uint32(g), uint32(b)
		m.Vars = append(m.Vars, v)
	}

	if loc := vertexHead.FindStringSubmatchIndex(src); loc != nil {
		m.VertexEntry = src[loc[2]:loc[3]]
		end := closingParen(src, loc[1])
		if end < 0 {
			return nil, fmt.Errorf("%w: parameters of %s are not closed", ErrSyntax, m.VertexEntry)
		}
		params, err := parseMembers(src[loc[1]:end])
		if err != nil {
			return nil, fmt.Errorf("vertex entry %s: %w", m.VertexEntry, err)
		}
		for _, p := range params {
			if p.Location >= 0 {
				m.VertexInputs = append(m.VertexInputs, p)
				continue
			}
			if s, ok := m.Struct(p.Type); ok {
				for _, sm := range s.Members {
					if sm.Location >= 0 {
						m.VertexInputs = append(m.VertexInputs, sm)
					}
				}
			}
		}
	}
	return m, nil
}

// closingParen returns the index of the ')' matching an opening paren just
// before start, or -1.
func closingParen(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas outside of <> and ().
func splitTopLevel(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

func parseAttributes(s string) (map[string]string, string, error) {
	attrs := map[string]string{}
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "@") {
		sm := attribute.FindStringSubmatch(s)
		if sm == nil {
			return nil, "", fmt.Errorf("%w: attribute in %q", ErrSyntax, s)
		}
		attrs[sm[1]] = strings.TrimSpace(sm[2])
		s = s[len(sm[0]):]
	}
	return attrs, s, nil
}

func parseMembers(body string) ([]Member, error) {
	var out []Member
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		attrs, rest, err := parseAttributes(part)
		if err != nil {
			return nil, err
		}
		name, typ, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("%w: member %q", ErrSyntax, part)
		}
		m := Member{Name: strings.TrimSpace(name), Type: normalizeType(typ), Location: -1, Builtin: attrs["builtin"]}
		if l, ok := attrs["location"]; ok {
			n, err := strconv.Atoi(l)
			if err != nil {
				return nil, fmt.Errorf("%w: @location(%s) on %s", ErrSyntax, l, m.Name)
			}
			m.Location = n
		}
		out = append(out, m)
	}
	return out, nil
}

func normalizeType(t string) string {
	return strings.Join(strings.Fields(t), "")
}

func (m *Module) Struct(name string) (Struct, bool) {
	for _, s := range m.Structs {
		if s.Name == name {
			return s, true
		}
	}
	return Struct{}, false
}

func (m *Module) Var(name string) (Var, bool) {
	for _, v := range m.Vars {
		if v.Name == name {
			return v, true
		}
	}
	return Var{}, false
}

var typeKinds = map[string]layout.Kind{
	"f32":         layout.Float,
	"u32":         layout.Uint,
	"i32":         layout.Int,
	"vec2<f32>":   layout.Float2,
	"vec2f":       layout.Float2,
	"vec3<f32>":   layout.Float3,
	"vec3f":       layout.Float3,
	"vec4<f32>":   layout.Float4,
	"vec4f":       layout.Float4,
	"mat3x3<f32>": layout.Float3x3,
	"mat3x3f":     layout.Float3x3,
	"mat4x4<f32>": layout.Float4x4,
	"mat4x4f":     layout.Float4x4,
}

// StructLayout lays out a parsed struct with the WGSL uniform rules.
func (m *Module) StructLayout(name string) (layout.Struct, error) {
	s, ok := m.Struct(name)
	if !ok {
		return layout.Struct{}, fmt.Errorf("%w: %s", ErrUnknownStruct, name)
	}
	fields := make([]layout.Field, 0, len(s.Members))
	for _, mem := range s.Members {
		k, ok := typeKinds[mem.Type]
		if !ok {
			return layout.Struct{}, fmt.Errorf("%w: %s.%s is %s", ErrUnsupportedType, name, mem.Name, mem.Type)
		}
		fields = append(fields, layout.Field{Name: mem.Name, Kind: k})
	}
	return layout.Compute(layout.WGSL, name, fields...), nil
}

// ArrayLength returns the element type and length of a fixed size array
// resource.
func (m *Module) ArrayLength(varName string) (string, int, bool) {
	v, ok := m.Var(varName)
	if !ok {
		return "", 0, false
	}
	sm := arrayType.FindStringSubmatch(v.Type)
	if sm == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(sm[2])
	if err != nil {
		return "", 0, false
	}
	return sm[1], n, true
}

// Declared converts the reflected resources and vertex inputs into bindings
// that a registry can validate.
func (m *Module) Declared() ([]binding.Binding, error) {
	var out []binding.Binding
	var errs []error
	for _, v := range m.Vars {
		b := binding.Binding{ShaderName: v.Name, Group: v.Group, Slot: v.Binding}
		switch {
		case v.AddressSpace == "uniform":
			b.Kind = binding.UniformBuffer
		case strings.HasPrefix(v.Type, "texture_"):
			b.Kind = binding.Texture
		case v.Type == "sampler" || v.Type == "sampler_comparison":
			b.Kind = binding.Sampler
		default:
			errs = append(errs, fmt.Errorf("%w: %s var<%s> %s", ErrUnsupportedBinding, v.Name, v.AddressSpace, v.Type))
			continue
		}
		out = append(out, b)
	}
	for _, in := range m.VertexInputs {
		out = append(out, binding.Binding{ShaderName: in.Name, Kind: binding.VertexAttribute, Slot: uint32(in.Location)})
	}
	return out, errors.Join(errs...)
}
