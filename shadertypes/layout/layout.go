// Package layout computes the memory layout shared between application code and
// shader code, and encodes values into it.
//
// Two targets are supported. Metal follows <simd/simd.h>, where a float3 occupies
// 16 bytes and a float3x3 is three 16-byte columns. WGSL follows the uniform address
// space rules, where a vec3 occupies 12 bytes but is 16-byte aligned, so a scalar that
// follows it lands in its last 4 bytes.
package layout

import (
	"fmt"
	"strings"
)

type Target int

const (
	Metal Target = iota
	WGSL
)

func (t Target) String() string {
	switch t {
	case Metal:
		return "metal"
	case WGSL:
		return "wgsl"
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// ParseTarget accepts the names printed by Target.String.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metal", "msl":
		return Metal, nil
	case "wgsl", "webgpu":
		return WGSL, nil
	}
	return 0, fmt.Errorf("layout: unknown target %q", s)
}

type Kind int

const (
	Float Kind = iota
	Uint
	Int
	Float2
	Float3
	Float4
	Float3x3
	Float4x4
)

var kindNames = [...]string{"float", "uint", "int", "float2", "float3", "float4", "float3x3", "float4x4"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Size is the number of bytes a value of kind k occupies on target t.
func (k Kind) Size(t Target) int {
	switch k {
	case Float, Uint, Int:
		return 4
	case Float2:
		return 8
	case Float3:
		if t == Metal {
			return 16
		}
		return 12
	case Float4:
		return 16
	case Float3x3:
		return 48
	case Float4x4:
		return 64
	}
	panic(fmt.Sprintf("layout: unknown kind %d", int(k)))
}

// Align is the required byte alignment of kind k on target t.
func (k Kind) Align(t Target) int {
	switch k {
	case Float, Uint, Int:
		return 4
	case Float2:
		return 8
	case Float3, Float4, Float3x3, Float4x4:
		return 16
	}
	panic(fmt.Sprintf("layout: unknown kind %d", int(k)))
}

type Field struct {
	Name string
	Kind Kind
}

type Member struct {
	Field
	Offset int
	Size   int
}

// Struct is the resolved layout of a record on one target.
type Struct struct {
	Name    string
	Target  Target
	Members []Member
	Size    int
	Align   int
}

// Compute lays out fields in declaration order, inserting padding where a field's
// alignment requires it. The struct size is rounded up to its largest alignment.
func Compute(t Target, name string, fields ...Field) Struct {
	s := Struct{Name: name, Target: t, Align: 1}
	off := 0
	for _, f := range fields {
		a := f.Kind.Align(t)
		off = roundUp(off, a)
		sz := f.Kind.Size(t)
		s.Members = append(s.Members, Member{Field: f, Offset: off, Size: sz})
		off += sz
		if a > s.Align {
			s.Align = a
		}
	}
	s.Size = roundUp(off, s.Align)
	return s
}

// Stride is the distance between consecutive elements of an array of s.
// WGSL uniform arrays require a multiple of 16.
func (s Struct) Stride() int {
	if s.Target == WGSL {
		return roundUp(s.Size, 16)
	}
	return roundUp(s.Size, s.Align)
}

// Offset returns the byte offset of the named member.
func (s Struct) Offset(name string) (int, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m.Offset, true
		}
	}
	return 0, false
}

// Equal reports whether both layouts place the same kinds at the same offsets.
// Member names are not compared.
func (s Struct) Equal(o Struct) bool {
	if s.Size != o.Size || len(s.Members) != len(o.Members) {
		return false
	}
	for i := range s.Members {
		if s.Members[i].Kind != o.Members[i].Kind || s.Members[i].Offset != o.Members[i].Offset {
			return false
		}
	}
	return true
}

func (s Struct) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) size=%d align=%d stride=%d\n", s.Name, s.Target, s.Size, s.Align, s.Stride())
	for _, m := range s.Members {
		fmt.Fprintf(&b, "  %4d  %-9s %-20s %d\n", m.Offset, m.Kind, m.Name, m.Size)
	}
	return b.String()
}

func roundUp(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) / a * a
}
