package shaders

import (
	"errors"
	"fmt"

	"github.com/gekko3d/gettingback/shadertypes/binding"
	"github.com/gekko3d/gettingback/shadertypes/layout"
	"github.com/gekko3d/gettingback/shadertypes/rev1"
	"github.com/gekko3d/gettingback/shadertypes/rev2"
)

var (
	ErrNoHostRecord  = errors.New("shaders: uniform has no host record")
	ErrArrayCapacity = errors.New("shaders: uniform array length differs from host capacity")
)

// Record is the host side of one uniform variable. Count is the number of
// elements the host writes when the variable is an array, or 0 for a single
// struct.
type Record struct {
	Var    string
	Layout layout.Struct
	Count  int
}

// Contract is what a shader written against one revision has to agree with.
type Contract struct {
	Registry *binding.Registry
	Records  []Record
	// Builtin is the embedded shader written for this revision.
	Builtin string
}

func Revision1() Contract {
	return Contract{
		Registry: rev1.Registry(),
		Records: []Record{
			{Var: "uniforms", Layout: rev1.UniformsLayout(layout.WGSL)},
		},
		Builtin: BasicWGSL,
	}
}

func Revision2() Contract {
	return Contract{
		Registry: rev2.Registry(),
		Records: []Record{
			{Var: "uniforms", Layout: rev2.UniformsLayout(layout.WGSL)},
			{Var: "lights", Layout: rev2.LightLayout(layout.WGSL), Count: rev2.MaxLights},
			{Var: "fragmentUniforms", Layout: rev2.FragmentUniformsLayout(layout.WGSL)},
			{Var: "material", Layout: rev2.MaterialLayout(layout.WGSL)},
		},
		Builtin: LitWGSL,
	}
}

func (c Contract) record(name string) (Record, bool) {
	for _, r := range c.Records {
		if r.Var == name {
			return r, true
		}
	}
	return Record{}, false
}

// Check reflects src and validates its bindings against the registry. Every
// registered uniform the shader declares must hold the host record laid out the
// same way, whatever the shader calls the struct, and arrays must have exactly
// the element count the host writes.
func (c Contract) Check(src string) (binding.Report, error) {
	m, err := Reflect(src)
	if err != nil {
		return binding.Report{}, fmt.Errorf("failed to reflect shader: %w", err)
	}
	declared, declErr := m.Declared()
	rep, valErr := c.Registry.Validate(declared)
	return rep, errors.Join(declErr, valErr, c.checkRecords(m))
}

func (c Contract) checkRecords(m *Module) error {
	var errs []error
	for _, b := range c.Registry.ByKind(binding.UniformBuffer) {
		v, ok := m.Var(b.ShaderName)
		if !ok {
			continue
		}
		r, ok := c.record(b.ShaderName)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoHostRecord, b.ShaderName))
			continue
		}
		if err := m.checkRecord(v, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Module) checkRecord(v Var, r Record) error {
	typ := v.Type
	if r.Count > 0 {
		elem, n, ok := m.ArrayLength(v.Name)
		if !ok || n != r.Count {
			return fmt.Errorf("%w: %s is %s, want array<%s, %d>", ErrArrayCapacity, v.Name, v.Type, r.Layout.Name, r.Count)
		}
		typ = elem
	}
	got, err := m.StructLayout(typ)
	if err != nil {
		return fmt.Errorf("%s: %w", v.Name, err)
	}
	if !got.Equal(r.Layout) {
		return fmt.Errorf("%w: %s holds %s\nshader:\n%shost:\n%s", ErrLayoutMismatch, v.Name, typ, got, r.Layout)
	}
	return nil
}
