package binding

import (
	"errors"
	"fmt"
)

var (
	ErrSlotMismatch    = errors.New("binding: slot mismatch")
	ErrKindMismatch    = errors.New("binding: kind mismatch")
	ErrUnknownResource = errors.New("binding: shader declares unregistered resource")
)

// Report is the outcome of Validate.
type Report struct {
	Matched []Binding
	// Unused lists registry entries the shader does not declare. Shaders may
	// legitimately ignore resources, so these are not errors.
	Unused []Binding
}

// Validate compares the bindings declared by a shader, matched by ShaderName,
// against the registry. Every mismatch is reported; the returned error joins them.
// Vertex buffers never appear in shader source and are skipped.
func (r *Registry) Validate(declared []Binding) (Report, error) {
	var rep Report
	var errs []error
	seen := make(map[int]bool, len(declared))

	for _, d := range declared {
		i, ok := r.byShader[d.ShaderName]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s %q", ErrUnknownResource, d.Kind, d.ShaderName))
			continue
		}
		seen[i] = true
		want := r.bindings[i]
		if want.Kind != d.Kind {
			errs = append(errs, fmt.Errorf("%w: %s is %s in shader, registry has %s", ErrKindMismatch, d.ShaderName, d.Kind, want.Kind))
			continue
		}
		if keyOf(want) != keyOf(d) {
			errs = append(errs, fmt.Errorf("%w: %s: shader %s, registry %s", ErrSlotMismatch, d.ShaderName, d, want))
			continue
		}
		rep.Matched = append(rep.Matched, want)
	}

	for i, b := range r.bindings {
		if !seen[i] && b.Kind != VertexBuffer {
			rep.Unused = append(rep.Unused, b)
		}
	}
	return rep, errors.Join(errs...)
}
