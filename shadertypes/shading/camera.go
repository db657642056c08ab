package shading

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const basisEpsilon = 1e-4

var ErrBasisNotOrthonormal = errors.New("shading: camera basis is not orthonormal")

// CameraBasis is the ray camera frame. Up, right and forward are unit length and
// mutually perpendicular; direction is unit length. The zero value is not valid, use
// NewCameraBasis, LookAt or BasisFromRotation.
type CameraBasis struct {
	origin, direction, up, right, forward mgl32.Vec3
}

func NewCameraBasis(origin, direction, up, right, forward mgl32.Vec3) (CameraBasis, error) {
	for _, a := range []struct {
		name string
		v    mgl32.Vec3
	}{{"direction", direction}, {"up", up}, {"right", right}, {"forward", forward}} {
		if l := a.v.Len(); !near(l, 1) {
			return CameraBasis{}, fmt.Errorf("%w: %s has length %g", ErrBasisNotOrthonormal, a.name, l)
		}
	}
	for _, p := range []struct {
		name string
		a, b mgl32.Vec3
	}{{"up·right", up, right}, {"up·forward", up, forward}, {"right·forward", right, forward}} {
		if d := p.a.Dot(p.b); !near(d, 0) {
			return CameraBasis{}, fmt.Errorf("%w: %s = %g", ErrBasisNotOrthonormal, p.name, d)
		}
	}
	return CameraBasis{origin: origin, direction: direction, up: up, right: right, forward: forward}, nil
}

// LookAt builds a left-handed basis at origin facing target. worldUp must not be
// parallel to the view direction.
func LookAt(origin, target, worldUp mgl32.Vec3) (CameraBasis, error) {
	f := target.Sub(origin)
	if f.Len() < basisEpsilon {
		return CameraBasis{}, fmt.Errorf("%w: origin and target coincide", ErrBasisNotOrthonormal)
	}
	f = f.Normalize()
	r := worldUp.Cross(f)
	if r.Len() < basisEpsilon {
		return CameraBasis{}, fmt.Errorf("%w: up is parallel to the view direction", ErrBasisNotOrthonormal)
	}
	r = r.Normalize()
	u := f.Cross(r)
	return NewCameraBasis(origin, f, u, r, f)
}

// BasisFromRotation reads the axes from the columns of a rotation matrix:
// column 0 is right, 1 is up, 2 is forward.
func BasisFromRotation(origin mgl32.Vec3, rot mgl32.Mat3) (CameraBasis, error) {
	f := rot.Col(2)
	return NewCameraBasis(origin, f, rot.Col(1), rot.Col(0), f)
}

func (b CameraBasis) Origin() mgl32.Vec3    { return b.origin }
func (b CameraBasis) Direction() mgl32.Vec3 { return b.direction }
func (b CameraBasis) Up() mgl32.Vec3        { return b.up }
func (b CameraBasis) Right() mgl32.Vec3     { return b.right }
func (b CameraBasis) Forward() mgl32.Vec3   { return b.forward }

// NormalMatrix returns the inverse-transpose of the upper 3x3 of model. When that
// block is singular the block itself is returned.
func NormalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	upper := model.Mat3()
	if math.Abs(float64(upper.Det())) < 1e-12 {
		return upper
	}
	return upper.Inv().Transpose()
}

func near(a, b float32) bool { return math.Abs(float64(a-b)) <= basisEpsilon }
