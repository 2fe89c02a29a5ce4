package sdf

import (
	"math"

	"github.com/ppglab/sdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var unitScale = r3.Vec{X: 1, Y: 1, Z: 1}

// Identity3D returns the identity transform.
func Identity3D() d3.Transform {
	return d3.Transform{}
}

// Translate3D returns a transform that translates by v.
func Translate3D(v r3.Vec) d3.Transform {
	return d3.Transform{}.Translate(v)
}

// Rotate3D returns a transform that rotates by angle radians about axis,
// which passes through the origin. Rotate3D panics if axis is the zero vector.
func Rotate3D(axis r3.Vec, angle float64) d3.Transform {
	if r3.Norm(axis) < epsilon {
		panic("zero length rotation axis")
	}
	return d3.ComposeTransform(r3.Vec{}, unitScale, r3.NewRotation(angle, axis))
}

// RotateAbout3D returns a transform that rotates by angle radians about the
// line through center with direction axis.
func RotateAbout3D(center, axis r3.Vec, angle float64) d3.Transform {
	if r3.Norm(axis) < epsilon {
		panic("zero length rotation axis")
	}
	rot := r3.NewRotation(angle, axis)
	// Rotation about the origin followed by the translation that
	// returns center to its place.
	return d3.ComposeTransform(r3.Sub(center, rot.Rotate(center)), unitScale, rot)
}

// RotateToVector returns the rotation matrix that transforms a onto the same direction as b.
func RotateToVector(a, b r3.Vec) d3.Transform {
	// is either vector == 0?
	if d3.EqualWithin(a, r3.Vec{}, epsilon) || d3.EqualWithin(b, r3.Vec{}, epsilon) {
		return Identity3D()
	}
	a = r3.Unit(a)
	b = r3.Unit(b)
	if d3.EqualWithin(a, b, epsilon) {
		return Identity3D()
	}
	axis := r3.Cross(a, b)
	if r3.Norm(axis) < epsilon {
		// a and b are opposite. Any axis perpendicular to a will do.
		axis = r3.Cross(a, r3.Vec{X: 1})
		if r3.Norm(axis) < epsilon {
			axis = r3.Cross(a, r3.Vec{Y: 1})
		}
		return Rotate3D(axis, math.Pi)
	}
	angle := math.Acos(Clamp(r3.Dot(a, b), -1, 1))
	return Rotate3D(axis, angle)
}
