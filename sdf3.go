package sdf

import (
	"math"
	"strconv"

	"github.com/ppglab/sdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// 3D signed distance utility functions.

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	// Evaluate takes a point in 3D space as input and returns
	// the minimum distance of the SDF3 to the point. The distance
	// is negative if the point is contained within the SDF3.
	Evaluate(p r3.Vec) float64
	// Bounds returns the bounding box that completely contains
	// the SDF3.
	Bounds() r3.Box
}

// transform3 is an SDF3 transformed with a 4x4 transformation matrix.
type transform3 struct {
	sdf     SDF3
	matrix  d3.Transform
	inverse d3.Transform
	bb      r3.Box
}

// Transform3D applies a transformation matrix to an SDF3.
// Transform3D panics if sdf is nil or the matrix is singular.
func Transform3D(sdf SDF3, matrix d3.Transform) SDF3 {
	if sdf == nil {
		panic("nil SDF3 argument")
	}
	if math.Abs(matrix.Det()) < epsilon {
		panic("singular transform")
	}
	s := transform3{
		sdf:     sdf,
		matrix:  matrix,
		inverse: matrix.Inv(),
	}
	s.bb = r3.Box(d3.TransformBox(matrix, d3.Box(sdf.Bounds())))
	return &s
}

// Evaluate returns the minimum distance to a transformed SDF3.
// Distance is *not* preserved with scaling.
func (s *transform3) Evaluate(p r3.Vec) float64 {
	return s.sdf.Evaluate(s.inverse.Transform(p))
}

// Bounds returns the bounding box of a transformed SDF3.
func (s *transform3) Bounds() r3.Box {
	return s.bb
}

// scaleUniform3 is an SDF3 scaled uniformly in XYZ directions.
type scaleUniform3 struct {
	sdf     SDF3
	k, invK float64
	bb      r3.Box
}

// ScaleUniform3D uniformly scales an SDF3 on all axes.
func ScaleUniform3D(sdf SDF3, k float64) SDF3 {
	if sdf == nil {
		panic("nil SDF3 argument")
	}
	if k <= 0 {
		panic("scale factor must be positive")
	}
	bb := sdf.Bounds()
	return &scaleUniform3{
		sdf:  sdf,
		k:    k,
		invK: 1.0 / k,
		bb:   r3.Box{Min: r3.Scale(k, bb.Min), Max: r3.Scale(k, bb.Max)},
	}
}

// Evaluate returns the minimum distance to a uniformly scaled SDF3.
// The distance is correct with scaling.
func (s *scaleUniform3) Evaluate(p r3.Vec) float64 {
	q := r3.Scale(s.invK, p)
	return s.sdf.Evaluate(q) * s.k
}

// Bounds returns the bounding box of a uniformly scaled SDF3.
func (s *scaleUniform3) Bounds() r3.Box {
	return s.bb
}

// union3 is a union of SDF3s.
type union3 struct {
	sdf []SDF3
	bb  r3.Box
}

// Union3D returns the union of multiple SDF3 objects.
// Union3D will panic if arguments list is empty or if
// an argument SDF3 is nil.
func Union3D(sdf ...SDF3) SDF3 {
	if len(sdf) == 0 {
		panic("union requires at least 1 sdf")
	}
	s := union3{
		sdf: sdf,
	}
	for i, x := range s.sdf {
		if x == nil {
			panic("nil sdf argument (" + strconv.Itoa(i) + ") to Union3D")
		}
	}
	// work out the bounding box
	bb := d3.Box(s.sdf[0].Bounds())
	for _, x := range s.sdf[1:] {
		bb = bb.Extend(d3.Box(x.Bounds()))
	}
	s.bb = r3.Box(bb)
	return &s
}

// Evaluate returns the minimum distance to an SDF3 union.
func (s *union3) Evaluate(p r3.Vec) float64 {
	d := s.sdf[0].Evaluate(p)
	for _, x := range s.sdf[1:] {
		d = math.Min(d, x.Evaluate(p))
	}
	return d
}

// Bounds returns the bounding box of an SDF3 union.
func (s *union3) Bounds() r3.Box {
	return s.bb
}

// diff3 is the difference of two SDF3s, s0 - s1.
type diff3 struct {
	s0 SDF3
	s1 SDF3
	bb r3.Box
}

// Difference3D returns the difference of two SDF3s, s0 - s1.
// Difference3D will panic if one any of the arguments is nil.
func Difference3D(s0, s1 SDF3) SDF3 {
	if s1 == nil || s0 == nil {
		panic("nil argument to Difference3D")
	}
	return &diff3{
		s0: s0,
		s1: s1,
		bb: s0.Bounds(),
	}
}

// Evaluate returns the minimum distance to the SDF3 difference.
func (s *diff3) Evaluate(p r3.Vec) float64 {
	return math.Max(s.s0.Evaluate(p), -s.s1.Evaluate(p))
}

// Bounds returns the bounding box of the SDF3 difference.
func (s *diff3) Bounds() r3.Box {
	return s.bb
}
