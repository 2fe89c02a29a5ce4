package must3

import (
	"math"

	"github.com/ppglab/sdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// box is a 3d box centered at the origin.
type box struct {
	size  r3.Vec // half size minus rounding
	round float64
	bb    r3.Box
}

// Box return an SDF3 for a 3d box (rounded corners with round > 0).
func Box(size r3.Vec, round float64) *box {
	if d3.LTEZero(size) {
		panic("size <= 0")
	}
	if round < 0 {
		panic("round < 0")
	}
	if 2*round > math.Min(size.X, math.Min(size.Y, size.Z)) {
		panic("round larger than half smallest side")
	}
	size = r3.Scale(0.5, size)
	s := box{
		size:  r3.Sub(size, d3.Elem(round)),
		round: round,
		bb:    r3.Box{Min: r3.Scale(-1, size), Max: size},
	}
	return &s
}

// Evaluate returns the minimum distance to a 3d box.
func (s *box) Evaluate(p r3.Vec) float64 {
	return sdfBox3d(p, s.size) - s.round
}

// Bounds returns the bounding box for a 3d box.
func (s *box) Bounds() r3.Box {
	return s.bb
}

// cylinder is a cylinder with its axis on z, centered at the origin.
type cylinder struct {
	height float64 // half height minus rounding
	radius float64
	round  float64
	bb     r3.Box
}

// Cylinder return an SDF3 for a cylinder (rounded edges with round > 0).
func Cylinder(height, radius, round float64) *cylinder {
	if radius <= 0 {
		panic("radius <= 0")
	}
	if height <= 0 {
		panic("height <= 0")
	}
	if round < 0 {
		panic("round < 0")
	}
	if round > radius {
		panic("round > radius")
	}
	if height < 2.0*round {
		panic("height < 2 * round")
	}
	s := cylinder{
		height: (height / 2) - round,
		radius: radius - round,
		round:  round,
	}
	d := r3.Vec{X: radius, Y: radius, Z: height / 2}
	s.bb = r3.Box{Min: r3.Scale(-1, d), Max: d}
	return &s
}

// Evaluate returns the minimum distance to a cylinder.
func (s *cylinder) Evaluate(p r3.Vec) float64 {
	d := sdfBox2d(math.Hypot(p.X, p.Y), p.Z, s.radius, s.height)
	return d - s.round
}

// Bounds returns the bounding box for a cylinder.
func (s *cylinder) Bounds() r3.Box {
	return s.bb
}

// sphere is a sphere centered at the origin.
type sphere struct {
	radius float64
	bb     r3.Box
}

// Sphere return an SDF3 for a sphere.
func Sphere(radius float64) *sphere {
	if radius <= 0 {
		panic("radius <= 0")
	}
	d := d3.Elem(radius)
	return &sphere{
		radius: radius,
		bb:     r3.Box{Min: r3.Scale(-1, d), Max: d},
	}
}

// Evaluate returns the minimum distance to a sphere.
func (s *sphere) Evaluate(p r3.Vec) float64 {
	return r3.Norm(p) - s.radius
}

// Bounds returns the bounding box for a sphere.
func (s *sphere) Bounds() r3.Box {
	return s.bb
}

// sdfBox3d is the exact distance to a box of half size s.
func sdfBox3d(p, s r3.Vec) float64 {
	d := r3.Sub(d3.AbsElem(p), s)
	outside := d3.MaxElem(d, r3.Vec{})
	inside := math.Min(d3.Max(d), 0)
	return r3.Norm(outside) + inside
}

// sdfBox2d is the exact distance to a rectangle of half size (sx, sy).
func sdfBox2d(px, py, sx, sy float64) float64 {
	dx := math.Abs(px) - sx
	dy := math.Abs(py) - sy
	if dx > 0 && dy > 0 {
		return math.Hypot(dx, dy)
	}
	return math.Max(dx, dy)
}
