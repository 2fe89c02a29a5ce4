package cad

import (
	"github.com/ppglab/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// Solid is an immutable closed volume. Operations on a Solid return a new
// Solid and never modify their operands. The zero value is the empty solid.
type Solid struct {
	s sdf.SDF3
}

// NewSolid wraps an SDF3. A nil s gives the empty solid.
func NewSolid(s sdf.SDF3) Solid { return Solid{s: s} }

// IsEmpty reports whether sol is the zero Solid.
func (sol Solid) IsEmpty() bool { return sol.s == nil }

// SDF returns the signed distance function of the solid. It is nil
// for the empty solid.
func (sol Solid) SDF() sdf.SDF3 { return sol.s }

// Bounds returns the bounding box of the solid.
func (sol Solid) Bounds() r3.Box {
	if sol.s == nil {
		return r3.Box{}
	}
	return sol.s.Bounds()
}

// Contains reports whether p lies strictly inside the solid.
func (sol Solid) Contains(p r3.Vec) bool {
	return sol.s != nil && sol.s.Evaluate(p) < 0
}

// Fuse returns the union of sol and tool.
func (sol Solid) Fuse(tool Solid) (out Solid, err error) {
	if sol.s == nil || tool.s == nil {
		return Solid{}, ErrEmptySolid
	}
	defer recoverKernel("fuse", &err)
	return Solid{s: sdf.Union3D(sol.s, tool.s)}, nil
}

// Cut returns sol with the volume of tool removed.
func (sol Solid) Cut(tool Solid) (out Solid, err error) {
	if sol.s == nil || tool.s == nil {
		return Solid{}, ErrEmptySolid
	}
	defer recoverKernel("cut", &err)
	return Solid{s: sdf.Difference3D(sol.s, tool.s)}, nil
}

// Rotate returns sol rotated by angleDeg degrees about the line through
// center with direction axis.
func (sol Solid) Rotate(center, axis r3.Vec, angleDeg float64) (out Solid, err error) {
	if sol.s == nil {
		return Solid{}, ErrEmptySolid
	}
	defer recoverKernel("rotate", &err)
	return Solid{s: sdf.Transform3D(sol.s, sdf.RotateAbout3D(center, axis, sdf.DtoR(angleDeg)))}, nil
}
