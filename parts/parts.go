// Package parts builds the mechanical parts of a finger clip
// photoplethysmography sensor enclosure.
//
// Each part has a parameter struct holding its dimensions in millimetres,
// a Default constructor with the production values, a builder that folds
// the part's boolean operations with a cad.Pipeline and a Module function
// that builds the default part and registers it for display in a session.
package parts

import (
	"errors"
	"fmt"
	"math"

	"github.com/ppglab/sdf/cad"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidParams is returned for part parameters rejected before any
// solid is created.
var ErrInvalidParams = errors.New("parts: invalid parameters")

// Display holds the name and appearance a part is shown with.
type Display struct {
	Name string
	// Transparency in percent.
	Transparency float64
	R, G, B      float64
}

// Show registers sol in the session with the display properties of d.
func (d Display) Show(s *cad.Session, sol cad.Solid) (*cad.DisplayHandle, error) {
	h, err := s.Show(sol, d.Name)
	if err != nil {
		return nil, err
	}
	if err := h.SetTransparency(d.Transparency); err != nil {
		return nil, err
	}
	if err := h.SetColor(d.R, d.G, d.B); err != nil {
		return nil, err
	}
	return h, nil
}

// showFit shows sol and requests the isometric fitted preview.
func showFit(s *cad.Session, sol cad.Solid, d Display) error {
	if _, err := d.Show(s, sol); err != nil {
		return err
	}
	s.ViewIsometric()
	s.ViewFit()
	return nil
}

type dim struct {
	name string
	v    float64
}

func checkDims(part string, dims ...dim) error {
	for _, d := range dims {
		if !(d.v > 0) || math.IsInf(d.v, 0) {
			return fmt.Errorf("%w: %s: %s = %g must be positive", ErrInvalidParams, part, d.name, d.v)
		}
	}
	return nil
}

func checkNonNegative(part string, dims ...dim) error {
	for _, d := range dims {
		if !(d.v >= 0) || math.IsInf(d.v, 0) {
			return fmt.Errorf("%w: %s: %s = %g must not be negative", ErrInvalidParams, part, d.name, d.v)
		}
	}
	return nil
}

func checkFinite(part string, dims ...dim) error {
	for _, d := range dims {
		if math.IsNaN(d.v) || math.IsInf(d.v, 0) {
			return fmt.Errorf("%w: %s: %s = %g must be finite", ErrInvalidParams, part, d.name, d.v)
		}
	}
	return nil
}

func sizeDims(name string, v r3.Vec) []dim {
	return []dim{{name + ".X", v.X}, {name + ".Y", v.Y}, {name + ".Z", v.Z}}
}

// maker creates primitives in a session keeping the first error.
// Once an error occurs every further call returns the empty solid.
type maker struct {
	s   *cad.Session
	err error
}

func (m *maker) box(size, origin r3.Vec) cad.Solid {
	if m.err != nil {
		return cad.Solid{}
	}
	sol, err := m.s.MakeBox(size.X, size.Y, size.Z, origin)
	m.err = err
	return sol
}

// centeredBox makes a box centered on the z axis with its base at z.
func (m *maker) centeredBox(size r3.Vec, z float64) cad.Solid {
	return m.box(size, r3.Vec{X: -size.X / 2, Y: -size.Y / 2, Z: z})
}

func (m *maker) cylinder(radius, height float64, origin, axis r3.Vec) cad.Solid {
	if m.err != nil {
		return cad.Solid{}
	}
	sol, err := m.s.MakeCylinder(radius, height, origin, axis)
	m.err = err
	return sol
}

// hole is a cylinder that will be cut, compensated for the session material.
func (m *maker) hole(radius, depth float64, origin, axis r3.Vec) cad.Solid {
	if m.err != nil {
		return cad.Solid{}
	}
	sol, err := m.s.MakeHole(radius, depth, origin, axis)
	m.err = err
	return sol
}

// build folds the pipeline unless a primitive failed.
func (m *maker) build(p *cad.Pipeline) (cad.Solid, error) {
	if m.err != nil {
		return cad.Solid{}, m.err
	}
	return p.Build()
}
