// Package emitter places tilted emitters (LEDs) on a ring so that
// every beam points at a common convergence target.
//
// An emitter ring of radius R is tilted from horizontal and raised to a
// base plane height. Each emitter gets a position on that ring, a unit
// beam direction towards the target and two pin positions either side
// of the emitter centre.
package emitter

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// tol is the magnitude under which a beam or pin axis is considered degenerate.
const tol = 1e-9

var (
	// ErrZeroBeam is returned when the convergence target coincides with
	// an emitter position so that no beam direction exists.
	ErrZeroBeam = errors.New("emitter: convergence target coincides with emitter position")
	// ErrUndefinedPinAxis is returned when the beam is parallel to the
	// vertical axis and the pin axis perpendicular to it is undefined.
	ErrUndefinedPinAxis = errors.New("emitter: beam parallel to vertical axis, pin axis undefined")
	// ErrInvalidConfig is returned for configurations rejected before
	// any placement is computed.
	ErrInvalidConfig = errors.New("emitter: invalid configuration")
)

var vertical = r3.Vec{Z: 1}

// PinLayout selects how the two pins of an emitter are offset from its centre.
type PinLayout int

const (
	// PinLayoutPlanar offsets the pins using the untilted ring angle,
	// (cos t·sin a, cos t·cos a, 0)·spacing/2, holding z at the emitter
	// height. Each pin lies spacing/2·cos(t) from the emitter centre.
	PinLayoutPlanar PinLayout = iota
	// PinLayoutExact offsets the pins along the unit vector ẑ×beam so
	// each pin lies exactly spacing/2 from the emitter centre.
	PinLayoutExact
)

func (l PinLayout) String() string {
	switch l {
	case PinLayoutPlanar:
		return "planar"
	case PinLayoutExact:
		return "exact"
	}
	return fmt.Sprintf("PinLayout(%d)", int(l))
}

// Config describes a ring of tilted emitters. The zero value is not valid.
type Config struct {
	// Count is the number of emitters, spaced 360°/Count apart starting at 0°.
	Count int
	// TiltAngleDeg is the tilt of the ring plane from horizontal in degrees.
	TiltAngleDeg float64
	// RingRadius is the distance from the vertical axis to each emitter centre.
	RingRadius float64
	// PlaneHeight is the height of the untilted ring plane.
	PlaneHeight float64
	// ConvergenceTarget is the point every beam is aimed at.
	ConvergenceTarget r3.Vec
	// PinSpacing is the distance between the two pins of an emitter.
	PinSpacing float64
	// PinLayout selects how the pin offset is derived. The zero value is
	// PinLayoutPlanar.
	PinLayout PinLayout
}

// Placement is the computed geometry of a single emitter.
type Placement struct {
	// Position is the emitter centre on the tilted ring.
	Position r3.Vec
	// BeamDirection is a unit vector from Position towards the convergence target.
	BeamDirection r3.Vec
	// PinA is Position plus the pin offset.
	PinA r3.Vec
	// PinB is Position minus the pin offset, mirroring PinA.
	PinB r3.Vec
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Count < 1:
		return fmt.Errorf("%w: count %d < 1", ErrInvalidConfig, c.Count)
	case !finite(c.TiltAngleDeg) || c.TiltAngleDeg <= -90 || c.TiltAngleDeg >= 90:
		return fmt.Errorf("%w: tilt angle %g outside (-90, 90)", ErrInvalidConfig, c.TiltAngleDeg)
	case !finite(c.RingRadius) || c.RingRadius <= 0:
		return fmt.Errorf("%w: ring radius %g must be positive", ErrInvalidConfig, c.RingRadius)
	case !finite(c.PinSpacing) || c.PinSpacing <= 0:
		return fmt.Errorf("%w: pin spacing %g must be positive", ErrInvalidConfig, c.PinSpacing)
	case !finite(c.PlaneHeight):
		return fmt.Errorf("%w: plane height %g not finite", ErrInvalidConfig, c.PlaneHeight)
	case !finite(c.ConvergenceTarget.X) || !finite(c.ConvergenceTarget.Y) || !finite(c.ConvergenceTarget.Z):
		return fmt.Errorf("%w: convergence target %v not finite", ErrInvalidConfig, c.ConvergenceTarget)
	case c.PinLayout != PinLayoutPlanar && c.PinLayout != PinLayoutExact:
		return fmt.Errorf("%w: unknown pin layout %v", ErrInvalidConfig, c.PinLayout)
	}
	return nil
}

// Place computes the placement of emitter i.
func (c Config) Place(i int) (Placement, error) {
	if err := c.Validate(); err != nil {
		return Placement{}, err
	}
	if i < 0 || i >= c.Count {
		return Placement{}, fmt.Errorf("%w: emitter index %d outside [0, %d)", ErrInvalidConfig, i, c.Count)
	}
	return c.place(i)
}

// PlaceAll returns the placements of all emitters in index order.
// The first degenerate emitter aborts with its error.
func (c Config) PlaceAll() ([]Placement, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	placements := make([]Placement, c.Count)
	for i := range placements {
		p, err := c.place(i)
		if err != nil {
			return nil, err
		}
		placements[i] = p
	}
	return placements, nil
}

// Each calls fn for every emitter in index order until fn returns false.
// Degenerate emitters are passed to fn with a non-nil error and a zero
// Placement so callers may skip them. If the configuration is invalid fn
// is called once with index -1 and the validation error.
func (c Config) Each(fn func(i int, p Placement, err error) bool) {
	if err := c.Validate(); err != nil {
		fn(-1, Placement{}, err)
		return
	}
	for i := 0; i < c.Count; i++ {
		p, err := c.place(i)
		if !fn(i, p, err) {
			return
		}
	}
}

func (c Config) place(i int) (Placement, error) {
	angle := 2 * math.Pi * float64(i) / float64(c.Count)
	tilt := c.TiltAngleDeg * math.Pi / 180
	sa, ca := math.Sincos(angle)
	st, ct := math.Sincos(tilt)

	pos := r3.Vec{
		X: c.RingRadius * ca * ct,
		Y: c.RingRadius * sa * ct,
		Z: c.PlaneHeight + c.RingRadius*st,
	}
	toTarget := r3.Sub(c.ConvergenceTarget, pos)
	if r3.Norm(toTarget) < tol {
		return Placement{}, fmt.Errorf("emitter %d: %w", i, ErrZeroBeam)
	}
	beam := r3.Unit(toTarget)
	axis := r3.Cross(vertical, beam)
	if r3.Norm(axis) < tol {
		return Placement{}, fmt.Errorf("emitter %d: %w", i, ErrUndefinedPinAxis)
	}

	var offset r3.Vec
	half := c.PinSpacing / 2
	switch c.PinLayout {
	case PinLayoutExact:
		offset = r3.Scale(half, r3.Unit(axis))
	default:
		offset = r3.Vec{X: half * ct * sa, Y: half * ct * ca}
	}
	return Placement{
		Position:      pos,
		BeamDirection: beam,
		PinA:          r3.Add(pos, offset),
		PinB:          r3.Sub(pos, offset),
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
