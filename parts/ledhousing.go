package parts

import (
	"errors"
	"fmt"
	"math"

	"github.com/ppglab/sdf/cad"
	"github.com/ppglab/sdf/emitter"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// LEDHousingDisplay is how the LED housing is shown.
	LEDHousingDisplay = Display{Name: "ledHousingModule", Transparency: 40, R: 0.8, G: 0.8, B: 0.4}
	// LEDBasePlaneDisplay shows the untilted LED ring plane.
	LEDBasePlaneDisplay = Display{Name: "Z10Plane", Transparency: 85, R: 1, G: 0.3, B: 0.3}
	// LEDTopPlaneDisplay shows the plane through the tilted LED centers.
	LEDTopPlaneDisplay = Display{Name: "Z_Top_Circle_Ref", Transparency: 0, R: 0.6, G: 0.1, B: 0.7}
)

// LEDHousingParams are the dimensions of the LED housing: a walled box
// with a raised platform into which tilted LEDs are bored so that all
// beams meet above the finger.
type LEDHousingParams struct {
	Outer r3.Vec
	Wall  float64
	// Base is the height of the cavity floor.
	Base float64
	// PlatformInset is the total amount the platform is narrower than the
	// outer box along x and y.
	PlatformInset float64
	LEDRadius     float64
	LEDDepth      float64
	PinRadius     float64
	PinDepth      float64
	// Emitters places the LED bores and their pin holes.
	Emitters emitter.Config
	// SkipDegenerate drops LEDs whose placement is degenerate instead of
	// failing the build. Skipped LEDs are logged.
	SkipDegenerate bool
	// ReferencePlanes adds thin planes at the untilted and tilted LED
	// heights to the LED housing module's document.
	ReferencePlanes bool
	PlaneSize       float64
	PlaneThickness  float64
}

// DefaultLEDHousing returns the production LED housing dimensions.
func DefaultLEDHousing() LEDHousingParams {
	return LEDHousingParams{
		Outer:         r3.Vec{X: 34, Y: 50, Z: 16},
		Wall:          2,
		Base:          6,
		PlatformInset: 8,
		LEDRadius:     3.2,
		LEDDepth:      11,
		PinRadius:     0.7,
		PinDepth:      8,
		Emitters: emitter.Config{
			Count:             4,
			TiltAngleDeg:      12.4,
			RingRadius:        8,
			PlaneHeight:       5,
			ConvergenceTarget: r3.Vec{Z: 36.5},
			PinSpacing:        2.54,
		},
		PlaneSize:      50,
		PlaneThickness: 0.1,
	}
}

// Validate checks the dimensions and the emitter configuration.
func (p LEDHousingParams) Validate() error {
	dims := sizeDims("Outer", p.Outer)
	dims = append(dims,
		dim{"Wall", p.Wall},
		dim{"Base", p.Base},
		dim{"PlatformInset", p.PlatformInset},
		dim{"LEDRadius", p.LEDRadius},
		dim{"LEDDepth", p.LEDDepth},
		dim{"PinRadius", p.PinRadius},
		dim{"PinDepth", p.PinDepth},
		dim{"cavity width", p.Outer.X - 2*p.Wall},
		dim{"cavity length", p.Outer.Y - 2*p.Wall},
		dim{"cavity height", p.Outer.Z - p.Base},
		dim{"platform width", p.Outer.X - p.PlatformInset},
		dim{"platform length", p.Outer.Y - p.PlatformInset},
	)
	if p.ReferencePlanes {
		dims = append(dims, dim{"PlaneSize", p.PlaneSize}, dim{"PlaneThickness", p.PlaneThickness})
	}
	if err := checkDims("led housing", dims...); err != nil {
		return err
	}
	if err := p.Emitters.Validate(); err != nil {
		return fmt.Errorf("%w: led housing: %w", ErrInvalidParams, err)
	}
	return nil
}

// LEDHousing builds the LED housing. A degenerate LED placement aborts the
// build with an error wrapping emitter.ErrZeroBeam or
// emitter.ErrUndefinedPinAxis unless p.SkipDegenerate is set.
func LEDHousing(s *cad.Session, p LEDHousingParams) (cad.Solid, error) {
	if err := p.Validate(); err != nil {
		return cad.Solid{}, err
	}
	m := maker{s: s}
	cavity := r3.Vec{X: p.Outer.X - 2*p.Wall, Y: p.Outer.Y - 2*p.Wall, Z: p.Outer.Z - p.Base}
	platform := r3.Vec{X: p.Outer.X - p.PlatformInset, Y: p.Outer.Y - p.PlatformInset, Z: cavity.Z}
	pipe := cad.NewPipeline(m.centeredBox(p.Outer, 0)).
		Cut("cavity", m.centeredBox(cavity, p.Base)).
		Fuse("platform", m.centeredBox(platform, p.Base))

	var placeErr error
	p.Emitters.Each(func(i int, pl emitter.Placement, err error) bool {
		if err != nil {
			if p.SkipDegenerate && isDegenerate(err) {
				s.Logger().Printf("led housing: skipping LED %d: %v", i, err)
				return true
			}
			placeErr = err
			return false
		}
		// Both pin holes are drilled away from the beam.
		drill := r3.Scale(-1, pl.BeamDirection)
		pipe.Cut(fmt.Sprintf("led %d", i), m.hole(p.LEDRadius, p.LEDDepth, pl.Position, pl.BeamDirection)).
			Cut(fmt.Sprintf("led %d pin a", i), m.hole(p.PinRadius, p.PinDepth, pl.PinA, drill)).
			Cut(fmt.Sprintf("led %d pin b", i), m.hole(p.PinRadius, p.PinDepth, pl.PinB, drill))
		return true
	})
	if placeErr != nil {
		return cad.Solid{}, fmt.Errorf("led housing: %w", placeErr)
	}
	return m.build(pipe)
}

func isDegenerate(err error) bool {
	return errors.Is(err, emitter.ErrZeroBeam) || errors.Is(err, emitter.ErrUndefinedPinAxis)
}

// LEDReferencePlanes returns thin square planes at the untilted LED ring
// height and at the height of the tilted LED centers.
func LEDReferencePlanes(s *cad.Session, p LEDHousingParams) (base, top cad.Solid, err error) {
	if !(p.PlaneSize > 0) || !(p.PlaneThickness > 0) {
		return cad.Solid{}, cad.Solid{}, fmt.Errorf("%w: led reference planes: size %g thickness %g",
			ErrInvalidParams, p.PlaneSize, p.PlaneThickness)
	}
	size := r3.Vec{X: p.PlaneSize, Y: p.PlaneSize, Z: p.PlaneThickness}
	m := maker{s: s}
	e := p.Emitters
	base = m.centeredBox(size, e.PlaneHeight)
	top = m.centeredBox(size, e.PlaneHeight+e.RingRadius*math.Sin(e.TiltAngleDeg*math.Pi/180))
	return base, top, m.err
}

// LEDHousingModule builds the default LED housing and shows it in s.
func LEDHousingModule(s *cad.Session) error {
	return LEDHousingModuleWith(s, DefaultLEDHousing())
}

// LEDHousingModuleWith builds the LED housing from p and shows it in s,
// along with the reference planes if p.ReferencePlanes is set.
func LEDHousingModuleWith(s *cad.Session, p LEDHousingParams) error {
	sol, err := LEDHousing(s, p)
	if err != nil {
		return err
	}
	if p.ReferencePlanes {
		base, top, err := LEDReferencePlanes(s, p)
		if err != nil {
			return err
		}
		if _, err := LEDBasePlaneDisplay.Show(s, base); err != nil {
			return err
		}
		if _, err := LEDTopPlaneDisplay.Show(s, top); err != nil {
			return err
		}
	}
	return showFit(s, sol, LEDHousingDisplay)
}
