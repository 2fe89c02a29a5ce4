package parts

import (
	"github.com/ppglab/sdf/cad"
	"gonum.org/v1/gonum/spatial/r3"
)

// FingerHoleDisplay is how the finger hole housing is shown.
var FingerHoleDisplay = Display{Name: "fingerHoleModule", Transparency: 20, R: 0.6, G: 0.6, B: 0.85}

// FingerHoleParams are the dimensions of the finger hole housing, the body
// the finger slides into. The photodiode module clips onto the bottom tab
// and the LED module onto the top tab. Sizes are width (x), length (y)
// and height (z).
type FingerHoleParams struct {
	Bottom, Middle, Top r3.Vec
	// BottomPocket is the photodiode clip slot. Its height is the bottom tab height.
	BottomPocket r3.Vec
	LightRadius  float64
	LightDepth   float64
	// Filter is the optical filter pocket, raised FilterLift above the bottom tab.
	Filter     r3.Vec
	FilterLift float64
	// FingerRadius is the radius of the finger bore, which runs along y
	// FingerGap above the bottom tab.
	FingerRadius float64
	FingerGap    float64
	// SidePocket holds the humidity sensor, SideWall away from the finger bore.
	SidePocket r3.Vec
	SideWall   float64
	// SensorWindow is the side of the square humidity sensor window.
	SensorWindow float64
	// TopMargin is the total clip wall removed from the top tab to form its pocket.
	TopMargin float64
	LEDWindow r3.Vec
}

// DefaultFingerHole returns the production finger hole housing dimensions.
func DefaultFingerHole() FingerHoleParams {
	const clearance = 0.2
	return FingerHoleParams{
		Bottom:       r3.Vec{X: 46 - clearance, Y: 30 - clearance, Z: 12.5},
		Middle:       r3.Vec{X: 50, Y: 34, Z: 25},
		Top:          r3.Vec{X: 46 - clearance, Y: 30 - clearance, Z: 10},
		BottomPocket: r3.Vec{X: 30, Y: 20, Z: 12.5},
		LightRadius:  4,
		LightDepth:   5,
		Filter:       r3.Vec{X: 18, Y: 30, Z: 2},
		FilterLift:   1,
		FingerRadius: 10,
		FingerGap:    4,
		SidePocket:   r3.Vec{X: 10, Y: 27, Z: 18},
		SideWall:     1,
		SensorWindow: 7,
		TopMargin:    3.8,
		LEDWindow:    r3.Vec{X: 18.5, Y: 18.5, Z: 5},
	}
}

// Validate checks all dimensions are positive.
func (p FingerHoleParams) Validate() error {
	var dims []dim
	for _, sz := range []struct {
		name string
		v    r3.Vec
	}{
		{"Bottom", p.Bottom}, {"Middle", p.Middle}, {"Top", p.Top},
		{"BottomPocket", p.BottomPocket}, {"Filter", p.Filter},
		{"SidePocket", p.SidePocket}, {"LEDWindow", p.LEDWindow},
	} {
		dims = append(dims, sizeDims(sz.name, sz.v)...)
	}
	dims = append(dims,
		dim{"LightRadius", p.LightRadius},
		dim{"LightDepth", p.LightDepth},
		dim{"FilterLift", p.FilterLift},
		dim{"FingerRadius", p.FingerRadius},
		dim{"FingerGap", p.FingerGap},
		dim{"SideWall", p.SideWall},
		dim{"SensorWindow", p.SensorWindow},
		dim{"TopMargin", p.TopMargin},
		dim{"top pocket width", p.Top.X - p.TopMargin},
		dim{"top pocket length", p.Top.Y - p.TopMargin},
	)
	return checkDims("finger hole", dims...)
}

// FingerCenterZ returns the height of the finger bore axis.
func (p FingerHoleParams) FingerCenterZ() float64 {
	return p.Bottom.Z + p.FingerGap + p.FingerRadius
}

// FingerHole builds the finger hole housing.
func FingerHole(s *cad.Session, p FingerHoleParams) (cad.Solid, error) {
	if err := p.Validate(); err != nil {
		return cad.Solid{}, err
	}
	m := maker{s: s}
	var (
		topZ      = p.Bottom.Z + p.Middle.Z
		fingerZ   = p.FingerCenterZ()
		sensorLen = p.FingerRadius + p.SideWall
		topPocket = r3.Vec{X: p.Top.X - p.TopMargin, Y: p.Top.Y - p.TopMargin, Z: p.Top.Z}
	)
	pipe := cad.NewPipeline(m.centeredBox(p.Bottom, 0)).
		Fuse("middle block", m.centeredBox(p.Middle, p.Bottom.Z)).
		Fuse("top block", m.centeredBox(p.Top, topZ)).
		Cut("bottom pocket", m.centeredBox(p.BottomPocket, 0)).
		Cut("light hole", m.hole(p.LightRadius, p.LightDepth, r3.Vec{Z: p.Bottom.Z}, cad.Vertical)).
		Cut("filter pocket", m.box(p.Filter, r3.Vec{
			X: -p.Filter.X / 2,
			Y: p.Middle.Y/2 - p.Filter.Y,
			Z: p.Bottom.Z + p.FilterLift,
		})).
		Cut("finger hole", m.hole(p.FingerRadius, p.Middle.Y,
			r3.Vec{Y: -p.Middle.Y / 2, Z: fingerZ}, r3.Vec{Y: 1})).
		Cut("humidity side pocket", m.box(p.SidePocket, r3.Vec{
			X: -p.FingerRadius - p.SideWall - p.SidePocket.X,
			Y: -p.Middle.Y / 2,
			Z: fingerZ - p.SidePocket.Z/2,
		})).
		// The window is centered on sensorLen along y, not on its own side.
		Cut("humidity sensor window", m.box(
			r3.Vec{X: sensorLen, Y: p.SensorWindow, Z: p.SensorWindow},
			r3.Vec{X: -sensorLen, Y: -sensorLen / 2, Z: fingerZ - p.SensorWindow/2},
		)).
		Cut("top pocket", m.centeredBox(topPocket, topZ)).
		Cut("led window", m.centeredBox(p.LEDWindow, topZ-p.LEDWindow.Z))
	return m.build(pipe)
}

// FingerHoleModule builds the default finger hole housing and shows it in s.
func FingerHoleModule(s *cad.Session) error {
	sol, err := FingerHole(s, DefaultFingerHole())
	if err != nil {
		return err
	}
	return showFit(s, sol, FingerHoleDisplay)
}
