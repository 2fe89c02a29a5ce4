package emitter

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const ringSegments = 90

var (
	ringColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	ledColor  = color.RGBA{R: 204, G: 204, B: 102, A: 255}
	pinColor  = color.RGBA{R: 51, G: 153, B: 204, A: 255}
	beamColor = color.RGBA{R: 255, G: 77, B: 77, A: 255}
)

// LayoutPlot draws a top view (XY plane) of the emitter ring: the
// projected ring, emitter centres, pins and the projected beam of each
// emitter drawn one ring radius long.
func LayoutPlot(c Config, placements []Placement) (*plot.Plot, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(placements) == 0 {
		return nil, fmt.Errorf("%w: no placements to plot", ErrInvalidConfig)
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Emitter layout, %d at %.1f° tilt", c.Count, c.TiltAngleDeg)
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "y (mm)"

	// The tilted ring projects to a circle of radius R·cos(t).
	r := c.RingRadius * math.Cos(c.TiltAngleDeg*math.Pi/180)
	ringPts := make(plotter.XYs, ringSegments+1)
	for i := range ringPts {
		s, co := math.Sincos(2 * math.Pi * float64(i) / ringSegments)
		ringPts[i] = plotter.XY{X: r * co, Y: r * s}
	}
	ring, err := plotter.NewLine(ringPts)
	if err != nil {
		return nil, err
	}
	ring.Color = ringColor
	ring.Width = vg.Points(1)
	ring.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(ring)
	p.Legend.Add("ring", ring)

	leds := make(plotter.XYs, len(placements))
	pins := make(plotter.XYs, 0, 2*len(placements))
	labels := make([]string, len(placements))
	for i, pl := range placements {
		leds[i] = plotter.XY{X: pl.Position.X, Y: pl.Position.Y}
		labels[i] = fmt.Sprintf(" LED%d", i)
		pins = append(pins,
			plotter.XY{X: pl.PinA.X, Y: pl.PinA.Y},
			plotter.XY{X: pl.PinB.X, Y: pl.PinB.Y},
		)

		tip := plotter.XY{
			X: pl.Position.X + c.RingRadius*pl.BeamDirection.X,
			Y: pl.Position.Y + c.RingRadius*pl.BeamDirection.Y,
		}
		beam, err := plotter.NewLine(plotter.XYs{leds[i], tip})
		if err != nil {
			return nil, err
		}
		beam.Color = beamColor
		beam.Width = vg.Points(1)
		p.Add(beam)
		if i == 0 {
			p.Legend.Add("beam", beam)
		}
	}

	ledScatter, err := plotter.NewScatter(leds)
	if err != nil {
		return nil, err
	}
	ledScatter.GlyphStyle.Shape = draw.CircleGlyph{}
	ledScatter.GlyphStyle.Color = ledColor
	ledScatter.GlyphStyle.Radius = vg.Points(5)

	pinScatter, err := plotter.NewScatter(pins)
	if err != nil {
		return nil, err
	}
	pinScatter.GlyphStyle.Shape = draw.CrossGlyph{}
	pinScatter.GlyphStyle.Color = pinColor
	pinScatter.GlyphStyle.Radius = vg.Points(3)

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: leds, Labels: labels})
	if err != nil {
		return nil, err
	}
	p.Add(ledScatter, pinScatter, names)
	p.Legend.Add("LED", ledScatter)
	p.Legend.Add("pin", pinScatter)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	// Equal axes so the ring reads as a circle.
	lim := c.RingRadius * 1.5
	p.X.Min, p.X.Max = -lim, lim
	p.Y.Min, p.Y.Max = -lim, lim
	return p, nil
}

// SaveLayout writes the layout plot of placements to path. The image
// format follows the file extension (png, svg, pdf, ...).
func SaveLayout(path string, c Config, placements []Placement) error {
	p, err := LayoutPlot(c, placements)
	if err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save layout plot: %w", err)
	}
	return nil
}
