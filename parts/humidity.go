package parts

import (
	"github.com/ppglab/sdf/cad"
	"gonum.org/v1/gonum/spatial/r3"
)

// HumiditySensorMountDisplay is how the humidity sensor mount is shown.
var HumiditySensorMountDisplay = Display{Name: "HumiditySensorMountModule", Transparency: 40, R: 0.2, G: 0.6, B: 0.8}

// HumiditySensorMountParams are the dimensions of the humidity sensor
// mount that slides into the finger hole housing's side pocket.
type HumiditySensorMountParams struct {
	// Base is the base plate, trimmed by BaseTrim on the -x side.
	Base     r3.Vec
	BaseTrim float64
	// Block is the mounting block on top of the base plate.
	Block r3.Vec
	// Pocket is cut from the bottom of the base plate, PocketShift
	// towards -x from the centre.
	Pocket      r3.Vec
	PocketShift float64
}

// DefaultHumiditySensorMount returns the production mount dimensions.
func DefaultHumiditySensorMount() HumiditySensorMountParams {
	return HumiditySensorMountParams{
		Base:        r3.Vec{X: 13, Y: 22, Z: 2},
		BaseTrim:    1,
		Block:       r3.Vec{X: 9.6, Y: 17.6, Z: 5},
		Pocket:      r3.Vec{X: 3, Y: 8, Z: 7},
		PocketShift: 1,
	}
}

// Validate checks all sizes are positive. The trim and shift may be zero.
func (p HumiditySensorMountParams) Validate() error {
	dims := sizeDims("Base", p.Base)
	dims = append(dims, sizeDims("Block", p.Block)...)
	dims = append(dims, sizeDims("Pocket", p.Pocket)...)
	if err := checkDims("humidity sensor mount", dims...); err != nil {
		return err
	}
	return checkNonNegative("humidity sensor mount",
		dim{"BaseTrim", p.BaseTrim},
		dim{"PocketShift", p.PocketShift},
	)
}

// HumiditySensorMount builds the humidity sensor mount.
func HumiditySensorMount(s *cad.Session, p HumiditySensorMountParams) (cad.Solid, error) {
	if err := p.Validate(); err != nil {
		return cad.Solid{}, err
	}
	m := maker{s: s}
	base := m.box(p.Base, r3.Vec{X: -(p.Base.X - p.BaseTrim) / 2, Y: -p.Base.Y / 2})
	pipe := cad.NewPipeline(base).
		Fuse("mount block", m.centeredBox(p.Block, p.Base.Z)).
		Cut("sensor pocket", m.box(p.Pocket, r3.Vec{X: -p.Pocket.X/2 - p.PocketShift, Y: -p.Pocket.Y / 2}))
	return m.build(pipe)
}

// HumiditySensorMountModule builds the default mount and shows it in s.
func HumiditySensorMountModule(s *cad.Session) error {
	sol, err := HumiditySensorMount(s, DefaultHumiditySensorMount())
	if err != nil {
		return err
	}
	return showFit(s, sol, HumiditySensorMountDisplay)
}
