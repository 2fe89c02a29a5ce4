package parts

import (
	"github.com/ppglab/sdf/cad"
	"gonum.org/v1/gonum/spatial/r3"
)

// OpticalFilterMountDisplay is how the optical filter mount is shown.
var OpticalFilterMountDisplay = Display{Name: "opticalFilterMountModel", Transparency: 0, R: 0.2, G: 0.6, B: 0.8}

// OpticalFilterMountParams are the dimensions of the optical filter mount,
// a thin upright plate with a round filter window standing on a base plate.
type OpticalFilterMountParams struct {
	// Mount is the upright plate, centered on the origin in x and y.
	Mount r3.Vec
	// Plate is the base plate below z=0, shifted PlateOffsetY along y.
	Plate        r3.Vec
	PlateOffsetY float64
	HoleRadius   float64
	// HoleHeight is the height of the filter window axis above the base plate.
	HoleHeight float64
	// HoleStartY is where the window bore starts along y.
	HoleStartY float64
	// HoleOverlap is the extra length of the window bore beyond the mount thickness.
	HoleOverlap float64
}

// DefaultOpticalFilterMount returns the production filter mount dimensions.
func DefaultOpticalFilterMount() OpticalFilterMountParams {
	return OpticalFilterMountParams{
		Mount:        r3.Vec{X: 18 - 0.2, Y: 2 - 0.1, Z: 30 - 0.2},
		Plate:        r3.Vec{X: 50, Y: 60.5, Z: 2},
		PlateOffsetY: -13.75,
		HoleRadius:   5.2,
		HoleHeight:   15,
		HoleStartY:   -1,
		HoleOverlap:  0.2,
	}
}

// Validate checks the dimensions.
func (p OpticalFilterMountParams) Validate() error {
	dims := sizeDims("Mount", p.Mount)
	dims = append(dims, sizeDims("Plate", p.Plate)...)
	dims = append(dims,
		dim{"HoleRadius", p.HoleRadius},
		dim{"HoleHeight", p.HoleHeight},
		dim{"HoleOverlap", p.HoleOverlap},
	)
	if err := checkDims("optical filter mount", dims...); err != nil {
		return err
	}
	return checkFinite("optical filter mount",
		dim{"PlateOffsetY", p.PlateOffsetY},
		dim{"HoleStartY", p.HoleStartY},
	)
}

// OpticalFilterMount builds the optical filter mount.
func OpticalFilterMount(s *cad.Session, p OpticalFilterMountParams) (cad.Solid, error) {
	if err := p.Validate(); err != nil {
		return cad.Solid{}, err
	}
	m := maker{s: s}
	plate := m.box(p.Plate, r3.Vec{
		X: -p.Plate.X / 2,
		Y: -p.Plate.Y/2 + p.PlateOffsetY,
		Z: -p.Plate.Z,
	})
	hole := m.hole(p.HoleRadius, p.Mount.Y+p.HoleOverlap,
		r3.Vec{Y: p.HoleStartY, Z: p.Plate.Z + p.HoleHeight}, r3.Vec{Y: 1})
	pipe := cad.NewPipeline(plate).
		Fuse("filter mount", m.centeredBox(p.Mount, 0)).
		Cut("filter window", hole)
	return m.build(pipe)
}

// OpticalFilterMountModule builds the default filter mount and shows it in s.
func OpticalFilterMountModule(s *cad.Session) error {
	sol, err := OpticalFilterMount(s, DefaultOpticalFilterMount())
	if err != nil {
		return err
	}
	return showFit(s, sol, OpticalFilterMountDisplay)
}
