package parts

import (
	"math"

	"github.com/ppglab/sdf/cad"
	"gonum.org/v1/gonum/spatial/r3"
)

// PhotodiodeHousingDisplay is how the photodiode housing is shown.
var PhotodiodeHousingDisplay = Display{Name: "photodiodeHousingModule", Transparency: 40, R: 0.2, G: 0.6, B: 0.8}

// PhotodiodeHousingParams are the dimensions of the photodiode housing, an
// open box clipped under the finger hole housing with a cylindrical
// photodiode seat in its center.
type PhotodiodeHousingParams struct {
	Outer r3.Vec
	// Pocket is open at the top of the housing.
	Pocket      r3.Vec
	MountRadius float64
	MountHeight float64
	// HoleRadius and HoleDepth describe the photodiode seat cut from the
	// top of the mount cylinder.
	HoleRadius float64
	HoleDepth  float64
	PinRadius  float64
	// PinOffset is the distance of each pin hole from the center along y.
	PinOffset float64
	// Bump is the orientation notch cut into the mount cylinder wall at
	// BumpAngleDeg around z: depth (radial), width and height.
	Bump         r3.Vec
	BumpAngleDeg float64
}

// DefaultPhotodiodeHousing returns the production photodiode housing dimensions.
func DefaultPhotodiodeHousing() PhotodiodeHousingParams {
	const wall = 1.7
	return PhotodiodeHousingParams{
		Outer:        r3.Vec{X: 34, Y: 50, Z: 14.5},
		Pocket:       r3.Vec{X: 34 - 2*wall, Y: 50 - 2*wall, Z: 12.5},
		MountRadius:  6,
		MountHeight:  12.5,
		HoleRadius:   5.1,
		HoleDepth:    4.5,
		PinRadius:    0.6,
		PinOffset:    2.54,
		Bump:         r3.Vec{X: 2, Y: 1.5, Z: 4.5},
		BumpAngleDeg: 45,
	}
}

// Validate checks the dimensions.
func (p PhotodiodeHousingParams) Validate() error {
	dims := sizeDims("Outer", p.Outer)
	dims = append(dims, sizeDims("Pocket", p.Pocket)...)
	dims = append(dims, sizeDims("Bump", p.Bump)...)
	dims = append(dims,
		dim{"MountRadius", p.MountRadius},
		dim{"MountHeight", p.MountHeight},
		dim{"HoleRadius", p.HoleRadius},
		dim{"HoleDepth", p.HoleDepth},
		dim{"PinRadius", p.PinRadius},
		dim{"PinOffset", p.PinOffset},
		dim{"floor thickness", p.Outer.Z - p.Pocket.Z},
		dim{"pin depth", p.Outer.Z - p.HoleDepth},
	)
	if err := checkDims("photodiode housing", dims...); err != nil {
		return err
	}
	return checkFinite("photodiode housing", dim{"BumpAngleDeg", p.BumpAngleDeg})
}

// FloorZ returns the height of the pocket floor.
func (p PhotodiodeHousingParams) FloorZ() float64 { return p.Outer.Z - p.Pocket.Z }

// PhotodiodeHousing builds the photodiode housing.
func PhotodiodeHousing(s *cad.Session, p PhotodiodeHousingParams) (cad.Solid, error) {
	if err := p.Validate(); err != nil {
		return cad.Solid{}, err
	}
	m := maker{s: s}
	var (
		floor      = p.FloorZ()
		mountTop   = floor + p.MountHeight
		pinDepth   = p.Outer.Z - p.HoleDepth
		sin, cos   = math.Sincos(p.BumpAngleDeg * math.Pi / 180)
		bumpZ      = mountTop - p.Bump.Z
		bumpCenter = r3.Vec{X: p.MountRadius * cos, Y: p.MountRadius * sin, Z: bumpZ}
	)
	// The notch cutter is built axis aligned on the wall point then turned
	// about its own center so its depth runs radially.
	bumpCutter := m.box(p.Bump, r3.Vec{
		X: bumpCenter.X - p.Bump.X/2,
		Y: bumpCenter.Y - p.Bump.Y/2,
		Z: bumpZ,
	})
	if m.err == nil {
		bumpCutter, m.err = bumpCutter.Rotate(bumpCenter, cad.Vertical, p.BumpAngleDeg)
	}
	pipe := cad.NewPipeline(m.centeredBox(p.Outer, 0)).
		Cut("pocket", m.centeredBox(p.Pocket, floor)).
		Fuse("mount cylinder", m.cylinder(p.MountRadius, p.MountHeight, r3.Vec{Z: floor}, cad.Vertical)).
		Cut("photodiode hole", m.hole(p.HoleRadius, p.HoleDepth, r3.Vec{Z: mountTop - p.HoleDepth}, cad.Vertical)).
		Cut("pin hole 1", m.hole(p.PinRadius, pinDepth, r3.Vec{Y: p.PinOffset}, cad.Vertical)).
		Cut("pin hole 2", m.hole(p.PinRadius, pinDepth, r3.Vec{Y: -p.PinOffset}, cad.Vertical)).
		Cut("bump notch", bumpCutter)
	return m.build(pipe)
}

// PhotodiodeHousingModule builds the default photodiode housing and shows it in s.
func PhotodiodeHousingModule(s *cad.Session) error {
	sol, err := PhotodiodeHousing(s, DefaultPhotodiodeHousing())
	if err != nil {
		return err
	}
	return showFit(s, sol, PhotodiodeHousingDisplay)
}
