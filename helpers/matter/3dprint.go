// Package matter compensates part dimensions for printing material shrinkage.
package matter

import (
	"fmt"

	"github.com/ppglab/sdf"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{name: "PLA", shrink: 0.2e-2, pullShrink: .45} // 0.2% shrinkage
)

type ViscousMaterial struct {
	name string
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
	// pullShrink takes into account viscoelastic shrinkage.
	pullShrink float64
}

func (m ViscousMaterial) String() string { return m.name }

// Scale scales a 3D shape up so that it measures its nominal size once
// the printed part cools.
func (m ViscousMaterial) Scale(s sdf.SDF3) sdf.SDF3 {
	return sdf.ScaleUniform3D(s, m.ScaleFactor())
}

// ScaleFactor is the uniform scale applied by Scale.
func (m ViscousMaterial) ScaleFactor() float64 {
	return 1 / (1 - m.shrink)
}

// InternalDimScale returns the modelled size of an internal dimension
// (hole, pocket) with nominal size real.
func (m ViscousMaterial) InternalDimScale(real float64) (float64, error) {
	if real <= 0 {
		return 0, fmt.Errorf("matter: internal dimension %g must be positive", real)
	}
	return real*(m.shrink+1) + m.pullShrink, nil
}
