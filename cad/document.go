package cad

import (
	"fmt"
	"math"
)

// Document holds the solids registered for display in a session.
type Document struct {
	name    string
	objects []*DisplayHandle
}

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// Objects returns the displayed objects in the order they were shown.
func (d *Document) Objects() []*DisplayHandle {
	return append([]*DisplayHandle(nil), d.objects...)
}

// Object returns the displayed object with the given name.
func (d *Document) Object(name string) (*DisplayHandle, bool) {
	for _, h := range d.objects {
		if h.name == name {
			return h, true
		}
	}
	return nil, false
}

// DisplayHandle is a named solid shown in a document along with its
// display properties.
type DisplayHandle struct {
	name         string
	solid        Solid
	r, g, b      float64
	transparency float64
}

// Default display properties of a newly shown solid.
const (
	defaultGray         = 0.8
	defaultTransparency = 0
)

func (h *DisplayHandle) Name() string { return h.name }

func (h *DisplayHandle) Solid() Solid { return h.solid }

// Color returns the shape color components in [0,1].
func (h *DisplayHandle) Color() (r, g, b float64) { return h.r, h.g, h.b }

// Transparency returns the transparency in percent.
func (h *DisplayHandle) Transparency() float64 { return h.transparency }

// SetTransparency sets the transparency in percent, 0 being opaque.
func (h *DisplayHandle) SetTransparency(percent float64) error {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return fmt.Errorf("cad: %s: transparency %g outside [0, 100]", h.name, percent)
	}
	h.transparency = percent
	return nil
}

// SetColor sets the shape color. Components must be in [0,1].
func (h *DisplayHandle) SetColor(r, g, b float64) error {
	for _, c := range [3]float64{r, g, b} {
		if math.IsNaN(c) || c < 0 || c > 1 {
			return fmt.Errorf("cad: %s: color component %g outside [0, 1]", h.name, c)
		}
	}
	h.r, h.g, h.b = r, g, b
	return nil
}
