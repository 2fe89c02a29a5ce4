// Package cad is a session handle over the SDF kernel for building parts
// from boxes and cylinders with boolean operations.
//
// Every construction goes through an explicit *Session which owns one
// Document. Solids are immutable values; a Pipeline records an ordered
// list of boolean operations and folds them over a base solid.
package cad

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ppglab/sdf"
	"github.com/ppglab/sdf/form3"
	"github.com/ppglab/sdf/helpers/matter"
	"github.com/ppglab/sdf/helpers/meshsdf"
	"github.com/ppglab/sdf/internal/d3"
	"github.com/ppglab/sdf/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vertical is the default cylinder axis.
var Vertical = r3.Vec{Z: 1}

// DefaultMeshCells is the octree resolution used by Save when
// SessionConfig.MeshCells is zero.
const DefaultMeshCells = 200

// SessionConfig configures a Session.
type SessionConfig struct {
	// Document names the session's document and its preview image.
	Document string
	// Dir is the output directory of Save. Defaults to the working directory.
	Dir string
	// MeshCells is the number of octree cells along the longest axis of
	// each exported solid.
	MeshCells int
	// Material, if not nil, scales exported solids to compensate for
	// print shrinkage.
	Material *matter.ViscousMaterial
	// Logger receives progress messages. Defaults to log.Default().
	Logger *log.Logger
}

// Session is an explicit handle to the geometry kernel and its document.
type Session struct {
	cfg     SessionConfig
	log     *log.Logger
	doc     *Document
	view    *render.View
	fitView bool
}

// NewSession creates a session with a new empty document.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Document == "" {
		return nil, errors.New("cad: empty document name")
	}
	if cfg.MeshCells == 0 {
		cfg.MeshCells = DefaultMeshCells
	} else if cfg.MeshCells < 2 {
		return nil, fmt.Errorf("cad: mesh cells %d must be at least 2", cfg.MeshCells)
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	lg := cfg.Logger
	if lg == nil {
		lg = log.Default()
	}
	return &Session{
		cfg: cfg,
		log: lg,
		doc: &Document{name: cfg.Document},
	}, nil
}

// Logger returns the session's logger.
func (s *Session) Logger() *log.Logger { return s.log }

// Document returns the session's document.
func (s *Session) Document() *Document { return s.doc }

// MakeBox returns an axis aligned box of the given width (x), length (y)
// and height (z) with its minimum corner at origin.
func (s *Session) MakeBox(width, length, height float64, origin r3.Vec) (Solid, error) {
	size := r3.Vec{X: width, Y: length, Z: height}
	if !d3.IsFinite(size) || !d3.IsFinite(origin) {
		return Solid{}, &KernelError{Op: "makeBox", Err: fmt.Errorf("non finite box %v at %v", size, origin)}
	}
	box, err := form3.Box(size, 0)
	if err != nil {
		return Solid{}, &KernelError{Op: "makeBox", Err: err}
	}
	center := r3.Add(origin, r3.Scale(0.5, size))
	return Solid{s: sdf.Transform3D(box, sdf.Translate3D(center))}, nil
}

// MakeCylinder returns a cylinder whose base disc is centered on origin
// and which extends height along axis.
func (s *Session) MakeCylinder(radius, height float64, origin, axis r3.Vec) (sol Solid, err error) {
	if !d3.IsFinite(origin) || !d3.IsFinite(axis) || !d3.IsFinite(r3.Vec{X: radius, Y: height}) {
		return Solid{}, &KernelError{Op: "makeCylinder", Err: errors.New("non finite cylinder")}
	}
	if r3.Norm(axis) == 0 {
		return Solid{}, &KernelError{Op: "makeCylinder", Err: errors.New("zero cylinder axis")}
	}
	cyl, err := form3.Cylinder(height, radius, 0)
	if err != nil {
		return Solid{}, &KernelError{Op: "makeCylinder", Err: err}
	}
	defer recoverKernel("makeCylinder", &err)
	// Base at the origin, rotated onto axis then moved to origin.
	m := sdf.Translate3D(origin).
		Mul(sdf.RotateToVector(Vertical, axis)).
		Mul(sdf.Translate3D(r3.Vec{Z: height / 2}))
	return Solid{s: sdf.Transform3D(cyl, m)}, nil
}

// MakeHole returns a cylinder meant to be cut from a solid. With no
// material configured it equals MakeCylinder. Otherwise the diameter is
// widened with Material.InternalDimScale and divided by the export scale
// so that the hole exported by Save measures InternalDimScale(2*radius).
func (s *Session) MakeHole(radius, depth float64, origin, axis r3.Vec) (Solid, error) {
	mat := s.cfg.Material
	if mat == nil {
		return s.MakeCylinder(radius, depth, origin, axis)
	}
	d, err := mat.InternalDimScale(2 * radius)
	if err != nil {
		return Solid{}, &KernelError{Op: "makeHole", Err: err}
	}
	return s.MakeCylinder(d/2/mat.ScaleFactor(), depth, origin, axis)
}

// ImportSTL loads a closed binary STL mesh as a solid so it can be fused
// with or cut from modelled geometry. Relative paths are resolved
// against the session directory.
func (s *Session) ImportSTL(path string) (Solid, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.cfg.Dir, path)
	}
	m, err := meshsdf.Load(path)
	if err != nil {
		return Solid{}, &KernelError{Op: "importSTL", Err: err}
	}
	s.log.Printf("imported %s (%d faces)", filepath.Base(path), m.Faces())
	return Solid{s: m}, nil
}

// Show registers sol in the document under name and returns its display
// handle. Names must be unique within a document.
func (s *Session) Show(sol Solid, name string) (*DisplayHandle, error) {
	if sol.IsEmpty() {
		return nil, ErrEmptySolid
	}
	if name == "" {
		return nil, errors.New("cad: empty display name")
	}
	if _, ok := s.doc.Object(name); ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	h := &DisplayHandle{
		name:         name,
		solid:        sol,
		r:            defaultGray,
		g:            defaultGray,
		b:            defaultGray,
		transparency: defaultTransparency,
	}
	s.doc.objects = append(s.doc.objects, h)
	return h, nil
}

// ViewIsometric requests an isometric preview of the document on Save.
func (s *Session) ViewIsometric() {
	v := render.IsometricView
	s.view = &v
}

// ViewFit requests the preview be scaled to fit all displayed objects.
func (s *Session) ViewFit() {
	s.fitView = true
}

// Save writes a binary STL file named after every displayed object to the
// output directory and, if a view was requested, a PNG preview named after
// the document. It returns the paths written.
func (s *Session) Save() ([]string, error) {
	if len(s.doc.objects) == 0 {
		return nil, fmt.Errorf("cad: document %q has no displayed objects", s.doc.name)
	}
	if err := os.MkdirAll(s.cfg.Dir, 0o777); err != nil {
		return nil, err
	}
	var (
		written []string
		meshes  []render.PreviewMesh
		scene   d3.Box
	)
	for i, h := range s.doc.objects {
		model := h.solid.s
		if s.cfg.Material != nil {
			model = s.cfg.Material.Scale(model)
		}
		bb := d3.Box(model.Bounds())
		if i == 0 {
			scene = bb
		} else {
			scene = scene.Extend(bb)
		}
		path := filepath.Join(s.cfg.Dir, h.name+".stl")
		n, err := s.createSTL(path, model)
		if err != nil {
			return written, err
		}
		written = append(written, path)
		if n == 0 {
			s.log.Printf("warning: %s meshed to zero triangles", h.name)
			continue
		}
		s.log.Printf("wrote %s (%d triangles)", path, n)
		meshes = append(meshes, render.PreviewMesh{
			STLPath:      path,
			R:            h.r,
			G:            h.g,
			B:            h.b,
			Transparency: h.transparency,
		})
	}
	if s.view == nil && !s.fitView {
		return written, nil
	}
	if len(meshes) == 0 {
		s.log.Printf("warning: nothing to preview in %s", s.doc.name)
		return written, nil
	}
	view := render.IsometricView
	if s.view != nil {
		view = *s.view
	}
	fit := scene
	if !s.fitView {
		// Keep the model origin at the center of the view.
		m := d3.Max(d3.MaxElem(d3.AbsElem(scene.Min), d3.AbsElem(scene.Max)))
		fit = d3.Box{Min: d3.Elem(-m), Max: d3.Elem(m)}
	}
	png := filepath.Join(s.cfg.Dir, s.doc.name+".png")
	if err := render.Preview(png, meshes, r3.Box(fit), view); err != nil {
		return written, fmt.Errorf("cad: preview %s: %w", s.doc.name, err)
	}
	s.log.Printf("wrote %s", png)
	return append(written, png), nil
}

func (s *Session) createSTL(path string, model sdf.SDF3) (n int, err error) {
	defer recoverKernel("mesh", &err)
	return render.CreateSTL(path, render.NewOctreeRenderer(model, s.cfg.MeshCells))
}
