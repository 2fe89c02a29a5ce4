package render

import (
	"errors"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/ppglab/sdf/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera of a preview image. The scene is fitted
// inside a bi-unit cube centered at the origin before it is viewed.
type View struct {
	// what position (point) to look at
	Lookat r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye       r3.Vec
	Near, Far float64
	// Vertical field of view in degrees.
	Fovy float64
	// Output size in pixels.
	Width, Height int
}

// IsometricView looks at the origin from the (1,1,1) direction with z up.
var IsometricView = View{
	Up:     r3.Vec{Z: 1},
	Eye:    d3.Elem(2.4),
	Near:   1,
	Far:    10,
	Fovy:   30,
	Width:  768,
	Height: 432,
}

// PreviewMesh is one STL file drawn in a preview.
type PreviewMesh struct {
	STLPath string
	// Color components in [0,1].
	R, G, B float64
	// Transparency in percent, 0 is opaque.
	Transparency float64
}

const (
	previewSupersample = 2
	previewBackground  = "#FFF8E3"
)

// Preview renders the STL meshes to a PNG file at path. fit is the region
// of model space scaled to fill the view, usually the union of the meshes'
// bounding boxes.
func Preview(path string, meshes []PreviewMesh, fit r3.Box, view View) error {
	if len(meshes) == 0 {
		return errors.New("no meshes to preview")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return errors.New("preview size must be positive")
	}
	size := d3.Max(d3.Box(fit).Size())
	if size <= 0 || math.IsInf(size, 0) || math.IsNaN(size) {
		return errors.New("bad preview fit box")
	}
	center := d3.Box(fit).Center()
	// fit scene in a bi-unit cube centered at the origin
	fitMatrix := fauxgl.Translate(fauxgl.V(-center.X, -center.Y, -center.Z)).Scale(fauxgl.V(2/size, 2/size, 2/size))

	var (
		width  = view.Width * previewSupersample
		height = view.Height * previewSupersample
		eye    = fauxgl.V(view.Eye.X, view.Eye.Y, view.Eye.Z)
		lookat = fauxgl.V(view.Lookat.X, view.Lookat.Y, view.Lookat.Z)
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		bg     = fauxgl.HexColor(previewBackground)
	)
	context := fauxgl.NewContext(width, height)
	context.ClearColorBufferWith(bg)
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, lookat, up).Perspective(view.Fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	context.Shader = shader
	for _, m := range meshes {
		mesh, err := fauxgl.LoadSTL(m.STLPath)
		if err != nil {
			return err
		}
		mesh.Transform(fitMatrix)
		shader.ObjectColor = blendColor(m, bg)
		context.DrawMesh(mesh)
	}
	// downsample image for antialiasing
	image := context.Image()
	image = resize.Resize(uint(view.Width), uint(view.Height), image, resize.Bilinear)
	return fauxgl.SavePNG(path, image)
}

// blendColor mixes the mesh color toward the background by its
// transparency. The rasterizer has no alpha blending.
func blendColor(m PreviewMesh, bg fauxgl.Color) fauxgl.Color {
	a := 1 - clamp01(m.Transparency/100)
	return fauxgl.Color{
		R: bg.R + a*(clamp01(m.R)-bg.R),
		G: bg.G + a*(clamp01(m.G)-bg.G),
		B: bg.B + a*(clamp01(m.B)-bg.B),
		A: 1,
	}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
