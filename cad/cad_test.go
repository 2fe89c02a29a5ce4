package cad_test

import (
	"bytes"
	"errors"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppglab/sdf/cad"
	"github.com/ppglab/sdf/helpers/matter"
	"github.com/ppglab/sdf/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newSession(t *testing.T) (*cad.Session, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s, err := cad.NewSession(cad.SessionConfig{
		Document:  "test",
		Dir:       t.TempDir(),
		MeshCells: 24,
		Logger:    log.New(&buf, "", 0),
	})
	require.NoError(t, err)
	return s, &buf
}

func TestMakeBox(t *testing.T) {
	s, _ := newSession(t)
	box, err := s.MakeBox(2, 4, 6, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	bb := box.Bounds()
	assert.InDelta(t, 1, bb.Min.X, 1e-12)
	assert.InDelta(t, 3, bb.Max.X, 1e-12)
	assert.InDelta(t, 5, bb.Max.Y, 1e-12)
	assert.InDelta(t, 7, bb.Max.Z, 1e-12)
	assert.True(t, box.Contains(r3.Vec{X: 2, Y: 3, Z: 4}))
	assert.False(t, box.Contains(r3.Vec{X: 0.5, Y: 3, Z: 4}))

	for _, size := range [][3]float64{{0, 1, 1}, {1, -1, 1}, {1, 1, math.NaN()}} {
		_, err := s.MakeBox(size[0], size[1], size[2], r3.Vec{})
		var ke *cad.KernelError
		assert.ErrorAs(t, err, &ke, "size %v", size)
	}
}

func TestMakeCylinder(t *testing.T) {
	s, _ := newSession(t)
	origin := r3.Vec{X: 1, Y: 2, Z: 3}
	for _, test := range []struct {
		axis r3.Vec
	}{
		{axis: cad.Vertical},
		{axis: r3.Vec{Y: 1}},
		{axis: r3.Vec{X: -1}},
		{axis: r3.Vec{Z: -1}},
		{axis: r3.Vec{X: -0.25, Z: 0.97}},
	} {
		cyl, err := s.MakeCylinder(1, 10, origin, test.axis)
		require.NoError(t, err)
		dir := r3.Unit(test.axis)
		// Inside just above the base and just below the top.
		assert.True(t, cyl.Contains(r3.Add(origin, r3.Scale(0.1, dir))), "axis %v base", test.axis)
		assert.True(t, cyl.Contains(r3.Add(origin, r3.Scale(9.9, dir))), "axis %v top", test.axis)
		// Outside behind the base and past the top.
		assert.False(t, cyl.Contains(r3.Add(origin, r3.Scale(-0.1, dir))), "axis %v behind", test.axis)
		assert.False(t, cyl.Contains(r3.Add(origin, r3.Scale(10.1, dir))), "axis %v past", test.axis)
	}
	_, err := s.MakeCylinder(1, 10, origin, r3.Vec{})
	var ke *cad.KernelError
	require.ErrorAs(t, err, &ke)
	_, err = s.MakeCylinder(-1, 10, origin, cad.Vertical)
	require.ErrorAs(t, err, &ke)
	for _, bad := range [][2]float64{
		{math.Inf(1), 10}, {1, math.Inf(1)}, {1, math.Inf(-1)}, {math.NaN(), 10},
	} {
		_, err = s.MakeCylinder(bad[0], bad[1], origin, cad.Vertical)
		require.ErrorAs(t, err, &ke, "radius %g height %g", bad[0], bad[1])
	}
}

func TestMakeHole(t *testing.T) {
	plain, _ := newSession(t)
	hole, err := plain.MakeHole(1, 5, r3.Vec{}, cad.Vertical)
	require.NoError(t, err)
	assert.InDelta(t, 1, hole.Bounds().Max.X, 1e-9)

	material := matter.PLA
	s, err := cad.NewSession(cad.SessionConfig{
		Document: "pla",
		Dir:      t.TempDir(),
		Material: &material,
		Logger:   log.New(&bytes.Buffer{}, "", 0),
	})
	require.NoError(t, err)
	hole, err = s.MakeHole(1, 5, r3.Vec{}, cad.Vertical)
	require.NoError(t, err)
	d, err := material.InternalDimScale(2)
	require.NoError(t, err)
	r := d / 2 / material.ScaleFactor()
	assert.InDelta(t, r, hole.Bounds().Max.X, 1e-9)
	assert.InDelta(t, 5, hole.Bounds().Max.Z, 1e-9)
	// Export scaling brings the diameter to InternalDimScale.
	assert.InDelta(t, d, 2*material.Scale(hole.SDF()).Bounds().Max.X, 1e-9)

	var ke *cad.KernelError
	_, err = s.MakeHole(-1, 5, r3.Vec{}, cad.Vertical)
	assert.ErrorAs(t, err, &ke)
	_, err = s.MakeHole(math.NaN(), 5, r3.Vec{}, cad.Vertical)
	assert.ErrorAs(t, err, &ke)
}

func TestBooleansImmutable(t *testing.T) {
	s, _ := newSession(t)
	a, err := s.MakeBox(10, 10, 10, r3.Vec{})
	require.NoError(t, err)
	b, err := s.MakeBox(10, 10, 10, r3.Vec{X: 5})
	require.NoError(t, err)
	aBounds := a.Bounds()
	p := r3.Vec{X: 7, Y: 5, Z: 5}
	before := a.SDF().Evaluate(p)

	fused, err := a.Fuse(b)
	require.NoError(t, err)
	cut, err := a.Cut(b)
	require.NoError(t, err)
	rot, err := a.Rotate(r3.Vec{X: 5, Y: 5}, cad.Vertical, 45)
	require.NoError(t, err)

	assert.Equal(t, aBounds, a.Bounds())
	assert.Equal(t, before, a.SDF().Evaluate(p))
	assert.True(t, fused.Contains(r3.Vec{X: 12, Y: 5, Z: 5}))
	assert.False(t, cut.Contains(r3.Vec{X: 7, Y: 5, Z: 5}))
	assert.True(t, cut.Contains(r3.Vec{X: 2, Y: 5, Z: 5}))
	// The rotated corner pokes out along -y.
	assert.True(t, rot.Contains(r3.Vec{X: 5, Y: -1.5, Z: 5}))
	assert.False(t, a.Contains(r3.Vec{X: 5, Y: -1.5, Z: 5}))
}

func TestEmptySolid(t *testing.T) {
	s, _ := newSession(t)
	box, err := s.MakeBox(1, 1, 1, r3.Vec{})
	require.NoError(t, err)
	var empty cad.Solid
	_, err = empty.Fuse(box)
	assert.ErrorIs(t, err, cad.ErrEmptySolid)
	_, err = box.Cut(empty)
	assert.ErrorIs(t, err, cad.ErrEmptySolid)
	_, err = empty.Rotate(r3.Vec{}, cad.Vertical, 10)
	assert.ErrorIs(t, err, cad.ErrEmptySolid)
	_, err = cad.NewPipeline(empty).Build()
	assert.ErrorIs(t, err, cad.ErrEmptySolid)
	_, err = s.Show(empty, "x")
	assert.ErrorIs(t, err, cad.ErrEmptySolid)
}

func TestRotateZeroAxis(t *testing.T) {
	s, _ := newSession(t)
	box, err := s.MakeBox(1, 1, 1, r3.Vec{})
	require.NoError(t, err)
	_, err = box.Rotate(r3.Vec{}, r3.Vec{}, 30)
	var ke *cad.KernelError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "rotate", ke.Op)
	assert.NotEmpty(t, ke.Stack)
}

func TestPipeline(t *testing.T) {
	s, _ := newSession(t)
	base, err := s.MakeBox(10, 10, 10, r3.Vec{})
	require.NoError(t, err)
	hole, err := s.MakeCylinder(2, 10, r3.Vec{X: 5, Y: 5}, cad.Vertical)
	require.NoError(t, err)
	tab, err := s.MakeBox(2, 2, 2, r3.Vec{X: 10, Y: 4, Z: 4})
	require.NoError(t, err)

	p := cad.NewPipeline(base).
		Cut("hole", hole).
		Fuse("tab", tab).
		Rotate("turn", r3.Vec{X: 5, Y: 5}, cad.Vertical, 90)
	steps := p.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, "hole", steps[0].Label)
	assert.Equal(t, cad.StepCut, steps[0].Kind)
	assert.Equal(t, cad.StepFuse, steps[1].Kind)
	assert.Equal(t, cad.StepRotate, steps[2].Kind)

	trace, err := p.Trace()
	require.NoError(t, err)
	require.Len(t, trace, len(steps))
	assert.False(t, trace[0].Contains(r3.Vec{X: 5, Y: 5, Z: 5}), "hole cut")
	assert.False(t, trace[0].Contains(r3.Vec{X: 11, Y: 5, Z: 5}), "tab not yet fused")
	assert.True(t, trace[1].Contains(r3.Vec{X: 11, Y: 5, Z: 5}), "tab fused")
	// Tab rotated from +x to +y about the block center.
	assert.True(t, trace[2].Contains(r3.Vec{X: 5, Y: 11, Z: 5}), "tab rotated")
	assert.False(t, trace[2].Contains(r3.Vec{X: 11, Y: 5, Z: 5}))

	built, err := p.Build()
	require.NoError(t, err)
	for _, q := range []r3.Vec{{X: 5, Y: 11, Z: 5}, {X: 1, Y: 1, Z: 1}, {X: 5, Y: 5, Z: 5}, {X: 20}} {
		assert.Equal(t, trace[2].SDF().Evaluate(q), built.SDF().Evaluate(q), "point %v", q)
	}
	// Building again gives the same solid and leaves the base untouched.
	again, err := p.Build()
	require.NoError(t, err)
	assert.Equal(t, built.SDF().Evaluate(r3.Vec{X: 3, Y: 2, Z: 1}), again.SDF().Evaluate(r3.Vec{X: 3, Y: 2, Z: 1}))
	assert.True(t, base.Contains(r3.Vec{X: 5, Y: 5, Z: 5}))
}

func TestPipelineStepError(t *testing.T) {
	s, _ := newSession(t)
	base, err := s.MakeBox(1, 1, 1, r3.Vec{})
	require.NoError(t, err)
	_, err = cad.NewPipeline(base).Cut("nothing", cad.Solid{}).Build()
	require.ErrorIs(t, err, cad.ErrEmptySolid)
	assert.Contains(t, err.Error(), `"nothing"`)
}

func TestShow(t *testing.T) {
	s, _ := newSession(t)
	box, err := s.MakeBox(1, 1, 1, r3.Vec{})
	require.NoError(t, err)
	h, err := s.Show(box, "box")
	require.NoError(t, err)
	require.NoError(t, h.SetTransparency(40))
	require.NoError(t, h.SetColor(0.2, 0.6, 0.8))
	r, g, b := h.Color()
	assert.Equal(t, [3]float64{0.2, 0.6, 0.8}, [3]float64{r, g, b})
	assert.Equal(t, 40.0, h.Transparency())

	assert.Error(t, h.SetTransparency(101))
	assert.Error(t, h.SetColor(0, 2, 0))
	assert.Equal(t, 40.0, h.Transparency(), "failed set must not change value")

	_, err = s.Show(box, "box")
	assert.ErrorIs(t, err, cad.ErrDuplicateName)
	got, ok := s.Document().Object("box")
	require.True(t, ok)
	assert.Same(t, h, got)
	assert.Len(t, s.Document().Objects(), 1)
}

func TestNewSessionErrors(t *testing.T) {
	_, err := cad.NewSession(cad.SessionConfig{})
	assert.Error(t, err)
	_, err = cad.NewSession(cad.SessionConfig{Document: "x", MeshCells: 1})
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	material := matter.PLA
	s, err := cad.NewSession(cad.SessionConfig{
		Document:  "doc",
		Dir:       dir,
		MeshCells: 16,
		Material:  &material,
		Logger:    log.New(&buf, "", 0),
	})
	require.NoError(t, err)
	_, err = s.Save()
	assert.Error(t, err, "empty document")

	box, err := s.MakeBox(10, 10, 10, r3.Vec{})
	require.NoError(t, err)
	cyl, err := s.MakeCylinder(3, 10, r3.Vec{X: 20}, cad.Vertical)
	require.NoError(t, err)
	_, err = s.Show(box, "box")
	require.NoError(t, err)
	h, err := s.Show(cyl, "cyl")
	require.NoError(t, err)
	require.NoError(t, h.SetColor(1, 0, 0))
	s.ViewIsometric()
	s.ViewFit()

	written, err := s.Save()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "box.stl"),
		filepath.Join(dir, "cyl.stl"),
		filepath.Join(dir, "doc.png"),
	}, written)

	fp, err := os.Open(filepath.Join(dir, "box.stl"))
	require.NoError(t, err)
	defer fp.Close()
	model, err := render.ReadSTL(fp)
	require.NoError(t, err)
	require.NotEmpty(t, model)
	// Material compensation grows the part slightly.
	var maxX float64
	for _, tri := range model {
		for _, v := range tri.V {
			maxX = math.Max(maxX, v.X)
		}
	}
	assert.Greater(t, maxX, 10.0)
	assert.Contains(t, buf.String(), "box.stl")
}

func TestSaveWithoutView(t *testing.T) {
	s, _ := newSession(t)
	box, err := s.MakeBox(1, 1, 1, r3.Vec{})
	require.NoError(t, err)
	_, err = s.Show(box, "box")
	require.NoError(t, err)
	written, err := s.Save()
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, ".stl", filepath.Ext(written[0]))
}

func TestKernelErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := error(&cad.KernelError{Op: "fuse", Err: inner})
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "cad: fuse: boom", err.Error())
}

func TestImportSTL(t *testing.T) {
	s, buf := newSession(t)
	box, err := s.MakeBox(10, 10, 10, r3.Vec{})
	require.NoError(t, err)
	_, err = s.Show(box, "box")
	require.NoError(t, err)
	_, err = s.Save()
	require.NoError(t, err)

	imported, err := s.ImportSTL("box.stl")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "imported box.stl")
	assert.True(t, imported.Contains(r3.Vec{X: 5, Y: 5, Z: 5}))
	assert.True(t, imported.Contains(r3.Vec{X: 1, Y: 2, Z: 9}))
	assert.False(t, imported.Contains(r3.Vec{X: 15, Y: 5, Z: 5}))
	assert.False(t, imported.Contains(r3.Vec{X: 5, Y: 5, Z: -2}))

	bore, err := s.MakeCylinder(2, 20, r3.Vec{X: 5, Y: 5, Z: -5}, cad.Vertical)
	require.NoError(t, err)
	cut, err := imported.Cut(bore)
	require.NoError(t, err)
	assert.False(t, cut.Contains(r3.Vec{X: 5, Y: 5, Z: 5}))
	assert.True(t, cut.Contains(r3.Vec{X: 9, Y: 9, Z: 5}))

	_, err = s.ImportSTL("missing.stl")
	var kerr *cad.KernelError
	assert.ErrorAs(t, err, &kerr)
}
