package d3

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestTransformInv(t *testing.T) {
	const tol = 1e-12
	rot := r3.NewRotation(0.7, r3.Vec{X: 1, Y: 2, Z: 3})
	tf := ComposeTransform(r3.Vec{X: 1, Y: -2, Z: 5}, r3.Vec{X: 2, Y: 2, Z: 2}, rot)
	if got := tf.Mul(tf.Inv()); !got.equals(Transform{}, tol) {
		t.Errorf("t*inv(t) not identity: %+v", got)
	}
	if got := tf.Inv().Mul(tf); !got.equals(Transform{}, tol) {
		t.Errorf("inv(t)*t not identity: %+v", got)
	}
	if det := tf.Det(); math.Abs(det-8) > tol {
		t.Errorf("determinant %g, want 8", det)
	}
	if inv := (Transform{}).Inv(); inv != (Transform{}) {
		t.Error("identity inverse is not identity")
	}
	singular := ComposeTransform(r3.Vec{}, r3.Vec{X: 1, Z: 1}, r3.Rotation{})
	if !singular.Inv().equals(zeroTransform, tol) {
		t.Error("singular inverse is not the zero transform")
	}
}

func TestTransformComposition(t *testing.T) {
	const tol = 1e-12
	move := Transform{}.Translate(r3.Vec{X: 3})
	turn := ComposeTransform(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.NewRotation(math.Pi/2, r3.Vec{Z: 1}))
	// Rotation applied first, translation second.
	got := move.Mul(turn).Transform(r3.Vec{X: 1})
	want := r3.Vec{X: 3, Y: 1}
	if !EqualWithin(got, want, tol) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTransformBox(t *testing.T) {
	const tol = 1e-12
	b := NewBox(r3.Vec{}, r3.Vec{X: 2, Y: 4, Z: 6})
	turn := ComposeTransform(r3.Vec{Z: 10}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.NewRotation(math.Pi/2, r3.Vec{Z: 1}))
	got := TransformBox(turn, b)
	want := Box{Min: r3.Vec{X: -2, Y: -1, Z: 7}, Max: r3.Vec{X: 2, Y: 1, Z: 13}}
	if !got.Equals(want, tol) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBox(t *testing.T) {
	a := Box{Max: r3.Vec{X: 2, Y: 2, Z: 2}}
	b := Box{Min: r3.Vec{X: 1, Y: 1, Z: 1}, Max: r3.Vec{X: 3, Y: 3, Z: 3}}
	if moved := b.Translate(r3.Vec{X: 10}); moved.Min.X != 11 || moved.Max.X != 13 {
		t.Errorf("translate got %v", moved)
	}
	if e := a.Extend(b); !e.Equals(Box{Max: r3.Vec{X: 3, Y: 3, Z: 3}}, 0) {
		t.Errorf("extend got %v", e)
	}
	if !a.Contains(r3.Vec{X: 1, Y: 1, Z: 1}) || a.Contains(r3.Vec{X: -1}) {
		t.Error("contains gave wrong result")
	}
	if n := len(a.Vertices()); n != 8 {
		t.Errorf("got %d vertices", n)
	}
	s := a.ScaleAboutCenter(2)
	if !s.Equals(Box{Min: r3.Vec{X: -1, Y: -1, Z: -1}, Max: r3.Vec{X: 3, Y: 3, Z: 3}}, 1e-12) {
		t.Errorf("scaled box %v", s)
	}
}

// equals tests the equality of the Transforms to within a tolerance.
func (t Transform) equals(b Transform, tolerance float64) bool {
	return math.Abs(t.d00-b.d00) < tolerance &&
		math.Abs(t.x01-b.x01) < tolerance &&
		math.Abs(t.x02-b.x02) < tolerance &&
		math.Abs(t.x03-b.x03) < tolerance &&
		math.Abs(t.x10-b.x10) < tolerance &&
		math.Abs(t.d11-b.d11) < tolerance &&
		math.Abs(t.x12-b.x12) < tolerance &&
		math.Abs(t.x13-b.x13) < tolerance &&
		math.Abs(t.x20-b.x20) < tolerance &&
		math.Abs(t.x21-b.x21) < tolerance &&
		math.Abs(t.d22-b.d22) < tolerance &&
		math.Abs(t.x23-b.x23) < tolerance &&
		math.Abs(t.x30-b.x30) < tolerance &&
		math.Abs(t.x31-b.x31) < tolerance &&
		math.Abs(t.x32-b.x32) < tolerance &&
		math.Abs(t.d33-b.d33) < tolerance
}
