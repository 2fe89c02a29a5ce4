package render

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer produces the triangles of a meshed model. ReadTriangles
// fills dst and returns the number of triangles written. It returns
// io.EOF once the model is exhausted.
type Renderer interface {
	ReadTriangles(dst []Triangle3) (int, error)
}

// Triangle3 is a 3D triangle. Vertices are ordered counter-clockwise
// when seen from outside the model.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle. Degenerate
// triangles return the zero vector.
func (t Triangle3) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// Area returns the area of the triangle.
func (t Triangle3) Area() float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0])))
}
