package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Marching tetrahedra. Each leaf cube is split into six tetrahedra
// sharing the cube diagonal 0-6. Every cube uses the same split so the
// face diagonals of neighbouring cubes match and the mesh has no cracks.
//
// Corner numbering:
//
//	  7-------6
//	 /|      /|
//	4-------5 |
//	| 3-----|-2
//	|/      |/
//	0-------1
const maxTrianglesPerCube = 12 // 6 tetrahedra, at most 2 triangles each.

var cubeTetrahedra = [6][4]int{
	{0, 1, 2, 6},
	{0, 2, 3, 6},
	{0, 3, 7, 6},
	{0, 7, 4, 6},
	{0, 4, 5, 6},
	{0, 5, 1, 6},
}

// minTriangleArea below which generated triangles are dropped.
const minTriangleArea = 1e-18

// cubeToTriangles polygonises the iso surface within a cube and writes the
// triangles to dst, which must have room for maxTrianglesPerCube triangles.
func cubeToTriangles(dst []Triangle3, p [8]r3.Vec, v [8]float64, iso float64) int {
	n := 0
	for _, tet := range cubeTetrahedra {
		n += tetraToTriangles(dst[n:],
			[4]r3.Vec{p[tet[0]], p[tet[1]], p[tet[2]], p[tet[3]]},
			[4]float64{v[tet[0]], v[tet[1]], v[tet[2]], v[tet[3]]},
			iso,
		)
	}
	return n
}

func tetraToTriangles(dst []Triangle3, p [4]r3.Vec, v [4]float64, iso float64) int {
	var (
		in, out   [4]int
		nin, nout int
	)
	for i := range v {
		if v[i] < iso {
			in[nin] = i
			nin++
		} else {
			out[nout] = i
			nout++
		}
	}
	if nin == 0 || nout == 0 {
		return 0
	}
	edge := func(a, b int) r3.Vec {
		return interpolate(p[a], p[b], v[a], v[b], iso)
	}
	// Points from material to empty space; triangles are wound to face it.
	outward := r3.Sub(centroid(p, out[:nout]), centroid(p, in[:nin]))
	switch nin {
	case 1, 3:
		lone, others := in[0], out[:3]
		if nin == 3 {
			lone, others = out[0], in[:3]
		}
		return emitTriangle(dst, edge(lone, others[0]), edge(lone, others[1]), edge(lone, others[2]), outward)
	default:
		// Two vertices each side: the cut is a quadrilateral.
		a, b, c, d := in[0], in[1], out[0], out[1]
		pac, pbc, pbd, pad := edge(a, c), edge(b, c), edge(b, d), edge(a, d)
		n := emitTriangle(dst, pac, pbc, pbd, outward)
		n += emitTriangle(dst[n:], pac, pbd, pad, outward)
		return n
	}
}

func emitTriangle(dst []Triangle3, a, b, c, outward r3.Vec) int {
	t := Triangle3{V: [3]r3.Vec{a, b, c}}
	if t.Area() < minTriangleArea {
		return 0
	}
	if r3.Dot(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)), outward) < 0 {
		t.V[1], t.V[2] = t.V[2], t.V[1]
	}
	dst[0] = t
	return 1
}

// interpolate returns the point between p1 and p2 where the linearly
// interpolated distance equals iso.
func interpolate(p1, p2 r3.Vec, v1, v2, iso float64) r3.Vec {
	dv := v2 - v1
	if math.Abs(dv) < 1e-12 {
		return r3.Scale(0.5, r3.Add(p1, p2))
	}
	t := (iso - v1) / dv
	return r3.Add(p1, r3.Scale(t, r3.Sub(p2, p1)))
}

func centroid(p [4]r3.Vec, idx []int) r3.Vec {
	var c r3.Vec
	for _, i := range idx {
		c = r3.Add(c, p[i])
	}
	return r3.Scale(1/float64(len(idx)), c)
}
