// Package meshsdf builds signed distance functions from closed triangle
// meshes such as STL files.
//
// The sign of the distance is resolved with angle weighted pseudo normals
// so the mesh must be closed and consistently oriented with normals
// pointing outwards.
package meshsdf

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/ppglab/sdf/internal/d3"
	"github.com/ppglab/sdf/render"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is the signed distance function of a triangle mesh. It is not safe
// for concurrent use.
type SDF3 struct {
	tree *kdtree.Tree
	m    *mesh
}

// Load reads a binary STL file and returns its signed distance function.
// Stored facet normals are ignored.
func Load(path string) (*SDF3, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	model, err := render.ReadSTL(fp)
	if err != nil && !errors.Is(err, render.ErrNormalMismatch) {
		return nil, fmt.Errorf("meshsdf: %s: %w", path, err)
	}
	return New(model, 0)
}

// New returns the signed distance function of a closed mesh. Vertices
// closer than vertexTol are merged. If vertexTol is zero it is derived
// from the shortest triangle edge.
func New(model []render.Triangle3, vertexTol float64) (*SDF3, error) {
	m, err := newMesh(model, vertexTol)
	if err != nil {
		return nil, err
	}
	pts := make(centroids, len(m.faces))
	for i, f := range m.faces {
		pts[i] = centroid{p: f.c, face: i}
	}
	return &SDF3{tree: kdtree.New(pts, false), m: m}, nil
}

// Evaluate returns the signed distance from p to the mesh surface.
func (s *SDF3) Evaluate(p r3.Vec) float64 {
	q := centroid{p: p, face: -1}
	near, _ := s.tree.Nearest(q)
	best := s.m.closest(near.(centroid).face, p)
	// Any face closer than best has its centroid within reach of the
	// closest point on it.
	r := math.Sqrt(best.d2) + s.m.reach
	keep := kdtree.NewDistKeeper(r * r)
	s.tree.NearestSet(keep, q)
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		if h := s.m.closest(c.Comparable.(centroid).face, p); h.d2 < best.d2 {
			best = h
		}
	}
	sign := r3.Dot(s.m.pseudoNormal(best), r3.Sub(p, best.point))
	return math.Copysign(math.Sqrt(best.d2), sign)
}

// Bounds returns the bounding box of the mesh vertices.
func (s *SDF3) Bounds() r3.Box { return r3.Box(s.m.bb) }

// Faces returns the number of non degenerate triangles in the mesh.
func (s *SDF3) Faces() int { return len(s.m.faces) }

type face struct {
	v [3]int
	n r3.Vec // unit normal
	c r3.Vec // centroid
}

type mesh struct {
	verts []r3.Vec
	// vertN are vertex pseudo normals weighted by the incident angle
	// of each face.
	vertN []r3.Vec
	// edgeN are edge pseudo normals keyed by vertex indices, lower first.
	edgeN map[[2]int]r3.Vec
	faces []face
	bb    d3.Box
	// reach is the largest distance from a face centroid to its vertices.
	reach float64
}

func newMesh(model []render.Triangle3, tol float64) (*mesh, error) {
	if len(model) == 0 {
		return nil, errors.New("meshsdf: empty mesh")
	}
	if tol < 0 || math.IsNaN(tol) {
		return nil, fmt.Errorf("meshsdf: bad vertex tolerance %g", tol)
	}
	minEdge2 := math.MaxFloat64
	bb := d3.Box{Min: model[0].V[0], Max: model[0].V[0]}
	for _, t := range model {
		for j, v := range t.V {
			if !d3.IsFinite(v) {
				return nil, fmt.Errorf("meshsdf: non finite vertex %v", v)
			}
			bb.Min = d3.MinElem(bb.Min, v)
			bb.Max = d3.MaxElem(bb.Max, v)
			if e2 := r3.Norm2(r3.Sub(t.V[(j+1)%3], v)); e2 > 0 {
				minEdge2 = math.Min(minEdge2, e2)
			}
		}
	}
	if tol == 0 {
		tol = math.Sqrt(minEdge2) / 256
	}
	if d3.Max(d3.MaxElem(d3.AbsElem(bb.Min), d3.AbsElem(bb.Max)))/tol > math.MaxInt64/2 {
		return nil, fmt.Errorf("meshsdf: vertex tolerance %g too small for model size", tol)
	}

	m := &mesh{bb: bb, edgeN: make(map[[2]int]r3.Vec)}
	index := make(map[[3]int64]int)
	vertex := func(v r3.Vec) int {
		key := [3]int64{
			int64(math.Round(v.X / tol)),
			int64(math.Round(v.Y / tol)),
			int64(math.Round(v.Z / tol)),
		}
		i, ok := index[key]
		if !ok {
			i = len(m.verts)
			index[key] = i
			m.verts = append(m.verts, v)
			m.vertN = append(m.vertN, r3.Vec{})
		}
		return i
	}
	for _, t := range model {
		n := t.Normal()
		if n == (r3.Vec{}) {
			continue
		}
		f := face{n: n, c: r3.Scale(1.0/3, r3.Add(r3.Add(t.V[0], t.V[1]), t.V[2]))}
		for j, v := range t.V {
			f.v[j] = vertex(v)
		}
		if f.v[0] == f.v[1] || f.v[1] == f.v[2] || f.v[2] == f.v[0] {
			// Collapsed by vertex merging.
			continue
		}
		for j, v := range t.V {
			e1 := r3.Sub(t.V[(j+1)%3], v)
			e2 := r3.Sub(t.V[(j+2)%3], v)
			angle := math.Acos(math.Max(-1, math.Min(1, r3.Cos(e1, e2))))
			m.vertN[f.v[j]] = r3.Add(m.vertN[f.v[j]], r3.Scale(angle, n))
			m.reach = math.Max(m.reach, r3.Norm(r3.Sub(v, f.c)))
		}
		for j := range f.v {
			k := edgeKey(f.v[j], f.v[(j+1)%3])
			m.edgeN[k] = r3.Add(m.edgeN[k], n)
		}
		m.faces = append(m.faces, f)
	}
	if len(m.faces) == 0 {
		return nil, errors.New("meshsdf: all triangles degenerate")
	}
	return m, nil
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// feature is the part of a triangle nearest to a point.
type feature int

const (
	vertex0 feature = iota
	vertex1
	vertex2
	edge01
	edge12
	edge20
	faceInterior
)

type hit struct {
	face  int
	point r3.Vec
	d2    float64
	feat  feature
}

func (m *mesh) closest(fi int, p r3.Vec) hit {
	f := &m.faces[fi]
	pt, feat := closestOnTriangle(p, m.verts[f.v[0]], m.verts[f.v[1]], m.verts[f.v[2]])
	return hit{face: fi, point: pt, d2: r3.Norm2(r3.Sub(p, pt)), feat: feat}
}

func (m *mesh) pseudoNormal(h hit) r3.Vec {
	f := &m.faces[h.face]
	switch h.feat {
	case vertex0, vertex1, vertex2:
		return m.vertN[f.v[h.feat]]
	case edge01:
		return m.edgeN[edgeKey(f.v[0], f.v[1])]
	case edge12:
		return m.edgeN[edgeKey(f.v[1], f.v[2])]
	case edge20:
		return m.edgeN[edgeKey(f.v[2], f.v[0])]
	}
	return f.n
}

// closestOnTriangle returns the point of triangle abc closest to p using
// the barycentric region tests of Ericson, Real-Time Collision Detection 5.1.5.
func closestOnTriangle(p, a, b, c r3.Vec) (r3.Vec, feature) {
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	ap := r3.Sub(p, a)
	q1 := r3.Dot(ab, ap)
	q2 := r3.Dot(ac, ap)
	if q1 <= 0 && q2 <= 0 {
		return a, vertex0
	}
	bp := r3.Sub(p, b)
	q3 := r3.Dot(ab, bp)
	q4 := r3.Dot(ac, bp)
	if q3 >= 0 && q4 <= q3 {
		return b, vertex1
	}
	vc := q1*q4 - q3*q2
	if vc <= 0 && q1 >= 0 && q3 <= 0 {
		v := q1 / (q1 - q3)
		return r3.Add(a, r3.Scale(v, ab)), edge01
	}
	cp := r3.Sub(p, c)
	q5 := r3.Dot(ab, cp)
	q6 := r3.Dot(ac, cp)
	if q6 >= 0 && q5 <= q6 {
		return c, vertex2
	}
	vb := q5*q2 - q1*q6
	if vb <= 0 && q2 >= 0 && q6 <= 0 {
		w := q2 / (q2 - q6)
		return r3.Add(a, r3.Scale(w, ac)), edge20
	}
	va := q3*q6 - q5*q4
	if va <= 0 && q4-q3 >= 0 && q5-q6 >= 0 {
		w := (q4 - q3) / ((q4 - q3) + (q5 - q6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))), edge12
	}
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac))), faceInterior
}
