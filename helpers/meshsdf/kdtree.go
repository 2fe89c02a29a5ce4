package meshsdf

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// centroid is a face centroid stored in the k-d tree. Query points
// have face -1.
type centroid struct {
	p    r3.Vec
	face int
}

func (a centroid) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	b := c.(centroid)
	switch d {
	case 0:
		return a.p.X - b.p.X
	case 1:
		return a.p.Y - b.p.Y
	case 2:
		return a.p.Z - b.p.Z
	}
	panic("illegal dimension")
}

func (a centroid) Dims() int { return 3 }

// Distance returns the squared euclidean distance.
func (a centroid) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.p, c.(centroid).p))
}

type centroids []centroid

func (c centroids) Index(i int) kdtree.Comparable { return c[i] }
func (c centroids) Len() int                      { return len(c) }
func (c centroids) Pivot(d kdtree.Dim) int {
	return plane{Dim: d, centroids: c}.pivot()
}
func (c centroids) Slice(start, end int) kdtree.Interface { return c[start:end] }

// plane sorts centroids along one dimension.
type plane struct {
	kdtree.Dim
	centroids
}

func (p plane) Less(i, j int) bool {
	return p.centroids[i].Compare(p.centroids[j], p.Dim) < 0
}
func (p plane) pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.centroids = p.centroids[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.centroids[i], p.centroids[j] = p.centroids[j], p.centroids[i]
}
