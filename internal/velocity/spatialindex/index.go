// Package spatialindex wraps a bulk-loaded two-dimensional R-tree over a
// PointCloud. Points are indexed by (X, Y) only; Z is carried as payload.
// The index is built once and is safe for concurrent read-only queries by
// the worker pool.
package spatialindex

import (
	"github.com/dhconnelly/rtreego"

	"github.com/banshee-data/glacier-velocity/internal/velocity"
)

const dimensions = 2

// entry adapts a velocity.Point to rtreego.Spatial. Each entry occupies a
// tiny (1e-9 by 1e-9) rectangle at its (X, Y) location.
type entry struct {
	point velocity.Point
}

func (e entry) Bounds() rtreego.Rect {
	p := rtreego.Point{e.point.X, e.point.Y}
	rect, err := rtreego.NewRect(p, []float64{1e-9, 1e-9})
	if err != nil {
		// NewRect only fails for non-positive lengths, which we never pass.
		panic(err)
	}
	return rect
}

// Index is a 2D spatial index over a PointCloud, supporting within-radius
// and nearest-k queries.
type Index struct {
	tree   *rtreego.Rtree
	source []velocity.Point
}

// Build bulk-loads an Index from the given PointCloud. Build cost is
// amortized here; queries below are read-only.
func Build(cloud *velocity.PointCloud) *Index {
	points := cloud.Points()
	objs := make([]rtreego.Spatial, len(points))
	for i, p := range points {
		objs[i] = entry{point: p}
	}
	tree := rtreego.NewTree(dimensions, 25, 50, objs...)
	return &Index{tree: tree, source: points}
}

// WithinRadius returns every point whose planar distance to center is at
// most radius. The result is unordered.
func (idx *Index) WithinRadius(center velocity.Point, radius float64) []velocity.Point {
	if radius <= 0 {
		return nil
	}
	bb, err := rtreego.NewRect(
		rtreego.Point{center.X - radius, center.Y - radius},
		[]float64{2 * radius, 2 * radius},
	)
	if err != nil {
		return nil
	}
	radius2 := radius * radius
	candidates := idx.tree.SearchIntersect(bb)
	result := make([]velocity.Point, 0, len(candidates))
	for _, c := range candidates {
		p := c.(entry).point
		dx := p.X - center.X
		dy := p.Y - center.Y
		if dx*dx+dy*dy <= radius2 {
			result = append(result, p)
		}
	}
	return result
}

// WithinRadiusCount returns the number of points WithinRadius returns for
// the same center and radius.
func (idx *Index) WithinRadiusCount(center velocity.Point, radius float64) int {
	return len(idx.WithinRadius(center, radius))
}

// NearestK returns the k planar-nearest points to center. If fewer than k
// points exist in the index, all of them are returned. Ties are broken by
// the underlying R-tree in whatever order it produces them.
func (idx *Index) NearestK(center velocity.Point, k int) []velocity.Point {
	if k <= 0 {
		return nil
	}
	neighbors := idx.tree.NearestNeighbors(k, rtreego.Point{center.X, center.Y})
	result := make([]velocity.Point, 0, len(neighbors))
	for _, n := range neighbors {
		if n == nil {
			continue
		}
		result = append(result, n.(entry).point)
	}
	return result
}

// Len returns the number of points indexed.
func (idx *Index) Len() int {
	return len(idx.source)
}

