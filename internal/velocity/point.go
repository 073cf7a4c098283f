// Package velocity holds the shared data model for the glacier surface
// velocity pipeline: points, clouds, vectors, and velocity/diagnostic
// records. The pipeline stages themselves live in sibling packages
// (spatialindex, cellgrid, planner, registration, workerpool, collector)
// that import this package rather than each other's internals.
package velocity

import "math"

// Point is a finite three-dimensional coordinate. The spatial index
// treats it as two-dimensional ((X,Y) only); Z is payload.
type Point struct {
	X, Y, Z float64
}

// Finite reports whether all three components are finite.
func (p Point) Finite() bool {
	return !math.IsInf(p.X, 0) && !math.IsNaN(p.X) &&
		!math.IsInf(p.Y, 0) && !math.IsNaN(p.Y) &&
		!math.IsInf(p.Z, 0) && !math.IsNaN(p.Z)
}

// PointCloud is an immutable, unordered set of Points. It is built once
// when a LAS file is loaded and shared read-only with all workers
// thereafter; nothing in this package mutates a PointCloud after
// construction.
type PointCloud struct {
	points []Point
}

// NewPointCloud builds a PointCloud from a slice of points. The slice is
// copied so the caller's backing array may be reused.
func NewPointCloud(points []Point) *PointCloud {
	cp := make([]Point, len(points))
	copy(cp, points)
	return &PointCloud{points: cp}
}

// Points returns the cloud's points. The returned slice must not be
// mutated by the caller.
func (c *PointCloud) Points() []Point {
	return c.points
}

// Len returns the number of points in the cloud.
func (c *PointCloud) Len() int {
	return len(c.points)
}

// Vector is a three-dimensional vector, used for displacement and
// velocity.
type Vector struct {
	X, Y, Z float64
}

// XY returns the planar (horizontal) magnitude of the vector.
func (v Vector) XY() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Magnitude returns the full three-dimensional magnitude of the vector.
func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DivScalar divides every component of the vector by s; the registration
// adapter uses it to turn a displacement into a velocity.
func (v Vector) DivScalar(s float64) Vector {
	return Vector{X: v.X / s, Y: v.Y / s, Z: v.Z / s}
}

// MeanPoint returns the componentwise arithmetic mean ("center of
// gravity") of a slice of points. Returns the zero Point for an empty
// slice.
func MeanPoint(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sx, sy, sz float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
		sz += p.Z
	}
	n := float64(len(points))
	return Point{X: sx / n, Y: sy / n, Z: sz / n}
}
