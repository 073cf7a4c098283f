// Package cellgrid implements grid-cell partitioning: a PointCloud is
// bucketed into square cells keyed by integer (row, column) coordinates,
// with adaptive growth for under-populated cells.
//
// Cells reference neighbors only by coordinate lookup in the owning Grid;
// there are no back-pointers. Growth is remove-then-reinsert, which is
// why no aliasing hazard exists between a grown cell and the cells it
// consumed.
package cellgrid

import (
	"sort"

	"github.com/banshee-data/glacier-velocity/internal/velocity"
)

// Coord is a cell's integer (row, column) coordinate at the grid's base
// resolution: r = floor(y/base), c = floor(x/base).
type Coord struct {
	R, C int
}

// Cell is a square bucket of points. GridSize is base*2^k for some k >= 0;
// k increases each time a Grow round merges the cell with its neighbors.
type Cell struct {
	Coords   Coord
	GridSize int
	Points   []velocity.Point
}

// CenterOfGravity returns the arithmetic mean of the cell's points.
func (c *Cell) CenterOfGravity() velocity.Point {
	return velocity.MeanPoint(c.Points)
}

// Grid partitions one PointCloud into Cells of a configured base edge
// length.
type Grid struct {
	base  int
	cells map[Coord]*Cell
}

// Build buckets every point of cloud into a Cell keyed by
// (floor(y/base), floor(x/base)).
func Build(cloud *velocity.PointCloud, base int) *Grid {
	g := &Grid{base: base, cells: make(map[Coord]*Cell)}
	for _, p := range cloud.Points() {
		coord := Coord{
			R: floorDiv(p.Y, base),
			C: floorDiv(p.X, base),
		}
		cell, ok := g.cells[coord]
		if !ok {
			cell = &Cell{Coords: coord, GridSize: base}
			g.cells[coord] = cell
		}
		cell.Points = append(cell.Points, p)
	}
	return g
}

func floorDiv(v float64, base int) int {
	// Matches the original Rust implementation's integer-truncating bucket
	// assignment (point.x as i16 / 100): truncation toward zero for
	// non-negative coordinates, which is what cloud-unit LAS data uses.
	bf := float64(base)
	q := v / bf
	r := int(q)
	if q < 0 && float64(r) != q {
		r--
	}
	return r
}

// Retain drops every cell for which predicate returns false.
func (g *Grid) Retain(predicate func(*Cell) bool) {
	for coord, cell := range g.cells {
		if !predicate(cell) {
			delete(g.cells, coord)
		}
	}
}

// Grow performs one growth round: every cell whose population is below
// minPoints is merged with its (+1,0), (0,+1), (+1,+1) neighbors (in units
// of the cell's current grid size), doubling its grid size. It returns
// whether any cell was grown. Growth never fails on data; a cell may
// still be below minPoints afterward if it lacks neighbors to merge with.
func (g *Grid) Grow(minPoints int) bool {
	changed := false
	for _, coord := range g.sortedCoords() {
		cell, ok := g.cells[coord]
		if !ok {
			continue // consumed by an earlier merge this round
		}
		if len(cell.Points) >= minPoints {
			continue
		}
		if g.growOnce(coord) {
			changed = true
		}
	}
	return changed
}

// GrowRounds applies up to maxRounds successive Grow rounds, stopping
// early once a round makes no change.
func (g *Grid) GrowRounds(minPoints, maxRounds int) {
	for i := 0; i < maxRounds; i++ {
		if !g.Grow(minPoints) {
			return
		}
	}
}

// growOnce merges the cell at coord with its +r/+c-quadrant neighbors at
// the same grid size, doubling coord's grid size. Neighbors smaller than
// the cell's current grid size are first grown (recursively) to match.
// Returns false, leaving the grid unchanged, if the cell does not exist or
// has no neighbors to merge with.
func (g *Grid) growOnce(coord Coord) bool {
	cell, ok := g.cells[coord]
	if !ok {
		return false
	}
	size := cell.GridSize
	step := size / g.base
	neighborCoords := []Coord{
		{R: coord.R + step, C: coord.C},
		{R: coord.R, C: coord.C + step},
		{R: coord.R + step, C: coord.C + step},
	}

	merged := append([]velocity.Point{}, cell.Points...)
	var consumed []Coord
	for _, nc := range neighborCoords {
		if _, ok := g.cells[nc]; !ok {
			continue
		}
		g.growCellToward(nc, size)
		neighbor, ok := g.cells[nc]
		if !ok {
			continue
		}
		merged = append(merged, neighbor.Points...)
		consumed = append(consumed, nc)
	}

	if len(consumed) == 0 {
		return false
	}
	for _, nc := range consumed {
		delete(g.cells, nc)
	}
	delete(g.cells, coord)
	g.cells[coord] = &Cell{Coords: coord, GridSize: size * 2, Points: merged}
	return true
}

// growCellToward repeatedly doubles the cell at coord until its grid size
// is at least target, or until it can no longer grow (missing neighbors).
func (g *Grid) growCellToward(coord Coord, target int) {
	for {
		cell, ok := g.cells[coord]
		if !ok || cell.GridSize >= target {
			return
		}
		if !g.growOnce(coord) {
			return
		}
	}
}

// Pop removes and returns an arbitrary cell, or false if the grid is
// empty. Used to drain cells into the sample planner's work list.
func (g *Grid) Pop() (*Cell, bool) {
	for coord, cell := range g.cells {
		delete(g.cells, coord)
		return cell, true
	}
	return nil, false
}

// Cell returns the cell at coord, if present.
func (g *Grid) Cell(coord Coord) (*Cell, bool) {
	c, ok := g.cells[coord]
	return c, ok
}

// Coords returns every coordinate currently present, in deterministic
// (row, then column) ascending order.
func (g *Grid) Coords() []Coord {
	return g.sortedCoords()
}

// Len returns the number of cells currently in the grid.
func (g *Grid) Len() int {
	return len(g.cells)
}

func (g *Grid) sortedCoords() []Coord {
	coords := make([]Coord, 0, len(g.cells))
	for c := range g.cells {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].R != coords[j].R {
			return coords[i].R < coords[j].R
		}
		return coords[i].C < coords[j].C
	})
	return coords
}
