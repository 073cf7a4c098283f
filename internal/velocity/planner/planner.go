// Package planner implements the two sample-planning schemes: sample-grid
// (regular probes queried against a spatial index) and cell-grid
// (retained, grown cell-grid buckets matched by coordinate).
package planner

import (
	"github.com/banshee-data/glacier-velocity/internal/velocity"
	"github.com/banshee-data/glacier-velocity/internal/velocity/cellgrid"
	"github.com/banshee-data/glacier-velocity/internal/velocity/spatialindex"
	"github.com/banshee-data/glacier-velocity/internal/velocityconfig"
)

// SampleGridResult is the output of the sample-grid planner: admitted
// samples plus the two diagnostic sequences for rejected probes.
type SampleGridResult struct {
	Samples     []velocity.Sample
	NoPoints    []velocity.NoPointsSample
	LowDensity  []velocity.LowDensitySample
}

// SampleGrid runs the sample-grid planner over every probe in cfg's
// configured region, in the deterministic order velocityconfig.SampleProbes
// produces.
func SampleGrid(cfg *velocityconfig.Config, fixed, moving *spatialindex.Index) SampleGridResult {
	var result SampleGridResult
	radius := float64(cfg.Step)
	area := cfg.DensityArea()

	for _, probe := range cfg.SampleProbes() {
		center := velocity.Point{X: probe.X, Y: probe.Y}

		fixedCount := fixed.WithinRadiusCount(center, radius)
		movingCount := moving.WithinRadiusCount(center, radius)
		if fixedCount == 0 || movingCount == 0 {
			result.NoPoints = append(result.NoPoints, velocity.NoPointsSample{X: probe.X, Y: probe.Y})
			continue
		}

		fixedDensity := float64(fixedCount) / area
		movingDensity := float64(movingCount) / area
		if fixedDensity < cfg.MinDensity || movingDensity < cfg.MinDensity {
			result.LowDensity = append(result.LowDensity, velocity.LowDensitySample{
				X: probe.X, Y: probe.Y,
				FixedDensity:  fixedDensity,
				MovingDensity: movingDensity,
			})
			continue
		}

		result.Samples = append(result.Samples, velocity.Sample{
			X:            probe.X,
			Y:            probe.Y,
			FixedPoints:  fixed.NearestK(center, cfg.NumPoints),
			MovingPoints: moving.NearestK(center, cfg.NumPoints),
		})
	}
	return result
}

// CellGridResult is the output of the cell-grid planner.
type CellGridResult struct {
	Samples []velocity.Sample
	Culled  []velocity.CulledCell
}

// CellGrid runs the cell-grid planner over a pair of already-built
// grids: it retains cells passing the population ceiling and
// center-of-gravity-height filter, grows under-populated cells up to
// cfg.NGrow rounds, drops cells that never reach cfg.MinPoints, and emits
// one Sample per coordinate present in both resulting grids.
func CellGrid(cfg *velocityconfig.Config, fixed, moving *cellgrid.Grid) CellGridResult {
	var result CellGridResult

	retainCeiling := func(c *cellgrid.Cell) bool {
		if len(c.Points) > cfg.MaxPoints {
			result.Culled = append(result.Culled, culledOf(c, "max_points"))
			return false
		}
		if c.CenterOfGravity().Z < cfg.MinCOGHeight {
			result.Culled = append(result.Culled, culledOf(c, "min_cog_height"))
			return false
		}
		return true
	}
	fixed.Retain(retainCeiling)
	moving.Retain(retainCeiling)

	fixed.GrowRounds(cfg.MinPoints, cfg.NGrow)
	moving.GrowRounds(cfg.MinPoints, cfg.NGrow)

	retainFloor := func(c *cellgrid.Cell) bool {
		if len(c.Points) < cfg.MinPoints {
			result.Culled = append(result.Culled, culledOf(c, "min_points"))
			return false
		}
		return true
	}
	fixed.Retain(retainFloor)
	moving.Retain(retainFloor)

	for _, coord := range fixed.Coords() {
		fixedCell, ok := fixed.Cell(coord)
		if !ok {
			continue
		}
		movingCell, ok := moving.Cell(coord)
		if !ok {
			continue
		}
		cc := velocity.CellCoords{R: coord.R, C: coord.C}
		result.Samples = append(result.Samples, velocity.Sample{
			FixedPoints:  fixedCell.Points,
			MovingPoints: movingCell.Points,
			GridSize:     fixedCell.GridSize,
			CellCoords:   &cc,
		})
	}
	return result
}

func culledOf(c *cellgrid.Cell, reason string) velocity.CulledCell {
	return velocity.CulledCell{
		Coords:     velocity.CellCoords{R: c.Coords.R, C: c.Coords.C},
		GridSize:   c.GridSize,
		PointCount: len(c.Points),
		Reason:     reason,
	}
}
