// Package report serializes a collector.Output to two external formats: a
// JSON run record and a downstream CSV projection.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/banshee-data/glacier-velocity/internal/fsutil"
	"github.com/banshee-data/glacier-velocity/internal/security"
	"github.com/banshee-data/glacier-velocity/internal/velocity"
	"github.com/banshee-data/glacier-velocity/internal/velocity/collector"
)

// jsonVelocity mirrors the Velocity type's tuple field names for JSON.
type jsonVelocity struct {
	CenterOfGravity [3]float64 `json:"center_of_gravity"`
	Velocity        [3]float64 `json:"velocity"`
	Iterations      int        `json:"iterations"`
	BeforePoints    int        `json:"before_points"`
	AfterPoints     int        `json:"after_points"`
	GridSize        int        `json:"grid_size"`
	Datetime        time.Time  `json:"datetime"`
	CellCoords      *[2]int    `json:"cell_coords,omitempty"`
}

type jsonLowDensity struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	FixedDensity  float64 `json:"fixed_density"`
	MovingDensity float64 `json:"moving_density"`
}

type jsonNoPoints struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type jsonCulled struct {
	Coords     [2]int `json:"coords"`
	GridSize   int    `json:"grid_size"`
	PointCount int    `json:"point_count"`
	Reason     string `json:"reason"`
}

type jsonDidNotConverge struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Iterations int     `json:"iterations"`
}

type jsonSolverError struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Err string  `json:"error"`
}

// jsonOutput is the full serialized run record.
type jsonOutput struct {
	RunID          string               `json:"run_id"`
	Samples        []jsonVelocity       `json:"samples"`
	LowDensity     []jsonLowDensity     `json:"low_density_samples"`
	NoPoints       []jsonNoPoints       `json:"no_points_samples"`
	Culled         []jsonCulled         `json:"culled_cells"`
	DidNotConverge []jsonDidNotConverge `json:"did_not_converge"`
	SolverErrors   []jsonSolverError    `json:"solver_errors"`
}

func toJSON(out collector.Output) jsonOutput {
	j := jsonOutput{RunID: out.RunID}
	for _, v := range out.Samples {
		jv := jsonVelocity{
			CenterOfGravity: [3]float64{v.CenterOfGravity.X, v.CenterOfGravity.Y, v.CenterOfGravity.Z},
			Velocity:        [3]float64{v.Velocity.X, v.Velocity.Y, v.Velocity.Z},
			Iterations:      v.Iterations,
			BeforePoints:    v.BeforePoints,
			AfterPoints:     v.AfterPoints,
			GridSize:        v.GridSize,
			Datetime:        v.ScanTime,
		}
		if v.CellCoords != nil {
			cc := [2]int{v.CellCoords.R, v.CellCoords.C}
			jv.CellCoords = &cc
		}
		j.Samples = append(j.Samples, jv)
	}
	for _, s := range out.LowDensity {
		j.LowDensity = append(j.LowDensity, jsonLowDensity{s.X, s.Y, s.FixedDensity, s.MovingDensity})
	}
	for _, s := range out.NoPoints {
		j.NoPoints = append(j.NoPoints, jsonNoPoints{s.X, s.Y})
	}
	for _, c := range out.Culled {
		j.Culled = append(j.Culled, jsonCulled{[2]int{c.Coords.R, c.Coords.C}, c.GridSize, c.PointCount, c.Reason})
	}
	for _, e := range out.DidNotConverge {
		j.DidNotConverge = append(j.DidNotConverge, jsonDidNotConverge{e.X, e.Y, e.Iterations})
	}
	for _, e := range out.SolverErrors {
		j.SolverErrors = append(j.SolverErrors, jsonSolverError{e.X, e.Y, e.Error()})
	}
	return j
}

// WriteJSON serializes out to w as the structured run record.
func WriteJSON(w io.Writer, out collector.Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(out))
}

var csvHeader = []string{"x", "y", "z", "grid_size", "iterations", "vx", "vy", "vz", "vxy", "v"}

// WriteCSV writes the downstream CSV projection: x, y, z, grid_size,
// iterations, vx, vy, vz, vxy, v.
func WriteCSV(w io.Writer, samples []velocity.Velocity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, v := range samples {
		vxy := v.Velocity.XY()
		vv := v.Velocity.Magnitude()
		row := []string{
			formatFloat(v.CenterOfGravity.X),
			formatFloat(v.CenterOfGravity.Y),
			formatFloat(v.CenterOfGravity.Z),
			strconv.Itoa(v.GridSize),
			strconv.Itoa(v.Iterations),
			formatFloat(v.Velocity.X),
			formatFloat(v.Velocity.Y),
			formatFloat(v.Velocity.Z),
			formatFloat(vxy),
			formatFloat(vv),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteJSONFile validates outPath and writes the JSON record to it,
// through the shared filesystem abstraction.
func WriteJSONFile(fs fsutil.FileSystem, outPath string, out collector.Output) error {
	if err := security.ValidateExportPath(outPath); err != nil {
		return fmt.Errorf("report: refusing to write JSON output: %w", err)
	}
	f, err := fs.Create(outPath)
	if err != nil {
		return fmt.Errorf("report: creating JSON output file %q: %w", outPath, err)
	}
	defer f.Close()
	return WriteJSON(f, out)
}

// WriteCSVFile validates outPath and writes the CSV projection to it,
// through the shared filesystem abstraction.
func WriteCSVFile(fs fsutil.FileSystem, outPath string, samples []velocity.Velocity) error {
	if err := security.ValidateExportPath(outPath); err != nil {
		return fmt.Errorf("report: refusing to write CSV output: %w", err)
	}
	f, err := fs.Create(outPath)
	if err != nil {
		return fmt.Errorf("report: creating CSV output file %q: %w", outPath, err)
	}
	defer f.Close()
	return WriteCSV(f, samples)
}
