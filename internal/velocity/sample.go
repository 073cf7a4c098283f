package velocity

import "time"

// CellCoords identifies a cell-grid bucket by its (row, column) key. It is
// a plain value so this package has no dependency on the cellgrid package;
// the planner translates cellgrid.Coord into CellCoords when it emits a
// Sample.
type CellCoords struct {
	R, C int
}

// Sample is a unit of registration work: a local neighborhood drawn from
// the fixed cloud and one drawn from the moving cloud, tagged with a
// location. CellCoords and GridSize are populated only for samples
// produced by the cell-grid scheme; they are the zero value otherwise.
type Sample struct {
	X, Y         float64
	FixedPoints  []Point
	MovingPoints []Point
	GridSize     int
	CellCoords   *CellCoords
}

// NoPointsSample is a diagnostic emitted when a sample-grid probe's circle
// contains no points in one of the two clouds.
type NoPointsSample struct {
	X, Y float64
}

// LowDensitySample is a diagnostic emitted when a sample-grid probe's
// measured density falls below the configured minimum in either cloud.
type LowDensitySample struct {
	X, Y                         float64
	FixedDensity, MovingDensity float64
}

// CulledCell is a diagnostic emitted when a cell-grid bucket is dropped by
// the population or center-of-gravity-height filter, or never reaches
// min_points after growth.
type CulledCell struct {
	Coords     CellCoords
	GridSize   int
	PointCount int
	Reason     string
}

// Velocity is the converged-registration output for one sample, produced
// only from a RegistrationRun with Converged == true.
type Velocity struct {
	CenterOfGravity Point
	Velocity        Vector
	Iterations      int
	BeforePoints    int
	AfterPoints     int
	GridSize        int
	ScanTime        time.Time
	CellCoords      *CellCoords
}
