// Package registration turns a Sample's point neighborhoods into gonum
// matrices, invokes an external rigid-registration solver, and converts
// the solver's output into a Velocity or a per-sample diagnostic error.
//
// The solver itself is an opaque collaborator satisfying the Solver
// interface below. Swapping in any CPD implementation, or a stub for
// testing, requires no change here.
package registration

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/glacier-velocity/internal/velocity"
	"github.com/banshee-data/glacier-velocity/internal/velocity/verrors"
)

// Normalize names the solver's point-scaling mode. SameScale is the only
// mode the adapter requests.
const NormalizeSameScale = "same_scale"

// Options configures one registration call.
type Options struct {
	AllowReflections bool
	Scale            bool
	Normalize        string
	Sigma2           *float64
	MaxIterations    *int
}

// Transform is the rigid (optionally scaled) transform a solver recovers.
type Transform struct {
	Rotation    *mat.Dense // 3x3
	Translation []float64  // length 3
	Scale       float64
}

// Run is the output of one solver invocation.
type Run struct {
	Converged bool
	Iterations int
	Moved      *mat.Dense // Nm x 3, moving points after applying Transform
	Transform  Transform
}

// Solver is the external CPD rigid registration collaborator.
type Solver interface {
	Register(ctx context.Context, fixed, moving *mat.Dense, opts Options) (*Run, error)
}

// Adapter runs samples through a Solver and converts the result.
type Adapter struct {
	Solver Solver
}

// NewAdapter builds an Adapter around the given solver.
func NewAdapter(solver Solver) *Adapter {
	return &Adapter{Solver: solver}
}

// Result is the outcome of registering one sample: exactly one of
// Velocity, DidNotConverge, or SolverErr is non-nil.
type Result struct {
	Velocity       *velocity.Velocity
	DidNotConverge *verrors.DidNotConverge
	SolverErr      *verrors.SolverError
}

// PointsToMatrix builds an Nx3 gonum matrix from a point slice, the shape
// the solver expects for both the fixed and moving sets.
func PointsToMatrix(points []velocity.Point) *mat.Dense {
	m := mat.NewDense(len(points), 3, nil)
	for i, p := range points {
		m.SetRow(i, []float64{p.X, p.Y, p.Z})
	}
	return m
}

// Register runs one sample to completion: it builds matrices, invokes the
// solver with the options derived from maxIterations/sigma2, and converts
// a converged run into a Velocity using the given scan time and elapsed
// hours. hours must be > 0.
func (a *Adapter) Register(ctx context.Context, sample velocity.Sample, scanTime time.Time, hours float64, maxIterations *int, sigma2 *float64) Result {
	fixed := PointsToMatrix(sample.FixedPoints)
	moving := PointsToMatrix(sample.MovingPoints)

	opts := Options{
		AllowReflections: false,
		Scale:            false,
		Normalize:        NormalizeSameScale,
		Sigma2:           sigma2,
		MaxIterations:    maxIterations,
	}

	run, err := a.Solver.Register(ctx, fixed, moving, opts)
	if err != nil {
		return Result{SolverErr: &verrors.SolverError{X: sample.X, Y: sample.Y, Err: err}}
	}
	if !run.Converged {
		return Result{DidNotConverge: &verrors.DidNotConverge{X: sample.X, Y: sample.Y, Iterations: run.Iterations}}
	}

	displacement := meanRowDifference(run.Moved, moving)
	vel := displacement.DivScalar(hours)

	var cog velocity.Point
	if sample.CellCoords != nil {
		cog = velocity.MeanPoint(sample.FixedPoints)
	} else {
		cog = velocity.Point{X: sample.X, Y: sample.Y, Z: velocity.MeanPoint(sample.FixedPoints).Z}
	}

	return Result{Velocity: &velocity.Velocity{
		CenterOfGravity: cog,
		Velocity:        vel,
		Iterations:      run.Iterations,
		BeforePoints:    len(sample.FixedPoints),
		AfterPoints:     len(sample.MovingPoints),
		GridSize:        sample.GridSize,
		ScanTime:        scanTime,
		CellCoords:      sample.CellCoords,
	}}
}

// meanRowDifference computes the componentwise mean of (moved - original)
// over matching rows.
func meanRowDifference(moved, original *mat.Dense) velocity.Vector {
	rows, _ := moved.Dims()
	if rows == 0 {
		return velocity.Vector{}
	}
	var sx, sy, sz float64
	for i := 0; i < rows; i++ {
		sx += moved.At(i, 0) - original.At(i, 0)
		sy += moved.At(i, 1) - original.At(i, 1)
		sz += moved.At(i, 2) - original.At(i, 2)
	}
	n := float64(rows)
	return velocity.Vector{X: sx / n, Y: sy / n, Z: sz / n}
}
