// Package verrors defines the error kinds of the glacier velocity
// pipeline. Fail-fast kinds (InputDecodeError, ConfigError,
// TimestampError) are returned and wrapped with fmt.Errorf("...: %w", ...);
// per-sample kinds (DidNotConverge, SolverError) are carried as values
// inside diagnostic records rather than propagated, so the run can
// continue.
package verrors

import "errors"

// Sentinel errors for the fail-fast kinds. Callers wrap these with
// fmt.Errorf("%w: detail", ErrX) to add context.
var (
	// ErrInputDecode is returned when a LAS file cannot be opened or a
	// point within it cannot be decoded.
	ErrInputDecode = errors.New("input decode error")

	// ErrConfig is returned when the configuration file cannot be parsed
	// or is out of range.
	ErrConfig = errors.New("config error")

	// ErrTimestamp is returned when a scan filename does not match the
	// expected timestamp pattern and no interval override was supplied.
	ErrTimestamp = errors.New("timestamp error")
)

// DidNotConverge records a per-sample CPD non-convergence. It does not
// abort the run; it is carried in the Result Collector's diagnostics.
type DidNotConverge struct {
	X, Y       float64
	Iterations int
}

func (e *DidNotConverge) Error() string {
	return "cpd did not converge"
}

// SolverError records a per-sample error raised by the external CPD
// solver. It does not abort the run.
type SolverError struct {
	X, Y float64
	Err  error
}

func (e *SolverError) Error() string {
	return "cpd solver error: " + e.Err.Error()
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

// WorkerPanic surfaces an implementation-level invariant violation from a
// worker goroutine. cmd/velocity carries it inside a per-sample SolverError,
// so a panic in one sample does not abort the run.
type WorkerPanic struct {
	Recovered any
}

func (e *WorkerPanic) Error() string {
	return "worker panic"
}
