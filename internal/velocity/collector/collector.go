// Package collector does pure aggregation of Velocity records and the
// diagnostic sequences for rejected or failed samples. It applies no
// filtering of its own.
package collector

import (
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/glacier-velocity/internal/velocity"
	"github.com/banshee-data/glacier-velocity/internal/velocity/verrors"
)

// Collector accumulates results arriving, in any order, from the worker
// pool's result channel. All methods are safe for concurrent use.
type Collector struct {
	mu sync.Mutex

	runID          string
	velocities     []velocity.Velocity
	noPoints       []velocity.NoPointsSample
	lowDensity     []velocity.LowDensitySample
	culled         []velocity.CulledCell
	didNotConverge []verrors.DidNotConverge
	solverErrors   []verrors.SolverError
}

// New builds an empty Collector, stamped with a fresh run ID so its JSON
// record (run_id) and any velocitydb archive entry can be correlated later.
// The CSV projection does not carry the run ID.
func New() *Collector {
	return &Collector{runID: uuid.New().String()}
}

func (c *Collector) AddVelocity(v velocity.Velocity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.velocities = append(c.velocities, v)
}

func (c *Collector) AddNoPoints(s velocity.NoPointsSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noPoints = append(c.noPoints, s)
}

func (c *Collector) AddLowDensity(s velocity.LowDensitySample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lowDensity = append(c.lowDensity, s)
}

func (c *Collector) AddCulled(s velocity.CulledCell) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.culled = append(c.culled, s)
}

func (c *Collector) AddDidNotConverge(e verrors.DidNotConverge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.didNotConverge = append(c.didNotConverge, e)
}

func (c *Collector) AddSolverError(e verrors.SolverError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.solverErrors = append(c.solverErrors, e)
}

// Output is the collector's final, immutable snapshot.
type Output struct {
	RunID          string
	Samples        []velocity.Velocity
	NoPoints       []velocity.NoPointsSample
	LowDensity     []velocity.LowDensitySample
	Culled         []velocity.CulledCell
	DidNotConverge []verrors.DidNotConverge
	SolverErrors   []verrors.SolverError
}

// Finalize returns a copy of everything collected so far.
func (c *Collector) Finalize() Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Output{
		RunID:          c.runID,
		Samples:        append([]velocity.Velocity(nil), c.velocities...),
		NoPoints:       append([]velocity.NoPointsSample(nil), c.noPoints...),
		LowDensity:     append([]velocity.LowDensitySample(nil), c.lowDensity...),
		Culled:         append([]velocity.CulledCell(nil), c.culled...),
		DidNotConverge: append([]verrors.DidNotConverge(nil), c.didNotConverge...),
		SolverErrors:   append([]verrors.SolverError(nil), c.solverErrors...),
	}
}

// Summary holds run-level descriptive statistics over admitted Velocity
// magnitudes. It is an enrichment beyond the bare collector contract,
// useful for a quick sanity check on a run without opening the full
// output file.
type Summary struct {
	Count        int
	MeanSpeed    float64
	StdDevSpeed  float64
	MaxSpeed     float64
}

// Summarize computes descriptive statistics over the full 3D speed
// (Velocity.Magnitude) of every admitted sample.
func Summarize(samples []velocity.Velocity) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	speeds := make([]float64, len(samples))
	maxSpeed := 0.0
	for i, s := range samples {
		m := s.Velocity.Magnitude()
		speeds[i] = m
		if m > maxSpeed {
			maxSpeed = m
		}
	}
	mean, stddev := stat.MeanStdDev(speeds, nil)
	return Summary{
		Count:       len(samples),
		MeanSpeed:   mean,
		StdDevSpeed: stddev,
		MaxSpeed:    maxSpeed,
	}
}
