// Package velocityconfig loads and validates the glacier-velocity
// engine's processing configuration.
package velocityconfig

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// maxConfigFileSize bounds how large a config file we'll read.
const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// Config is the immutable processing configuration for one velocity run.
type Config struct {
	// Sample-grid region, integer bounds, inclusive-exclusive.
	MinX int `toml:"minx"`
	MinY int `toml:"miny"`
	MaxX int `toml:"maxx"`
	MaxY int `toml:"maxy"`

	// Step is the spacing between sample-grid probes and the radius (in
	// cloud units) used for density and neighbor queries.
	Step int `toml:"step"`

	// GridSize is the edge length of a base grid cell (cell-grid scheme).
	GridSize int `toml:"grid_size"`

	// Threads is the number of worker threads used for CPD registration.
	Threads int `toml:"threads"`

	// NumPoints is the number of nearest neighbors drawn per probe
	// (sample-grid scheme).
	NumPoints int `toml:"num_points"`

	// MinDensity is the minimum permitted point density (points per unit
	// area) in the circle of radius Step around a probe.
	MinDensity float64 `toml:"min_density"`

	// MinPoints/MaxPoints bound a cell-grid bucket's population.
	MinPoints int `toml:"min_points"`
	MaxPoints int `toml:"max_points"`

	// MinCOGHeight is the minimum z of a cell's center-of-gravity to be
	// retained.
	MinCOGHeight float64 `toml:"min_cog_height"`

	// NGrow is the maximum rounds of cell growth (cell-grid scheme).
	NGrow int `toml:"ngrow"`

	// MaxIterations, if set, bounds the CPD solver's iteration count.
	// A nil value defers to the solver's own default.
	MaxIterations *int `toml:"max_iterations,omitempty"`

	// Sigma2, if set, is the CPD solver's initial noise variance.
	Sigma2 *float64 `toml:"sigma2,omitempty"`

	// IntervalHours overrides the scan interval derived from filename
	// timestamps. Required when the filenames don't parse.
	IntervalHours *float64 `toml:"interval_hours,omitempty"`
}

// Load reads and validates a Config from a TOML file.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".toml" {
		return nil, fmt.Errorf("config file must have .toml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	var cfg Config
	if _, err := toml.DecodeFile(cleanPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration values are internally consistent.
func (c *Config) Validate() error {
	if c.MinX >= c.MaxX {
		return fmt.Errorf("minx must be < maxx, got minx=%d maxx=%d", c.MinX, c.MaxX)
	}
	if c.MinY >= c.MaxY {
		return fmt.Errorf("miny must be < maxy, got miny=%d maxy=%d", c.MinY, c.MaxY)
	}
	if c.Step <= 0 {
		return fmt.Errorf("step must be positive, got %d", c.Step)
	}
	if c.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %d", c.GridSize)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be >= 1, got %d", c.Threads)
	}
	if c.NumPoints <= 0 {
		return fmt.Errorf("num_points must be positive, got %d", c.NumPoints)
	}
	if c.MinDensity < 0 {
		return fmt.Errorf("min_density must be non-negative, got %f", c.MinDensity)
	}
	if c.MinPoints < 0 {
		return fmt.Errorf("min_points must be non-negative, got %d", c.MinPoints)
	}
	if c.MaxPoints < c.MinPoints {
		return fmt.Errorf("max_points must be >= min_points, got max_points=%d min_points=%d", c.MaxPoints, c.MinPoints)
	}
	if c.NGrow < 0 {
		return fmt.Errorf("ngrow must be non-negative, got %d", c.NGrow)
	}
	if c.MaxIterations != nil && *c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive when set, got %d", *c.MaxIterations)
	}
	if c.Sigma2 != nil && *c.Sigma2 <= 0 {
		return fmt.Errorf("sigma2 must be positive when set, got %f", *c.Sigma2)
	}
	if c.IntervalHours != nil && *c.IntervalHours <= 0 {
		return fmt.Errorf("interval_hours must be positive when set, got %f", *c.IntervalHours)
	}
	return nil
}

// GetMaxIterations returns the configured iteration cap and whether one
// was set.
func (c *Config) GetMaxIterations() (int, bool) {
	if c.MaxIterations == nil {
		return 0, false
	}
	return *c.MaxIterations, true
}

// GetSigma2 returns the configured initial noise variance and whether one
// was set.
func (c *Config) GetSigma2() (float64, bool) {
	if c.Sigma2 == nil {
		return 0, false
	}
	return *c.Sigma2, true
}

// GetIntervalHours returns the configured interval override and whether one
// was set.
func (c *Config) GetIntervalHours() (float64, bool) {
	if c.IntervalHours == nil {
		return 0, false
	}
	return *c.IntervalHours, true
}

// Probe is a planar location at which a sample-grid sample is taken.
type Probe struct {
	X, Y float64
}

// SampleProbes returns the regular grid of sample-grid probe locations
// described by this Config, in deterministic order: column by column
// (ascending x), and by ascending y within each column. The probe at
// column i, row j is centered at
// (minx + (i+1/2)*step, miny + (j+1/2)*step).
func (c *Config) SampleProbes() []Probe {
	var probes []Probe
	step := float64(c.Step)
	for x := c.MinX; x < c.MaxX; x += c.Step {
		for y := c.MinY; y < c.MaxY; y += c.Step {
			probes = append(probes, Probe{
				X: float64(x) + step/2,
				Y: float64(y) + step/2,
			})
		}
	}
	return probes
}

// DensityArea is the exact area pi*step^2 used for density computations.
func (c *Config) DensityArea() float64 {
	step := float64(c.Step)
	return math.Pi * step * step
}
