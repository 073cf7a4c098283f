package velocityconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
minx = 0
miny = 0
maxx = 100
maxy = 100
step = 10
grid_size = 100
threads = 4
num_points = 50
min_density = 0.3
min_points = 100
max_points = 5000
min_cog_height = -10.0
ngrow = 1
`

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Threads != 4 {
		t.Errorf("threads = %d, want 4", cfg.Threads)
	}
	if _, ok := cfg.GetMaxIterations(); ok {
		t.Errorf("max_iterations should be unset")
	}
}

func TestLoadRejectsWrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-.toml extension")
	}
}

func TestValidateRejectsBadBounds(t *testing.T) {
	cfg := Config{MinX: 10, MaxX: 5, MinY: 0, MaxY: 10, Step: 1, GridSize: 1, Threads: 1, NumPoints: 1, MaxPoints: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for minx >= maxx")
	}
}

func TestValidateRejectsZeroThreads(t *testing.T) {
	cfg := Config{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10, Step: 1, GridSize: 1, Threads: 0, NumPoints: 1, MaxPoints: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threads < 1")
	}
}

func TestValidateRejectsMaxPointsBelowMinPoints(t *testing.T) {
	cfg := Config{MinX: 0, MaxX: 10, MinY: 0, MaxY: 10, Step: 1, GridSize: 1, Threads: 1, NumPoints: 1, MinPoints: 100, MaxPoints: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for max_points < min_points")
	}
}

// TestSampleProbes checks that the probe at column i, row j is centered at
// (minx + (i+1/2)*step, miny + (j+1/2)*step).
func TestSampleProbes(t *testing.T) {
	cfg := Config{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20, Step: 10}
	probes := cfg.SampleProbes()
	want := []Probe{{X: 5, Y: 5}, {X: 5, Y: 15}, {X: 15, Y: 5}, {X: 15, Y: 15}}
	if len(probes) != len(want) {
		t.Fatalf("got %d probes, want %d", len(probes), len(want))
	}
	for i, p := range probes {
		if p != want[i] {
			t.Errorf("probe[%d] = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestSampleProbesDeterministic(t *testing.T) {
	cfg := Config{MinX: -50, MinY: -50, MaxX: 53, MaxY: 47, Step: 7}
	a := cfg.SampleProbes()
	b := cfg.SampleProbes()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("probe[%d] differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDensityArea(t *testing.T) {
	cfg := Config{Step: 10}
	got := cfg.DensityArea()
	want := 314.1592653589793
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("DensityArea() = %v, want %v", got, want)
	}
}
