package incl

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.incl")
	want := []Sample{
		{Time: 1.5, Roll: 0.25, Pitch: -0.5},
		{Time: 2.5, Roll: 0.75, Pitch: 0.1},
	}
	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNewMetrics(t *testing.T) {
	m := NewMetrics([]float32{3, 4})
	if math.Abs(float64(m.Mean)-3.5) > 1e-6 {
		t.Errorf("mean = %v, want 3.5", m.Mean)
	}
	wantVariance := (9.0 + 16.0) / 2.0
	if math.Abs(float64(m.Variance)-wantVariance) > 1e-6 {
		t.Errorf("variance = %v, want %v", m.Variance, wantVariance)
	}
	if math.Abs(float64(m.StdDev)-math.Sqrt(wantVariance)) > 1e-6 {
		t.Errorf("stddev = %v, want sqrt(%v)", m.StdDev, wantVariance)
	}
	if m.Count != 2 {
		t.Errorf("count = %d, want 2", m.Count)
	}
}

func TestNewMetricsEmpty(t *testing.T) {
	m := NewMetrics(nil)
	if m.Count != 0 {
		t.Errorf("count = %d, want 0", m.Count)
	}
}

func TestNewStatsSplitsChannels(t *testing.T) {
	samples := []Sample{
		{Roll: 1, Pitch: 10},
		{Roll: 3, Pitch: 20},
	}
	stats := NewStats(samples)
	if stats.Roll.Mean != 2 {
		t.Errorf("roll mean = %v, want 2", stats.Roll.Mean)
	}
	if stats.Pitch.Mean != 15 {
		t.Errorf("pitch mean = %v, want 15", stats.Pitch.Mean)
	}
}
