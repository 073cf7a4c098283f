package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/banshee-data/glacier-velocity/internal/velocity"
	"github.com/banshee-data/glacier-velocity/internal/velocity/collector"
)

func TestWriteCSVProjectionMatchesScenarioF(t *testing.T) {
	samples := []velocity.Velocity{
		{Velocity: velocity.Vector{X: 3, Y: 4, Z: 12}},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samples); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (header + 1 row)", len(lines))
	}
	fields := strings.Split(lines[1], ",")
	// columns: x,y,z,grid_size,iterations,vx,vy,vz,vxy,v
	if fields[8] != "5" {
		t.Errorf("vxy = %q, want 5", fields[8])
	}
	if fields[9] != "13" {
		t.Errorf("v = %q, want 13", fields[9])
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	out := collector.Output{
		Samples: []velocity.Velocity{
			{
				CenterOfGravity: velocity.Point{X: 1, Y: 2, Z: 3},
				Velocity:        velocity.Vector{X: 0.1, Y: 0.2, Z: 0.3},
				Iterations:      4,
				BeforePoints:    10,
				AfterPoints:     9,
				GridSize:        100,
			},
		},
		LowDensity: []velocity.LowDensitySample{{X: 5, Y: 6, FixedDensity: 0.1, MovingDensity: 0.2}},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, out); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	samples, ok := decoded["samples"].([]any)
	if !ok || len(samples) != 1 {
		t.Fatalf("decoded samples = %+v", decoded["samples"])
	}
	first := samples[0].(map[string]any)
	if first["iterations"].(float64) != 4 {
		t.Errorf("iterations = %v, want 4", first["iterations"])
	}
}

func TestWriteCSVHeaderColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	header := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")[0]
	want := "x,y,z,grid_size,iterations,vx,vy,vz,vxy,v"
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}
}
