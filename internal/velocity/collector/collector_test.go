package collector

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/glacier-velocity/internal/velocity"
)

func TestFinalizeReturnsEverythingAdded(t *testing.T) {
	c := New()
	c.AddVelocity(velocity.Velocity{Iterations: 3})
	c.AddNoPoints(velocity.NoPointsSample{X: 1})
	c.AddLowDensity(velocity.LowDensitySample{X: 2})

	out := c.Finalize()
	if len(out.Samples) != 1 || len(out.NoPoints) != 1 || len(out.LowDensity) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestConcurrentAddsAreSafe(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.AddVelocity(velocity.Velocity{Iterations: i})
		}(i)
	}
	wg.Wait()
	if len(c.Finalize().Samples) != 100 {
		t.Fatalf("got %d samples, want 100", len(c.Finalize().Samples))
	}
}

func TestSummarize(t *testing.T) {
	samples := []velocity.Velocity{
		{Velocity: velocity.Vector{X: 3, Y: 4, Z: 12}}, // magnitude 13
		{Velocity: velocity.Vector{X: 0, Y: 0, Z: 0}},  // magnitude 0
	}
	s := Summarize(samples)
	if s.Count != 2 {
		t.Fatalf("Count = %d, want 2", s.Count)
	}
	if math.Abs(s.MeanSpeed-6.5) > 1e-9 {
		t.Errorf("MeanSpeed = %v, want 6.5", s.MeanSpeed)
	}
	if s.MaxSpeed != 13 {
		t.Errorf("MaxSpeed = %v, want 13", s.MaxSpeed)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 {
		t.Errorf("Count = %d, want 0", s.Count)
	}
}

func TestNewStampsDistinctRunIDs(t *testing.T) {
	a, b := New(), New()
	require.NotEmpty(t, a.Finalize().RunID)
	assert.NotEqual(t, a.Finalize().RunID, b.Finalize().RunID)
}
