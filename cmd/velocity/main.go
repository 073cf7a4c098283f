// Command velocity measures glacier surface velocity by registering a
// "before" and "after" terrestrial-LiDAR point cloud and reporting a
// velocity field over their shared overlap.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/banshee-data/glacier-velocity/internal/fsutil"
	"github.com/banshee-data/glacier-velocity/internal/monitoring"
	"github.com/banshee-data/glacier-velocity/internal/timeutil"
	"github.com/banshee-data/glacier-velocity/internal/velocity"
	"github.com/banshee-data/glacier-velocity/internal/velocity/cellgrid"
	"github.com/banshee-data/glacier-velocity/internal/velocity/collector"
	"github.com/banshee-data/glacier-velocity/internal/velocity/lasio"
	"github.com/banshee-data/glacier-velocity/internal/velocity/planner"
	"github.com/banshee-data/glacier-velocity/internal/velocity/registration"
	"github.com/banshee-data/glacier-velocity/internal/velocity/report"
	"github.com/banshee-data/glacier-velocity/internal/velocity/scanpair"
	"github.com/banshee-data/glacier-velocity/internal/velocity/spatialindex"
	"github.com/banshee-data/glacier-velocity/internal/velocity/verrors"
	"github.com/banshee-data/glacier-velocity/internal/velocity/workerpool"
	"github.com/banshee-data/glacier-velocity/internal/velocityconfig"
	"github.com/banshee-data/glacier-velocity/internal/velocitydb"
	"github.com/banshee-data/glacier-velocity/internal/version"
)

var (
	configPath    = flag.String("config", "", "path to the TOML processing configuration")
	beforePath    = flag.String("before", "", "path to the before-scan LAS file")
	afterPath     = flag.String("after", "", "path to the after-scan LAS file (auto-discovered from -before if omitted)")
	scheme        = flag.String("scheme", "sample-grid", "sampling scheme: sample-grid or cell-grid")
	jsonOut       = flag.String("json-out", "velocity.json", "path to write the JSON run record")
	csvOut        = flag.String("csv-out", "velocity.csv", "path to write the CSV projection")
	intervalHours = flag.Float64("interval-hours", 0, "override the scan interval in hours (required if filenames don't parse)")
	archivePath   = flag.String("archive", "", "optional path to a SQLite archive to append this run's velocities to")
	versionFlag   = flag.Bool("version", false, "print version information and exit")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("glacier-velocity v%s (git SHA: %s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		os.Exit(0)
	}

	if *configPath == "" || *beforePath == "" {
		fmt.Fprintln(os.Stderr, "usage: velocity -config run.toml -before before.las [-after after.las]")
		os.Exit(2)
	}

	cfg, err := velocityconfig.Load(*configPath)
	if err != nil {
		monitoring.Logf("config error: %v", err)
		os.Exit(1)
	}

	resolvedAfter := *afterPath
	if resolvedAfter == "" {
		resolvedAfter, err = scanpair.FindMovingPath(*beforePath)
		if err != nil {
			monitoring.Logf("could not auto-discover an after-scan for %q: %v", *beforePath, err)
			os.Exit(1)
		}
	}

	hours, scanTime, err := resolveInterval(*beforePath, resolvedAfter, cfg, *intervalHours)
	if err != nil {
		monitoring.Logf("timestamp error: %v", err)
		os.Exit(1)
	}

	clock := timeutil.RealClock{}
	beforeCloud, err := loadCloud(*beforePath, clock)
	if err != nil {
		monitoring.Logf("%v", err)
		os.Exit(1)
	}
	afterCloud, err := loadCloud(resolvedAfter, clock)
	if err != nil {
		monitoring.Logf("%v", err)
		os.Exit(1)
	}
	monitoring.Logf("loaded %d before-points, %d after-points", beforeCloud.Len(), afterCloud.Len())

	var samples []velocity.Sample
	coll := collector.New()

	switch *scheme {
	case "sample-grid":
		fixedIdx := spatialindex.Build(beforeCloud)
		movingIdx := spatialindex.Build(afterCloud)
		result := planner.SampleGrid(cfg, fixedIdx, movingIdx)
		samples = result.Samples
		for _, s := range result.NoPoints {
			coll.AddNoPoints(s)
		}
		for _, s := range result.LowDensity {
			coll.AddLowDensity(s)
		}
	case "cell-grid":
		fixedGrid := cellgrid.Build(beforeCloud, cfg.GridSize)
		movingGrid := cellgrid.Build(afterCloud, cfg.GridSize)
		result := planner.CellGrid(cfg, fixedGrid, movingGrid)
		samples = result.Samples
		for _, s := range result.Culled {
			coll.AddCulled(s)
		}
	default:
		monitoring.Logf("config error: unknown scheme %q", *scheme)
		os.Exit(1)
	}
	monitoring.Logf("planned %d samples", len(samples))

	adapter := registration.NewAdapter(registration.KabschSolver{})
	var maxIterPtr *int
	if v, ok := cfg.GetMaxIterations(); ok {
		maxIterPtr = &v
	}
	var sigma2Ptr *float64
	if v, ok := cfg.GetSigma2(); ok {
		sigma2Ptr = &v
	}

	queue := workerpool.NewQueue(samples)
	process := func(s velocity.Sample) registration.Result {
		return adapter.Register(context.Background(), s, scanTime, hours, maxIterPtr, sigma2Ptr)
	}
	onPanic := func(s velocity.Sample, recovered any) registration.Result {
		return registration.Result{SolverErr: &verrors.SolverError{X: s.X, Y: s.Y, Err: workerpool.PanicError(recovered)}}
	}
	results := workerpool.Run(cfg.Threads, queue, process, onPanic)
	for r := range results {
		switch {
		case r.Velocity != nil:
			coll.AddVelocity(*r.Velocity)
		case r.DidNotConverge != nil:
			coll.AddDidNotConverge(*r.DidNotConverge)
		case r.SolverErr != nil:
			coll.AddSolverError(*r.SolverErr)
		}
	}

	out := coll.Finalize()
	summary := collector.Summarize(out.Samples)
	monitoring.Logf("run complete: %d velocities, mean speed %.4f, max speed %.4f",
		summary.Count, summary.MeanSpeed, summary.MaxSpeed)

	fs := fsutil.OSFileSystem{}
	if err := report.WriteJSONFile(fs, *jsonOut, out); err != nil {
		monitoring.Logf("%v", err)
		os.Exit(1)
	}
	if err := report.WriteCSVFile(fs, *csvOut, out.Samples); err != nil {
		monitoring.Logf("%v", err)
		os.Exit(1)
	}

	if *archivePath != "" {
		if err := archiveRun(*archivePath, out, *scheme, *beforePath, resolvedAfter, hours); err != nil {
			monitoring.Logf("%v", err)
			os.Exit(1)
		}
	}
}

func archiveRun(path string, out collector.Output, scheme, beforePath, afterPath string, hours float64) error {
	db, err := velocitydb.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveRun(out.RunID, time.Now(), scheme, beforePath, afterPath, hours, out.Samples)
}

func loadCloud(path string, clock timeutil.Clock) (*velocity.PointCloud, error) {
	r, err := lasio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer r.Close()
	return r.ReadAll(clock, func(n, total int) {
		monitoring.Logf("%s: %d/%d points", path, n, total)
	})
}

// resolveInterval derives the elapsed time between scans from filename
// timestamps, falling back to override (flag, then config) if the
// filenames don't parse.
func resolveInterval(before, after string, cfg *velocityconfig.Config, overrideFlag float64) (float64, time.Time, error) {
	beforeTime, beforeErr := scanpair.ParseTimestamp(before)
	afterTime, afterErr := scanpair.ParseTimestamp(after)
	if beforeErr == nil && afterErr == nil {
		hours, err := scanpair.IntervalHours(beforeTime, afterTime)
		if err == nil {
			return hours, beforeTime, nil
		}
	}

	if overrideFlag > 0 {
		return overrideFlag, beforeTime, nil
	}
	if hours, ok := cfg.GetIntervalHours(); ok {
		return hours, beforeTime, nil
	}
	return 0, time.Time{}, fmt.Errorf("scan filenames do not carry a parseable timestamp and no interval_hours override was supplied")
}
