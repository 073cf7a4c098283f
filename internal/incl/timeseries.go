package incl

import (
	"fmt"
	"time"
)

// scannerSwap is the cutover between the two scanner deployments of 2016;
// 2016 rows are split into "2016-a"/"2016-b" buckets on either side of it.
var scannerSwap = time.Date(2016, time.August, 12, 0, 0, 0, 0, time.UTC)

// YearBucket labels t's calendar year for a timeseries row, splitting 2016
// around scannerSwap.
func YearBucket(t time.Time) string {
	switch t.Year() {
	case 2016:
		if t.Before(scannerSwap) {
			return "2016-a"
		}
		return "2016-b"
	default:
		return fmt.Sprintf("%d", t.Year())
	}
}

// Row is one timeseries line: one channel's summary for one six-hourly
// bucket of one scan.
type Row struct {
	Ordinal int
	Year    string
	Hour    int
	Channel string
	Mean    float32
	StdDev  float32
}

// SixHourly reports whether t falls on an hour boundary the timeseries
// samples: every sixth hour, matching the original tool's reporting cadence.
func SixHourly(t time.Time) bool {
	return t.Hour()%6 == 0
}

// Rows builds the roll/pitch Row pair for one scan's samples at time t.
func Rows(t time.Time, samples []Sample) []Row {
	stats := NewStats(samples)
	ordinal := t.YearDay()
	year := YearBucket(t)
	hour := t.Hour()
	return []Row{
		{Ordinal: ordinal, Year: year, Hour: hour, Channel: "roll", Mean: stats.Roll.Mean, StdDev: stats.Roll.StdDev},
		{Ordinal: ordinal, Year: year, Hour: hour, Channel: "pitch", Mean: stats.Pitch.Mean, StdDev: stats.Pitch.StdDev},
	}
}
