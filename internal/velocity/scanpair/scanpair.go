// Package scanpair resolves the "before" and "after" LAS filenames for a
// velocity run: parsing the scan timestamp embedded in a filename and,
// when only one path is given, auto-discovering its sibling scan in the
// same directory.
package scanpair

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/glacier-velocity/internal/security"
	"github.com/banshee-data/glacier-velocity/internal/velocity/verrors"
)

// timestampLayout is the literal YYMMDD_HHMMSS pattern specified for the
// first 13 characters of a scan filename's stem.
const timestampLayout = "060102_150405"

// movingWindow bounds how far ahead of the fixed scan a sibling file's
// timestamp may be to be considered its pair, per the original tool's
// directory-scan heuristic.
const movingWindow = 7 * time.Hour

// ParseTimestamp parses the scan datetime from the first 13 characters of
// a LAS filename (not the full path), interpreted as UTC. Returns
// verrors.ErrTimestamp if the filename is too short or doesn't match.
func ParseTimestamp(filename string) (time.Time, error) {
	base := filepath.Base(filename)
	if len(base) < 13 {
		return time.Time{}, fmt.Errorf("%w: filename %q shorter than 13 characters", verrors.ErrTimestamp, base)
	}
	t, err := time.Parse(timestampLayout, base[0:13])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: filename %q: %v", verrors.ErrTimestamp, base, err)
	}
	return t.UTC(), nil
}

// IntervalHours returns the positive elapsed time between two scans. An
// after time at or before the before time is a verrors.ErrTimestamp.
func IntervalHours(before, after time.Time) (float64, error) {
	d := after.Sub(before)
	if d <= 0 {
		return 0, fmt.Errorf("%w: after-scan time %v is not after before-scan time %v", verrors.ErrTimestamp, after, before)
	}
	return d.Hours(), nil
}

// FindMovingPath searches fixedPath's directory for a sibling LAS file
// whose embedded timestamp is after fixedPath's and within movingWindow,
// returning its full path. Candidates are validated to lie within the
// fixed file's own directory before being considered, guarding against a
// malicious or unexpected symlink in that directory.
func FindMovingPath(fixedPath string) (string, error) {
	fixedTime, err := ParseTimestamp(fixedPath)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(fixedPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: reading directory %q: %v", verrors.ErrInputDecode, dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, entry.Name())
		if candidate == fixedPath {
			continue
		}
		if err := security.ValidatePathWithinDirectory(candidate, dir); err != nil {
			continue
		}
		candidateTime, err := ParseTimestamp(candidate)
		if err != nil {
			continue
		}
		delta := candidateTime.Sub(fixedTime)
		if delta > 0 && delta < movingWindow {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no moving-scan sibling found for %q in %q", verrors.ErrInputDecode, fixedPath, dir)
}
