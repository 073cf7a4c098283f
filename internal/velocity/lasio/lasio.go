// Package lasio streams (x,y,z) points out of a LAS 1.2 binary point
// cloud file. Only the public header fields and the point-record layout
// needed to recover finite (x,y,z) doubles are implemented; LAS's many
// optional records (VLRs, extra bytes, waveform data) are out of scope.
package lasio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/banshee-data/glacier-velocity/internal/timeutil"
	"github.com/banshee-data/glacier-velocity/internal/velocity"
	"github.com/banshee-data/glacier-velocity/internal/velocity/verrors"
)

// ProgressInterval is the minimum time between progress callbacks.
const ProgressInterval = 100 // milliseconds

const headerSignature = "LASF"

// header holds the public header block fields this package needs.
type header struct {
	offsetToPointData   uint32
	pointDataRecordLen  uint16
	numberOfPoints      uint32
	xScale, yScale, zScale    float64
	xOffset, yOffset, zOffset float64
}

func readHeader(r io.Reader) (*header, error) {
	buf := make([]byte, 227)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading LAS header: %v", verrors.ErrInputDecode, err)
	}
	if string(buf[0:4]) != headerSignature {
		return nil, fmt.Errorf("%w: not a LAS file (bad signature %q)", verrors.ErrInputDecode, buf[0:4])
	}
	h := &header{
		offsetToPointData:  binary.LittleEndian.Uint32(buf[96:100]),
		pointDataRecordLen: binary.LittleEndian.Uint16(buf[105:107]),
		numberOfPoints:     binary.LittleEndian.Uint32(buf[107:111]),
		xScale:             readFloat64(buf[131:139]),
		yScale:             readFloat64(buf[139:147]),
		zScale:             readFloat64(buf[147:155]),
		xOffset:            readFloat64(buf[155:163]),
		yOffset:            readFloat64(buf[163:171]),
		zOffset:            readFloat64(buf[171:179]),
	}
	return h, nil
}

func readFloat64(b []byte) float64 {
	bits := binary.LittleEndian.Uint64(b)
	return math.Float64frombits(bits)
}

// Reader streams points from one LAS file.
type Reader struct {
	f      *os.File
	br     *bufio.Reader
	header *header
}

// Open opens path and reads its header. The caller must call Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %v", verrors.ErrInputDecode, path, err)
	}
	br := bufio.NewReader(f)
	h, err := readHeader(br)
	if err != nil {
		f.Close()
		return nil, err
	}
	remaining := int64(h.offsetToPointData) - 227
	if remaining > 0 {
		if _, err := io.CopyN(io.Discard, br, remaining); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: seeking to point data: %v", verrors.ErrInputDecode, err)
		}
	}
	return &Reader{f: f, br: br, header: h}, nil
}

// NumberOfPoints returns the point count declared in the header.
func (r *Reader) NumberOfPoints() int {
	return int(r.header.numberOfPoints)
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ProgressFunc is called as points are read; n is how many have been
// decoded so far, total is NumberOfPoints(). ReadAll throttles it to at
// most once per ProgressInterval, apart from its final call.
type ProgressFunc func(n, total int)

// ReadAll decodes every point in the file into a PointCloud, invoking
// progress (if non-nil) at most once per ProgressInterval using clock to
// measure elapsed time, plus one final call once every point is read.
func (r *Reader) ReadAll(clock timeutil.Clock, progress ProgressFunc) (*velocity.PointCloud, error) {
	total := r.NumberOfPoints()
	points := make([]velocity.Point, 0, total)
	recLen := int(r.header.pointDataRecordLen)
	buf := make([]byte, recLen)

	lastReport := clock.Now()
	for i := 0; i < total; i++ {
		if _, err := io.ReadFull(r.br, buf); err != nil {
			return nil, fmt.Errorf("%w: decoding point %d of %d: %v", verrors.ErrInputDecode, i, total, err)
		}
		rawX := int32(binary.LittleEndian.Uint32(buf[0:4]))
		rawY := int32(binary.LittleEndian.Uint32(buf[4:8]))
		rawZ := int32(binary.LittleEndian.Uint32(buf[8:12]))
		p := velocity.Point{
			X: float64(rawX)*r.header.xScale + r.header.xOffset,
			Y: float64(rawY)*r.header.yScale + r.header.yOffset,
			Z: float64(rawZ)*r.header.zScale + r.header.zOffset,
		}
		if !p.Finite() {
			return nil, fmt.Errorf("%w: point %d decoded to a non-finite value", verrors.ErrInputDecode, i)
		}
		points = append(points, p)

		if progress != nil && clock.Since(lastReport).Milliseconds() >= ProgressInterval {
			progress(i+1, total)
			lastReport = clock.Now()
		}
	}
	if progress != nil && total > 0 {
		progress(total, total)
	}
	return velocity.NewPointCloud(points), nil
}
