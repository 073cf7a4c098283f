// Command velocity-plot renders a PNG quiver plot of a velocity CSV
// projection (as written by report.WriteCSV): one line segment per sample,
// from its center of gravity to its scaled displacement, colored by speed.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image/color"
	"os"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	csvPath = flag.String("csv", "", "path to a velocity CSV projection")
	outPath = flag.String("out", "velocity.png", "path to write the PNG plot")
	scale   = flag.Float64("scale", 50, "multiplier applied to each vx,vy before drawing")
)

type record struct {
	x, y, vx, vy, speed float64
}

func main() {
	flag.Parse()
	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: velocity-plot -csv velocity.csv [-out velocity.png] [-scale 50]")
		os.Exit(2)
	}

	records, err := readCSV(*csvPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no samples to plot")
		os.Exit(1)
	}

	p := plot.New()
	p.Title.Text = "Glacier surface velocity"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	maxSpeed := 0.0
	for _, r := range records {
		if r.speed > maxSpeed {
			maxSpeed = r.speed
		}
	}
	if maxSpeed == 0 {
		maxSpeed = 1
	}

	buckets := bucketBySpeed(records, 8)
	palette := generateColors(len(buckets))
	for i, bucket := range buckets {
		for _, r := range bucket {
			line, err := plotter.NewLine(plotter.XYs{
				{X: r.x, Y: r.y},
				{X: r.x + r.vx*(*scale), Y: r.y + r.vy*(*scale)},
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			line.Color = palette[i]
			line.Width = vg.Points(1)
			p.Add(line)
		}
	}

	if err := p.Save(10*vg.Inch, 10*vg.Inch, *outPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readCSV(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, nil
	}

	var out []record
	for _, row := range rows[1:] { // skip header
		if len(row) < 10 {
			continue
		}
		rec := record{}
		fmt.Sscanf(row[0], "%g", &rec.x)
		fmt.Sscanf(row[1], "%g", &rec.y)
		fmt.Sscanf(row[5], "%g", &rec.vx)
		fmt.Sscanf(row[6], "%g", &rec.vy)
		fmt.Sscanf(row[9], "%g", &rec.speed)
		out = append(out, rec)
	}
	return out, nil
}

// bucketBySpeed splits records into n speed-ordered buckets so the plotted
// color ramps with magnitude rather than insertion order.
func bucketBySpeed(records []record, n int) [][]record {
	sorted := make([]record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].speed < sorted[j].speed })

	buckets := make([][]record, n)
	per := (len(sorted) + n - 1) / n
	if per == 0 {
		per = 1
	}
	for i := 0; i < len(sorted); i++ {
		b := i / per
		if b >= n {
			b = n - 1
		}
		buckets[b] = append(buckets[b], sorted[i])
	}
	return buckets
}

func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64
	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
