// Command velocity-report-html renders a velocity CSV projection (as
// written by report.WriteCSV) as a self-contained go-echarts HTML scatter
// plot, colored by speed.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var (
	csvPath = flag.String("csv", "", "path to a velocity CSV projection")
	outPath = flag.String("out", "velocity.html", "path to write the HTML report")
)

func main() {
	flag.Parse()
	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: velocity-report-html -csv velocity.csv [-out velocity.html]")
		os.Exit(2)
	}

	rows, err := readRows(*csvPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no samples to report")
		os.Exit(1)
	}

	maxSpeed := 0.0
	data := make([]opts.ScatterData, 0, len(rows))
	for _, r := range rows {
		if r.speed > maxSpeed {
			maxSpeed = r.speed
		}
		data = append(data, opts.ScatterData{Value: []interface{}{r.x, r.y, r.speed}})
	}
	if maxSpeed == 0 {
		maxSpeed = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Glacier surface velocity", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Glacier surface velocity", Subtitle: fmt.Sprintf("%d samples", len(rows))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxSpeed),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)
	scatter.AddSeries("velocity", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()
	if err := scatter.Render(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type row struct {
	x, y, speed float64
}

func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	if len(records) < 1 {
		return nil, nil
	}

	var out []row
	for _, rec := range records[1:] {
		if len(rec) < 10 {
			continue
		}
		var r row
		fmt.Sscanf(rec[0], "%g", &r.x)
		fmt.Sscanf(rec[1], "%g", &r.y)
		fmt.Sscanf(rec[9], "%g", &r.speed)
		out = append(out, r)
	}
	return out, nil
}
