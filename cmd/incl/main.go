// Command incl summarizes inclinometer (roll/pitch) recordings captured
// alongside a LiDAR scan.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/glacier-velocity/internal/incl"
	"github.com/banshee-data/glacier-velocity/internal/velocity/scanpair"
	"github.com/banshee-data/glacier-velocity/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "stats":
		handleStats(args)
	case "timeseries":
		handleTimeseries(args)
	case "version":
		fmt.Printf("incl v%s (git SHA: %s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`incl - inclinometer roll/pitch summaries

Usage: incl <command> [options]

Commands:
  stats <path>          Print a JSON roll/pitch summary of one .incl file
  timeseries <dir>      Print a CSV timeseries across every .incl file under dir
  version               Print version information
  help                  Show this message`)
}

func handleStats(args []string) {
	flagSet := flag.NewFlagSet("stats", flag.ExitOnError)
	flagSet.Parse(args)
	if flagSet.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: incl stats <path>")
		os.Exit(1)
	}

	samples, err := incl.ReadFile(flagSet.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	stats := incl.NewStats(samples)
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(stats); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func handleTimeseries(args []string) {
	flagSet := flag.NewFlagSet("timeseries", flag.ExitOnError)
	flagSet.Parse(args)
	if flagSet.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: incl timeseries <directory>")
		os.Exit(1)
	}
	directory := flagSet.Arg(0)

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if err := w.Write([]string{"ordinal", "year", "hour", "name", "mean", "stddev"}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	walkErr := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".incl" {
			return nil
		}

		scanTime, err := scanpair.ParseTimestamp(path)
		if err != nil {
			return nil // filename doesn't carry a recognizable scan timestamp, skip it
		}
		if !incl.SixHourly(scanTime) {
			return nil
		}

		samples, err := incl.ReadFile(path)
		if err != nil {
			return err
		}
		for _, row := range incl.Rows(scanTime, samples) {
			record := []string{
				strconv.Itoa(row.Ordinal),
				row.Year,
				strconv.Itoa(row.Hour),
				row.Channel,
				strconv.FormatFloat(float64(row.Mean), 'g', -1, 32),
				strconv.FormatFloat(float64(row.StdDev), 'g', -1, 32),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
	if walkErr != nil {
		fmt.Fprintln(os.Stderr, walkErr)
		os.Exit(1)
	}
}
