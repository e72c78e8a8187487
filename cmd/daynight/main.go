// Evaluates the mean brightness baseline for day/night frame classification.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sensorable/lbltile"
)

var (
	dayDirPath   string  // The directory with day frames.
	nightDirPath string  // The directory with night frames.
	threshold    float64 // The brightness threshold; negative searches for the best one.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}

	flag.StringVar(&dayDirPath, "day", dayDirPath, "The `path` to the directory with day frames")
	flag.StringVar(&nightDirPath, "night", nightDirPath,
		"The `path` to the directory with night frames")
	flag.Float64Var(&threshold, "threshold", -1,
		"The mean brightness `value` [0.0, 1.0] from which a frame counts as day; a negative value"+
			" selects the most accurate threshold")

	flag.Parse()

	if dayDirPath == "" || nightDirPath == "" {
		log.Print("Missing day or night directory argument")
		flag.Usage()
		os.Exit(1)
	}
	if threshold > 1 {
		log.Print("Invalid -threshold, must be <= 1: ", threshold)
		flag.Usage()
		os.Exit(1)
	}
}

func main() {
	samples, err := lbltile.LoadBrightnessSamples(dayDirPath, nightDirPath)
	if err != nil {
		log.Fatal("Failed to measure the frames: ", err)
	}
	if len(samples) == 0 {
		log.Fatal("No frames found")
	}

	var e lbltile.Evaluation
	if threshold < 0 {
		e = lbltile.BestThreshold(samples)
		log.Print("Best ", e)
	} else {
		e = lbltile.Evaluate(samples, threshold)
		log.Print("Baseline ", e)
	}
}
