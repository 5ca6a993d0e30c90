// Package common holds the CLI flag parsing shared by cmd/vgas-pagerank and
// cmd/vgas-sssp, grounded on the teacher's
// graph/graph-options.go: FlagsToOptions.
package common

import (
	"flag"
	"runtime"

	"github.com/asyncgas/vgas/engine"
	"github.com/asyncgas/vgas/internal/vlog"
)

// Flags is the parsed command line, split into the engine's own Options
// plus the handful of settings that only make sense at the CLI boundary
// (spec.md §1: "the CLI is a collaborator, not core").
type Flags struct {
	Graph   string
	Weights bool
	Stats   bool
	Props   string // if non-empty, write vertex properties here
	Options engine.Options
}

// FlagsToOptions declares this module's flags and parses them. Call once,
// at the top of main.
func FlagsToOptions() Flags {
	graphPtr := flag.String("g", "", "Graph edge-list file.")
	weightsPtr := flag.Bool("w", false, "Recorded in Flags.Weights; the bundled CLIs do not read it (vgas-sssp always parses (neighbour, weight) pairs, vgas-pagerank bare neighbour ids).")
	statsPtr := flag.Bool("stats", false, "Print graph degree statistics before running.")
	propsPtr := flag.String("p", "", "If set, write final vertex properties to this path.")

	threadPtr := flag.Int("t", runtime.NumCPU(), "Thread count for the worker pool.")
	loadAheadPtr := flag.Uint("la", 2, "SPM prefetch load-ahead distance.")
	cachePtr := flag.Bool("cache", false, "Enable the gather cache.")
	debugPtr := flag.Int("debug", 0, "Debug verbosity: 0 info, 1 debug, 2 adds periodic termination-status logging.")
	pollPtr := flag.Uint("poll", 500, "Polling rate (ms) for termination-status logging at -debug 2.")
	profilePtr := flag.Bool("profile", false, "Write a CPU profile to vgas.pprof.")
	colourPtr := flag.Bool("nc", false, "Disable coloured log output.")
	flag.Parse()

	vlog.Setup(*debugPtr, *colourPtr)

	return Flags{
		Graph:   *graphPtr,
		Weights: *weightsPtr,
		Stats:   *statsPtr,
		Props:   *propsPtr,
		Options: engine.Options{
			LoadAheadDistance: uint32(*loadAheadPtr),
			NumThreads:        *threadPtr,
			EnableGatherCache: *cachePtr,
			DebugLevel:        *debugPtr,
			PollingRateMS:     int(*pollPtr),
			Profile:           *profilePtr,
			ColourOutput:      !*colourPtr,
		},
	}
}
