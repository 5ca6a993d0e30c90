package engine

import (
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog/log"
)

// startStatusLogger launches the periodic termination-status goroutine
// (SPEC_FULL.md §12.2, grounded in the teacher's
// graph/termination.go: PrintTerminationStatus) when DebugLevel >= 2 and
// PollingRateMS is set, plus a CPU-profiling hook (SPEC_FULL.md §12.4,
// grounded in graph/algorithm.go's pprof.StartCPUProfile wrapping) when
// Options.Profile is set. The returned stop func must be deferred by the
// caller.
func (e *Engine[G, VD, ED]) startStatusLogger() (stop func()) {
	var stopProfile func()
	if e.opts.Profile {
		f, err := os.Create("vgas.pprof")
		if err != nil {
			log.Warn().Err(err).Msg("could not create CPU profile")
		} else if err := pprof.StartCPUProfile(f); err != nil {
			log.Warn().Err(err).Msg("could not start CPU profile")
			f.Close()
		} else {
			stopProfile = func() {
				pprof.StopCPUProfile()
				f.Close()
			}
		}
	}

	if e.opts.DebugLevel < 2 || e.opts.PollingRateMS <= 0 {
		return func() {
			if stopProfile != nil {
				stopProfile()
			}
		}
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Duration(e.opts.PollingRateMS) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				snap := e.sched.Snapshot()
				log.Debug().
					Int("active", snap.NumActive).
					Int("deferred", snap.NumDeferred).
					Int("idle", snap.NumIdle).
					Uint64("max_active_seen", snap.MaxActive).
					Msg("termination status")
			}
		}
	}()

	return func() {
		close(done)
		if stopProfile != nil {
			stopProfile()
		}
	}
}
