package engine

import "github.com/asyncgas/vgas/internal/mathutils"

// CompareToOracle reports summary statistics of |got[i] - want[i]| across
// matching vertex ids, grounded on the teacher's framework.CompareToOracle
// / graph/oracle-compare.go. Used by the SSSP conformance harness to check
// the engine's converged distances against gonum's Dijkstra oracle
// (cmd/vgas-sssp/randgraph.go).
func CompareToOracle(got, want []float64) (avgAbsDiff, medianAbsDiff, p95AbsDiff float64) {
	return mathutils.ResultCompare(got, want, 0)
}
