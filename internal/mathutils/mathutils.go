// Package mathutils holds generic numeric helpers (ordering, aggregate
// statistics, an imprecise float comparison) shared across the engine and
// its conformance harnesses.
package mathutils

import (
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/constraints"
)

// Pair bundles two values of possibly different types, e.g. an index and
// the value found at it.
type Pair[F any, S any] struct {
	First  F
	Second S
}

// FloatEquals reports whether a and b are within variance of each other
// (default 0.001), used for PageRank convergence checks.
func FloatEquals(a float64, b float64, inputVariance ...float64) bool {
	variance := 0.001
	if len(inputVariance) >= 1 {
		variance = inputVariance[0]
	}
	return math.Abs(a-b) < variance
}

func Max[T constraints.Ordered](x, y T) T {
	if x < y {
		return y
	}
	return x
}

func Min[T constraints.Ordered](x, y T) T {
	if y < x {
		return y
	}
	return x
}

func MaxSlice[T constraints.Ordered](slice []T) T {
	m := slice[0]
	for i := range slice {
		m = Max(m, slice[i])
	}
	return m
}

func MinSlice[T constraints.Ordered](slice []T) T {
	m := slice[0]
	for i := range slice {
		m = Min(m, slice[i])
	}
	return m
}

func Sum[T constraints.Integer | constraints.Float](slice []T) (sum T) {
	for i := range slice {
		sum += slice[i]
	}
	return sum
}

func Median[T constraints.Integer | constraints.Float](n []T) T {
	return Percentile(n, 50)
}

// Percentile returns the value at the given percentile of n, ascending
// order by default (reverse[0]=true sorts descending first).
func Percentile[T constraints.Integer | constraints.Float](n []T, percentile int, reverse ...bool) T {
	if len(n) == 0 {
		log.Warn().Msg("Percentile called on an empty slice")
		return 0
	}
	if len(n) == 1 {
		return n[0]
	}

	copyN := make([]T, len(n))
	copy(copyN, n)

	if len(reverse) > 0 && reverse[0] {
		sort.Slice(copyN, func(i, j int) bool { return copyN[i] > copyN[j] })
	} else {
		sort.Slice(copyN, func(i, j int) bool { return copyN[i] < copyN[j] })
	}
	idx := int((float64(percentile) / 100.0) * float64(len(copyN)))
	if len(copyN)%2 == 0 || idx == 0 {
		return copyN[idx]
	} else if copyN[idx-1] == copyN[idx] {
		return copyN[idx]
	}
	return (copyN[idx-1] + copyN[idx]) / 2
}

func Shuffle[T any](slice []T) {
	for i := range slice {
		j := rand.Intn(i + 1)
		slice[i], slice[j] = slice[j], slice[i]
	}
}

// ResultCompare summarizes the L1 difference between two equal-length
// result vectors: average, median, and 95th-percentile absolute
// difference. ignoreSize discards that many of the smallest differences
// before computing the median/95th percentile, used to ignore a handful
// of expected singleton outliers (e.g. unreachable SSSP targets).
func ResultCompare[T constraints.Float | constraints.Integer](a []T, b []T, ignoreSize int) (avgL1Diff float64, medianL1Diff float64, percentile95L1 float64) {
	if len(a) == 0 {
		return
	}
	listL1Diff := make([]float64, len(a))
	for i := range a {
		l1delta := math.Abs(float64(b[i] - a[i]))
		listL1Diff[i] = l1delta
		avgL1Diff += l1delta
	}
	avgL1Diff /= float64(len(a))

	sort.Float64s(listL1Diff)

	medianIdx := (len(listL1Diff) - ignoreSize) / 2
	medianL1Diff = listL1Diff[medianIdx+ignoreSize]
	if len(listL1Diff)%2 == 1 {
		medianL1Diff = (listL1Diff[medianIdx+ignoreSize-1] + listL1Diff[medianIdx+ignoreSize]) / 2
	}
	percentile95L1 = listL1Diff[int(float64(len(listL1Diff)-ignoreSize)*0.95)+ignoreSize]

	return avgL1Diff, medianL1Diff, percentile95L1
}
