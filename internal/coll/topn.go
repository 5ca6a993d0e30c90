package coll

import (
	"container/heap"
	"sort"

	"golang.org/x/exp/constraints"
	"github.com/asyncgas/vgas/internal/mathutils"
)

// indexed sorts indirectly: Index gets permuted, Input never does.
type indexed[T constraints.Ordered] struct {
	Index []int
	Input []T
}

func (s indexed[T]) Len() int { return len(s.Index) }
func (s indexed[T]) Swap(i, j int) {
	s.Index[i], s.Index[j] = s.Index[j], s.Index[i]
}

func (s *indexed[T]) init(input []T, size int) {
	s.Input = input
	s.Index = make([]int, size)
	for i := range s.Index {
		s.Index[i] = i
	}
}

type indexedSf[T constraints.Ordered] struct{ indexed[T] }

func (s indexedSf[T]) Less(i, j int) bool { return s.Input[s.Index[i]] < s.Input[s.Index[j]] }

type indexedLf[T constraints.Ordered] struct{ indexed[T] }

func (s indexedLf[T]) Less(i, j int) bool { return s.Input[s.Index[i]] > s.Input[s.Index[j]] }

// SortGiveIndexesSmallestFirst returns the permutation of input's indexes
// that sorts input ascending, without modifying input.
func SortGiveIndexesSmallestFirst[T constraints.Ordered](input []T) []int {
	isf := indexedSf[T]{}
	isf.init(input, len(input))
	sort.Stable(isf)
	return isf.Index
}

// SortGiveIndexesLargestFirst returns the permutation of input's indexes
// that sorts input descending, without modifying input.
func SortGiveIndexesLargestFirst[T constraints.Ordered](input []T) []int {
	ilf := indexedLf[T]{}
	ilf.init(input, len(input))
	sort.Stable(ilf)
	return ilf.Index
}

// priorityQueueSf is a smallest-first priority queue over indexes into an
// input array, used by FindTopNInArray to track the smallest-of-the-largest
// N seen so far in O(N log topCount) rather than sorting the whole array.
type priorityQueueSf[T constraints.Ordered] struct{ indexedSf[T] }

func (pq *priorityQueueSf[T]) init(input []T, size int) {
	pq.indexedSf.init(input, size)
	heap.Init(pq)
}
func (pq *priorityQueueSf[T]) peek() int { return pq.Index[0] }
func (pq *priorityQueueSf[T]) extract() int {
	return heap.Pop(pq).(int)
}
func (pq *priorityQueueSf[T]) replace(pos, idx int) {
	pq.Index[pos] = idx
	heap.Fix(pq, pos)
}
func (pq *priorityQueueSf[T]) Push(x any) {
	pq.Index = append(pq.Index, x.(int))
}
func (pq *priorityQueueSf[T]) Pop() any {
	last := len(pq.Index) - 1
	item := pq.Index[last]
	pq.Index = pq.Index[:last]
	return item
}

// FindTopNInArray returns the topCount largest (index, value) pairs in
// array, largest first, without sorting or modifying the whole array. Used
// by the PageRank CLI to report the top-ranked vertices.
func FindTopNInArray(array []float64, topCount uint32) []mathutils.Pair[uint32, float64] {
	if topCount > uint32(len(array)) {
		topCount = uint32(len(array))
	}
	pq := priorityQueueSf[float64]{}
	pq.init(array, int(topCount))

	for i := int(topCount); i < len(array); i++ {
		if array[pq.peek()] < array[i] {
			pq.replace(0, i)
		}
	}

	top := make([]mathutils.Pair[uint32, float64], topCount)
	for i := uint32(0); i < topCount; i++ {
		idx := pq.extract()
		top[topCount-i-1] = mathutils.Pair[uint32, float64]{First: uint32(idx), Second: array[idx]}
	}
	return top
}
