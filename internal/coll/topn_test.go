package coll

import "testing"

func Test_SortGiveIndexes(t *testing.T) {
	input := []float64{3, 1, 4, 1, 5}
	asc := SortGiveIndexesSmallestFirst(input)
	if input[asc[0]] != 1 || input[asc[len(asc)-1]] != 5 {
		t.Error("ascending index sort wrong", asc)
	}
	desc := SortGiveIndexesLargestFirst(input)
	if input[desc[0]] != 5 || input[desc[len(desc)-1]] != 1 {
		t.Error("descending index sort wrong", desc)
	}
}

func Test_FindTopNInArray(t *testing.T) {
	input := []float64{0.1, 0.9, 0.3, 0.7, 0.5}
	top := FindTopNInArray(input, 2)
	if len(top) != 2 {
		t.Fatal("expected 2 results")
	}
	if top[0].Second != 0.9 || top[1].Second != 0.7 {
		t.Error("expected [0.9, 0.7], got", top)
	}
	if input[0] != 0.1 {
		t.Error("expected input array untouched")
	}
}
