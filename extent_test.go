package objstore

import "testing"

// smallRanges enumerates every [s, e) with 0 <= s, e <= 6, including empty
// and inverted ones, which is enough to exercise all boundary placements.
func smallRanges() []Range[uint64] {
	var out []Range[uint64]
	for s := uint64(0); s <= 6; s++ {
		for e := uint64(0); e <= 6; e++ {
			out = append(out, Range[uint64]{s, e})
		}
	}
	return out
}

func TestRangeValidity(t *testing.T) {
	istrue(t, Range[uint64]{0, 1}.IsValid())
	istrue(t, Range[uint64]{5, 100}.IsValid())
	isfalse(t, Range[uint64]{3, 3}.IsValid())
	isfalse(t, Range[uint64]{4, 3}.IsValid())
}

func TestRangeLength(t *testing.T) {
	deepEqual(t, Range[uint64]{2, 10}.Length(), uint64(8))

	defer func() {
		if recover() == nil {
			t.Errorf("** Length of empty range did not panic")
		}
	}()
	Range[uint64]{3, 3}.Length()
}

func TestRangeOverlapSymmetry(t *testing.T) {
	for _, a := range smallRanges() {
		for _, b := range smallRanges() {
			if a.Overlaps(b) != b.Overlaps(a) {
				t.Errorf("** overlap not symmetric for %v, %v", a, b)
			}
		}
		if a.IsValid() && !a.Overlaps(a) {
			t.Errorf("** non-empty range %v does not overlap itself", a)
		}
		if !a.IsValid() && a.Overlaps(a) {
			t.Errorf("** empty range %v overlaps itself", a)
		}
	}
}

func TestRangeAdjacencyExclusivity(t *testing.T) {
	for _, a := range smallRanges() {
		for _, b := range smallRanges() {
			if !a.IsValid() || !b.IsValid() {
				continue
			}
			if a.IsAdjacent(b) != b.IsAdjacent(a) {
				t.Errorf("** adjacency not symmetric for %v, %v", a, b)
			}
			if a.Overlaps(b) && a.IsAdjacent(b) {
				t.Errorf("** %v and %v are both overlapping and adjacent", a, b)
			}
		}
	}
	istrue(t, Range[uint64]{0, 5}.IsAdjacent(Range[uint64]{5, 10}))
	istrue(t, Range[uint64]{5, 10}.IsAdjacent(Range[uint64]{0, 5}))
	isfalse(t, Range[uint64]{0, 5}.IsAdjacent(Range[uint64]{6, 10}))
}

func TestRangeContainmentAsymmetry(t *testing.T) {
	for _, a := range smallRanges() {
		for _, b := range smallRanges() {
			if a.ContainsRange(b) && a != b && b.ContainsRange(a) {
				t.Errorf("** containment not asymmetric for %v, %v", a, b)
			}
			if a.ContainsRange(b) && (!a.IsValid() || !b.IsValid()) {
				t.Errorf("** empty range takes part in containment: %v, %v", a, b)
			}
		}
	}
	istrue(t, Range[uint64]{0, 10}.ContainsRange(Range[uint64]{0, 10}))
	istrue(t, Range[uint64]{0, 10}.ContainsRange(Range[uint64]{3, 7}))
	isfalse(t, Range[uint64]{3, 7}.ContainsRange(Range[uint64]{0, 10}))
	isfalse(t, Range[uint64]{0, 10}.ContainsRange(Range[uint64]{5, 11}))
}

func TestRangeIntersect(t *testing.T) {
	deepEqual(t, Range[uint64]{0, 10}.Intersect(Range[uint64]{5, 15}), Range[uint64]{5, 10})
	isfalse(t, Range[uint64]{0, 5}.Intersect(Range[uint64]{5, 10}).IsValid())
}
